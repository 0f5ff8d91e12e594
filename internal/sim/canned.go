package sim

// Static output for commands whose text never depends on state

const helpText = `
Available commands:

DOCKER BASICS:
  docker --version              Check Docker version
  docker info                   Display system-wide information
  docker login                  Log in to a Docker registry

CONTAINER MANAGEMENT:
  docker ps                     List running containers
  docker ps -a                  List all containers (running and stopped)
  docker run [OPTIONS] IMAGE    Run a container
  docker start CONTAINER        Start a stopped container
  docker stop CONTAINER         Stop a running container
  docker restart CONTAINER      Restart a container
  docker rm [-f] CONTAINER      Remove a container
  docker logs CONTAINER         Fetch logs of a container
  docker exec CONTAINER COMMAND Execute a command in a running container

IMAGE MANAGEMENT:
  docker images                 List images
  docker pull IMAGE             Pull an image from registry
  docker push IMAGE             Push an image to registry
  docker build -t NAME:TAG .    Build an image from a Dockerfile
  docker rmi [-f] IMAGE         Remove an image

DOCKER COMPOSE:
  docker-compose --version      Check Docker Compose version
  docker-compose up             Create and start containers
  docker-compose down           Stop and remove containers
  docker-compose ps             List containers managed by compose

NETWORKING:
  docker network ls             List networks
  docker network create         Create a network
  docker network connect        Connect a container to a network

VOLUME MANAGEMENT:
  docker volume ls              List volumes
  docker volume create          Create a volume
  docker volume rm              Remove a volume

SYSTEM:
  docker system df              Show docker disk usage
  docker system prune [-a]      Remove unused data

TERMINAL:
  clear                         Clear terminal history
`

const (
	dockerVersion  = "Docker version 24.0.5, build ced0996"
	composeVersion = "Docker Compose version v2.20.2"
	serverVersion  = "24.0.5"
)

const helloWorldBanner = `
Hello from Docker!
This message shows that your installation appears to be working correctly.

To generate this message, Docker took the following steps:
 1. The Docker client contacted the Docker daemon.
 2. The Docker daemon pulled the "hello-world" image from the Docker Hub.
 3. The Docker daemon created a new container from that image which runs the
    executable that produces the output you are currently reading.
 4. The Docker daemon streamed that output to the Docker client, which sent it
    to your terminal.
`

const networkList = `
NETWORK ID     NAME      DRIVER    SCOPE
f2d74a2ec4bf   bridge    bridge    local
69bb21378df5   host      host      local
c4c1c8e21a3a   none      null      local
`

const volumeList = `
DRIVER    VOLUME NAME
local     data-volume
local     mysql-data
`

const composeUp = `
Creating network "app_default" with the default driver
Creating app_db_1    ... done
Creating app_redis_1 ... done
Creating app_web_1   ... done
Attaching to app_db_1, app_redis_1, app_web_1
db_1     | 2023-03-14 12:00:00.555 UTC [1] LOG:  starting PostgreSQL 13.3
redis_1  | 1:C 14 Mar 12:00:00.777 # oO0OoO0OoO0Oo Redis is starting oO0OoO0OoO0Oo
web_1    | Listening on port 3000
`

const composeDown = `
Stopping app_web_1   ... done
Stopping app_redis_1 ... done
Stopping app_db_1    ... done
Removing app_web_1   ... done
Removing app_redis_1 ... done
Removing app_db_1    ... done
Removing network app_default
`

const composePS = `
    Name                   Command               State           Ports
------------------------------------------------------------------------------
app_db_1       docker-entrypoint.sh postgres    Up      5432/tcp
app_redis_1    docker-entrypoint.sh redis ...   Up      6379/tcp
app_web_1      docker-entrypoint.sh npm start   Up      0.0.0.0:3000->3000/tcp
`

// pullDigest is reported when the requested image is already present
const pullDigest = "sha256:a89cb097693dd354de8d5facd4d2e117af36a2e72a9b1f7c6d996e4000f74c59"
