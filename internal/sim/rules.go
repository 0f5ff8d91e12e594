package sim

import "fmt"

// rule pairs a predicate with its behaviour. Rules are evaluated in order:
// exact literals, then token prefixes, then the catalog fallback.
type rule struct {
	name   string
	match  func(command) bool
	handle func(command) Result
}

func exact(lines ...string) func(command) bool {
	return func(c command) bool {
		for _, l := range lines {
			if c.line == l {
				return true
			}
		}
		return false
	}
}

func prefix(words ...string) func(command) bool {
	return func(c command) bool {
		return c.hasPrefix(words...)
	}
}

func canned(text string) func(command) Result {
	return func(command) Result {
		return succeed(text)
	}
}

func (e *Engine) buildRules() []rule {
	return []rule{
		// Stateless literals
		{name: "help", match: exact("help"), handle: canned(helpText)},
		{name: "clear", match: exact("clear"), handle: func(command) Result {
			return Result{Clear: true, Outcome: OutcomeNone}
		}},
		{name: "version", match: exact("docker --version", "docker -v", "docker version"), handle: canned(dockerVersion)},
		{name: "compose-version", match: exact("docker-compose --version", "docker-compose -v", "docker compose version"), handle: canned(composeVersion)},
		{name: "info", match: exact("docker info"), handle: e.info},
		{name: "ps", match: exact("docker ps", "docker container ls"), handle: e.psRunning},
		{name: "ps-all", match: exact("docker ps -a", "docker ps --all", "docker container ls -a", "docker container ls --all"), handle: e.psAll},
		{name: "images", match: exact("docker images", "docker image ls"), handle: e.images},
		{name: "network-ls", match: exact("docker network ls"), handle: canned(networkList)},
		{name: "volume-ls", match: exact("docker volume ls"), handle: canned(volumeList)},
		{name: "system-df", match: exact("docker system df"), handle: e.systemDF},

		// Parameterised, mutating commands
		{name: "run", match: prefix("docker", "run"), handle: e.run},
		{name: "stop", match: prefix("docker", "stop"), handle: e.stop},
		{name: "start", match: prefix("docker", "start"), handle: e.start},
		{name: "restart", match: prefix("docker", "restart"), handle: e.restart},
		{name: "rm", match: prefix("docker", "rm"), handle: e.rm},
		{name: "pull", match: prefix("docker", "pull"), handle: e.pull},
		{name: "rmi", match: prefix("docker", "rmi"), handle: e.rmi},
		{name: "system-prune", match: prefix("docker", "system", "prune"), handle: e.systemPrune},
		{name: "compose-up", match: composeVerb("up"), handle: canned(composeUp)},
		{name: "compose-down", match: composeVerb("down"), handle: canned(composeDown)},
		{name: "compose-ps", match: composeVerb("ps"), handle: canned(composePS)},

		// Known but not simulated
		{name: "catalog", match: e.inCatalog, handle: e.recognized},
	}
}

// composeVerb matches both docker-compose <verb> and docker compose <verb>
func composeVerb(verb string) func(command) bool {
	return func(c command) bool {
		return c.hasPrefix("docker-compose", verb) || c.hasPrefix("docker", "compose", verb)
	}
}

func (e *Engine) inCatalog(c command) bool {
	_, ok := e.catalog.Lookup(c.line)
	return ok
}

func (e *Engine) recognized(c command) Result {
	sig, _ := e.catalog.Lookup(c.line)
	return succeed(fmt.Sprintf("Command '%s' recognized but not fully implemented in this simulator.\n\nUsage: %s\n\n%s",
		c.line, sig.Example, sig.Description))
}

func (e *Engine) unrecognized(c command) Result {
	return fail(ErrUnrecognized, c.line,
		fmt.Sprintf("Command not recognized: '%s'\nType 'help' to see available commands.", c.line))
}
