package sim

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/MikeO7/HarborSim/internal/domain"
	"github.com/MikeO7/HarborSim/pkg/util"
)

const (
	psHeader     = "CONTAINER ID\tIMAGE\tCOMMAND\tCREATED\tSTATUS\tPORTS\tNAMES"
	imagesHeader = "REPOSITORY\tTAG\tIMAGE ID\tCREATED\tSIZE"

	// commandWidth is the display width of the COMMAND column
	commandWidth = 20
)

// table renders tab separated rows with a three space gap. The result has
// no trailing newline so an empty table is exactly the header line.
func table(header string, rows []string) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, header)
	for _, r := range rows {
		fmt.Fprintln(w, r)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func containerRows(containers []domain.Container, all bool) []string {
	var rows []string
	for _, c := range containers {
		if !all && !c.Running() {
			continue
		}
		rows = append(rows, strings.Join([]string{
			util.ShortID(c.ID),
			c.Image,
			quoteCommand(c.Command),
			c.Created,
			string(c.Status),
			c.Ports,
			c.Name,
		}, "\t"))
	}
	return rows
}

// quoteCommand renders a command the way docker ps does, quoted and
// truncated with an ellipsis
func quoteCommand(cmd string) string {
	if r := []rune(cmd); len(r) > commandWidth {
		cmd = string(r[:commandWidth-1]) + "…"
	}
	return `"` + cmd + `"`
}

func (e *Engine) psRunning(command) Result {
	return succeed(table(psHeader, containerRows(e.state.containers, false)))
}

func (e *Engine) psAll(command) Result {
	return succeed(table(psHeader, containerRows(e.state.containers, true)))
}

func (e *Engine) images(command) Result {
	rows := make([]string, 0, len(e.state.images))
	for _, img := range e.state.images {
		rows = append(rows, strings.Join([]string{
			img.Repository, img.Tag, img.ID, img.Created, img.Size,
		}, "\t"))
	}
	return succeed(table(imagesHeader, rows))
}

func (e *Engine) info(command) Result {
	running := e.state.countRunning()
	total := len(e.state.containers)
	return succeed(fmt.Sprintf(`
Client:
 Context:    default
 Debug Mode: false
 Plugins:
  buildx: Docker Buildx (Docker Inc.)
  compose: Docker Compose (Docker Inc.)
  dev: Docker Dev Environments (Docker Inc.)

Server:
 Containers: %d
  Running: %d
  Paused: 0
  Stopped: %d
 Images: %d
 Server Version: %s
 Storage Driver: overlay2
 Logging Driver: json-file
 Cgroup Driver: systemd
 Kernel Version: 5.15.0-76-generic
 Operating System: Ubuntu 22.04.3 LTS
 OSType: linux
 Architecture: x86_64
 CPUs: 8
 Total Memory: 15.61GiB
`, total, running, total-running, len(e.state.images), serverVersion))
}

// imageSizeTotal sums the numeric prefix of every image size. Units are
// ignored, so "13.3kB" counts as 13.3.
func imageSizeTotal(images []domain.Image) float64 {
	var sum float64
	for _, img := range images {
		sum += util.SizePrefix(img.Size)
	}
	return sum
}

func (e *Engine) systemDF(command) Result {
	rows := []string{
		fmt.Sprintf("Images\t%d\t%d\t%.1fMB\t0B (0%%)",
			len(e.state.images), len(e.state.images), imageSizeTotal(e.state.images)),
		fmt.Sprintf("Containers\t%d\t%d\t10.5MB\t0B (0%%)",
			len(e.state.containers), e.state.countRunning()),
		"Local Volumes\t2\t2\t234.2MB\t0B (0%)",
		"Build Cache\t0\t0\t0B\t0B",
	}
	return succeed(table("TYPE\tTOTAL\tACTIVE\tSIZE\tRECLAIMABLE", rows))
}
