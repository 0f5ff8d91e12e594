// Package domain holds the simulated infrastructure model shared by the
// engine, the notifier and every observer.
package domain

import "time"

// Status is the lifecycle state of a simulated container
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
)

// DefaultTag is assumed when an image reference omits a tag
const DefaultTag = "latest"

// Image is a simulated, tagged image template
type Image struct {
	ID         string `json:"id"`
	Repository string `json:"repository"`
	Tag        string `json:"tag"`
	Size       string `json:"size"`
	Created    string `json:"created"`
}

// Ref returns the repository:tag form of the image
func (i Image) Ref() string {
	return i.Repository + ":" + i.Tag
}

// Container is a simulated workload tracked in memory only
type Container struct {
	ID      string `json:"id"`
	Image   string `json:"image"`
	Command string `json:"command"`
	Created string `json:"created"`
	Status  Status `json:"status"`
	Ports   string `json:"ports,omitempty"`
	Name    string `json:"name"`
}

// Running reports whether the container is running
func (c Container) Running() bool {
	return c.Status == StatusRunning
}

// Snapshot is an immutable copy of the current containers and images
type Snapshot struct {
	Containers []Container `json:"containers"`
	Images     []Image     `json:"images"`
}

// Clone returns a deep copy so receivers never share backing arrays
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Containers: make([]Container, len(s.Containers)),
		Images:     make([]Image, len(s.Images)),
	}
	copy(out.Containers, s.Containers)
	copy(out.Images, s.Images)
	return out
}

// CountRunning returns the number of running containers
func (s Snapshot) CountRunning() int {
	n := 0
	for _, c := range s.Containers {
		if c.Running() {
			n++
		}
	}
	return n
}

// CommandExecuted is broadcast after every actionable command
type CommandExecuted struct {
	Command string `json:"command"`
	Output  string `json:"output"`
	Success bool   `json:"success"`
}

// EventType identifies the payload carried by an Event
type EventType string

const (
	EventSnapshot EventType = "snapshot"
	EventCommand  EventType = "command"
)

// Event is the envelope delivered to observers
type Event struct {
	ID        string           `json:"id"`
	Type      EventType        `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Snapshot  *Snapshot        `json:"snapshot,omitempty"`
	Command   *CommandExecuted `json:"command,omitempty"`
}
