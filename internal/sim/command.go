package sim

import (
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// command is a tokenised input line
type command struct {
	raw    string
	line   string
	tokens []string
}

func parseCommand(raw string) command {
	tokens := strings.Fields(raw)
	return command{
		raw:    raw,
		line:   strings.Join(tokens, " "),
		tokens: tokens,
	}
}

// hasPrefix reports whether the leading tokens equal words
func (c command) hasPrefix(words ...string) bool {
	if len(c.tokens) < len(words) {
		return false
	}
	for i, w := range words {
		if c.tokens[i] != w {
			return false
		}
	}
	return true
}

// argsAfter returns the tokens following the first n
func (c command) argsAfter(n int) []string {
	if len(c.tokens) <= n {
		return nil
	}
	return c.tokens[n:]
}

// newFlagSet returns a quiet pflag set that tolerates flags the simulator
// does not model. run disables interspersing so everything after the image
// belongs to the container command.
func newFlagSet(name string, interspersed bool) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(interspersed)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	return fs
}

// firstArg parses args with fs and returns the first positional argument
func firstArg(fs *pflag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() == 0 {
		return "", nil
	}
	return fs.Arg(0), nil
}
