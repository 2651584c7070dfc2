// Package command defines the closed set of simulation commands and maps
// their names to host actions.
package command

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies one simulation command. The set is closed: Parse only
// produces the kinds below and Dispatch handles exactly those.
type Kind int

const (
	// Random reseeds the grid from random noise.
	Random Kind = iota
	// FromCurrent seeds the grid from the full source text.
	FromCurrent
	// NewGrid clears the simulation back to an empty canvas.
	NewGrid
	// Anonymize seeds the grid from the currently visible source text.
	Anonymize
	// Pause suspends the running simulation.
	Pause
	// Resume continues a paused simulation.
	Resume
	// Destroy stops the simulation and discards its state.
	Destroy
)

// ErrUnknownCommand is returned by Parse for names outside the command set.
var ErrUnknownCommand = errors.New("unknown command")

var kindNames = map[Kind]string{
	Random:      "random",
	FromCurrent: "from_current",
	NewGrid:     "new_grid",
	Anonymize:   "anonymize",
	Pause:       "pause",
	Resume:      "resume",
	Destroy:     "destroy",
}

var namesToKind = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Parse resolves a command name, ignoring surrounding whitespace and case.
func Parse(input string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(input))
	k, ok := namesToKind[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownCommand, "[Parse] %q", input)
	}
	return k, nil
}

// Names lists every command name in alphabetical order, for help text and
// completion.
func Names() []string {
	names := make([]string, 0, len(kindNames))
	for _, name := range kindNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handlers binds each command kind to a host action. Hosts leave a field
// nil when the command makes no sense in their context; dispatching it then
// reports an advisory error instead of doing nothing silently.
type Handlers struct {
	Random      func() error
	FromCurrent func() error
	NewGrid     func() error
	Anonymize   func() error
	Pause       func() error
	Resume      func() error
	Destroy     func() error
}

// Dispatch runs the handler for k. The switch is exhaustive over the
// command set, so adding a kind without wiring it here fails loudly rather
// than falling through.
func (h Handlers) Dispatch(k Kind) error {
	var fn func() error
	switch k {
	case Random:
		fn = h.Random
	case FromCurrent:
		fn = h.FromCurrent
	case NewGrid:
		fn = h.NewGrid
	case Anonymize:
		fn = h.Anonymize
	case Pause:
		fn = h.Pause
	case Resume:
		fn = h.Resume
	case Destroy:
		fn = h.Destroy
	default:
		return errors.Wrapf(ErrUnknownCommand, "[Dispatch] kind %d", int(k))
	}
	if fn == nil {
		return errors.Errorf("[Dispatch] command %q not available here", k)
	}
	return fn()
}
