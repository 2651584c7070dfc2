package command

import (
	"sort"
	"testing"

	"github.com/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Kind
	}{
		{"random", "random", Random},
		{"from_current", "from_current", FromCurrent},
		{"new_grid", "new_grid", NewGrid},
		{"anonymize", "anonymize", Anonymize},
		{"pause", "pause", Pause},
		{"resume", "resume", Resume},
		{"destroy", "destroy", Destroy},
		{"uppercase", "RANDOM", Random},
		{"mixed case", "PaUsE", Pause},
		{"surrounding whitespace", "  destroy \n", Destroy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseUnknown(t *testing.T) {
	for _, input := range []string{"", "reset", "pa use", "random!"} {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("expected Parse(%q) to fail", input)
			continue
		}
		if !errors.Is(err, ErrUnknownCommand) {
			t.Errorf("expected ErrUnknownCommand for %q, got %v", input, err)
		}
	}
}

func TestKindString(t *testing.T) {
	if Random.String() != "random" {
		t.Errorf("expected 'random', got %q", Random.String())
	}
	if Destroy.String() != "destroy" {
		t.Errorf("expected 'destroy', got %q", Destroy.String())
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("expected 'unknown', got %q", Kind(99).String())
	}
}

func TestNames(t *testing.T) {
	names := Names()

	if !sort.StringsAreSorted(names) {
		t.Errorf("expected sorted names, got %v", names)
	}

	// Every name must round-trip through Parse.
	seen := make(map[Kind]bool, len(names))
	for _, name := range names {
		k, err := Parse(name)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", name, err)
			continue
		}
		seen[k] = true
	}
	for _, k := range []Kind{Random, FromCurrent, NewGrid, Anonymize, Pause, Resume, Destroy} {
		if !seen[k] {
			t.Errorf("expected Names to cover %v", k)
		}
	}
}

func TestDispatch(t *testing.T) {
	var got []Kind
	record := func(k Kind) func() error {
		return func() error {
			got = append(got, k)
			return nil
		}
	}

	h := Handlers{
		Random:      record(Random),
		FromCurrent: record(FromCurrent),
		NewGrid:     record(NewGrid),
		Anonymize:   record(Anonymize),
		Pause:       record(Pause),
		Resume:      record(Resume),
		Destroy:     record(Destroy),
	}

	order := []Kind{Destroy, Random, Pause, FromCurrent, Resume, NewGrid, Anonymize}
	for _, k := range order {
		if err := h.Dispatch(k); err != nil {
			t.Fatalf("Dispatch(%v) failed: %v", k, err)
		}
	}

	if len(got) != len(order) {
		t.Fatalf("expected %d handler calls, got %d", len(order), len(got))
	}
	for i, k := range order {
		if got[i] != k {
			t.Errorf("call %d routed to %v, want %v", i, got[i], k)
		}
	}
}

func TestDispatchUnboundHandler(t *testing.T) {
	h := Handlers{Random: func() error { return nil }}

	err := h.Dispatch(Pause)
	if err == nil {
		t.Fatal("expected an error for an unbound command")
	}
}

func TestDispatchHandlerError(t *testing.T) {
	sentinel := errors.New("boom")
	h := Handlers{Destroy: func() error { return sentinel }}

	if err := h.Dispatch(Destroy); !errors.Is(err, sentinel) {
		t.Errorf("expected the handler error to pass through, got %v", err)
	}
}

func TestDispatchUnknownKind(t *testing.T) {
	var h Handlers

	err := h.Dispatch(Kind(99))
	if err == nil {
		t.Fatal("expected an error for an out-of-set kind")
	}
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
}
