package scenario

import (
	"fmt"
	"io"
	"strings"
)

// Trace is the result of running a scenario.
type Trace struct {
	Scenario string `json:"scenario"`

	// Steps holds one entry per step, preceded by the state after mounting
	// (index -1).
	Steps []Entry `json:"steps"`

	// Notifications collects the visibility callbacks per trigger.
	Notifications map[string]Counts `json:"notifications"`
}

// Entry is the state of every trigger after one step.
type Entry struct {
	Index    int        `json:"index"`
	Step     string     `json:"step"`
	Elapsed  int64      `json:"elapsed_ms"`
	Triggers []Snapshot `json:"triggers"`
}

// Snapshot is one trigger's state.
type Snapshot struct {
	Name     string `json:"name"`
	Mounted  bool   `json:"mounted"`
	Visible  bool   `json:"visible"`
	State    string `json:"state"`
	Rendered bool   `json:"rendered"`
	Portal   bool   `json:"portal"`
	Left     int    `json:"left"`
	Top      int    `json:"top"`
}

// Counts lists the values passed to the visibility callbacks.
type Counts struct {
	Changes []bool `json:"changes"`
	After   []bool `json:"after"`
}

// Last returns the final entry.
func (t *Trace) Last() Entry {
	if len(t.Steps) == 0 {
		return Entry{}
	}
	return t.Steps[len(t.Steps)-1]
}

// Final returns name's snapshot after the last step.
func (t *Trace) Final(name string) (Snapshot, bool) {
	return t.Last().Lookup(name)
}

// At returns name's snapshot after step index (-1 for mount).
func (t *Trace) At(index int, name string) (Snapshot, bool) {
	for _, e := range t.Steps {
		if e.Index == index {
			return e.Lookup(name)
		}
	}
	return Snapshot{}, false
}

// Lookup returns the snapshot of name.
func (e Entry) Lookup(name string) (Snapshot, bool) {
	for _, s := range e.Triggers {
		if s.Name == name {
			return s, true
		}
	}
	return Snapshot{}, false
}

// Symbol is the one-character state marker used in text output.
func (s Snapshot) Symbol() string {
	switch {
	case !s.Mounted:
		return "x"
	case s.State == "pending-show":
		return "+"
	case s.State == "pending-hide":
		return "-"
	case s.Visible:
		return "#"
	}
	return "."
}

// WriteText writes a compact plain-text trace: one line per step with a
// state marker per trigger.
func (t *Trace) WriteText(w io.Writer) error {
	for _, e := range t.Steps {
		marks := make([]string, len(e.Triggers))
		for i, s := range e.Triggers {
			marks[i] = s.Name + "=" + s.Symbol()
		}
		if _, err := fmt.Fprintf(w, "%6dms  %-24s %s\n", e.Elapsed, e.Step, strings.Join(marks, " ")); err != nil {
			return err
		}
	}
	return nil
}
