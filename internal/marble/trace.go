package marble

import (
	"fmt"
	"strings"
)

type (
	// Kind is the kind of a Notification
	Kind string

	// Notification is something an operator emitted, stamped with the
	// tick at which it was observed
	Notification struct {
		Kind  Kind
		Value string
		Tick  int
	}

	// Trace is the ordered record of a Scenario run
	Trace []Notification
)

// Notification kinds
const (
	Next     Kind = "next"
	Error    Kind = "error"
	Complete Kind = "complete"
)

// Format renders the Trace one notification per line. Ticks are only
// included on request, since they depend on scheduling
func (t Trace) Format(timeline bool) string {
	var b strings.Builder
	for _, n := range t {
		if timeline {
			fmt.Fprintf(&b, "[%3d] ", n.Tick)
		}
		b.WriteString(string(n.Kind))
		if n.Value != "" {
			b.WriteByte(' ')
			b.WriteString(n.Value)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Values returns the values of the Trace's Next notifications
func (t Trace) Values() []string {
	var res []string
	for _, n := range t {
		if n.Kind == Next {
			res = append(res, n.Value)
		}
	}
	return res
}
