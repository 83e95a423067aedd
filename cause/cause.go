package cause

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

//go:generate go run golang.org/x/tools/cmd/stringer -type=Kind

type (
	// Cause is a structured failure. It can describe a typed failure, a
	// defect, an interruption, or any combination of them that happened
	// in parallel or in sequence. A nil *Cause means success
	Cause struct {
		kind   Kind
		err    error
		defect *Defect
		fiber  uuid.UUID
		left   *Cause
		right  *Cause
	}

	// Kind identifies the shape of a Cause node
	Kind uint8

	// Interrupted is the error carried by a context that was cancelled on
	// behalf of a fiber. By identifies the interrupting fiber, and is
	// uuid.Nil when the interruption came from outside any fiber
	Interrupted struct {
		By uuid.UUID
	}
)

// Cause kinds
const (
	Empty Kind = iota
	Fail
	Die
	Interrupt
	Parallel
	Sequential
)

var empty = &Cause{kind: Empty}

// NewFail returns a Cause describing a typed, recoverable failure
func NewFail(err error) *Cause {
	if err == nil {
		return empty
	}
	return &Cause{kind: Fail, err: err}
}

// NewDie returns a Cause describing a defect. The stack of the calling
// goroutine is captured unless v is already a *Defect
func NewDie(v any) *Cause {
	if d, ok := v.(*Defect); ok {
		return &Cause{kind: Die, defect: d}
	}
	return &Cause{kind: Die, defect: newDefect(v)}
}

// NewInterrupt returns a Cause describing an interruption performed by the
// identified fiber
func NewInterrupt(by uuid.UUID) *Cause {
	return &Cause{kind: Interrupt, fiber: by}
}

// Both combines two Causes that occurred concurrently. Empty and nil
// operands are elided
func Both(left, right *Cause) *Cause {
	return combine(Parallel, left, right)
}

// Then combines two Causes where right occurred after left. Empty and nil
// operands are elided
func Then(left, right *Cause) *Cause {
	return combine(Sequential, left, right)
}

func combine(k Kind, left, right *Cause) *Cause {
	switch {
	case left.IsEmpty():
		if right == nil {
			return empty
		}
		return right
	case right.IsEmpty():
		return left
	default:
		return &Cause{kind: k, left: left, right: right}
	}
}

// FromError classifies an error as a Cause. A nil error yields nil
func FromError(err error) *Cause {
	if err == nil {
		return nil
	}
	var c *Cause
	if errors.As(err, &c) {
		return c
	}
	var d *Defect
	if errors.As(err, &d) {
		return NewDie(d)
	}
	var i *Interrupted
	if errors.As(err, &i) {
		return NewInterrupt(i.By)
	}
	if errors.Is(err, context.Canceled) {
		return NewInterrupt(uuid.Nil)
	}
	return NewFail(err)
}

// FromContext returns the Cause of a cancelled Context, or nil if the
// Context is still live. A deadline becomes a typed failure, everything
// else an interruption
func FromContext(ctx context.Context) *Cause {
	if ctx.Err() == nil {
		return nil
	}
	cc := context.Cause(ctx)
	if errors.Is(cc, context.DeadlineExceeded) {
		return NewFail(cc)
	}
	if c := FromError(cc); c != nil && c.kind != Fail {
		return c
	}
	return NewInterrupt(uuid.Nil)
}

// Err converts a possibly nil *Cause into an error, avoiding the typed nil
// interface trap
func Err(c *Cause) error {
	if c == nil {
		return nil
	}
	return c
}

// Kind returns the shape of this Cause node
func (c *Cause) Kind() Kind {
	if c == nil {
		return Empty
	}
	return c.kind
}

// IsEmpty returns whether the Cause carries no failure at all
func (c *Cause) IsEmpty() bool {
	if c == nil {
		return true
	}
	switch c.kind {
	case Empty:
		return true
	case Parallel, Sequential:
		return c.left.IsEmpty() && c.right.IsEmpty()
	default:
		return false
	}
}

// Failures returns every typed failure, in order of occurrence
func (c *Cause) Failures() []error {
	var res []error
	c.walk(func(n *Cause) {
		if n.kind == Fail {
			res = append(res, n.err)
		}
	})
	return res
}

// Defects returns every defect, in order of occurrence
func (c *Cause) Defects() []*Defect {
	var res []*Defect
	c.walk(func(n *Cause) {
		if n.kind == Die {
			res = append(res, n.defect)
		}
	})
	return res
}

// Interruptors returns the ids of every interrupting fiber
func (c *Cause) Interruptors() []uuid.UUID {
	var res []uuid.UUID
	c.walk(func(n *Cause) {
		if n.kind == Interrupt {
			res = append(res, n.fiber)
		}
	})
	return res
}

// IsInterrupted returns whether any interruption is part of this Cause
func (c *Cause) IsInterrupted() bool {
	return len(c.Interruptors()) != 0
}

// IsInterruptedOnly returns whether this Cause consists of nothing but
// interruptions
func (c *Cause) IsInterruptedOnly() bool {
	return c.IsInterrupted() &&
		len(c.Failures()) == 0 && len(c.Defects()) == 0
}

// IsFailure returns whether a typed failure is part of this Cause
func (c *Cause) IsFailure() bool {
	return len(c.Failures()) != 0
}

// Squash picks the most significant error of the Cause: the first typed
// failure, then the first defect, then the interruption
func (c *Cause) Squash() error {
	if f := c.Failures(); len(f) != 0 {
		return f[0]
	}
	if d := c.Defects(); len(d) != 0 {
		return d[0]
	}
	if i := c.Interruptors(); len(i) != 0 {
		return &Interrupted{By: i[0]}
	}
	return nil
}

// Unwrap exposes every constituent error to errors.Is and errors.As
func (c *Cause) Unwrap() []error {
	var res []error
	c.walk(func(n *Cause) {
		switch n.kind {
		case Fail:
			res = append(res, n.err)
		case Die:
			res = append(res, n.defect)
		case Interrupt:
			res = append(res, &Interrupted{By: n.fiber})
		}
	})
	return res
}

func (c *Cause) Error() string {
	if c == nil {
		return "<nil>"
	}
	switch c.kind {
	case Empty:
		return "empty cause"
	case Fail:
		return c.err.Error()
	case Die:
		return fmt.Sprintf("defect: %v", c.defect.Value)
	case Interrupt:
		return (&Interrupted{By: c.fiber}).Error()
	case Parallel:
		return "(" + c.left.Error() + " | " + c.right.Error() + ")"
	default:
		return "(" + c.left.Error() + " ; " + c.right.Error() + ")"
	}
}

// String renders the Cause as a multi-line tree, useful in logs
func (c *Cause) String() string {
	var b strings.Builder
	c.render(&b, 0)
	return b.String()
}

func (c *Cause) render(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(c.Kind().String())
	switch c.Kind() {
	case Fail, Die, Interrupt:
		b.WriteString(": ")
		b.WriteString(c.Error())
		b.WriteByte('\n')
	case Parallel, Sequential:
		b.WriteByte('\n')
		c.left.render(b, depth+1)
		c.right.render(b, depth+1)
	default:
		b.WriteByte('\n')
	}
}

func (c *Cause) walk(fn func(*Cause)) {
	if c == nil {
		return
	}
	switch c.kind {
	case Parallel, Sequential:
		c.left.walk(fn)
		c.right.walk(fn)
	default:
		fn(c)
	}
}

func (i *Interrupted) Error() string {
	if i.By == uuid.Nil {
		return "interrupted"
	}
	return fmt.Sprintf("interrupted by fiber %s", i.By)
}

// Is allows an Interrupted to match context.Canceled
func (i *Interrupted) Is(target error) bool {
	return target == context.Canceled
}
