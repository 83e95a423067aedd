package cause

import (
	"fmt"
	"runtime"
)

// Defect wraps an unexpected failure, such as a recovered panic, together
// with the goroutine stack captured where it was raised. Defects are not
// matched by typed-failure recovery
type Defect struct {
	Value any
	Stack string
}

const maxStackSize = 8192

func newDefect(v any) *Defect {
	buf := make([]byte, maxStackSize)
	n := runtime.Stack(buf, false)
	return &Defect{
		Value: v,
		Stack: string(buf[:n]),
	}
}

func (d *Defect) Error() string {
	return fmt.Sprintf("defect: %v\n\n%s", d.Value, d.Stack)
}

// Unwrap returns the panic value when it is itself an error
func (d *Defect) Unwrap() error {
	if err, ok := d.Value.(error); ok {
		return err
	}
	return nil
}
