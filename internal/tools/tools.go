//go:build tools

// Package tools pins the versions of the code generation and lint tools
// used by this module
package tools

import (
	_ "golang.org/x/tools/cmd/stringer"
	_ "honnef.co/go/tools/cmd/staticcheck"
)
