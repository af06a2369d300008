//go:build !release

package assert

import "fmt"

// That panics with a formatted diagnostic if cond is false. Callers use it
// to guard preconditions that indicate a programmer error rather than a
// runtime failure. It compiles to a no-op in release builds.
func That(cond bool, format string, args ...any) { //nolint:goprintffuncname
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
