// Package besteffort models side effects whose failure must be reported but
// must never fail the operation that triggered them (audit writes, upload
// archiving).
//
//	res := besteffort.Run("archive upload", func() error { ... })
//	res.Log()
package besteffort

import "log"

// Result is the outcome of a best-effort operation.
type Result struct {
	Op  string
	Err error
}

// Run executes fn and captures its error without propagating it.
func Run(op string, fn func() error) Result {
	return Result{Op: op, Err: fn()}
}

// Skipped returns a successful result for an operation that had nothing to do.
func Skipped(op string) Result {
	return Result{Op: op}
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Log writes the failure, if any, to the standard logger.
func (r Result) Log() {
	if r.Err != nil {
		log.Printf("Best-effort %s failed: %v", r.Op, r.Err)
	}
}
