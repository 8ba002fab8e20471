package evaluator

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// DiagnosticsError carries the HCL diagnostics of a failed step.
type DiagnosticsError struct {
	Operation string
	Path      string
	Diags     hcl.Diagnostics
}

func (e *DiagnosticsError) Error() string {
	return fmt.Sprintf("HCL %s error in %q: %s", e.Operation, e.Path, e.Diags.Error())
}

// ValueConversionError reports a cty value with no Go counterpart.
type ValueConversionError struct {
	Path string
	Err  error
}

func (e *ValueConversionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("error converting value at %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("error converting cty value: %v", e.Err)
}

func (e *ValueConversionError) Unwrap() error { return e.Err }

func DiagsHasFatalErrors(diags hcl.Diagnostics) bool {
	for _, diag := range diags {
		if diag.Severity == hcl.DiagError {
			return true
		}
	}
	return false
}
