package sim

import "fmt"

// Diagnostics accumulates setup and data-quality findings. Expected problems
// (missing price files, fallback dates) land here instead of aborting the
// run; callers inspect Errors and OverallPass, never recover from panics.
type Diagnostics struct {
	Errors   []string
	Warnings []string
}

func (d *Diagnostics) Errorf(format string, args ...interface{}) {
	d.Errors = append(d.Errors, fmt.Sprintf(format, args...))
}

func (d *Diagnostics) Warnf(format string, args ...interface{}) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// OverallPass is true when no errors were recorded. Warnings alone do not
// fail a run.
func (d *Diagnostics) OverallPass() bool { return len(d.Errors) == 0 }
