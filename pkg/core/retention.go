package core

import (
	"fmt"
	"time"
)

// Retention controls how long terminal rows stay in the table, measured in
// minutes past their finished time. Zero disables retention entirely: the
// engine hard-removes rows instead of marking them terminal. Negative means
// rows are kept forever and purge skips them.
type Retention int

const (
	RetentionDisabled  Retention = 0
	RetentionUnlimited Retention = -1
)

// IsDisabled reports whether retention is off.
func (r Retention) IsDisabled() bool { return r == 0 }

// IsUnlimited reports whether rows are kept forever.
func (r Retention) IsUnlimited() bool { return r < 0 }

// Duration converts a positive retention to a time.Duration. Sentinel
// values convert to zero.
func (r Retention) Duration() time.Duration {
	if r <= 0 {
		return 0
	}
	return time.Duration(r) * time.Minute
}

// String renders the retention for logs and the CLI.
func (r Retention) String() string {
	switch {
	case r.IsDisabled():
		return "disabled"
	case r.IsUnlimited():
		return "unlimited"
	default:
		return fmt.Sprintf("%dm", int(r))
	}
}
