package core

import "fmt"

// Status represents the lifecycle state of a job record. It is persisted as
// a small integer; the values are part of the on-disk format shared with
// other readers of the table and must not be renumbered.
type Status int8

const (
	StatusPending Status = 1 // waiting to be claimed once scheduled has passed
	StatusRunning Status = 2 // claimed by a consumer
	StatusDeleted Status = 3 // finished successfully, retained until purge
	StatusBuried  Status = 4 // failed permanently, retained for inspection
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusDeleted:
		return "deleted"
	case StatusBuried:
		return "buried"
	default:
		return fmt.Sprintf("status(%d)", int8(s))
	}
}

// Terminal reports whether the status marks a finished row, one that purge
// may remove once its retention lapses.
func (s Status) Terminal() bool {
	return s == StatusDeleted || s == StatusBuried
}
