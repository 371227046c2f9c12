package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Record is a job row as persisted in the queue table. Column names follow
// GORM's defaults and are part of the on-disk format; other producers and
// consumers of the same table rely on them.
type Record struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	Queue     string     `gorm:"size:255;not null;index:idx_jobs_claim,priority:1"`
	Status    Status     `gorm:"not null;index:idx_jobs_claim,priority:2"`
	Created   time.Time  `gorm:"not null"`
	Scheduled time.Time  `gorm:"not null;index:idx_jobs_claim,priority:3"`
	Executed  *time.Time
	Finished  *time.Time
	Data      string  `gorm:"type:text;not null"`
	Message   *string `gorm:"type:text"`
	Trace     *string `gorm:"type:text"`
}

// Payload is the envelope stored in a record's data column. The engine
// interprets only class, the identifier used to reconstruct the job's
// executable type; content passes through opaque. Unknown envelope fields
// are tolerated on decode.
type Payload struct {
	Class   string          `json:"class"`
	Content json.RawMessage `json:"content"`
}

// Job is the in-memory handle for a queued job. Producers build one with
// NewJob and hand it to Push, which assigns ID. Consumers receive one from
// Pop and pass it back to Delete, Bury, or Release.
type Job struct {
	ID      int64
	Queue   string
	Class   string
	Content json.RawMessage
}

// NewJob builds a job of the given class, marshaling content to JSON.
func NewJob(class string, content any) (*Job, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("groundq: marshal job content: %w", err)
	}
	return &Job{Class: class, Content: raw}, nil
}

// SetContent replaces the job's content, marshaling v to JSON. Release
// persists whatever the job carries at call time, so mutating content
// before releasing lets a retry resume from updated state.
func (j *Job) SetContent(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("groundq: marshal job content: %w", err)
	}
	j.Content = raw
	return nil
}

// UnmarshalContent decodes the job's content into v.
func (j *Job) UnmarshalContent(v any) error {
	if err := json.Unmarshal(j.Content, v); err != nil {
		return fmt.Errorf("groundq: unmarshal job content: %w", err)
	}
	return nil
}

// Envelope serializes the job's payload for storage.
func (j *Job) Envelope() (string, error) {
	raw, err := json.Marshal(Payload{Class: j.Class, Content: j.Content})
	if err != nil {
		return "", fmt.Errorf("groundq: marshal job payload: %w", err)
	}
	return string(raw), nil
}

// DecodeJob reconstructs a job handle from a persisted record. A record
// whose data cannot be decoded, or that names no class, yields a
// *PayloadError; the record itself is left as it is.
func DecodeJob(rec *Record) (*Job, error) {
	var p Payload
	if err := json.Unmarshal([]byte(rec.Data), &p); err != nil {
		return nil, &PayloadError{ID: rec.ID, Err: err}
	}
	if p.Class == "" {
		return nil, &PayloadError{ID: rec.ID, Err: errors.New("payload names no class")}
	}
	return &Job{ID: rec.ID, Queue: rec.Queue, Class: p.Class, Content: p.Content}, nil
}
