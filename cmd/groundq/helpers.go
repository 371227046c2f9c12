package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/groundq/groundq/pkg/core"
	"github.com/groundq/groundq/pkg/queue"
)

func parseJobID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid job id %q", arg)
	}
	return id, nil
}

// jobByID builds an operable handle for the row, falling back to a bare
// handle when the payload is undecodable so poison rows can still be
// deleted or buried.
func jobByID(ctx context.Context, q *queue.Queue, id int64) (*core.Job, error) {
	job, err := q.Peek(ctx, id)
	if err != nil {
		var payloadErr *core.PayloadError
		if errors.As(err, &payloadErr) {
			return &core.Job{ID: id}, nil
		}
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("job %d not found", id)
		}
		return nil, err
	}
	return job, nil
}

func describeStale(err error, id int64, verb string) error {
	if errors.Is(err, core.ErrStale) {
		return fmt.Errorf("job %d is not RUNNING; only a running job can be %s", id, verb)
	}
	return err
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}

func stringOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// dedupe removes repeated entries, keeping first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
