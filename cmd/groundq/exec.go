package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/groundq/groundq/pkg/core"
	"github.com/groundq/groundq/pkg/jobctx"
)

// execRetryExit is EX_TEMPFAIL from sysexits.h: the command asks for the
// job to be released and retried later.
const execRetryExit = 75

const (
	execRetryDelay = time.Minute
	execOutputTail = 2048
)

// newExecHandler adapts an argv into a job handler. The job's content is
// written to the command's stdin and its identity is passed in GROUNDQ_*
// environment variables. Exit 0 finishes the job, exit 75 releases it for
// a retry, any other failure buries it with the command's output tail as
// the diagnostic.
func newExecHandler(logger *slog.Logger, class string, argv []string) func(context.Context, json.RawMessage) error {
	return func(ctx context.Context, content json.RawMessage) error {
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Stdin = bytes.NewReader(content)

		var output bytes.Buffer
		cmd.Stdout = &output
		cmd.Stderr = &output

		cmd.Env = append(os.Environ(),
			"GROUNDQ_JOB_ID="+strconv.FormatInt(jobctx.JobIDFromContext(ctx), 10),
			"GROUNDQ_JOB_CLASS="+class,
			"GROUNDQ_JOB_QUEUE="+jobQueueName(ctx),
			"GROUNDQ_WORKER_ID="+jobctx.WorkerIDFromContext(ctx),
		)

		start := time.Now()
		err := cmd.Run()
		if err == nil {
			logger.Debug("command finished", "took", time.Since(start))
			return nil
		}

		// A command killed by shutdown was interrupted, not failed; report
		// the cancellation so the worker releases the job.
		if ctx.Err() != nil {
			return fmt.Errorf("%s interrupted: %w", argv[0], ctx.Err())
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == execRetryExit {
			return core.RetryAfter(execRetryDelay, fmt.Errorf("%s asked for a retry", argv[0]))
		}
		if tail := outputTail(output.Bytes()); tail != "" {
			return fmt.Errorf("%s: %w: %s", argv[0], err, tail)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
}

func jobQueueName(ctx context.Context) string {
	if job := jobctx.JobFromContext(ctx); job != nil {
		return job.Queue
	}
	return ""
}

func outputTail(out []byte) string {
	out = bytes.TrimSpace(out)
	if len(out) > execOutputTail {
		out = out[len(out)-execOutputTail:]
	}
	return string(out)
}
