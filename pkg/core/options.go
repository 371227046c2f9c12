package core

import "time"

// Options holds per-operation settings for Push, Bury, and Release.
type Options struct {
	Delay   time.Duration
	At      *time.Time
	Message string
	Trace   string
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{}
}

// ScheduledFor resolves the scheduled time the options describe. An exact
// At wins over Delay; with neither set the result is now.
func (o *Options) ScheduledFor(now time.Time) time.Time {
	if o.At != nil {
		return *o.At
	}
	return now.Add(o.Delay)
}

// Option modifies Options.
type Option interface {
	Apply(*Options)
}

type optionFunc func(*Options)

func (f optionFunc) Apply(o *Options) { f(o) }

// Delay schedules the job for now plus d.
func Delay(d time.Duration) Option {
	return optionFunc(func(o *Options) {
		o.Delay = d
	})
}

// At schedules the job for an exact time.
func At(t time.Time) Option {
	return optionFunc(func(o *Options) {
		o.At = &t
	})
}

// Failure attaches the diagnostics Bury records on the row.
func Failure(message, trace string) Option {
	return optionFunc(func(o *Options) {
		o.Message = message
		o.Trace = trace
	})
}

// PurgeOptions override the engine's configured retentions for one purge.
type PurgeOptions struct {
	Deleted *Retention
	Buried  *Retention
}

// PurgeOption modifies PurgeOptions.
type PurgeOption interface {
	Apply(*PurgeOptions)
}

type purgeOptionFunc func(*PurgeOptions)

func (f purgeOptionFunc) Apply(o *PurgeOptions) { f(o) }

// PurgeDeleted overrides the retention applied to deleted rows.
func PurgeDeleted(r Retention) PurgeOption {
	return purgeOptionFunc(func(o *PurgeOptions) {
		o.Deleted = &r
	})
}

// PurgeBuried overrides the retention applied to buried rows.
func PurgeBuried(r Retention) PurgeOption {
	return purgeOptionFunc(func(o *PurgeOptions) {
		o.Buried = &r
	})
}
