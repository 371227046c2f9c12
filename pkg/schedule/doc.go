// Package schedule provides scheduling implementations for recurring work.
//
// This package includes:
//   - Schedule interface for computing next run times
//   - Every() for fixed-interval schedules
//   - Daily() for daily schedules at a specific time
//   - Weekly() for weekly schedules on a specific day and time
//   - Cron() and ParseCron() for cron expression-based schedules
//
// The maintain package consumes these to drive its sweep cadence.
//
// Most users should import the root package github.com/groundq/groundq
// which re-exports these functions.
package schedule
