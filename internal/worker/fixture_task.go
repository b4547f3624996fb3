package worker

import (
	"context"
	"time"

	"github.com/ducttapeprodigy/boilerplate/internal/fixture"
	"github.com/ducttapeprodigy/boilerplate/internal/log"
	"github.com/ducttapeprodigy/boilerplate/internal/metrics"
)

// FixtureRefreshTaskID names the scheduled fixture job
const FixtureRefreshTaskID = "fixture-refresh"

// FixtureRefreshTask regenerates a forest with params and writes it to
// output, picking the format from the file extension. An unseeded params
// yields a new forest on every run.
func FixtureRefreshTask(params fixture.Params, output string, maxRecords int, m *metrics.Metrics) TaskHandler {
	return func(ctx context.Context, taskID string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		records, err := params.Generate(fixture.WithMaxRecords(maxRecords))
		m.ObserveFixture("scheduler", len(records), time.Since(start), err)
		if err != nil {
			return err
		}

		if err := fixture.SaveFile(output, records, fixture.FormatFromPath(output)); err != nil {
			return err
		}

		log.Info("Fixture file refreshed", "task_id", taskID, "path", output, "records", len(records))
		return nil
	}
}
