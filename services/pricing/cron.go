package pricing

import (
	"context"
	"time"

	"pricely/utils"

	"github.com/robfig/cron/v3"
)

const syncRunTimeout = 30 * time.Minute

// StartPriceSyncCron runs SyncAll on schedule (standard 5-field cron syntax).
// The caller stops the returned scheduler on shutdown.
func StartPriceSyncCron(syncer *Syncer, schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncRunTimeout)
		defer cancel()

		start := time.Now()
		report, err := syncer.SyncAll(ctx)
		if err != nil {
			utils.LogError(err, "price sync run")
			return
		}
		utils.Logger().Info().
			Int("checked", report.Checked).
			Int("updated", report.Updated).
			Int("unchanged", report.Unchanged).
			Int("failed", report.Failed).
			Dur("took", time.Since(start)).
			Msg("price sync finished")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	utils.Logger().Info().Str("schedule", schedule).Msg("price sync cron started")
	return c, nil
}
