// Package jobs holds the scheduled background work.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"go-retail-pos/internal/store"
)

// StartLowStockSweep schedules a periodic pass over the catalog that logs
// every product below its reorder threshold. The returned cron is already
// running; stop it on shutdown.
func StartLowStockSweep(spec string, repo store.Repository) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		products, err := repo.ListLowStock(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("low-stock sweep failed")
			return
		}
		for _, p := range products {
			log.Warn().
				Uint("product_id", p.ID).
				Str("name", p.Name).
				Int("stock", p.Stock).
				Int("min_stock", p.MinStock).
				Msg("product below reorder threshold")
		}
		log.Info().Int("below_threshold", len(products)).Msg("low-stock sweep done")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
