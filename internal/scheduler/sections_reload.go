package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/sources/sections"
)

// SectionsReloader handles periodic reloading of the browse sections file
type SectionsReloader struct {
	loader        *sections.Loader
	mapper        *sections.Mapper
	catalog       *sections.Catalog
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewSectionsReloader creates a new sections reloader. A zero interval
// disables periodic reloads; manual triggers still work.
func NewSectionsReloader(
	sectionsFile string,
	catalog *sections.Catalog,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SectionsReloader {
	return &SectionsReloader{
		loader:        sections.NewLoader(sectionsFile),
		mapper:        sections.NewMapper(),
		catalog:       catalog,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads sections once, failing if they are invalid, then keeps
// them fresh in the background
func (sr *SectionsReloader) Start(ctx context.Context) error {
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	var tick <-chan time.Time
	if sr.interval > 0 {
		ticker := time.NewTicker(sr.interval)
		tick = ticker.C
		go func() {
			<-sr.stopCh
			ticker.Stop()
		}()
	}

	go func() {
		for {
			select {
			case <-tick:
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload sections",
						logger.Error(err))
				}
			case <-sr.manualTrigger:
				sr.logger.Info("manual sections reload triggered")
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload sections",
						logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (sr *SectionsReloader) Stop() {
	close(sr.stopCh)
}

// Reload parses the sections file and swaps the catalog. On error the
// previous sections stay in place.
func (sr *SectionsReloader) Reload(ctx context.Context) error {
	config, err := sr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load sections: %w", err)
	}

	rows, err := sr.mapper.MapSections(config)
	if err != nil {
		return fmt.Errorf("failed to map sections: %w", err)
	}

	sr.catalog.Replace(rows)
	sr.logger.Info("loaded browse sections",
		logger.Int("count", len(rows)))

	return nil
}
