package scheduler

import (
	"fmt"
	"time"

	"github.com/ikkim/amazocart-backend/internal/app/service"
	"github.com/ikkim/amazocart-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// HotCacheScheduler keeps the precomputed product lists fresh: one warm pass
// at startup, then periodic refreshes.
type HotCacheScheduler struct {
	cron           *cron.Cron
	catalogService service.CatalogService
	interval       time.Duration
}

func NewHotCacheScheduler(catalogService service.CatalogService, interval time.Duration) *HotCacheScheduler {
	return &HotCacheScheduler{
		cron:           cron.New(),
		catalogService: catalogService,
		interval:       interval,
	}
}

// Start warms the hot tier in the background and schedules the refresh loop.
// The warm pass must not block startup: the server serves from the store
// until the first sweep lands.
func (s *HotCacheScheduler) Start() error {
	go s.catalogService.WarmHotCache()

	spec := fmt.Sprintf("@every %s", s.interval)
	_, err := s.cron.AddFunc(spec, func() {
		s.catalogService.RefreshHotCache()
	})
	if err != nil {
		logger.Error("Failed to schedule hot cache refresh", err)
		return err
	}

	s.cron.Start()
	logger.Info("Hot cache scheduler started", map[string]interface{}{
		"interval": s.interval.String(),
	})
	return nil
}

func (s *HotCacheScheduler) Stop() {
	logger.Info("Stopping hot cache scheduler...")
	s.cron.Stop()
}
