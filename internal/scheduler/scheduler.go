// Package scheduler drives the two periodic jobs the pipeline needs beyond
// event-triggered work: hourly batch refresh and nightly ranking
// recomputation.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/clipdeck/statistics-service/internal/collector"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/internal/rankings"
	"github.com/clipdeck/statistics-service/pkg/logger"
)

// Scheduler wraps a robfig/cron runner with the two jobs the pipeline
// needs. Job errors are logged and never propagate — a bad run must not
// crash the process.
type Scheduler struct {
	cron        *cron.Cron
	clipService *peers.ClipServiceClient
	collector   *collector.StatsCollector
	rankings    *rankings.Engine
	log         *logger.Logger
}

// New builds a Scheduler without registering or starting anything; Start
// registers its two entries and begins running them.
func New(clipService *peers.ClipServiceClient, coll *collector.StatsCollector, rankingsEngine *rankings.Engine, log *logger.Logger) *Scheduler {
	s := &Scheduler{
		cron:        cron.New(),
		clipService: clipService,
		collector:   coll,
		rankings:    rankingsEngine,
		log:         log,
	}
	return s
}

// Start registers the hourly batch-refresh and midnight ranking jobs and
// starts the cron runner.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("0 * * * *", func() { s.runHourlyBatchRefresh(ctx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 * * *", func() { s.runNightlyRankings(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron runner, waiting for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runHourlyBatchRefresh(ctx context.Context) {
	summaries, err := s.clipService.NeedsRefresh(ctx)
	if err != nil {
		s.log.Error("scheduler: fetch needs-refresh failed", "error", err)
		return
	}

	clips := make([]collector.ClipRef, 0, len(summaries))
	for _, cl := range summaries {
		platform, ok := models.ParsePlatform(cl.Platform)
		if !ok {
			s.log.Warn("scheduler: skipping clip with unknown platform", "submissionId", cl.SubmissionID, "platform", cl.Platform)
			continue
		}
		clips = append(clips, collector.ClipRef{SubmissionID: cl.SubmissionID, Platform: platform, VideoID: cl.PlatformVideoID})
	}
	if len(clips) > collector.BatchSizeLimit {
		clips = clips[:collector.BatchSizeLimit]
	}

	result := s.collector.BatchRefreshStats(ctx, clips)
	s.log.Info("scheduler: hourly batch refresh complete", "success", result.SuccessCount, "failed", result.FailCount)
}

func (s *Scheduler) runNightlyRankings(ctx context.Context) {
	weekStart, _ := rankings.CurrentWeek(time.Now())

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := s.rankings.ComputeClipRankings(ctx, weekStart); err != nil {
			s.log.Error("scheduler: clip ranking calculation failed", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := s.rankings.ComputeCampaignRankings(ctx, weekStart); err != nil {
			s.log.Error("scheduler: campaign ranking calculation failed", "error", err)
		}
	}()
	wg.Wait()
}
