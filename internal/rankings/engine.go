// Package rankings computes weekly dense rankings for clips and campaigns:
// pull pre-aggregated data from the clip-service, sort by the defined
// ordering, assign 1-based contiguous ranks, and upsert into the local
// ranking tables.
package rankings

import (
	"context"
	"sort"
	"time"

	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/pkg/logger"
	"github.com/clipdeck/statistics-service/pkg/metrics"
)

// Engine computes and persists weekly rankings.
type Engine struct {
	clipService *peers.ClipServiceClient
	repo        models.RankingRepository
	log         *logger.Logger
	m           *metrics.Metrics
}

// New builds an Engine.
func New(clipService *peers.ClipServiceClient, repo models.RankingRepository, log *logger.Logger, m *metrics.Metrics) *Engine {
	return &Engine{clipService: clipService, repo: repo, log: log, m: m}
}

// CurrentWeek returns (weekStart, weekEnd) for now, Monday-start.
func CurrentWeek(now time.Time) (time.Time, time.Time) {
	start := mondayOf(now)
	return start, sundayOf(start)
}

// ComputeClipRankings fetches approved clip stats for the week starting
// weekStart, sorts by views DESC, engagement DESC, assigns dense ranks and
// upserts. Empty input returns silently.
func (e *Engine) ComputeClipRankings(ctx context.Context, weekStart time.Time) error {
	start := time.Now()
	weekEnd := sundayOf(weekStart)

	clips, err := e.clipService.GetApprovedForRankings(ctx, weekStart, weekEnd)
	if err != nil {
		e.m.RecordRankingRun("clip", "error", time.Since(start))
		return err
	}
	if len(clips) == 0 {
		e.m.RecordRankingRun("clip", "success", time.Since(start))
		return nil
	}

	sort.SliceStable(clips, func(i, j int) bool {
		if clips[i].Views != clips[j].Views {
			return clips[i].Views > clips[j].Views
		}
		return clips[i].Engagement > clips[j].Engagement
	})

	rows := make([]models.WeeklyClipRanking, len(clips))
	for i, c := range clips {
		rows[i] = models.WeeklyClipRanking{
			WeekStart:    weekStart,
			SubmissionID: c.SubmissionID,
			WeekEnd:      weekEnd,
			Platform:     c.Platform,
			Views:        c.Views,
			Likes:        c.Likes,
			Engagement:   c.Engagement,
			Rank:         i + 1,
		}
	}

	if err := e.repo.UpsertClipRankings(rows); err != nil {
		e.m.RecordRankingRun("clip", "error", time.Since(start))
		return err
	}
	e.m.RecordRankingRun("clip", "success", time.Since(start))
	return nil
}

// ComputeCampaignRankings is the campaign-level analogue of
// ComputeClipRankings, sorted by totalViews DESC, avgEngagement DESC.
func (e *Engine) ComputeCampaignRankings(ctx context.Context, weekStart time.Time) error {
	start := time.Now()
	weekEnd := sundayOf(weekStart)

	campaigns, err := e.clipService.GetCampaignStatsForRankings(ctx, weekStart, weekEnd)
	if err != nil {
		e.m.RecordRankingRun("campaign", "error", time.Since(start))
		return err
	}
	if len(campaigns) == 0 {
		e.m.RecordRankingRun("campaign", "success", time.Since(start))
		return nil
	}

	sort.SliceStable(campaigns, func(i, j int) bool {
		if campaigns[i].TotalViews != campaigns[j].TotalViews {
			return campaigns[i].TotalViews > campaigns[j].TotalViews
		}
		return campaigns[i].AvgEngagement > campaigns[j].AvgEngagement
	})

	rows := make([]models.WeeklyCampaignRanking, len(campaigns))
	for i, c := range campaigns {
		rows[i] = models.WeeklyCampaignRanking{
			WeekStart:     weekStart,
			CampaignID:    c.CampaignID,
			WeekEnd:       weekEnd,
			TotalViews:    c.TotalViews,
			TotalLikes:    c.TotalLikes,
			AvgEngagement: c.AvgEngagement,
			ClipsCount:    c.ClipsCount,
			Rank:          i + 1,
		}
	}

	if err := e.repo.UpsertCampaignRankings(rows); err != nil {
		e.m.RecordRankingRun("campaign", "error", time.Since(start))
		return err
	}
	e.m.RecordRankingRun("campaign", "success", time.Since(start))
	return nil
}
