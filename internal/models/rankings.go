package models

import "time"

// WeeklyClipRanking is one clip's rank within a calendar week, keyed by
// (week_start, submission_id). Rows are upserted by RankingsEngine and
// never deleted.
type WeeklyClipRanking struct {
	WeekStart    time.Time `json:"weekStart" gorm:"primaryKey;column:week_start;type:date"`
	SubmissionID string    `json:"submissionId" gorm:"primaryKey;column:submission_id;type:varchar(36)"`
	WeekEnd      time.Time `json:"weekEnd" gorm:"column:week_end;type:date;not null"`
	Platform     string    `json:"platform" gorm:"column:platform;type:varchar(20);not null"`
	Views        int64     `json:"views" gorm:"column:views;not null;default:0"`
	Likes        int64     `json:"likes" gorm:"column:likes;not null;default:0"`
	Engagement   float64   `json:"engagement" gorm:"column:engagement;type:decimal(10,6);not null;default:0"`
	Rank         int       `json:"rank" gorm:"column:rank;not null"`
}

func (WeeklyClipRanking) TableName() string { return "weekly_clip_ranking" }

// WeeklyCampaignRanking is one campaign's rank within a calendar week, keyed
// by (week_start, campaign_id).
type WeeklyCampaignRanking struct {
	WeekStart     time.Time `json:"weekStart" gorm:"primaryKey;column:week_start;type:date"`
	CampaignID    string    `json:"campaignId" gorm:"primaryKey;column:campaign_id;type:varchar(36)"`
	WeekEnd       time.Time `json:"weekEnd" gorm:"column:week_end;type:date;not null"`
	TotalViews    int64     `json:"totalViews" gorm:"column:total_views;not null;default:0"`
	TotalLikes    int64     `json:"totalLikes" gorm:"column:total_likes;not null;default:0"`
	AvgEngagement float64   `json:"avgEngagement" gorm:"column:avg_engagement;type:decimal(10,6);not null;default:0"`
	ClipsCount    int       `json:"clipsCount" gorm:"column:clips_count;not null;default:0"`
	Rank          int       `json:"rank" gorm:"column:rank;not null"`
}

func (WeeklyCampaignRanking) TableName() string { return "weekly_campaign_ranking" }

// RankableClip is the pre-aggregated input RankingsEngine sorts and ranks
// into WeeklyClipRanking rows; it is what clip-service returns for
// approved-for-rankings.
type RankableClip struct {
	SubmissionID string
	Platform     string
	Views        int64
	Likes        int64
	Engagement   float64
}

// RankableCampaign is the pre-aggregated input for WeeklyCampaignRanking.
type RankableCampaign struct {
	CampaignID    string
	TotalViews    int64
	TotalLikes    int64
	AvgEngagement float64
	ClipsCount    int
}

// RankingRepository persists the weekly ranking tables. Upsert is keyed on
// the table's full primary key; RankingsEngine is the sole writer.
type RankingRepository interface {
	UpsertClipRankings(rows []WeeklyClipRanking) error
	UpsertCampaignRankings(rows []WeeklyCampaignRanking) error
	GetClipRankings(weekStart time.Time, platform string, limit int) ([]WeeklyClipRanking, error)
	GetCampaignRankings(weekStart time.Time, limit int) ([]WeeklyCampaignRanking, error)
}
