package models

import "time"

// PlatformStats is the normalized counter tuple an adapter returns. It is an
// immutable value produced fresh on every fetch; counters are always
// non-negative.
type PlatformStats struct {
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	Comments     int64     `json:"comments"`
	Shares       int64     `json:"shares"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Title        string    `json:"title,omitempty"`
	Author       string    `json:"author,omitempty"`
	PublishedAt  time.Time `json:"publishedAt,omitempty"`
}

// Engagement computes (likes + comments) / views, 0 when views is 0.
func (p PlatformStats) Engagement() float64 {
	if p.Views <= 0 {
		return 0
	}
	return float64(p.Likes+p.Comments) / float64(p.Views)
}

// StatsHistoryEntry is one point in a clip's time-series history, as
// supplied by the clip-service. Histories are newest-first: history[0] is
// the most recent sample.
type StatsHistoryEntry struct {
	Views      int64     `json:"views"`
	Likes      int64     `json:"likes"`
	Comments   int64     `json:"comments"`
	Shares     int64     `json:"shares"`
	RecordedAt time.Time `json:"recordedAt"`
}
