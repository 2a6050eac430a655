package models

import "time"

// EventTag identifies which variant an Event carries. Handlers dispatch on
// this tag rather than destructuring an untyped payload.
type EventTag string

const (
	EventClipSubmitted        EventTag = "clip.submitted"
	EventClipApproved         EventTag = "clip.approved"
	EventStatsRequested       EventTag = "stats.requested"
	EventCampaignCreated      EventTag = "campaign.created"
	EventCampaignStatusChange EventTag = "campaign.status_changed"
)

// ClipSubmittedPayload carries the fields delivered on clip.submitted.
type ClipSubmittedPayload struct {
	SubmissionID string `json:"submissionId"`
}

// ClipApprovedPayload carries the fields delivered on clip.approved.
type ClipApprovedPayload struct {
	SubmissionID    string `json:"submissionId"`
	Platform        string `json:"platform"`
	PlatformVideoID string `json:"platformVideoId"`
}

// StatsRequestedPayload carries the fields delivered on stats.requested.
type StatsRequestedPayload struct {
	SubmissionID string `json:"submissionId"`
}

// CampaignCreatedPayload carries the fields delivered on campaign.created.
type CampaignCreatedPayload struct {
	CampaignID string `json:"campaignId"`
	Title      string `json:"title"`
}

// CampaignStatusChangedPayload carries the fields delivered on
// campaign.status_changed.
type CampaignStatusChangedPayload struct {
	CampaignID string `json:"campaignId"`
	NewStatus  string `json:"newStatus"`
}

// Event is a tagged sum type: exactly one of the payload fields is non-nil,
// selected by Tag. Replaces the original's dynamic, untyped destructuring at
// the handler entry point.
type Event struct {
	Tag EventTag

	ClipSubmitted        *ClipSubmittedPayload
	ClipApproved         *ClipApprovedPayload
	StatsRequested       *StatsRequestedPayload
	CampaignCreated      *CampaignCreatedPayload
	CampaignStatusChange *CampaignStatusChangedPayload
}

// StatsUpdatedEvent is published after a successful refresh.
type StatsUpdatedEvent struct {
	ClipID     string    `json:"clipId"`
	Views      int64     `json:"views"`
	Likes      int64     `json:"likes"`
	Comments   int64     `json:"comments"`
	Shares     int64     `json:"shares"`
	Engagement float64   `json:"engagement"`
	Service    string    `json:"service"`
	Timestamp  time.Time `json:"timestamp"`
}

// BotDetectedEvent is published when BotDetector finds at least one
// significant (HIGH or MEDIUM) flag.
type BotDetectedEvent struct {
	ClipID     string    `json:"clipId"`
	CampaignID string    `json:"campaignId"`
	UserID     string    `json:"userId"`
	FlagType   FlagType  `json:"flagType"`
	Confidence float64   `json:"confidence"` // 0-1
	Evidence   string    `json:"evidence"`
	Service    string    `json:"service"`
	Timestamp  time.Time `json:"timestamp"`
}
