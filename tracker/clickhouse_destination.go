package tracker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"mamaezen/api/models"
	"mamaezen/api/store"
)

// ClickHouseDestination persists every fanned-out event to the funnel_events
// table, feeding the stats dashboard.
type ClickHouseDestination struct {
	store   *store.AnalyticsStore
	timeout time.Duration
}

func NewClickHouseDestination(s *store.AnalyticsStore) *ClickHouseDestination {
	return &ClickHouseDestination{store: s, timeout: 5 * time.Second}
}

func (d *ClickHouseDestination) Name() string { return "clickhouse" }

func (d *ClickHouseDestination) Send(env Envelope) error {
	raw, err := json.Marshal(env.Event.Data)
	if err != nil {
		raw = nil
	}

	row := models.FunnelEvent{
		EventID:         uuid.New().String(),
		Event:           string(env.Event.Event),
		Category:        env.Event.Event.Category(),
		UserID:          env.UserID,
		SessionID:       env.SessionID,
		Timestamp:       time.UnixMilli(env.Event.TimestampMs).UTC(),
		FunnelStep:      env.Step,
		EngagementScore: int32(env.Score),
		TimeOnPageSec:   int64(env.TimeOnPage),
		Referrer:        env.Referrer,
		UserAgent:       env.UserAgent,
		IPAddress:       env.RemoteIP,
		EventData:       raw,
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	return d.store.InsertFunnelEvents(ctx, []models.FunnelEvent{row})
}
