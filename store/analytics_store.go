// api/store/analytics_store.go
package store

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"mamaezen/api/database"
	"mamaezen/api/models"
	"mamaezen/api/utils"
)

// AnalyticsStore persists enriched funnel events to ClickHouse and serves
// the aggregate stats consumed by the dashboard.
type AnalyticsStore struct {
	DB *database.ClickHouseClient
}

type EventCountByTime struct {
	Time  time.Time `json:"time"`
	Event *string   `json:"event,omitempty"`
	Count uint64    `json:"count"`
}

func NewAnalyticsStore(chClient *database.ClickHouseClient) *AnalyticsStore {
	return &AnalyticsStore{
		DB: chClient,
	}
}

// InsertFunnelEvents writes a batch of enriched events to the funnel_events
// table. Column order must match the ClickHouse table schema exactly.
func (s *AnalyticsStore) InsertFunnelEvents(ctx context.Context, events []models.FunnelEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO funnel_events (
			event_id, event, category, user_id, session_id, timestamp, funnel_step,
			engagement_score, time_on_page_sec, referrer, user_agent, ip_address, event_data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.Event,
			event.Category,
			event.UserID,
			event.SessionID,
			event.Timestamp,
			event.FunnelStep,
			event.EngagementScore,
			event.TimeOnPageSec,
			event.Referrer,
			event.UserAgent,
			event.IPAddress,
			event.EventData,
		)
		if err != nil {
			log.Printf("Error appending event to batch (EventID: %s): %v", event.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	return nil
}

// GetEventCountsOverTime buckets event counts by the given interval,
// optionally filtered to a single event name.
func (s *AnalyticsStore) GetEventCountsOverTime(ctx context.Context, interval string, start, end time.Time, eventFilter string) ([]EventCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	args := []interface{}{start, end}
	selectCols := fmt.Sprintf("toStartOf%s(timestamp) as time_bucket, count() as total_events", interval)
	groupByCols := "time_bucket"
	whereClause := "WHERE timestamp >= ? AND timestamp <= ?"
	orderByCols := "time_bucket ASC"
	isFiltering := eventFilter != ""

	if isFiltering {
		selectCols += ", event"
		groupByCols += ", event"
		whereClause += " AND event = ?"
		args = append(args, eventFilter)
		orderByCols += ", event ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM funnel_events
		%s
		GROUP BY %s
		ORDER BY %s
	`, selectCols, whereClause, groupByCols, orderByCols)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event counts over time: %w", err)
	}
	defer rows.Close()

	var results []EventCountByTime
	for rows.Next() {
		var (
			timeBucket time.Time
			count      uint64
			eventDB    string
			current    EventCountByTime
		)

		if isFiltering {
			if err := rows.Scan(&timeBucket, &count, &eventDB); err != nil {
				log.Printf("Error scanning row for event counts over time (with event filter): %v", err)
				continue
			}
			current.Event = &eventDB
		} else {
			if err := rows.Scan(&timeBucket, &count); err != nil {
				log.Printf("Error scanning row for event counts over time (no event filter): %v", err)
				continue
			}
		}

		current.Time = timeBucket
		current.Count = count
		results = append(results, current)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during event counts over time query: %w", err)
	}

	return results, nil
}

// GetAverageEngagement returns the mean engagement score across events,
// optionally filtered to one funnel step.
func (s *AnalyticsStore) GetAverageEngagement(ctx context.Context, stepFilter string, start, end time.Time) (float64, error) {
	query := `SELECT avg(engagement_score) FROM funnel_events WHERE timestamp >= ? AND timestamp <= ?`
	args := []interface{}{start, end}

	if stepFilter != "" {
		query += ` AND funnel_step = ?`
		args = append(args, stepFilter)
	}

	var avg float64
	err := s.DB.Conn.QueryRow(ctx, query, args...).Scan(&avg)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return 0.0, nil
		}
		return 0.0, fmt.Errorf("failed to query average engagement: %w", err)
	}

	// avg() yields NaN with no matching rows, which JSON cannot carry.
	if math.IsNaN(avg) {
		return 0.0, nil
	}

	return avg, nil
}

// GetUniqueSessionsOverTime buckets distinct session counts by interval.
func (s *AnalyticsStore) GetUniqueSessionsOverTime(ctx context.Context, interval string, start, end time.Time) ([]EventCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	query := fmt.Sprintf(`
		SELECT toStartOf%s(timestamp) AS time_bucket, uniq(session_id) AS unique_sessions
		FROM funnel_events
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`, interval)

	rows, err := s.DB.Conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query unique sessions over time: %w", err)
	}
	defer rows.Close()

	var results []EventCountByTime
	for rows.Next() {
		var timeBucket time.Time
		var uniqueSessions uint64
		if err := rows.Scan(&timeBucket, &uniqueSessions); err != nil {
			log.Printf("Error scanning row for unique sessions: %v", err)
			continue
		}
		results = append(results, EventCountByTime{
			Time:  timeBucket,
			Count: uniqueSessions,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for unique sessions: %w", err)
	}

	return results, nil
}

// GetTopFunnelSteps returns the most-reached funnel steps by event volume.
func (s *AnalyticsStore) GetTopFunnelSteps(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopStepResult, error) {
	if limit == 0 {
		limit = 10
	}

	query := `
		SELECT funnel_step, count() as step_count
		FROM funnel_events
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY funnel_step
		ORDER BY step_count DESC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top funnel steps: %w", err)
	}
	defer rows.Close()

	var results []models.TopStepResult
	for rows.Next() {
		var step string
		var count uint64
		if err := rows.Scan(&step, &count); err != nil {
			log.Printf("Error scanning row for top funnel steps: %v", err)
			continue
		}
		results = append(results, models.TopStepResult{
			FunnelStep: step,
			Count:      count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top funnel steps: %w", err)
	}

	return results, nil
}

// GetStepDropoff returns distinct sessions per funnel step, the raw material
// for a drop-off chart. Steps come back in whatever order ClickHouse groups
// them; callers order by the catalog.
func (s *AnalyticsStore) GetStepDropoff(ctx context.Context, start, end time.Time) ([]models.StepDropoffResult, error) {
	query := `
		SELECT funnel_step, uniq(session_id) as sessions
		FROM funnel_events
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY funnel_step
	`
	rows, err := s.DB.Conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query step dropoff: %w", err)
	}
	defer rows.Close()

	byStep := make(map[string]uint64)
	for rows.Next() {
		var step string
		var sessions uint64
		if err := rows.Scan(&step, &sessions); err != nil {
			log.Printf("Error scanning row for step dropoff: %v", err)
			continue
		}
		byStep[step] = sessions
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for step dropoff: %w", err)
	}

	// Emit in catalog order so the chart reads top-of-funnel first.
	var results []models.StepDropoffResult
	for _, step := range models.FunnelSteps {
		results = append(results, models.StepDropoffResult{
			FunnelStep: step.Name,
			Sessions:   byStep[step.Name],
		})
	}

	return results, nil
}
