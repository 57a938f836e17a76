// api/handlers/track_handlers.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mamaezen/api/models"
	"mamaezen/api/store"
	"mamaezen/api/tracker"
)

type TrackHandlers struct {
	Manager        *tracker.Manager
	AnalyticsStore *store.AnalyticsStore
}

func NewTrackHandlers(m *tracker.Manager, s *store.AnalyticsStore) *TrackHandlers {
	return &TrackHandlers{
		Manager:        m,
		AnalyticsStore: s,
	}
}

// TrackRequest is the ingest shape: a batch of raw client events plus the
// client's current view metrics.
type TrackRequest struct {
	Events []models.ClientEvent `json:"events" binding:"required,min=1"`
	View   *models.ViewState    `json:"view"`
}

// TrackEvents ingests a batch of raw funnel events for the calling session.
// Events outside the recognized catalog are dropped, not rejected: tracking
// must never fail the page.
func (h *TrackHandlers) TrackEvents(c *gin.Context) {
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Error binding incoming track JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	t, _ := sessionTracker(c, h.Manager)
	if req.View != nil {
		t.SetView(*req.View)
	}

	tracked := 0
	for _, ev := range req.Events {
		if !ev.Event.IsValid() {
			log.Printf("Dropping unrecognized event name: %q", ev.Event)
			continue
		}
		t.Track(ev.Event, ev.Data, ev.FunnelStep)
		tracked++
	}

	c.JSON(http.StatusOK, gin.H{"tracked": tracked})
}

// LifecycleRequest reports a page lifecycle signal.
type LifecycleRequest struct {
	Signal  string            `json:"signal" binding:"required,oneof=mount focus blur activity unload"`
	PageURL string            `json:"page_url"`
	View    *models.ViewState `json:"view"`
}

// Lifecycle routes a page lifecycle signal to the session's tracker. The
// unload signal also drops the session.
func (h *TrackHandlers) Lifecycle(c *gin.Context) {
	var req LifecycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	t, sessionKey := sessionTracker(c, h.Manager)
	if req.View != nil {
		t.SetView(*req.View)
	}

	switch req.Signal {
	case "mount":
		t.OnMount(req.PageURL)
	case "focus":
		t.OnFocus()
	case "blur":
		t.OnBlur()
	case "activity":
		t.OnActivity()
	case "unload":
		t.OnUnload()
		h.Manager.Remove(sessionKey)
	}

	c.Status(http.StatusOK)
}

// Queue exposes the session's in-process event queue for inspection.
func (h *TrackHandlers) Queue(c *gin.Context) {
	t, _ := sessionTracker(c, h.Manager)
	c.JSON(http.StatusOK, gin.H{
		"session_id":       t.SessionID(),
		"funnel_history":   t.FunnelHistory(),
		"engagement_score": t.EngagementScore(),
		"events":           t.Queue(),
	})
}

// parseTimeRange reads optional RFC3339 start/end query parameters,
// defaulting to the last 7 days. It writes the error response itself and
// reports ok=false when a parameter is malformed.
func parseTimeRange(c *gin.Context) (start, end time.Time, ok bool) {
	start = time.Now().UTC().Add(-7 * 24 * time.Hour)
	end = time.Now().UTC()

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'start' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return start, end, false
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'end' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return start, end, false
		}
		end = parsed
	}
	return start, end, true
}

// GetEventCountsOverTime serves bucketed event counts, optionally filtered
// by event name.
func (h *TrackHandlers) GetEventCountsOverTime(c *gin.Context) {
	interval := c.Query("interval")
	if interval == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter is required (e.g., 'Day', 'Hour')"})
		return
	}

	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.AnalyticsStore.GetEventCountsOverTime(ctx, interval, start, end, c.Query("event"))
	if err != nil {
		log.Printf("Error getting event counts over time: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetAverageEngagement serves the mean engagement score, optionally filtered
// to one funnel step.
func (h *TrackHandlers) GetAverageEngagement(c *gin.Context) {
	stepFilter := c.Query("step")

	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	avg, err := h.AnalyticsStore.GetAverageEngagement(ctx, stepFilter, start, end)
	if err != nil {
		log.Printf("Error getting average engagement: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve engagement statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"step":              stepFilter,
		"startDate":         start.Format(time.RFC3339),
		"endDate":           end.Format(time.RFC3339),
		"averageEngagement": avg,
	})
}

// GetUniqueSessionsOverTime serves bucketed distinct session counts.
func (h *TrackHandlers) GetUniqueSessionsOverTime(c *gin.Context) {
	interval := c.Query("interval")
	if interval == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter is required (e.g., 'Day', 'Hour')"})
		return
	}

	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.AnalyticsStore.GetUniqueSessionsOverTime(ctx, interval, start, end)
	if err != nil {
		log.Printf("Error getting unique sessions over time: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetTopFunnelSteps serves the most-reached funnel steps.
func (h *TrackHandlers) GetTopFunnelSteps(c *gin.Context) {
	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	var limit uint64 = 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.AnalyticsStore.GetTopFunnelSteps(ctx, start, end, limit)
	if err != nil {
		log.Printf("Error getting top funnel steps: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top funnel steps"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetStepDropoff serves distinct sessions per funnel step in catalog order.
func (h *TrackHandlers) GetStepDropoff(c *gin.Context) {
	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.AnalyticsStore.GetStepDropoff(ctx, start, end)
	if err != nil {
		log.Printf("Error getting step dropoff: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve step dropoff statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}
