package tracker

import (
	"encoding/json"
	"slices"

	"mamaezen/api/models"
)

// FunnelHistory returns the ordered, deduplicated list of funnel steps this
// session has reached. Malformed or absent persisted state reads as empty.
func (t *Tracker) FunnelHistory() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.funnelHistory()
}

func (t *Tracker) funnelHistory() []string {
	raw, ok := t.session.Get(historyKey)
	if !ok || raw == "" {
		return nil
	}
	var history []string
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil
	}
	return history
}

// AddToFunnelHistory appends a step iff it has not been reached before.
// Insertion order reflects first-reached order; the history is append-only
// for the life of the session.
func (t *Tracker) AddToFunnelHistory(step string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.addToFunnelHistory(step)
}

func (t *Tracker) addToFunnelHistory(step string) {
	history := t.funnelHistory()
	if slices.Contains(history, step) {
		return
	}
	history = append(history, step)
	if raw, err := json.Marshal(history); err == nil {
		t.session.Set(historyKey, string(raw))
	}
}

// EngagementScore sums the catalog weights of every funnel step reached,
// clamped to 100. Steps outside the catalog contribute nothing.
func (t *Tracker) EngagementScore() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engagementScore(t.funnelHistory())
}

func (t *Tracker) engagementScore(history []string) int {
	score := 0
	for _, step := range history {
		score += models.StepWeight(step)
	}
	return min(score, 100)
}
