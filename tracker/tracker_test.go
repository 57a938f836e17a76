package tracker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"mamaezen/api/models"
	"mamaezen/api/store"
)

// newTestTracker builds a tracker with in-memory stores and a fixed clock.
func newTestTracker(destinations ...Destination) *Tracker {
	t := New(DefaultConfig(), store.NewMemoryKV(), store.NewMemoryKV(), destinations)
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	t.now = func() time.Time { return fixed }
	return t
}

// recordDestination collects every envelope it receives.
type recordDestination struct {
	mu        sync.Mutex
	envelopes []Envelope
}

func (r *recordDestination) Name() string { return "record" }

func (r *recordDestination) Send(env Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envelopes = append(r.envelopes, env)
	return nil
}

func (r *recordDestination) received() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Envelope, len(r.envelopes))
	copy(out, r.envelopes)
	return out
}

// events returns the event names received, in order.
func (r *recordDestination) events() []models.EventName {
	var names []models.EventName
	for _, env := range r.received() {
		names = append(names, env.Event.Event)
	}
	return names
}

type failingDestination struct{ calls int }

func (f *failingDestination) Name() string           { return "failing" }
func (f *failingDestination) Send(_ Envelope) error { f.calls++; return errors.New("sink unavailable") }

type panickingDestination struct{ calls int }

func (p *panickingDestination) Name() string { return "panicking" }
func (p *panickingDestination) Send(_ Envelope) error {
	p.calls++
	panic("sink exploded")
}

func TestTrackEnrichmentOverridesCallerData(t *testing.T) {
	tr := newTestTracker()

	ev := tr.Track(models.EventQuizStart, map[string]any{
		"action":           "quiz_iniciado",
		"funnel_step":      "spoofed_step",
		"session_id":       "spoofed_session",
		"engagement_score": 9999,
	}, models.StepQuizIntro.Name)

	if got := ev.Data["funnel_step"]; got != models.StepQuizIntro.Name {
		t.Errorf("funnel_step = %v, want %q", got, models.StepQuizIntro.Name)
	}
	if got := ev.Data["session_id"]; got != tr.SessionID() {
		t.Errorf("session_id = %v, want the tracker's session id %q", got, tr.SessionID())
	}
	if got := ev.Data["engagement_score"]; got != 20 {
		t.Errorf("engagement_score = %v, want 20 (quiz intro weight)", got)
	}
	if got := ev.Data["action"]; got != "quiz_iniciado" {
		t.Errorf("caller field action = %v, want preserved", got)
	}
}

func TestTrackEnrichmentFields(t *testing.T) {
	tr := newTestTracker()
	tr.SetRequestContext("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0) Safari/605.1", "https://www.google.com/", "203.0.113.9")
	tr.SetView(models.ViewState{ScreenSize: "390x844", Viewport: "390x664", ScrollPosition: 120})

	ev := tr.Track(models.EventVideoStart, nil, models.StepVideo.Name)

	if ev.Data["funnel_history"] != models.StepVideo.Name {
		t.Errorf("funnel_history = %v, want %q", ev.Data["funnel_history"], models.StepVideo.Name)
	}
	if ev.Data["funnel_depth"] != 1 {
		t.Errorf("funnel_depth = %v, want 1", ev.Data["funnel_depth"])
	}
	if ev.Data["screen_size"] != "390x844" {
		t.Errorf("screen_size = %v, want 390x844", ev.Data["screen_size"])
	}
	if ev.Data["is_mobile"] != true {
		t.Errorf("is_mobile = %v, want true for an iPhone user agent", ev.Data["is_mobile"])
	}
	if ev.Data["time_on_page"] != 0 {
		t.Errorf("time_on_page = %v, want 0 on the first tracked event", ev.Data["time_on_page"])
	}
	if _, ok := ev.Data["timestamp_local"].(string); !ok {
		t.Errorf("timestamp_local missing or not a string: %v", ev.Data["timestamp_local"])
	}
}

func TestTrackDefaultsUnknownStep(t *testing.T) {
	tr := newTestTracker()

	ev := tr.Track(models.EventUserActive, nil, "")

	if ev.FunnelStep != "unknown" {
		t.Errorf("FunnelStep = %q, want %q", ev.FunnelStep, "unknown")
	}
	if tr.EngagementScore() != 0 {
		t.Errorf("EngagementScore = %d, want 0 for an uncataloged step", tr.EngagementScore())
	}
}

func TestQueuePreservesCallOrder(t *testing.T) {
	tr := newTestTracker()

	tr.Track(models.EventPageView, nil, models.StepVideo.Name)
	tr.Track(models.EventVideoStart, nil, models.StepVideo.Name)
	tr.Track(models.EventQuizStart, nil, models.StepQuizIntro.Name)

	queue := tr.Queue()
	want := []models.EventName{models.EventPageView, models.EventVideoStart, models.EventQuizStart}
	if len(queue) != len(want) {
		t.Fatalf("queue length = %d, want %d", len(queue), len(want))
	}
	for i, ev := range queue {
		if ev.Event != want[i] {
			t.Errorf("queue[%d] = %q, want %q", i, ev.Event, want[i])
		}
	}

	// Mutating the returned slice must not affect the tracker's queue.
	queue[0] = nil
	if tr.Queue()[0] == nil {
		t.Error("Queue returned the internal slice instead of a copy")
	}
}

func TestDestinationFailuresAreIsolated(t *testing.T) {
	failing := &failingDestination{}
	panicking := &panickingDestination{}
	record := &recordDestination{}
	tr := newTestTracker(failing, panicking, record)

	ev := tr.Track(models.EventVideoStart, nil, models.StepVideo.Name)

	if failing.calls != 1 || panicking.calls != 1 {
		t.Errorf("failing/panicking destinations called %d/%d times, want 1/1", failing.calls, panicking.calls)
	}
	if got := len(record.received()); got != 1 {
		t.Errorf("destination after the failures received %d events, want 1", got)
	}
	if len(tr.Queue()) != 1 || tr.Queue()[0] != ev {
		t.Error("queue was corrupted by destination failures")
	}
}

func TestEnvelopeCarriesCallerData(t *testing.T) {
	record := &recordDestination{}
	tr := newTestTracker(record)

	tr.Track(models.EventCTAClick, map[string]any{"button_name": "hero"}, models.StepContent.Name)

	envs := record.received()
	if len(envs) != 1 {
		t.Fatalf("received %d envelopes, want 1", len(envs))
	}
	env := envs[0]
	if env.CallerData["button_name"] != "hero" {
		t.Errorf("CallerData[button_name] = %v, want hero", env.CallerData["button_name"])
	}
	if _, enriched := env.CallerData["session_id"]; enriched {
		t.Error("CallerData must stay raw; enrichment belongs to the queued payload only")
	}
	if env.Step != models.StepContent.Name {
		t.Errorf("Step = %q, want %q", env.Step, models.StepContent.Name)
	}
	if env.Score != models.StepContent.Weight {
		t.Errorf("Score = %d, want %d", env.Score, models.StepContent.Weight)
	}
}
