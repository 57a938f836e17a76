package tracker

import (
	"log"
	"strings"
	"sync"
	"time"

	"mamaezen/api/models"
	"mamaezen/api/store"
)

// Storage keys, shared with the page's original storage layout.
const (
	sessionIDKey = "mz_session_id"
	userIDKey    = "mz_user_id"
	pageStartKey = "mz_page_start"
	historyKey   = "funnel_history"
)

// Tracker owns the tracking state for one page session: the session-scoped
// and durable KV stores, the in-memory event queue, and the destination
// list. All methods are safe for concurrent use; event order in the queue is
// the call order.
type Tracker struct {
	mu           sync.Mutex
	cfg          Config
	session      store.KV
	durable      store.KV
	destinations []Destination
	queue        []*models.TrackedEvent
	now          func() time.Time

	userAgent string
	referrer  string
	remoteIP  string
	view      models.ViewState

	lastActivity time.Time
	idleTimer    *time.Timer
	purchased    bool
	closed       bool
}

// New constructs a Tracker. session holds state that dies with the browser
// session (history, page-start marker, session id); durable holds the
// long-lived user id. An empty destination list means events are only
// queued.
func New(cfg Config, session, durable store.KV, destinations []Destination) *Tracker {
	t := &Tracker{
		cfg:          cfg,
		session:      session,
		durable:      durable,
		destinations: destinations,
		now:          time.Now,
	}
	t.lastActivity = t.now()
	return t
}

// SetRequestContext records the ambient request signals used for enrichment
// and the ClickHouse sink rows.
func (t *Tracker) SetRequestContext(userAgent, referrer, remoteIP string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.userAgent = userAgent
	if referrer != "" {
		t.referrer = referrer
	}
	t.remoteIP = remoteIP
}

// SetView records the client's latest screen metrics.
func (t *Tracker) SetView(view models.ViewState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view = view
}

// Track records one funnel event: appends the step to the funnel history,
// enriches the caller payload, queues the event, and fans it out to every
// destination. Enrichment fields override same-named caller fields; that
// precedence is a contract downstream dashboards rely on. Track never fails.
func (t *Tracker) Track(name models.EventName, data map[string]any, funnelStep string) *models.TrackedEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.track(name, data, funnelStep)
}

func (t *Tracker) track(name models.EventName, data map[string]any, funnelStep string) *models.TrackedEvent {
	step := funnelStep
	if step == "" {
		step = "unknown"
	}

	// The append happens before scoring so this event sees its own step.
	t.addToFunnelHistory(step)

	now := t.now()
	history := t.funnelHistory()
	score := t.engagementScore(history)
	timeOnPage := t.timeOnPage(now)
	sessionID := t.sessionID()
	userID := t.userID()
	device := DeviceInfo(t.userAgent)

	payload := make(map[string]any, len(data)+16)
	for k, v := range data {
		payload[k] = v
	}
	payload["session_id"] = sessionID
	payload["user_id"] = userID
	payload["funnel_step"] = step
	payload["time_on_page"] = timeOnPage
	payload["engagement_score"] = score
	payload["funnel_history"] = strings.Join(history, " > ")
	payload["funnel_depth"] = len(history)
	payload["screen_size"] = t.view.ScreenSize
	payload["viewport"] = t.view.Viewport
	payload["scroll_position"] = t.view.ScrollPosition
	payload["timestamp_local"] = now.Format(time.RFC3339)
	for k, v := range deviceFields(device) {
		payload[k] = v
	}

	ev := &models.TrackedEvent{
		Event:       name,
		TimestampMs: now.UnixMilli(),
		FunnelStep:  step,
		Data:        payload,
	}
	t.queue = append(t.queue, ev)

	log.Printf("track [%s] %s (time=%ds score=%d)", step, name, timeOnPage, score)

	env := Envelope{
		Event:      ev,
		CallerData: data,
		Step:       step,
		Score:      score,
		TimeOnPage: timeOnPage,
		SessionID:  sessionID,
		UserID:     userID,
		UserAgent:  t.userAgent,
		Referrer:   t.referrer,
		RemoteIP:   t.remoteIP,
	}
	for _, d := range t.destinations {
		t.send(d, env)
	}

	return ev
}

// send isolates destination failures: an error or panic in one destination
// must never suppress the others or corrupt the queue.
func (t *Tracker) send(d Destination, env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("destination %s panicked: %v", d.Name(), r)
		}
	}()
	if err := d.Send(env); err != nil {
		log.Printf("destination %s: %v", d.Name(), err)
	}
}

// Queue returns a copy of every event tracked during this session, in call
// order. The queue is in-process only; it does not survive the session.
func (t *Tracker) Queue() []*models.TrackedEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*models.TrackedEvent, len(t.queue))
	copy(out, t.queue)
	return out
}
