package tracker

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"mamaezen/api/models"
)

// Lifecycle signals reported by the page. Focus/blur/idle events are tagged
// with the literal "engagement" step, which is outside the weighted catalog
// and contributes nothing to the score.
const engagementStep = "engagement"

// OnMount handles page mount: writes the page-start marker (without
// resetting an existing one) and emits page_view enriched with traffic
// source and device info, tagged at the first funnel step.
func (t *Tracker) OnMount(pageURL string) {
	t.mu.Lock()
	now := t.now()
	t.markPageStart(now)
	t.lastActivity = now

	data := map[string]any{"url": pageURL}
	query := url.Values{}
	if u, err := url.Parse(pageURL); err == nil {
		query = u.Query()
	}
	for k, v := range trafficSourceFields(TrafficSource(t.referrer, query)) {
		data[k] = v
	}
	for k, v := range deviceFields(DeviceInfo(t.userAgent)) {
		data[k] = v
	}

	t.track(models.EventPageView, data, models.StepVideo.Name)
	t.mu.Unlock()
}

// OnFocus handles the window regaining focus: page_focus, then
// user_returned carrying the idle duration since the last recorded
// activity.
func (t *Tracker) OnFocus() {
	t.mu.Lock()
	idle := int(t.now().Sub(t.lastActivity).Seconds())
	t.track(models.EventPageFocus, map[string]any{"action": "user_returned_to_tab"}, engagementStep)
	t.track(models.EventUserReturned, map[string]any{"idle_time": idle}, engagementStep)
	t.mu.Unlock()
}

// OnBlur handles the window losing focus.
func (t *Tracker) OnBlur() {
	t.mu.Lock()
	t.track(models.EventPageBlur, map[string]any{
		"action":       "user_left_tab",
		"time_on_page": t.timeOnPage(t.now()),
	}, engagementStep)
	t.mu.Unlock()
}

// OnActivity records user activity (pointer move, touch, key press) and
// re-arms the idle timer. If the timer expires with no further activity,
// user_idle fires exactly once for that quiet period.
func (t *Tracker) OnActivity() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastActivity = t.now()
	if t.idleTimer != nil {
		t.idleTimer.Stop()
		t.idleTimer = nil
	}
	if t.closed {
		return
	}
	idleSeconds := int(t.cfg.IdleTimeout.Seconds())
	t.idleTimer = time.AfterFunc(t.cfg.IdleTimeout, func() {
		t.Track(models.EventUserIdle, map[string]any{"idle_seconds": idleSeconds}, engagementStep)
	})
}

// OnUnload handles page teardown: emits the page_exit summary and, when the
// session saw the offer but never the checkout, purchase_abandoned.
func (t *Tracker) OnUnload() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	history := t.funnelHistory()
	lastStep := models.StepVideo.Name
	if len(history) > 0 {
		lastStep = history[len(history)-1]
	}
	completedCheckout := slices.Contains(history, models.StepCheckout.Name)
	reachedOffer := slices.Contains(history, models.StepOffer.Name)

	exitData := map[string]any{
		"time_on_page_seconds": t.timeOnPage(now),
		"funnel_history":       strings.Join(history, " > "),
		"funnel_steps_count":   len(history),
		"last_step":            lastStep,
		"engagement_score":     t.engagementScore(history),
		"completed_checkout":   completedCheckout,
		"reached_offer":        reachedOffer,
		"completed_quiz":       slices.Contains(history, models.StepQuizResult.Name),
	}
	for k, v := range deviceFields(DeviceInfo(t.userAgent)) {
		exitData[k] = v
	}

	t.track(models.EventPageExit, exitData, lastStep)

	if !completedCheckout && reachedOffer {
		t.track(models.EventPurchaseAbandoned, map[string]any{"step": "offer_viewed_not_clicked"}, models.StepOffer.Name)
	}
}

// Close tears the tracker down: the idle timer is cleared and no further
// timers are armed. Queued events remain readable.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.idleTimer != nil {
		t.idleTimer.Stop()
		t.idleTimer = nil
	}
}
