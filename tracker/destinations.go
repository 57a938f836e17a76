package tracker

import (
	"sync"

	"mamaezen/api/models"
)

// BusDestination is the in-process replacement for the page's DOM custom
// event: subscribers observe every tracked event synchronously, in order.
type BusDestination struct {
	mu          sync.RWMutex
	subscribers []func(*models.TrackedEvent)
}

func NewBusDestination() *BusDestination {
	return &BusDestination{}
}

// Subscribe registers an observer for all future events.
func (b *BusDestination) Subscribe(fn func(*models.TrackedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

func (b *BusDestination) Name() string { return "bus" }

func (b *BusDestination) Send(env Envelope) error {
	b.mu.RLock()
	subs := b.subscribers
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(env.Event)
	}
	return nil
}

// HookFunc is the custom tracking hook shape: (eventName, params).
type HookFunc func(event string, params map[string]any)

// HookDestination forwards to a registered tracking hook with the original
// caller data plus funnel step and engagement score. Caller fields win on
// collision here, unlike the enriched queue payload.
type HookDestination struct {
	fn HookFunc
}

func NewHookDestination(fn HookFunc) *HookDestination {
	return &HookDestination{fn: fn}
}

func (h *HookDestination) Name() string { return "hook" }

func (h *HookDestination) Send(env Envelope) error {
	params := map[string]any{
		"funnel_step":      env.Step,
		"engagement_score": env.Score,
	}
	for k, v := range env.CallerData {
		params[k] = v
	}
	h.fn(string(env.Event.Event), params)
	return nil
}

// GtagFunc mirrors the tag-manager global: (command, name, params).
type GtagFunc func(command, name string, params map[string]any)

// TagManagerDestination emits the three-call tag-manager sequence per event:
// the raw event with category/label/identity/time/engagement plus caller
// data, an "mz_"-prefixed reporting event, and an ad-routed call valued at
// engagement_score/100. It also accepts direct conversion calls.
type TagManagerDestination struct {
	gtag   GtagFunc
	sendTo string
}

func NewTagManagerDestination(gtag GtagFunc, sendTo string) *TagManagerDestination {
	return &TagManagerDestination{gtag: gtag, sendTo: sendTo}
}

func (d *TagManagerDestination) Name() string { return "tag_manager" }

func (d *TagManagerDestination) Send(env Envelope) error {
	name := string(env.Event.Event)

	main := map[string]any{
		"event_category":   env.Step,
		"event_label":      name,
		"funnel_step":      env.Step,
		"session_id":       env.SessionID,
		"user_id":          env.UserID,
		"time_on_page":     env.TimeOnPage,
		"engagement_score": env.Score,
		"non_interaction":  false,
	}
	for k, v := range env.CallerData {
		main[k] = v
	}
	d.gtag("event", name, main)

	d.gtag("event", "mz_"+name, map[string]any{
		"custom_funnel_step":   env.Step,
		"custom_engagement":    env.Score,
		"custom_time":          env.TimeOnPage,
		"engagement_time_msec": env.TimeOnPage * 1000,
	})

	d.gtag("event", name, map[string]any{
		"send_to":        d.sendTo,
		"funnel_step":    env.Step,
		"event_category": env.Step,
		"event_label":    name,
		"value":          float64(env.Score) / 100,
	})

	return nil
}

// SendConversion emits a raw tag-manager call, used for the checkout
// conversion and commerce events.
func (d *TagManagerDestination) SendConversion(name string, params map[string]any) error {
	d.gtag("event", name, params)
	return nil
}

// PixelFunc mirrors the social pixel global: (command, name, params).
type PixelFunc func(command, name string, params map[string]any)

// PixelDestination forwards every event as a trackCustom pixel call with
// funnel step and engagement score plus caller data.
type PixelDestination struct {
	fbq PixelFunc
}

func NewPixelDestination(fbq PixelFunc) *PixelDestination {
	return &PixelDestination{fbq: fbq}
}

func (p *PixelDestination) Name() string { return "pixel" }

func (p *PixelDestination) Send(env Envelope) error {
	params := map[string]any{
		"funnel_step":      env.Step,
		"engagement_score": env.Score,
	}
	for k, v := range env.CallerData {
		params[k] = v
	}
	p.fbq("trackCustom", string(env.Event.Event), params)
	return nil
}
