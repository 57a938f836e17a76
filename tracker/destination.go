package tracker

import "mamaezen/api/models"

// Envelope is what destinations receive on fan-out. It carries both the
// fully enriched event and the original caller data, because destination
// payload shapes differ: some consume the enriched payload, others rebuild
// their own shape from the caller data plus step and score.
type Envelope struct {
	Event      *models.TrackedEvent
	CallerData map[string]any
	Step       string
	Score      int
	TimeOnPage int
	SessionID  string
	UserID     string
	UserAgent  string
	Referrer   string
	RemoteIP   string
}

// Destination is one external analytics/advertising system receiving fanned
// out events. Absence of a system is modeled as its destination not being in
// the list, never as a runtime existence check. Send errors are logged and
// isolated by the dispatcher; destinations need not recover their own
// panics.
type Destination interface {
	Name() string
	Send(env Envelope) error
}

// ConversionSender is implemented by destinations that additionally accept
// platform-specific conversion calls (checkout conversion, commerce events)
// outside the standard fan-out.
type ConversionSender interface {
	SendConversion(name string, params map[string]any) error
}
