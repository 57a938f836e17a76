// api/models/event.go
package models

import (
	"encoding/json"
	"time"
)

// EventName identifies one of the recognized funnel events. The set is
// closed: downstream dashboards key on these exact strings.
type EventName string

const (
	// Page
	EventPageView  EventName = "page_view"
	EventPageExit  EventName = "page_exit"
	EventPageFocus EventName = "page_focus"
	EventPageBlur  EventName = "page_blur"

	// Video
	EventVideoScreenView EventName = "video_screen_view"
	EventVideoStart      EventName = "video_start"
	EventVideoPause      EventName = "video_pause"
	EventVideoResume     EventName = "video_resume"
	EventVideo25Percent  EventName = "video_25_percent"
	EventVideo50Percent  EventName = "video_50_percent"
	EventVideo75Percent  EventName = "video_75_percent"
	EventVideoEnd        EventName = "video_end"
	EventVideoSkip       EventName = "video_skip"
	EventVideoInteract   EventName = "video_interaction"
	EventVideoSoundOn    EventName = "video_sound_on"
	EventVideoSoundOff   EventName = "video_sound_off"

	// Quiz
	EventQuizScreenView  EventName = "quiz_screen_view"
	EventQuizStart       EventName = "quiz_start"
	EventQuizStep1       EventName = "quiz_step_1"
	EventQuizStep2       EventName = "quiz_step_2"
	EventQuizStep3       EventName = "quiz_step_3"
	EventQuizAnswer      EventName = "quiz_answer"
	EventQuizAdvance     EventName = "quiz_advance"
	EventQuizExit        EventName = "quiz_exit"
	EventQuizDoubt       EventName = "quiz_doubt"
	EventQuizComplete    EventName = "quiz_complete"
	EventQuizSuccess     EventName = "quiz_success"
	EventQuizRetry       EventName = "quiz_retry"
	EventQuizHesitation  EventName = "quiz_hesitation"
	EventQuizOptionHover EventName = "quiz_option_hover"

	// Content
	EventContentUnlocked    EventName = "content_unlocked"
	EventContentView        EventName = "content_view"
	EventContentSectionView EventName = "content_section_view"
	EventScroll25Percent    EventName = "scroll_25_percent"
	EventScroll50Percent    EventName = "scroll_50_percent"
	EventScroll75Percent    EventName = "scroll_75_percent"
	EventScroll100Percent   EventName = "scroll_100_percent"

	// CTAs
	EventCTAClick       EventName = "cta_click"
	EventCTAHover       EventName = "cta_hover"
	EventCTAVideoStart  EventName = "cta_video_start"
	EventCTAVideoSkip   EventName = "cta_video_skip"
	EventCTAQuizStart   EventName = "cta_quiz_start"
	EventCTAQuizOption  EventName = "cta_quiz_option"
	EventCTAShowContent EventName = "cta_show_content"
	EventCTARetryQuiz   EventName = "cta_retry_quiz"
	EventCTACheckout    EventName = "cta_checkout"

	// Checkout
	EventCheckoutClick    EventName = "checkout_click"
	EventCheckoutRedirect EventName = "checkout_redirect"
	EventCheckoutIntent   EventName = "checkout_intent"

	// Engagement
	EventEngagementHigh   EventName = "engagement_high"
	EventEngagementMedium EventName = "engagement_medium"
	EventEngagementLow    EventName = "engagement_low"
	EventUserActive       EventName = "user_active"
	EventUserIdle         EventName = "user_idle"
	EventUserReturned     EventName = "user_returned"

	// Conversion
	EventPurchaseIntent    EventName = "purchase_intent"
	EventPurchaseComplete  EventName = "purchase_complete"
	EventPurchaseAbandoned EventName = "purchase_abandoned"
)

// eventCategories groups every recognized event name for reporting.
var eventCategories = map[EventName]string{
	EventPageView: "page", EventPageExit: "page", EventPageFocus: "page", EventPageBlur: "page",

	EventVideoScreenView: "video", EventVideoStart: "video", EventVideoPause: "video",
	EventVideoResume: "video", EventVideo25Percent: "video", EventVideo50Percent: "video",
	EventVideo75Percent: "video", EventVideoEnd: "video", EventVideoSkip: "video",
	EventVideoInteract: "video", EventVideoSoundOn: "video", EventVideoSoundOff: "video",

	EventQuizScreenView: "quiz", EventQuizStart: "quiz", EventQuizStep1: "quiz",
	EventQuizStep2: "quiz", EventQuizStep3: "quiz", EventQuizAnswer: "quiz",
	EventQuizAdvance: "quiz", EventQuizExit: "quiz", EventQuizDoubt: "quiz",
	EventQuizComplete: "quiz", EventQuizSuccess: "quiz", EventQuizRetry: "quiz",
	EventQuizHesitation: "quiz", EventQuizOptionHover: "quiz",

	EventContentUnlocked: "content", EventContentView: "content", EventContentSectionView: "content",
	EventScroll25Percent: "scroll", EventScroll50Percent: "scroll",
	EventScroll75Percent: "scroll", EventScroll100Percent: "scroll",

	EventCTAClick: "cta", EventCTAHover: "cta", EventCTAVideoStart: "cta",
	EventCTAVideoSkip: "cta", EventCTAQuizStart: "cta", EventCTAQuizOption: "cta",
	EventCTAShowContent: "cta", EventCTARetryQuiz: "cta", EventCTACheckout: "cta",

	EventCheckoutClick: "checkout", EventCheckoutRedirect: "checkout", EventCheckoutIntent: "checkout",

	EventEngagementHigh: "engagement", EventEngagementMedium: "engagement", EventEngagementLow: "engagement",
	EventUserActive: "engagement", EventUserIdle: "engagement", EventUserReturned: "engagement",

	EventPurchaseIntent: "conversion", EventPurchaseComplete: "conversion", EventPurchaseAbandoned: "conversion",
}

// IsValid reports whether name belongs to the recognized event set.
func (e EventName) IsValid() bool {
	_, ok := eventCategories[e]
	return ok
}

// Category returns the reporting group for the event ("page", "video",
// "quiz", "content", "scroll", "cta", "checkout", "engagement",
// "conversion") or "" for unrecognized names.
func (e EventName) Category() string {
	return eventCategories[e]
}

// FunnelStep is a named milestone in the visitor's progression with a fixed
// engagement weight.
type FunnelStep struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// The ten canonical funnel steps, ordered by depth. Weights are intentionally
// non-monotonic: reconsideration is a detour, worth less than the quiz result
// that precedes it.
var (
	StepVideo           = FunnelStep{Name: "1_video", Weight: 10}
	StepQuizIntro       = FunnelStep{Name: "2_quiz_intro", Weight: 20}
	StepQuizStep1       = FunnelStep{Name: "3_quiz_step_1", Weight: 30}
	StepQuizStep2       = FunnelStep{Name: "4_quiz_step_2", Weight: 40}
	StepQuizStep3       = FunnelStep{Name: "5_quiz_step_3", Weight: 50}
	StepQuizResult      = FunnelStep{Name: "6_quiz_result", Weight: 60}
	StepReconsideration = FunnelStep{Name: "7_reconsideration", Weight: 35}
	StepContent         = FunnelStep{Name: "8_content", Weight: 70}
	StepOffer           = FunnelStep{Name: "9_offer", Weight: 80}
	StepCheckout        = FunnelStep{Name: "10_checkout", Weight: 100}
)

// FunnelSteps lists the catalog in funnel order.
var FunnelSteps = []FunnelStep{
	StepVideo, StepQuizIntro, StepQuizStep1, StepQuizStep2, StepQuizStep3,
	StepQuizResult, StepReconsideration, StepContent, StepOffer, StepCheckout,
}

// StepWeight returns the engagement weight for a step name, 0 for names not
// in the catalog.
func StepWeight(name string) int {
	for _, s := range FunnelSteps {
		if s.Name == name {
			return s.Weight
		}
	}
	return 0
}

// QuizStepName maps a quiz question number (1-3) to its funnel step name.
// Out-of-range numbers fall back to the first quiz step.
func QuizStepName(question int) string {
	switch question {
	case 2:
		return StepQuizStep2.Name
	case 3:
		return StepQuizStep3.Name
	default:
		return StepQuizStep1.Name
	}
}

// TrackedEvent is one enriched funnel event as held in the session queue and
// fanned out to destinations.
type TrackedEvent struct {
	Event       EventName      `json:"event"`
	TimestampMs int64          `json:"timestamp"`
	FunnelStep  string         `json:"funnel_step"`
	Data        map[string]any `json:"data,omitempty"`
}

// ClientEvent is the raw shape the page reports to POST /api/track before
// enrichment. Data is never trusted as the final payload.
type ClientEvent struct {
	Event      EventName      `json:"event" binding:"required"`
	FunnelStep string         `json:"funnel_step"`
	Data       map[string]any `json:"data"`
}

// ViewState carries the client's latest screen metrics, reported alongside
// tracked events.
type ViewState struct {
	ScreenSize     string `json:"screen_size"`
	Viewport       string `json:"viewport"`
	ScrollPosition int    `json:"scroll_position"`
}

// DeviceInfo classifies the visitor's device from its user-agent string.
// Exactly one of the three booleans is true.
type DeviceInfo struct {
	IsMobile  bool   `json:"is_mobile"`
	IsTablet  bool   `json:"is_tablet"`
	IsDesktop bool   `json:"is_desktop"`
	Browser   string `json:"browser"`
	OS        string `json:"os"`
}

// TrafficSource is the attribution bundle captured at page view.
type TrafficSource struct {
	Referrer    string `json:"referrer"`
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
	UTMContent  string `json:"utm_content"`
	UTMTerm     string `json:"utm_term"`
	GclID       string `json:"gclid"`
	FbclID      string `json:"fbclid"`
}

// FunnelEvent is the row shape persisted to ClickHouse.
type FunnelEvent struct {
	EventID         string          `json:"eventId"`
	Event           string          `json:"event"`
	Category        string          `json:"category"`
	UserID          string          `json:"userId"`
	SessionID       string          `json:"sessionId"`
	Timestamp       time.Time       `json:"timestamp"`
	FunnelStep      string          `json:"funnelStep"`
	EngagementScore int32           `json:"engagementScore"`
	TimeOnPageSec   int64           `json:"timeOnPageSec"`
	Referrer        string          `json:"referrer"`
	UserAgent       string          `json:"userAgent"`
	IPAddress       string          `json:"ipAddress"`
	EventData       json.RawMessage `json:"eventData,omitempty"`
}

// TopStepResult is one row of the top-funnel-steps stat.
type TopStepResult struct {
	FunnelStep string `json:"funnelStep"`
	Count      uint64 `json:"count"`
}

// StepDropoffResult reports how many sessions reached a funnel step.
type StepDropoffResult struct {
	FunnelStep string `json:"funnelStep"`
	Sessions   uint64 `json:"sessions"`
}
