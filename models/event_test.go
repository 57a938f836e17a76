package models

import "testing"

func TestEventNameIsValid(t *testing.T) {
	valid := []EventName{
		EventPageView, EventVideoStart, EventQuizAnswer,
		EventScroll100Percent, EventCheckoutClick, EventPurchaseComplete,
	}
	for _, name := range valid {
		if !name.IsValid() {
			t.Errorf("IsValid(%q) = false, want true", name)
		}
	}

	invalid := []EventName{"", "made_up_event", "Page_View", "video start"}
	for _, name := range invalid {
		if name.IsValid() {
			t.Errorf("IsValid(%q) = true, want false", name)
		}
	}
}

func TestEventCategory(t *testing.T) {
	tests := map[EventName]string{
		EventPageView:          "page",
		EventVideo50Percent:    "video",
		EventQuizHesitation:    "quiz",
		EventScroll75Percent:   "scroll",
		EventContentView:       "content",
		EventCTACheckout:       "cta",
		EventCheckoutRedirect:  "checkout",
		EventUserIdle:          "engagement",
		EventPurchaseAbandoned: "conversion",
		EventName("nonsense"):  "",
	}
	for name, want := range tests {
		if got := name.Category(); got != want {
			t.Errorf("Category(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestStepWeight(t *testing.T) {
	tests := map[string]int{
		"1_video":           10,
		"6_quiz_result":     60,
		"7_reconsideration": 35,
		"10_checkout":       100,
		"engagement":        0,
		"unknown":           0,
		"":                  0,
	}
	for name, want := range tests {
		if got := StepWeight(name); got != want {
			t.Errorf("StepWeight(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestFunnelStepsOrderedByDepth(t *testing.T) {
	if len(FunnelSteps) != 10 {
		t.Fatalf("catalog has %d steps, want 10", len(FunnelSteps))
	}
	if FunnelSteps[0] != StepVideo || FunnelSteps[9] != StepCheckout {
		t.Error("catalog order does not start at video and end at checkout")
	}
}

func TestQuizStepName(t *testing.T) {
	tests := map[int]string{
		1:  StepQuizStep1.Name,
		2:  StepQuizStep2.Name,
		3:  StepQuizStep3.Name,
		0:  StepQuizStep1.Name,
		99: StepQuizStep1.Name,
	}
	for question, want := range tests {
		if got := QuizStepName(question); got != want {
			t.Errorf("QuizStepName(%d) = %q, want %q", question, got, want)
		}
	}
}
