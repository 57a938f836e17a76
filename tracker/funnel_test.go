package tracker

import (
	"reflect"
	"testing"

	"mamaezen/api/models"
)

func TestFunnelHistoryDeduplicates(t *testing.T) {
	tr := newTestTracker()

	for _, step := range []string{"1_video", "2_quiz_intro", "1_video", "3_quiz_step_1"} {
		tr.AddToFunnelHistory(step)
	}

	got := tr.FunnelHistory()
	want := []string{"1_video", "2_quiz_intro", "3_quiz_step_1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FunnelHistory() = %v, want %v", got, want)
	}
}

func TestFunnelHistoryMalformedStateReadsEmpty(t *testing.T) {
	tr := newTestTracker()
	tr.session.Set(historyKey, "{not json")

	if got := tr.FunnelHistory(); got != nil {
		t.Errorf("FunnelHistory() = %v, want nil for malformed persisted state", got)
	}

	// Recovery: the next append starts a fresh history.
	tr.AddToFunnelHistory(models.StepVideo.Name)
	if got := tr.FunnelHistory(); len(got) != 1 || got[0] != models.StepVideo.Name {
		t.Errorf("FunnelHistory() after recovery = %v, want [%s]", got, models.StepVideo.Name)
	}
}

func TestEngagementScoreSumsWeights(t *testing.T) {
	tr := newTestTracker()

	tr.AddToFunnelHistory(models.StepVideo.Name)
	tr.AddToFunnelHistory(models.StepQuizIntro.Name)

	if got := tr.EngagementScore(); got != 30 {
		t.Errorf("EngagementScore() = %d, want 30", got)
	}
}

func TestEngagementScoreIgnoresUnknownSteps(t *testing.T) {
	tr := newTestTracker()

	tr.AddToFunnelHistory("engagement")
	tr.AddToFunnelHistory(models.StepVideo.Name)

	if got := tr.EngagementScore(); got != models.StepVideo.Weight {
		t.Errorf("EngagementScore() = %d, want %d", got, models.StepVideo.Weight)
	}
}

func TestEngagementScoreClampsAt100(t *testing.T) {
	tr := newTestTracker()

	for _, step := range models.FunnelSteps {
		tr.AddToFunnelHistory(step.Name)
	}

	if got := tr.EngagementScore(); got != 100 {
		t.Errorf("EngagementScore() = %d, want the 100 cap", got)
	}
}
