package tracker

import (
	"testing"
	"time"

	"mamaezen/api/models"
)

func TestOnMountEmitsPageView(t *testing.T) {
	record := &recordDestination{}
	tr := newTestTracker(record)
	tr.SetRequestContext("Mozilla/5.0 (Windows NT 10.0) Chrome/120.0", "", "198.51.100.7")

	tr.OnMount("https://mamaezen.com.br/?utm_source=facebook&utm_campaign=fundadora")

	envs := record.received()
	if len(envs) != 1 || envs[0].Event.Event != models.EventPageView {
		t.Fatalf("OnMount emitted %v, want a single page_view", record.events())
	}

	data := envs[0].CallerData
	if data["utm_source"] != "facebook" || data["utm_campaign"] != "fundadora" {
		t.Errorf("attribution = %v/%v, want facebook/fundadora", data["utm_source"], data["utm_campaign"])
	}
	if data["referrer"] != "direct" {
		t.Errorf("referrer = %v, want direct", data["referrer"])
	}
	if data["is_desktop"] != true {
		t.Errorf("is_desktop = %v, want true", data["is_desktop"])
	}
	if envs[0].Step != models.StepVideo.Name {
		t.Errorf("page_view step = %q, want %q", envs[0].Step, models.StepVideo.Name)
	}
}

func TestOnFocusReportsIdleTime(t *testing.T) {
	record := &recordDestination{}
	tr := newTestTracker(record)
	base := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	tr.now = func() time.Time { return base }
	tr.lastActivity = base.Add(-90 * time.Second)

	tr.OnFocus()

	got := record.events()
	want := []models.EventName{models.EventPageFocus, models.EventUserReturned}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("OnFocus emitted %v, want %v", got, want)
	}
	if idle := record.received()[1].CallerData["idle_time"]; idle != 90 {
		t.Errorf("idle_time = %v, want 90", idle)
	}
}

func TestIdleTimerFiresOnceAfterQuietPeriod(t *testing.T) {
	record := &recordDestination{}
	tr := newTestTracker(record)
	tr.cfg.IdleTimeout = 20 * time.Millisecond

	tr.OnActivity()
	time.Sleep(100 * time.Millisecond)

	idleEvents := 0
	for _, name := range record.events() {
		if name == models.EventUserIdle {
			idleEvents++
		}
	}
	if idleEvents != 1 {
		t.Errorf("user_idle fired %d times, want exactly 1", idleEvents)
	}
}

func TestActivityResetsIdleTimer(t *testing.T) {
	record := &recordDestination{}
	tr := newTestTracker(record)
	tr.cfg.IdleTimeout = 60 * time.Millisecond

	// Keep reporting activity faster than the timeout; the timer must never
	// fire.
	for i := 0; i < 5; i++ {
		tr.OnActivity()
		time.Sleep(20 * time.Millisecond)
	}
	tr.Close()
	time.Sleep(100 * time.Millisecond)

	for _, name := range record.events() {
		if name == models.EventUserIdle {
			t.Fatal("user_idle fired despite continuous activity")
		}
	}
}

func TestCloseDisarmsIdleTimer(t *testing.T) {
	record := &recordDestination{}
	tr := newTestTracker(record)
	tr.cfg.IdleTimeout = 20 * time.Millisecond

	tr.OnActivity()
	tr.Close()
	time.Sleep(80 * time.Millisecond)

	for _, name := range record.events() {
		if name == models.EventUserIdle {
			t.Fatal("user_idle fired after Close")
		}
	}
}

func TestOnUnloadExitSummary(t *testing.T) {
	record := &recordDestination{}
	tr := newTestTracker(record)

	tr.Track(models.EventPageView, nil, models.StepVideo.Name)
	tr.Track(models.EventQuizComplete, nil, models.StepQuizResult.Name)
	tr.Track(models.EventCheckoutClick, nil, models.StepCheckout.Name)

	tr.OnUnload()

	var exit *Envelope
	for _, env := range record.received() {
		if env.Event.Event == models.EventPageExit {
			e := env
			exit = &e
		}
	}
	if exit == nil {
		t.Fatal("OnUnload did not emit page_exit")
	}

	data := exit.CallerData
	if data["last_step"] != models.StepCheckout.Name {
		t.Errorf("last_step = %v, want %q", data["last_step"], models.StepCheckout.Name)
	}
	if data["funnel_steps_count"] != 3 {
		t.Errorf("funnel_steps_count = %v, want 3", data["funnel_steps_count"])
	}
	if data["completed_checkout"] != true {
		t.Errorf("completed_checkout = %v, want true", data["completed_checkout"])
	}
	if data["completed_quiz"] != true {
		t.Errorf("completed_quiz = %v, want true", data["completed_quiz"])
	}
	if data["reached_offer"] != false {
		t.Errorf("reached_offer = %v, want false", data["reached_offer"])
	}
}

func TestOnUnloadFlagsAbandonedPurchase(t *testing.T) {
	record := &recordDestination{}
	tr := newTestTracker(record)

	tr.Track(models.EventScroll100Percent, nil, models.StepOffer.Name)
	tr.OnUnload()

	found := false
	for _, env := range record.received() {
		if env.Event.Event == models.EventPurchaseAbandoned {
			found = true
			if env.CallerData["step"] != "offer_viewed_not_clicked" {
				t.Errorf("purchase_abandoned step = %v, want offer_viewed_not_clicked", env.CallerData["step"])
			}
		}
	}
	if !found {
		t.Error("offer without checkout did not emit purchase_abandoned")
	}
}

func TestOnUnloadNoAbandonmentAfterCheckout(t *testing.T) {
	record := &recordDestination{}
	tr := newTestTracker(record)

	tr.Track(models.EventScroll100Percent, nil, models.StepOffer.Name)
	tr.Track(models.EventCheckoutClick, nil, models.StepCheckout.Name)
	tr.OnUnload()

	for _, name := range record.events() {
		if name == models.EventPurchaseAbandoned {
			t.Fatal("purchase_abandoned emitted even though checkout was reached")
		}
	}
}
