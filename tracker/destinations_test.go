package tracker

import (
	"testing"

	"mamaezen/api/models"
)

type gtagCall struct {
	command string
	name    string
	params  map[string]any
}

func TestTagManagerThreeCallSequence(t *testing.T) {
	var calls []gtagCall
	gtag := func(command, name string, params map[string]any) {
		calls = append(calls, gtagCall{command, name, params})
	}
	tr := newTestTracker(NewTagManagerDestination(gtag, DefaultConfig().AdSendTo))

	tr.Track(models.EventQuizStart, map[string]any{"action": "quiz_iniciado"}, models.StepQuizIntro.Name)

	if len(calls) != 3 {
		t.Fatalf("got %d tag-manager calls, want 3", len(calls))
	}

	main := calls[0]
	if main.name != "quiz_start" || main.params["event_category"] != models.StepQuizIntro.Name {
		t.Errorf("main call = %q/%v", main.name, main.params["event_category"])
	}
	if main.params["action"] != "quiz_iniciado" {
		t.Errorf("main call lost caller data: %v", main.params)
	}
	if main.params["non_interaction"] != false {
		t.Errorf("non_interaction = %v, want false", main.params["non_interaction"])
	}

	reporting := calls[1]
	if reporting.name != "mz_quiz_start" {
		t.Errorf("reporting call name = %q, want mz_quiz_start", reporting.name)
	}
	if reporting.params["engagement_time_msec"] != reporting.params["custom_time"].(int)*1000 {
		t.Errorf("engagement_time_msec = %v, want custom_time in ms", reporting.params["engagement_time_msec"])
	}

	ad := calls[2]
	if ad.params["send_to"] != DefaultConfig().AdSendTo {
		t.Errorf("ad call send_to = %v, want %q", ad.params["send_to"], DefaultConfig().AdSendTo)
	}
	if ad.params["value"] != 0.2 {
		t.Errorf("ad call value = %v, want score/100 = 0.2", ad.params["value"])
	}
}

func TestTagManagerCallerDataWinsOnMainCall(t *testing.T) {
	var calls []gtagCall
	gtag := func(command, name string, params map[string]any) {
		calls = append(calls, gtagCall{command, name, params})
	}
	tr := newTestTracker(NewTagManagerDestination(gtag, "AW-TEST"))

	tr.Track(models.EventCTAClick, map[string]any{"event_category": "custom_category"}, models.StepContent.Name)

	if calls[0].params["event_category"] != "custom_category" {
		t.Errorf("main call event_category = %v, caller data must win here", calls[0].params["event_category"])
	}
}

func TestHookDestinationMergesCallerDataLast(t *testing.T) {
	var gotEvent string
	var gotParams map[string]any
	hook := NewHookDestination(func(event string, params map[string]any) {
		gotEvent = event
		gotParams = params
	})
	tr := newTestTracker(hook)

	tr.Track(models.EventCTAClick, map[string]any{"funnel_step": "custom", "button_name": "hero"}, models.StepContent.Name)

	if gotEvent != "cta_click" {
		t.Errorf("hook event = %q, want cta_click", gotEvent)
	}
	if gotParams["funnel_step"] != "custom" {
		t.Errorf("hook funnel_step = %v, caller data must win here", gotParams["funnel_step"])
	}
	if gotParams["engagement_score"] != models.StepContent.Weight {
		t.Errorf("hook engagement_score = %v, want %d", gotParams["engagement_score"], models.StepContent.Weight)
	}
	if gotParams["button_name"] != "hero" {
		t.Errorf("hook lost caller data: %v", gotParams)
	}
}

func TestPixelDestinationTracksCustom(t *testing.T) {
	var gotCommand, gotName string
	var gotParams map[string]any
	pixel := NewPixelDestination(func(command, name string, params map[string]any) {
		gotCommand = command
		gotName = name
		gotParams = params
	})
	tr := newTestTracker(pixel)

	tr.Track(models.EventVideoEnd, map[string]any{"action": "video_completo"}, models.StepVideo.Name)

	if gotCommand != "trackCustom" || gotName != "video_end" {
		t.Errorf("pixel call = %q %q, want trackCustom video_end", gotCommand, gotName)
	}
	if gotParams["funnel_step"] != models.StepVideo.Name || gotParams["action"] != "video_completo" {
		t.Errorf("pixel params = %v", gotParams)
	}
}

func TestBusDestinationNotifiesSubscribersInOrder(t *testing.T) {
	bus := NewBusDestination()
	var order []string
	bus.Subscribe(func(ev *models.TrackedEvent) { order = append(order, "first:"+string(ev.Event)) })
	bus.Subscribe(func(ev *models.TrackedEvent) { order = append(order, "second:"+string(ev.Event)) })
	tr := newTestTracker(bus)

	tr.Track(models.EventVideoStart, nil, models.StepVideo.Name)

	if len(order) != 2 || order[0] != "first:video_start" || order[1] != "second:video_start" {
		t.Errorf("subscriber notifications = %v", order)
	}
}
