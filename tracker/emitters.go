package tracker

import (
	"fmt"
	"log"

	"mamaezen/api/models"
)

// Convenience emitters: one method per UI moment, each with a fixed event
// name, funnel step and payload shape. Payload action strings match the
// original dashboards and must not be reworded.

// Video

func (t *Tracker) TrackVideoScreenView() {
	t.Track(models.EventVideoScreenView, map[string]any{"action": "tela_video_visualizada"}, models.StepVideo.Name)
}

func (t *Tracker) TrackVideoStart() {
	t.Track(models.EventVideoStart, map[string]any{"action": "video_iniciado"}, models.StepVideo.Name)
	t.Track(models.EventCTAVideoStart, map[string]any{"button": "play_video"}, models.StepVideo.Name)
}

func (t *Tracker) TrackVideoPause() {
	t.Track(models.EventVideoPause, map[string]any{"action": "video_pausado"}, models.StepVideo.Name)
}

func (t *Tracker) TrackVideoResume() {
	t.Track(models.EventVideoResume, map[string]any{"action": "video_retomado"}, models.StepVideo.Name)
}

// TrackVideoProgress emits the quartile bucket the given percentage falls
// into; percentages below 25 or at 100 emit nothing (completion is
// TrackVideoEnd's job).
func (t *Tracker) TrackVideoProgress(percent int) {
	switch {
	case percent >= 25 && percent < 50:
		t.Track(models.EventVideo25Percent, map[string]any{"percent": 25}, models.StepVideo.Name)
	case percent >= 50 && percent < 75:
		t.Track(models.EventVideo50Percent, map[string]any{"percent": 50}, models.StepVideo.Name)
	case percent >= 75 && percent < 100:
		t.Track(models.EventVideo75Percent, map[string]any{"percent": 75}, models.StepVideo.Name)
	}
}

func (t *Tracker) TrackVideoEnd() {
	t.Track(models.EventVideoEnd, map[string]any{"action": "video_completo"}, models.StepVideo.Name)
}

func (t *Tracker) TrackVideoSkip() {
	t.Track(models.EventVideoSkip, map[string]any{"action": "video_pulado"}, models.StepVideo.Name)
	t.Track(models.EventCTAVideoSkip, map[string]any{"button": "pular_video"}, models.StepVideo.Name)
}

func (t *Tracker) TrackVideoInteraction(kind string) {
	t.Track(models.EventVideoInteract, map[string]any{"interaction": kind}, models.StepVideo.Name)
}

func (t *Tracker) TrackVideoSound(on bool) {
	if on {
		t.Track(models.EventVideoSoundOn, map[string]any{"action": "som_ativado"}, models.StepVideo.Name)
		return
	}
	t.Track(models.EventVideoSoundOff, map[string]any{"action": "som_desativado"}, models.StepVideo.Name)
}

// Quiz

func (t *Tracker) TrackQuizScreenView() {
	t.Track(models.EventQuizScreenView, map[string]any{"action": "tela_quiz_visualizada"}, models.StepQuizIntro.Name)
}

func (t *Tracker) TrackQuizStart() {
	t.Track(models.EventQuizStart, map[string]any{"action": "quiz_iniciado"}, models.StepQuizIntro.Name)
	t.Track(models.EventCTAQuizStart, map[string]any{"button": "descobrir_mae_aguia"}, models.StepQuizIntro.Name)
}

func (t *Tracker) TrackQuizStep(step int) {
	name := models.EventName(fmt.Sprintf("quiz_step_%d", step))
	if !name.IsValid() {
		name = models.EventQuizStep1
	}
	t.Track(name, map[string]any{
		"step":   step,
		"action": fmt.Sprintf("etapa_%d_visualizada", step),
	}, models.QuizStepName(step))
}

func (t *Tracker) TrackQuizAnswer(questionID int, answer, answerType string) {
	step := models.QuizStepName(questionID)
	t.Track(models.EventQuizAnswer, map[string]any{
		"question_id": questionID,
		"answer":      answer,
		"answer_type": answerType,
		"action":      fmt.Sprintf("resposta_%s_etapa_%d", answerType, questionID),
	}, step)
	t.Track(models.EventCTAQuizOption, map[string]any{
		"button":   "option_" + answerType,
		"question": questionID,
	}, step)
}

func (t *Tracker) TrackQuizAdvance(fromStep, toStep int) {
	t.Track(models.EventQuizAdvance, map[string]any{
		"from_step": fromStep,
		"to_step":   toStep,
		"action":    fmt.Sprintf("avancou_etapa_%d_para_%d", fromStep, toStep),
	}, models.StepQuizStep1.Name)
}

func (t *Tracker) TrackQuizExit(step int, reason string) {
	t.Track(models.EventQuizExit, map[string]any{
		"step":   step,
		"reason": reason,
		"action": fmt.Sprintf("desistiu_etapa_%d", step),
	}, models.StepReconsideration.Name)
}

func (t *Tracker) TrackQuizDoubt(step int) {
	t.Track(models.EventQuizDoubt, map[string]any{
		"step":   step,
		"action": fmt.Sprintf("duvida_etapa_%d", step),
	}, models.StepReconsideration.Name)
}

func (t *Tracker) TrackQuizComplete(result string) {
	t.Track(models.EventQuizComplete, map[string]any{
		"result": result,
		"action": "quiz_finalizado_" + result,
	}, models.StepQuizResult.Name)
}

func (t *Tracker) TrackQuizSuccess() {
	t.Track(models.EventQuizSuccess, map[string]any{"action": "quiz_sucesso_mae_aguia"}, models.StepQuizResult.Name)
}

func (t *Tracker) TrackQuizRetry(previousResult string) {
	t.Track(models.EventQuizRetry, map[string]any{
		"previous_result": previousResult,
		"action":          "refazendo_quiz",
	}, models.StepQuizIntro.Name)
	t.Track(models.EventCTARetryQuiz, map[string]any{"button": "refazer_quiz"}, models.StepReconsideration.Name)
}

func (t *Tracker) TrackQuizHesitation(step, seconds int) {
	t.Track(models.EventQuizHesitation, map[string]any{
		"step":            step,
		"seconds_on_step": seconds,
	}, models.QuizStepName(step))
}

func (t *Tracker) TrackQuizOptionHover(questionID int, option string) {
	t.Track(models.EventQuizOptionHover, map[string]any{
		"question": questionID,
		"option":   option,
	}, models.QuizStepName(questionID))
}

// Content

func (t *Tracker) TrackContentUnlocked(method string) {
	t.Track(models.EventContentUnlocked, map[string]any{
		"method": method,
		"action": "conteudo_liberado_" + method,
	}, models.StepContent.Name)
	t.Track(models.EventCTAShowContent, map[string]any{"button": "ver_conteudo"}, models.StepReconsideration.Name)
}

func (t *Tracker) TrackContentView() {
	t.Track(models.EventContentView, map[string]any{"action": "conteudo_visualizado"}, models.StepContent.Name)
}

func (t *Tracker) TrackContentSection(section string) {
	t.Track(models.EventContentSectionView, map[string]any{"section": section}, models.StepContent.Name)
}

// TrackScrollDepth emits the scroll bucket for the given percentage; the
// 100% bucket is tagged at the offer step since the page bottom is the
// offer.
func (t *Tracker) TrackScrollDepth(percent int) {
	switch {
	case percent >= 25 && percent < 50:
		t.Track(models.EventScroll25Percent, map[string]any{"percent": 25}, models.StepContent.Name)
	case percent >= 50 && percent < 75:
		t.Track(models.EventScroll50Percent, map[string]any{"percent": 50}, models.StepContent.Name)
	case percent >= 75 && percent < 100:
		t.Track(models.EventScroll75Percent, map[string]any{"percent": 75}, models.StepContent.Name)
	case percent >= 100:
		t.Track(models.EventScroll100Percent, map[string]any{"percent": 100}, models.StepOffer.Name)
	}
}

// CTA & checkout

func (t *Tracker) TrackCTAClick(buttonName, destination string) {
	t.Track(models.EventCTAClick, map[string]any{
		"button_name": buttonName,
		"destination": destination,
		"action":      "clique_" + buttonName,
	}, models.StepContent.Name)
}

func (t *Tracker) TrackCTAHover(buttonName string) {
	t.Track(models.EventCTAHover, map[string]any{
		"button_name": buttonName,
		"action":      "hover_" + buttonName,
	}, models.StepContent.Name)
}

func (t *Tracker) TrackCheckoutIntent() {
	t.Track(models.EventCheckoutIntent, map[string]any{
		"action": "usuario_demonstrou_interesse_checkout",
	}, models.StepOffer.Name)
}

// TrackCheckout is the conversion emitter: beyond the four funnel events, it
// sends the ad-platform conversion (transaction id = session id) and the
// commerce begin_checkout call to every destination able to receive them.
// Different downstream systems consume different shapes; the multiplicity is
// intentional.
func (t *Tracker) TrackCheckout() {
	value := t.cfg.ConversionValue
	currency := t.cfg.Currency

	t.Track(models.EventCheckoutClick, map[string]any{
		"value":    value,
		"currency": currency,
		"action":   "clique_checkout",
	}, models.StepOffer.Name)

	t.Track(models.EventCTACheckout, map[string]any{
		"button": "ser_fundadora_agora",
		"value":  value,
	}, models.StepOffer.Name)

	t.Track(models.EventCheckoutRedirect, map[string]any{
		"destination": t.cfg.CheckoutURL,
		"action":      "redirecionando_checkout",
	}, models.StepCheckout.Name)

	t.Track(models.EventPurchaseIntent, map[string]any{
		"value":    value,
		"currency": currency,
		"action":   "intencao_compra_confirmada",
	}, models.StepCheckout.Name)

	t.sendConversion("conversion", map[string]any{
		"send_to":        t.cfg.AdConversionSendTo,
		"value":          value,
		"currency":       currency,
		"transaction_id": t.SessionID(),
	})

	t.sendConversion("begin_checkout", map[string]any{
		"currency": currency,
		"value":    value,
		"items": []map[string]any{{
			"item_id":   t.cfg.ProductID,
			"item_name": t.cfg.ProductName,
			"price":     value,
			"quantity":  1,
		}},
	})
}

// TrackPurchase emits the purchase conversion; the purchase detector calls
// it at most once per session.
func (t *Tracker) TrackPurchase(source string) {
	t.Track(models.EventPurchaseComplete, map[string]any{
		"value":    t.cfg.ConversionValue,
		"currency": t.cfg.Currency,
		"source":   source,
	}, models.StepCheckout.Name)
}

func (t *Tracker) sendConversion(name string, params map[string]any) {
	t.mu.Lock()
	destinations := t.destinations
	t.mu.Unlock()
	for _, d := range destinations {
		cs, ok := d.(ConversionSender)
		if !ok {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("conversion %s via %s panicked: %v", name, d.Name(), r)
				}
			}()
			if err := cs.SendConversion(name, params); err != nil {
				log.Printf("conversion %s via %s: %v", name, d.Name(), err)
			}
		}()
	}
}
