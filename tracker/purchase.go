package tracker

import (
	"net/url"
	"strings"
)

// purchaseSignals maps return-trip query parameters to the value that marks
// a completed purchase. The set is closed.
var purchaseSignals = map[string]string{
	"purchase":       "success",
	"cakto_success":  "true",
	"status":         "approved",
	"payment_status": "approved",
}

// DetectPurchaseURL inspects a return-trip URL for purchase success
// indicators. When one matches it fires the purchase conversion and returns
// the URL with all recognized parameters stripped, so the page can replace
// its history entry and avoid back-button replay. The conversion is latched:
// it fires at most once per session even if both detection paths observe the
// same checkout.
func (t *Tracker) DetectPurchaseURL(u *url.URL) (cleaned *url.URL, detected bool) {
	query := u.Query()
	matched := false
	for param, want := range purchaseSignals {
		if query.Get(param) == want {
			matched = true
		}
	}
	if !matched {
		return u, false
	}

	for param := range purchaseSignals {
		query.Del(param)
	}
	stripped := *u
	stripped.RawQuery = query.Encode()

	t.firePurchase("url_params")
	return &stripped, true
}

// HandleProviderMessage processes a message relayed from the checkout
// provider's embedded page. The origin must contain the configured provider
// substring and the payload must match one of the recognized shapes;
// anything else is silently ignored.
func (t *Tracker) HandleProviderMessage(origin string, payload map[string]any) bool {
	if !strings.Contains(strings.ToLower(origin), strings.ToLower(t.cfg.ProviderOrigin)) {
		return false
	}
	if !isPurchaseMessage(payload) {
		return false
	}
	t.firePurchase("provider_message")
	return true
}

func isPurchaseMessage(payload map[string]any) bool {
	if v, ok := payload["type"].(string); ok && v == "purchase" {
		return true
	}
	if v, ok := payload["status"].(string); ok && v == "approved" {
		return true
	}
	if v, ok := payload["event"].(string); ok && v == "purchase_complete" {
		return true
	}
	return false
}

// firePurchase emits the purchase conversion once per session.
func (t *Tracker) firePurchase(source string) {
	t.mu.Lock()
	if t.purchased {
		t.mu.Unlock()
		return
	}
	t.purchased = true
	t.mu.Unlock()

	t.TrackPurchase(source)
}
