// api/handlers/purchase_handlers.go
package handlers

import (
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"mamaezen/api/tracker"
)

// PurchaseHandlers reconciles external checkout returns with the funnel:
// the return-trip URL path and the relayed provider-message path both feed
// the same latched purchase conversion.
type PurchaseHandlers struct {
	Manager *tracker.Manager
}

func NewPurchaseHandlers(m *tracker.Manager) *PurchaseHandlers {
	return &PurchaseHandlers{Manager: m}
}

// Return handles the visitor coming back from the payment page. The page
// reports its full URL in the `url` query parameter; the response carries
// the URL with success indicators stripped, which the page applies with a
// history replace so back-button navigation cannot replay the purchase.
func (h *PurchaseHandlers) Return(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	pageURL, err := url.Parse(rawURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid url parameter"})
		return
	}

	t, _ := sessionTracker(c, h.Manager)
	cleaned, detected := t.DetectPurchaseURL(pageURL)

	c.JSON(http.StatusOK, gin.H{
		"purchase_detected": detected,
		"cleaned_url":       cleaned.String(),
	})
}

// Webhook receives checkout-provider messages relayed by the page. Origin
// and payload shape are validated; anything unrecognized is silently
// ignored rather than erroring, so a noisy embed cannot break the page.
func (h *PurchaseHandlers) Webhook(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("Ignoring malformed provider message: %v", err)
		c.JSON(http.StatusOK, gin.H{"accepted": false})
		return
	}

	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = c.GetHeader("X-Provider-Origin")
	}

	t, _ := sessionTracker(c, h.Manager)
	accepted := t.HandleProviderMessage(origin, payload)

	c.JSON(http.StatusOK, gin.H{"accepted": accepted})
}
