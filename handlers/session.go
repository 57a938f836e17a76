// Package handlers wires the funnel tracking API's HTTP surface: event
// ingestion and lifecycle signals, purchase reconciliation, dashboard auth,
// and the protected stats endpoints.
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mamaezen/api/tracker"
)

const (
	// sessionCookie keys the per-session tracker; it dies with the browser
	// session.
	sessionCookie = "mz_session"
	// deviceCookie scopes the durable user identity; it survives sessions.
	deviceCookie = "mz_device"

	deviceCookieMaxAge = int(365 * 24 * time.Hour / time.Second)
)

// sessionTracker resolves (creating if needed) the tracker for the calling
// session and refreshes its request context. It returns the session key so
// unload handlers can drop the session afterwards.
func sessionTracker(c *gin.Context, m *tracker.Manager) (*tracker.Tracker, string) {
	sessionKey, err := c.Cookie(sessionCookie)
	if err != nil || sessionKey == "" {
		sessionKey = uuid.New().String()
		c.SetCookie(sessionCookie, sessionKey, 0, "/", "", false, true)
	}

	deviceKey, err := c.Cookie(deviceCookie)
	if err != nil || deviceKey == "" {
		deviceKey = uuid.New().String()
		c.SetCookie(deviceCookie, deviceKey, deviceCookieMaxAge, "/", "", false, true)
	}

	t := m.Tracker(sessionKey, deviceKey)
	t.SetRequestContext(c.GetHeader("User-Agent"), c.GetHeader("Referer"), c.ClientIP())
	return t, sessionKey
}
