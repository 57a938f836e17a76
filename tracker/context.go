package tracker

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"mamaezen/api/models"
)

var (
	mobilePatterns  = []string{"mobile", "android", "iphone"}
	tabletPatterns  = []string{"ipad", "tablet"}
	browserPatterns = []string{"Chrome", "Safari", "Firefox", "Edge", "Opera"}
	osPatterns      = []string{"Windows", "Mac", "Linux", "Android", "iOS"}
)

// DeviceInfo classifies a user-agent string. Exactly one of the device
// booleans is true: the mobile match wins over tablet, absence of both means
// desktop. Unmatched browser/os read "unknown".
func DeviceInfo(userAgent string) models.DeviceInfo {
	ua := strings.ToLower(userAgent)

	mobile := containsAny(ua, mobilePatterns)
	tablet := !mobile && containsAny(ua, tabletPatterns)

	return models.DeviceInfo{
		IsMobile:  mobile,
		IsTablet:  tablet,
		IsDesktop: !mobile && !tablet,
		Browser:   firstMatch(ua, browserPatterns),
		OS:        firstMatch(ua, osPatterns),
	}
}

func containsAny(ua string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(ua, p) {
			return true
		}
	}
	return false
}

func firstMatch(ua string, patterns []string) string {
	for _, p := range patterns {
		if strings.Contains(ua, strings.ToLower(p)) {
			return p
		}
	}
	return "unknown"
}

// TrafficSource assembles the attribution bundle from the document referrer
// and the page's query parameters. An empty referrer reads "direct"; absent
// parameters read "none", except utm_source which reads "organic".
func TrafficSource(referrer string, query url.Values) models.TrafficSource {
	return models.TrafficSource{
		Referrer:    orDefault(referrer, "direct"),
		UTMSource:   orDefault(query.Get("utm_source"), "organic"),
		UTMMedium:   orDefault(query.Get("utm_medium"), "none"),
		UTMCampaign: orDefault(query.Get("utm_campaign"), "none"),
		UTMContent:  orDefault(query.Get("utm_content"), "none"),
		UTMTerm:     orDefault(query.Get("utm_term"), "none"),
		GclID:       orDefault(query.Get("gclid"), "none"),
		FbclID:      orDefault(query.Get("fbclid"), "none"),
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// TimeOnPage returns whole seconds since the session's page-start marker.
// The first read writes the marker and returns 0.
func (t *Tracker) TimeOnPage() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timeOnPage(t.now())
}

func (t *Tracker) timeOnPage(now time.Time) int {
	raw, ok := t.session.Get(pageStartKey)
	if ok {
		if startMs, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return int((now.UnixMilli() - startMs) / 1000)
		}
	}
	t.session.Set(pageStartKey, strconv.FormatInt(now.UnixMilli(), 10))
	return 0
}

// markPageStart writes the page-start marker without resetting an existing
// one; the mount hook calls it unconditionally.
func (t *Tracker) markPageStart(now time.Time) {
	if _, ok := t.session.Get(pageStartKey); ok {
		return
	}
	t.session.Set(pageStartKey, strconv.FormatInt(now.UnixMilli(), 10))
}

func deviceFields(d models.DeviceInfo) map[string]any {
	return map[string]any{
		"is_mobile":  d.IsMobile,
		"is_tablet":  d.IsTablet,
		"is_desktop": d.IsDesktop,
		"browser":    d.Browser,
		"os":         d.OS,
	}
}

func trafficSourceFields(ts models.TrafficSource) map[string]any {
	return map[string]any{
		"referrer":     ts.Referrer,
		"utm_source":   ts.UTMSource,
		"utm_medium":   ts.UTMMedium,
		"utm_campaign": ts.UTMCampaign,
		"utm_content":  ts.UTMContent,
		"utm_term":     ts.UTMTerm,
		"gclid":        ts.GclID,
		"fbclid":       ts.FbclID,
	}
}
