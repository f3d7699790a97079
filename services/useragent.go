package services

import "strings"

// ClassifyUserAgent derives a coarse device type and browser family from a
// raw User-Agent string. It is intentionally rough; "unknown" is a fine
// answer for analytics rows.
func ClassifyUserAgent(ua string) (deviceType, browser string) {
	if ua == "" {
		return "unknown", "unknown"
	}
	lower := strings.ToLower(ua)

	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		deviceType = "tablet"
	case strings.Contains(lower, "mobi") || strings.Contains(lower, "iphone") ||
		strings.Contains(lower, "android"):
		deviceType = "mobile"
	default:
		deviceType = "desktop"
	}

	// Order matters: Edge and Opera UAs also contain "chrome", Chrome UAs
	// contain "safari".
	switch {
	case strings.Contains(lower, "edg"):
		browser = "Edge"
	case strings.Contains(lower, "opr") || strings.Contains(lower, "opera"):
		browser = "Opera"
	case strings.Contains(lower, "firefox"):
		browser = "Firefox"
	case strings.Contains(lower, "chrome"):
		browser = "Chrome"
	case strings.Contains(lower, "safari"):
		browser = "Safari"
	case strings.Contains(lower, "msie") || strings.Contains(lower, "trident"):
		browser = "IE"
	default:
		browser = "unknown"
	}
	return deviceType, browser
}
