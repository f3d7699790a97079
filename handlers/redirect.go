package handlers

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cylink/models"
	"cylink/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// reservedPrefix guards the API surface: paths under it are never
	// treated as short codes.
	reservedPrefix = "api"

	msgNotFound      = "Short URL not found or has expired"
	msgInternalError = "Internal Server Error"

	utmSource   = "cylink"
	utmMedium   = "shortlink"
	utmCampaign = "conversion"

	defaultAttributionDelay = 1 * time.Second
)

// Dependencies the orchestrator sequences. The concrete services satisfy
// them; tests substitute fakes and fault injectors.
type clickRecorder interface {
	ResolveAndRecord(shortCode string, meta *services.VisitorMeta) (*services.RedirectResult, error)
}

type redirectTypeSource interface {
	RedirectType(shortCode string) (string, error)
}

type impressionRecorder interface {
	Record(urlID uint, meta services.VisitorMeta) error
}

type goalSource interface {
	FirstGoal(urlID uint) (*models.ConversionGoal, error)
}

type attributionTrigger interface {
	Attribute(trackingID string, goalID uint)
}

// RedirectHandler is the catch-all entry point that turns a short code into
// a redirect. It is registered as the router's NoRoute fallback so every
// explicit API route wins first.
type RedirectHandler struct {
	clicks      clickRecorder
	links       redirectTypeSource
	impressions impressionRecorder
	goals       goalSource
	conversions attributionTrigger
	log         *zap.Logger

	// attributionDelay spaces the conversion self-call away from the
	// redirect write burst. Shrunk in tests.
	attributionDelay time.Duration
}

func NewRedirectHandler(clicks clickRecorder, links redirectTypeSource, impressions impressionRecorder,
	goals goalSource, conversions attributionTrigger, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		clicks:           clicks,
		links:            links,
		impressions:      impressions,
		goals:            goals,
		conversions:      conversions,
		log:              log,
		attributionDelay: defaultAttributionDelay,
	}
}

func (h *RedirectHandler) Redirect(c *gin.Context) {
	shortCode, ok := candidateShortCode(c.Request.URL.Path)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "message": "Not Found"})
		return
	}

	meta := collectVisitorMeta(c)

	result, err := h.clicks.ResolveAndRecord(shortCode, &meta)
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "message": msgNotFound})
			return
		}
		h.log.Error("redirect resolution failed", zap.String("short_code", shortCode), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "message": msgInternalError})
		return
	}

	// Separate lookup on purpose: redirect semantics are a property of the
	// stored link, not of the resolution result.
	status := http.StatusFound
	redirectType, err := h.links.RedirectType(shortCode)
	if err != nil {
		h.log.Warn("failed to look up redirect type, using temporary",
			zap.String("short_code", shortCode), zap.Error(err))
	} else if redirectType == models.RedirectTypePermanent {
		status = http.StatusMovedPermanently
	}

	// Reach metrics are fire-and-forget; the visitor never waits on them.
	go func(urlID uint, meta services.VisitorMeta) {
		if err := h.impressions.Record(urlID, meta); err != nil {
			h.log.Warn("failed to record impression", zap.Uint("url_id", urlID), zap.Error(err))
		}
	}(result.URLID, meta)

	goal, err := h.goals.FirstGoal(result.URLID)
	if err != nil {
		h.log.Warn("failed to look up conversion goals", zap.Uint("url_id", result.URLID), zap.Error(err))
		goal = nil
	}

	destination := result.OriginalURL
	if meta.TrackingID != "" {
		destination = appendTrackingParams(destination, meta.TrackingID)
	}

	if goal != nil && meta.TrackingID != "" {
		trackingID := meta.TrackingID
		goalID := goal.ID
		time.AfterFunc(h.attributionDelay, func() {
			h.conversions.Attribute(trackingID, goalID)
		})
	}

	c.Redirect(status, destination)
}

// candidateShortCode decides whether a request path is a short-code lookup.
// Only single-segment paths outside the reserved API prefix qualify.
func candidateShortCode(path string) (string, bool) {
	code := strings.TrimPrefix(path, "/")
	if code == "" || strings.Contains(code, "/") {
		return "", false
	}
	if code == reservedPrefix || strings.HasPrefix(code, reservedPrefix+"/") {
		return "", false
	}
	return code, true
}

// collectVisitorMeta assembles the analytics view of the request. Richer
// values set upstream (geo middleware, CDN country header) win over the
// local best-effort classification.
func collectVisitorMeta(c *gin.Context) services.VisitorMeta {
	userAgent := c.Request.UserAgent()
	deviceType, browser := services.ClassifyUserAgent(userAgent)

	country := c.GetHeader("CF-IPCountry")
	if country == "" {
		country = "unknown"
	}
	if v, ok := c.Get("country"); ok {
		if s, isString := v.(string); isString && s != "" {
			country = s
		}
	}

	referrer := c.GetHeader("Referer")
	if referrer == "" {
		referrer = c.GetHeader("Referrer")
	}

	return services.VisitorMeta{
		IPAddress:  clientIP(c),
		UserAgent:  userAgent,
		Referrer:   referrer,
		Country:    country,
		DeviceType: deviceType,
		Browser:    browser,
	}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the raw
// connection address.
func clientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.SplitN(forwarded, ",", 2)[0]
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}

// appendTrackingParams adds the fixed campaign parameters plus the tracking
// identifier. Parameter order is part of the contract, so the string is
// built by hand instead of through url.Values.
func appendTrackingParams(destination, trackingID string) string {
	separator := "?"
	if strings.Contains(destination, "?") {
		separator = "&"
	}
	return destination + separator +
		"utm_source=" + utmSource +
		"&utm_medium=" + utmMedium +
		"&utm_campaign=" + utmCampaign +
		"&utm_content=" + url.QueryEscape(trackingID)
}
