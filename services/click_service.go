package services

import (
	"cylink/models"
	"cylink/tracking"

	"go.uber.org/zap"
)

// VisitorMeta carries the request metadata captured for a redirect. The
// tracking identifier is attached once the click row exists.
type VisitorMeta struct {
	IPAddress  string
	UserAgent  string
	Referrer   string
	Country    string
	DeviceType string
	Browser    string
	TrackingID string
}

// RedirectResult is what the orchestrator needs to issue the redirect.
type RedirectResult struct {
	OriginalURL string
	ClickID     uint
	URLID       uint
}

type ClickRepo interface {
	Create(click *models.Click) error
	CountByURL(urlID uint) (int64, error)
	ListByURL(urlID uint) ([]models.Click, error)
}

// LinkResolver is the read-only lookup the click recorder depends on.
type LinkResolver interface {
	Resolve(shortCode string) (*models.ShortLink, error)
}

type ClickService struct {
	clicks ClickRepo
	links  LinkResolver
	log    *zap.Logger
}

func NewClickService(clicks ClickRepo, links LinkResolver, log *zap.Logger) *ClickService {
	return &ClickService{clicks: clicks, links: links, log: log}
}

// ResolveAndRecord resolves a short code and persists the click in one
// operation. No click is recorded for unknown, inactive or expired codes.
// On success the derived tracking identifier is attached to meta.
func (s *ClickService) ResolveAndRecord(shortCode string, meta *VisitorMeta) (*RedirectResult, error) {
	link, err := s.links.Resolve(shortCode)
	if err != nil {
		return nil, err
	}
	if link.Expired() {
		return nil, ErrLinkNotFound
	}

	click := &models.Click{
		URLID:      link.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
		DeviceType: meta.DeviceType,
		Browser:    meta.Browser,
		Country:    meta.Country,
	}
	if err := s.clicks.Create(click); err != nil {
		s.log.Error("failed to record click",
			zap.String("short_code", shortCode),
			zap.Error(err))
		return nil, err
	}

	meta.TrackingID = tracking.NewID(click.ID, link.ID)

	return &RedirectResult{
		OriginalURL: link.OriginalURL,
		ClickID:     click.ID,
		URLID:       link.ID,
	}, nil
}
