package services

import (
	"net/url"
	"time"

	"cylink/models"

	"go.uber.org/zap"
)

// uniqueWindow is the trailing window within which repeat visits from the
// same IP to the same link do not count as unique impressions.
const uniqueWindow = 30 * time.Minute

type ImpressionRepo interface {
	Create(impression *models.Impression) error
	ExistsSince(urlID uint, ipAddress string, since time.Time) (bool, error)
	Counts(urlID uint) (total int64, unique int64, err error)
}

type ImpressionService struct {
	repo ImpressionRepo
	log  *zap.Logger
}

func NewImpressionService(repo ImpressionRepo, log *zap.Logger) *ImpressionService {
	return &ImpressionService{repo: repo, log: log}
}

// Record persists one impression, flagged unique unless the same (url, IP)
// pair already produced one inside the window. The existence check and the
// insert are deliberately separate statements, not a transaction: two
// near-simultaneous visits from one IP can both be stored as unique. That
// imprecision is accepted in exchange for keeping the redirect path cheap.
func (s *ImpressionService) Record(urlID uint, meta VisitorMeta) error {
	recent, err := s.repo.ExistsSince(urlID, meta.IPAddress, time.Now().Add(-uniqueWindow))
	if err != nil {
		return err
	}

	impression := &models.Impression{
		URLID:     urlID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
		Source:    trafficSource(meta.Referrer),
		IsUnique:  !recent,
	}
	return s.repo.Create(impression)
}

func (s *ImpressionService) Counts(urlID uint) (total int64, unique int64, err error) {
	return s.repo.Counts(urlID)
}

// trafficSource reduces a referrer to its hostname. Referrers that do not
// parse as URLs are kept verbatim. An absent referrer is deliberately mapped
// to "direct" rather than stored empty, so reach breakdowns group
// no-referrer traffic under one label.
func trafficSource(referrer string) string {
	if referrer == "" {
		return "direct"
	}
	parsed, err := url.Parse(referrer)
	if err != nil || parsed.Hostname() == "" {
		return referrer
	}
	return parsed.Hostname()
}
