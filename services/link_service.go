package services

import (
	"errors"
	"net/url"
	"time"

	"cylink/models"

	"github.com/teris-io/shortid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrLinkNotFound = errors.New("short link not found")
	ErrCodeTaken    = errors.New("custom short code already exists")
	ErrInvalidURL   = errors.New("original URL is empty or not absolute")
	ErrNotLinkOwner = errors.New("link belongs to another user")
	ErrGenerateCode = errors.New("failed to generate short code")
)

// ShortLinkRepo is the persistence contract the link service needs. The live
// implementation is repository.ShortLinkRepository.
type ShortLinkRepo interface {
	Create(link *models.ShortLink) error
	FindByCode(shortCode string) (*models.ShortLink, error)
	FindByCodeAny(shortCode string) (*models.ShortLink, error)
	CodeTaken(shortCode string) (bool, error)
	RedirectType(shortCode string) (string, error)
	SoftDelete(id uint) error
}

type LinkService struct {
	repo ShortLinkRepo
	log  *zap.Logger
}

func NewLinkService(repo ShortLinkRepo, log *zap.Logger) *LinkService {
	return &LinkService{repo: repo, log: log}
}

type CreateLinkInput struct {
	OriginalURL  string
	CustomCode   string
	Title        *string
	RedirectType string
	ExpiresIn    *time.Duration
}

func (s *LinkService) CreateShortLink(input CreateLinkInput, userID *uint) (*models.ShortLink, error) {
	parsed, err := url.Parse(input.OriginalURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, ErrInvalidURL
	}

	shortCode := input.CustomCode
	if shortCode == "" {
		shortCode, err = shortid.Generate()
		if err != nil {
			s.log.Error("failed to generate short code", zap.Error(err))
			return nil, ErrGenerateCode
		}
	} else {
		taken, err := s.repo.CodeTaken(shortCode)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrCodeTaken
		}
	}

	redirectType := input.RedirectType
	if redirectType != models.RedirectTypePermanent {
		redirectType = models.RedirectTypeTemporary
	}

	link := &models.ShortLink{
		UserID:       userID,
		OriginalURL:  input.OriginalURL,
		ShortCode:    shortCode,
		Title:        input.Title,
		RedirectType: redirectType,
		IsActive:     true,
	}
	if input.ExpiresIn != nil {
		expiresAt := time.Now().Add(*input.ExpiresIn)
		link.ExpiresAt = &expiresAt
	}

	if err := s.repo.Create(link); err != nil {
		s.log.Error("failed to create short link", zap.Error(err))
		return nil, err
	}
	return link, nil
}

// Resolve returns the live link for a short code. Deactivated and
// soft-deleted links resolve as not found; expiry is the caller's concern.
func (s *LinkService) Resolve(shortCode string) (*models.ShortLink, error) {
	link, err := s.repo.FindByCode(shortCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}

// ResolveAny returns the link regardless of activation or expiry state, for
// owner-facing management: a link whose expiry was swept overnight must stay
// reachable for its stats, info and deletion. Soft-deleted links remain
// hidden.
func (s *LinkService) ResolveAny(shortCode string) (*models.ShortLink, error) {
	link, err := s.repo.FindByCodeAny(shortCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}

// RedirectType looks up the stored redirect type for a code. Callers fall
// back to temporary semantics when the result is not the permanent marker.
func (s *LinkService) RedirectType(shortCode string) (string, error) {
	return s.repo.RedirectType(shortCode)
}

// Delete soft-deletes a link after checking ownership. Expired and
// deactivated links are still deletable by their owner.
func (s *LinkService) Delete(shortCode string, userID uint) error {
	link, err := s.ResolveAny(shortCode)
	if err != nil {
		return err
	}
	if link.UserID == nil || *link.UserID != userID {
		return ErrNotLinkOwner
	}
	return s.repo.SoftDelete(link.ID)
}
