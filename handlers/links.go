package handlers

import (
	"errors"
	"net/http"
	"time"

	"cylink/auth"
	"cylink/models"
	"cylink/services"

	"github.com/gin-gonic/gin"
)

type CreateLinkRequest struct {
	OriginalURL  string  `json:"original_url" binding:"required"`
	CustomCode   string  `json:"custom_code"`
	Title        *string `json:"title"`
	RedirectType string  `json:"redirect_type"`
	ExpiresIn    *int    `json:"expires_in"` // hours
}

type LinkHandler struct {
	links       *services.LinkService
	clicks      services.ClickRepo
	impressions *services.ImpressionService
}

func NewLinkHandler(links *services.LinkService, clicks services.ClickRepo, impressions *services.ImpressionService) *LinkHandler {
	return &LinkHandler{links: links, clicks: clicks, impressions: impressions}
}

func (h *LinkHandler) Create(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateLinkInput{
		OriginalURL:  req.OriginalURL,
		CustomCode:   req.CustomCode,
		Title:        req.Title,
		RedirectType: req.RedirectType,
	}
	if req.ExpiresIn != nil {
		duration := time.Duration(*req.ExpiresIn) * time.Hour
		input.ExpiresIn = &duration
	}

	// Anonymous creation is allowed; the link simply has no owner.
	var owner *uint
	if userID, ok := auth.GetUserID(c); ok {
		owner = &userID
	}

	link, err := h.links.CreateShortLink(input, owner)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCodeTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create short link"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"original_url":  link.OriginalURL,
		"short_code":    link.ShortCode,
		"short_url":     "http://" + c.Request.Host + "/" + link.ShortCode,
		"redirect_type": link.RedirectType,
		"expires_at":    link.ExpiresAt,
		"created_at":    link.CreatedAt,
	})
}

func (h *LinkHandler) Info(c *gin.Context) {
	link, ok := h.ownedLink(c)
	if !ok {
		return
	}

	clickCount, err := h.clicks.CountByURL(link.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load click count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            link.ID,
		"original_url":  link.OriginalURL,
		"short_code":    link.ShortCode,
		"title":         link.Title,
		"redirect_type": link.RedirectType,
		"click_count":   clickCount,
		"created_at":    link.CreatedAt,
		"expires_at":    link.ExpiresAt,
	})
}

func (h *LinkHandler) Stats(c *gin.Context) {
	link, ok := h.ownedLink(c)
	if !ok {
		return
	}

	clicks, err := h.clicks.ListByURL(link.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load clicks"})
		return
	}
	impressions, uniqueImpressions, err := h.impressions.Counts(link.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load impressions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"short_code":         link.ShortCode,
		"total_clicks":       len(clicks),
		"clicks":             clicks,
		"impressions":        impressions,
		"unique_impressions": uniqueImpressions,
	})
}

func (h *LinkHandler) Delete(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	err := h.links.Delete(c.Param("code"), userID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Link deleted successfully"})
	case errors.Is(err, services.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
	case errors.Is(err, services.ErrNotLinkOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to delete this link"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete link"})
	}
}

// ownedLink resolves the :code param and enforces ownership for the
// management endpoints.
func (h *LinkHandler) ownedLink(c *gin.Context) (*models.ShortLink, bool) {
	userID, authed := auth.GetUserID(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}

	// Management endpoints resolve without the activation filter: owners
	// keep access to expired links' history.
	link, err := h.links.ResolveAny(c.Param("code"))
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load link"})
		}
		return nil, false
	}
	if link.UserID == nil || *link.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to view this link"})
		return nil, false
	}
	return link, true
}
