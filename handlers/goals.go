package handlers

import (
	"errors"
	"net/http"

	"cylink/auth"
	"cylink/services"

	"github.com/gin-gonic/gin"
)

type CreateGoalRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type GoalHandler struct {
	goals *services.GoalService
	links *services.LinkService
}

func NewGoalHandler(goals *services.GoalService, links *services.LinkService) *GoalHandler {
	return &GoalHandler{goals: goals, links: links}
}

// Create attaches a conversion goal to one of the caller's links.
func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	link, err := h.links.ResolveAny(c.Param("code"))
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load link"})
		}
		return
	}
	if link.UserID == nil || *link.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to modify this link"})
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.goals.CreateGoal(link.ID, req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create goal"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          goal.ID,
		"url_id":      goal.URLID,
		"name":        goal.Name,
		"description": goal.Description,
	})
}
