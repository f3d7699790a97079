package handlers

import (
	"errors"
	"net/http"

	"cylink/services"

	"github.com/gin-gonic/gin"
)

type RecordConversionRequest struct {
	TrackingID string `json:"tracking_id" binding:"required"`
	GoalID     uint   `json:"goal_id" binding:"required"`
}

// ConversionHandler serves the internal conversion-recording endpoint that
// the attribution trigger calls back into.
type ConversionHandler struct {
	goals *services.GoalService
}

func NewConversionHandler(goals *services.GoalService) *ConversionHandler {
	return &ConversionHandler{goals: goals}
}

func (h *ConversionHandler) Record(c *gin.Context) {
	var req RecordConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversion, err := h.goals.RecordConversion(req.TrackingID, req.GoalID)
	if err != nil {
		if errors.Is(err, services.ErrGoalNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversion goal not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record conversion"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{"conversion_id": conversion.ID},
	})
}
