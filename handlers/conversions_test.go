package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cylink/models"
	"cylink/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeGoalRepo struct {
	goals map[uint]*models.ConversionGoal
}

func (f *fakeGoalRepo) Create(goal *models.ConversionGoal) error {
	goal.ID = uint(len(f.goals) + 1)
	f.goals[goal.ID] = goal
	return nil
}

func (f *fakeGoalRepo) ByURL(urlID uint) ([]models.ConversionGoal, error) {
	var out []models.ConversionGoal
	for _, g := range f.goals {
		if g.URLID == urlID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeGoalRepo) ByID(id uint) (*models.ConversionGoal, error) {
	goal, ok := f.goals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return goal, nil
}

type fakeConversionRepo struct {
	created []*models.Conversion
}

func (f *fakeConversionRepo) Create(conversion *models.Conversion) error {
	conversion.ID = uint(len(f.created) + 1)
	f.created = append(f.created, conversion)
	return nil
}

func conversionRouter(goals *fakeGoalRepo, conversions *fakeConversionRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := services.NewGoalService(goals, conversions, zap.NewNop())
	handler := NewConversionHandler(service)

	router := gin.New()
	router.POST("/api/v1/conversions", handler.Record)
	return router
}

func TestRecordConversionSuccess(t *testing.T) {
	goals := &fakeGoalRepo{goals: map[uint]*models.ConversionGoal{
		9: {ID: 9, URLID: 3, Name: "signup"},
	}}
	conversions := &fakeConversionRepo{}
	router := conversionRouter(goals, conversions)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversions",
		strings.NewReader(`{"tracking_id":"3.42.deadbeef","goal_id":9}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data struct {
			ConversionID uint `json:"conversion_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, uint(1), body.Data.ConversionID)

	require.Len(t, conversions.created, 1)
	assert.Equal(t, "3.42.deadbeef", conversions.created[0].TrackingID)
	assert.Equal(t, uint(9), conversions.created[0].GoalID)
}

func TestRecordConversionUnknownGoal(t *testing.T) {
	goals := &fakeGoalRepo{goals: map[uint]*models.ConversionGoal{}}
	conversions := &fakeConversionRepo{}
	router := conversionRouter(goals, conversions)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversions",
		strings.NewReader(`{"tracking_id":"3.42.deadbeef","goal_id":404}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, conversions.created)
}

func TestRecordConversionRejectsMissingFields(t *testing.T) {
	router := conversionRouter(&fakeGoalRepo{goals: map[uint]*models.ConversionGoal{}}, &fakeConversionRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversions",
		strings.NewReader(`{"tracking_id":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
