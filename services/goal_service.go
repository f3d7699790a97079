package services

import (
	"errors"

	"cylink/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrGoalNotFound = errors.New("conversion goal not found")

type GoalRepo interface {
	Create(goal *models.ConversionGoal) error
	ByURL(urlID uint) ([]models.ConversionGoal, error)
	ByID(id uint) (*models.ConversionGoal, error)
}

type ConversionRepo interface {
	Create(conversion *models.Conversion) error
}

// GoalService owns conversion goals and the conversions recorded against
// them. The redirect path only ever reads goals.
type GoalService struct {
	goals       GoalRepo
	conversions ConversionRepo
	log         *zap.Logger
}

func NewGoalService(goals GoalRepo, conversions ConversionRepo, log *zap.Logger) *GoalService {
	return &GoalService{goals: goals, conversions: conversions, log: log}
}

func (s *GoalService) CreateGoal(urlID uint, name, description string) (*models.ConversionGoal, error) {
	goal := &models.ConversionGoal{
		URLID:       urlID,
		Name:        name,
		Description: description,
	}
	if err := s.goals.Create(goal); err != nil {
		s.log.Error("failed to create conversion goal", zap.Uint("url_id", urlID), zap.Error(err))
		return nil, err
	}
	return goal, nil
}

// FirstGoal returns the oldest goal attached to a link, or nil when the link
// has none.
func (s *GoalService) FirstGoal(urlID uint) (*models.ConversionGoal, error) {
	goals, err := s.goals.ByURL(urlID)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return nil, nil
	}
	return &goals[0], nil
}

// RecordConversion persists a conversion against an existing goal.
func (s *GoalService) RecordConversion(trackingID string, goalID uint) (*models.Conversion, error) {
	if _, err := s.goals.ByID(goalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	conversion := &models.Conversion{GoalID: goalID, TrackingID: trackingID}
	if err := s.conversions.Create(conversion); err != nil {
		s.log.Error("failed to record conversion",
			zap.String("tracking_id", trackingID),
			zap.Uint("goal_id", goalID),
			zap.Error(err))
		return nil, err
	}
	return conversion, nil
}
