package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cylink/config"

	"go.uber.org/zap"
)

type attributionRequest struct {
	TrackingID string `json:"tracking_id"`
	GoalID     uint   `json:"goal_id"`
}

type attributionResponse struct {
	Data struct {
		ConversionID uint `json:"conversion_id"`
	} `json:"data"`
}

// ConversionService notifies the conversion-recording endpoint that a goal
// should be attributed to a tracking identifier. It runs detached from the
// redirect path: every failure is logged and swallowed.
type ConversionService struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger
}

func NewConversionService(app *config.AppConfig, log *zap.Logger) *ConversionService {
	return &ConversionService{
		endpoint: fmt.Sprintf("http://%s:%s/api/v1/conversions", app.Host, app.Port),
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

// NewConversionServiceWithEndpoint is used by tests to point the trigger at
// an arbitrary server.
func NewConversionServiceWithEndpoint(endpoint string, client *http.Client, log *zap.Logger) *ConversionService {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ConversionService{endpoint: endpoint, client: client, log: log}
}

// Attribute fires the outbound attribution call. Any 2xx response counts as
// success; everything else is logged as an error and dropped.
func (s *ConversionService) Attribute(trackingID string, goalID uint) {
	body, err := json.Marshal(attributionRequest{TrackingID: trackingID, GoalID: goalID})
	if err != nil {
		s.log.Error("failed to encode attribution payload", zap.Error(err))
		return
	}

	resp, err := s.client.Post(s.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		s.log.Error("conversion attribution call failed",
			zap.String("tracking_id", trackingID),
			zap.Uint("goal_id", goalID),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Error("conversion attribution rejected",
			zap.String("tracking_id", trackingID),
			zap.Uint("goal_id", goalID),
			zap.Int("status", resp.StatusCode))
		return
	}

	var parsed attributionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		s.log.Error("malformed attribution response",
			zap.String("tracking_id", trackingID),
			zap.Error(err))
		return
	}

	s.log.Info("conversion attributed",
		zap.String("tracking_id", trackingID),
		zap.Uint("goal_id", goalID),
		zap.Uint("conversion_id", parsed.Data.ConversionID))
}
