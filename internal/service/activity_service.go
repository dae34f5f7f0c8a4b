package service

import (
	"context"
	"encoding/json"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/pkg/events"
)

// IActivityService fans chat activity out of the request path. Recording is
// fire-and-forget: a failed publish is logged and swallowed so the chat
// operation that triggered it still succeeds.
type IActivityService interface {
	Record(ctx context.Context, module, message string, event events.Event)
}

type activityService struct {
	publisher IPublisherService
	logger    logger.ILogger
}

func NewActivityService(publisher IPublisherService, log logger.ILogger) IActivityService {
	return &activityService{
		publisher: publisher,
		logger:    log,
	}
}

func (s *activityService) Record(ctx context.Context, module, message string, event events.Event) {
	payload := dto.ActivityMessage{
		Level:   "INFO",
		Module:  module,
		Message: message,
	}
	if event != nil {
		payload.Details = event.Payload()
		payload.EventType = event.EventType()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("ActivityService", "Failed to marshal activity payload", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := s.publisher.Publish(ctx, data); err != nil {
		s.logger.Warn("ActivityService", "Failed to publish activity", map[string]interface{}{"error": err.Error()})
	}
}
