package service

import (
	"context"
	"encoding/json"
	"time"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/repository/unitofwork"
	"support-chat-be/pkg/events"
	natsbus "support-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the activity topic: every message becomes a system
// log row, and messages carrying an event type are forwarded onto the durable
// bus for out-of-process workers.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	eventsOut  *natsbus.Publisher
	logger     logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventsOut *natsbus.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		eventsOut:  eventsOut,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ActivityMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		// Poison message; ack so it does not loop forever.
		cs.logger.Error("ConsumerService", "Failed to unmarshal activity message", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	module := payload.Module
	entry := &entity.SystemLog{
		Id:        uuid.New(),
		Level:     payload.Level,
		Module:    &module,
		Message:   payload.Message,
		Details:   payload.Details,
		CreatedAt: time.Now(),
	}
	if err := uow.SystemLogRepository().Create(ctx, entry); err != nil {
		cs.logger.Error("ConsumerService", "Failed to persist system log", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	if payload.EventType != "" && cs.eventsOut != nil {
		event := events.BaseEvent{
			Type:       payload.EventType,
			Data:       payload.Details,
			OccurredAt: time.Now(),
		}
		if err := cs.eventsOut.Publish(ctx, event); err != nil {
			// The log row is already committed; retrying would duplicate it.
			cs.logger.Warn("ConsumerService", "Failed to forward event to bus", map[string]interface{}{
				"event_type": payload.EventType,
				"error":      err.Error(),
			})
		}
	}

	msg.Ack()
}
