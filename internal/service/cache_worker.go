package service

import (
	"context"
	"fmt"

	"support-chat-be/internal/cache"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/repository/unitofwork"
	"support-chat-be/pkg/events"
	natsbus "support-chat-be/pkg/nats"
)

// CacheWorker consumes chat events off the durable bus and drops the cache
// keys the originating instance could not reach. Peer instances each run one
// with their own durable name so every replica converges after a write.
type CacheWorker struct {
	subscriber *natsbus.Subscriber
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.ChatCache
	logger     logger.ILogger
}

func NewCacheWorker(
	subscriber *natsbus.Subscriber,
	uowFactory unitofwork.RepositoryFactory,
	chatCache *cache.ChatCache,
	log logger.ILogger,
) *CacheWorker {
	return &CacheWorker{
		subscriber: subscriber,
		uowFactory: uowFactory,
		cache:      chatCache,
		logger:     log,
	}
}

func (w *CacheWorker) Start(durableName string) error {
	if w.subscriber == nil {
		return nil
	}
	return w.subscriber.Subscribe("events.chat.>", durableName, w.handle)
}

func (w *CacheWorker) handle(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	roomID, ok := asInt64(payload["room_id"])
	if !ok {
		// Malformed event; nothing to invalidate and nothing to retry.
		w.logger.Warn("CacheWorker", "Event without room_id", map[string]interface{}{"event_type": event.EventType()})
		return nil
	}

	uow := w.uowFactory.NewUnitOfWork(ctx)
	room, err := uow.ChatRoomRepository().FindById(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to load room %d: %w", roomID, err)
	}
	if room == nil {
		return nil
	}

	participants := room.ParticipantIds()
	w.cache.InvalidateRoom(ctx, room.Id, participants)
	w.cache.InvalidateUnread(ctx, room.Id, participants[0], participants[1])
	return nil
}

// asInt64 normalizes the number the JSON decoder produced.
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
