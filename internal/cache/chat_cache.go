package cache

import (
	"context"
	"strconv"
	"time"

	"support-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	firstPageTTL = 30 * time.Second
	deepPageTTL  = 2 * time.Minute
	unreadTTL    = time.Minute
	roomListTTL  = time.Minute
)

// ChatCache is the side-cache for paginated history, room lists and unread
// counters. It is never authoritative: the TTLs bound staleness the write
// path cannot see, and the write path deletes exact keys for everything it
// can. A nil Redis client degrades to a permanent miss.
type ChatCache struct {
	rdb    *redis.Client
	logger logger.ILogger
}

func NewChatCache(rdb *redis.Client, log logger.ILogger) *ChatCache {
	return &ChatCache{rdb: rdb, logger: log}
}

func pageTTL(page int) time.Duration {
	// Page 1 churns on every send; deeper pages barely move.
	if page == 1 {
		return firstPageTTL
	}
	return deepPageTTL
}

func (c *ChatCache) get(ctx context.Context, key string) ([]byte, bool) {
	if c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("ChatCache", "cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
		return nil, false
	}
	return data, true
}

func (c *ChatCache) set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("ChatCache", "cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

func (c *ChatCache) del(ctx context.Context, keys []string) {
	if c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("ChatCache", "cache invalidation failed", map[string]interface{}{"keys": len(keys), "error": err.Error()})
	}
}

// Message pages (serialized response payloads, not raw rows)

func (c *ChatCache) GetMessagePage(ctx context.Context, roomID int64, page int) ([]byte, bool) {
	return c.get(ctx, RoomPageKey(roomID, page))
}

func (c *ChatCache) SetMessagePage(ctx context.Context, roomID int64, page int, payload []byte) {
	if page > maxInvalidatedPages {
		// Never cache beyond the invalidation horizon.
		return
	}
	c.set(ctx, RoomPageKey(roomID, page), payload, pageTTL(page))
}

// Room lists (first page only)

func (c *ChatCache) GetRoomList(ctx context.Context, userID uuid.UUID) ([]byte, bool) {
	return c.get(ctx, RoomListKey(userID))
}

func (c *ChatCache) SetRoomList(ctx context.Context, userID uuid.UUID, payload []byte) {
	c.set(ctx, RoomListKey(userID), payload, roomListTTL)
}

// Unread counters

func (c *ChatCache) GetUnreadCount(ctx context.Context, roomID int64, userID uuid.UUID) (int64, bool) {
	data, ok := c.get(ctx, RoomUnreadKey(roomID, userID))
	if !ok {
		return 0, false
	}
	count, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (c *ChatCache) SetUnreadCount(ctx context.Context, roomID int64, userID uuid.UUID, count int64) {
	c.set(ctx, RoomUnreadKey(roomID, userID), []byte(strconv.FormatInt(count, 10)), unreadTTL)
}

func (c *ChatCache) GetTotalUnread(ctx context.Context, userID uuid.UUID) (int64, bool) {
	data, ok := c.get(ctx, TotalUnreadKey(userID))
	if !ok {
		return 0, false
	}
	count, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (c *ChatCache) SetTotalUnread(ctx context.Context, userID uuid.UUID, count int64) {
	c.set(ctx, TotalUnreadKey(userID), []byte(strconv.FormatInt(count, 10)), unreadTTL)
}

// Invalidation. One DEL per write path, exact keys only.

func (c *ChatCache) InvalidateRoom(ctx context.Context, roomID int64, participants [2]uuid.UUID) {
	c.del(ctx, RoomWriteKeys(roomID, participants))
}

func (c *ChatCache) InvalidateUnread(ctx context.Context, roomID int64, userIDs ...uuid.UUID) {
	c.del(ctx, UnreadKeys(roomID, userIDs...))
}
