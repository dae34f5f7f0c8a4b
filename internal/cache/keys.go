package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// Key derivation is centralized here so every write path's blast radius is
// enumerable: a write invalidates exactly the union of the keys these
// functions can produce for the affected room and its two participants.

// maxInvalidatedPages bounds the page keys a room write deletes. Pages deeper
// than this are never cached (see pageTTL), so the set stays exact.
const maxInvalidatedPages = 20

func RoomPageKey(roomID int64, page int) string {
	return fmt.Sprintf("chat:room:%d:messages:page:%d", roomID, page)
}

func RoomUnreadKey(roomID int64, userID uuid.UUID) string {
	return fmt.Sprintf("chat:room:%d:unread:%s", roomID, userID)
}

func TotalUnreadKey(userID uuid.UUID) string {
	return fmt.Sprintf("chat:total_unread:%s", userID)
}

func RoomListKey(userID uuid.UUID) string {
	return fmt.Sprintf("chat:rooms:user:%s", userID)
}

// RoomWriteKeys enumerates every key a message write into the room can make
// stale: all cached history pages plus both participants' room lists.
func RoomWriteKeys(roomID int64, participants [2]uuid.UUID) []string {
	keys := make([]string, 0, maxInvalidatedPages+2)
	for page := 1; page <= maxInvalidatedPages; page++ {
		keys = append(keys, RoomPageKey(roomID, page))
	}
	for _, userID := range participants {
		keys = append(keys, RoomListKey(userID))
	}
	return keys
}

// UnreadKeys enumerates the unread counters affected when the room's unread
// state changes for the given users.
func UnreadKeys(roomID int64, userIDs ...uuid.UUID) []string {
	keys := make([]string, 0, len(userIDs)*2)
	for _, userID := range userIDs {
		keys = append(keys, RoomUnreadKey(roomID, userID), TotalUnreadKey(userID))
	}
	return keys
}
