package cache

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyFormats(t *testing.T) {
	userID := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	assert.Equal(t, "chat:room:42:messages:page:3", RoomPageKey(42, 3))
	assert.Equal(t, "chat:room:42:unread:11111111-2222-3333-4444-555555555555", RoomUnreadKey(42, userID))
	assert.Equal(t, "chat:total_unread:11111111-2222-3333-4444-555555555555", TotalUnreadKey(userID))
	assert.Equal(t, "chat:rooms:user:11111111-2222-3333-4444-555555555555", RoomListKey(userID))
}

func TestRoomWriteKeysCoverEveryCachedPage(t *testing.T) {
	participants := [2]uuid.UUID{uuid.New(), uuid.New()}

	keys := RoomWriteKeys(7, participants)
	assert.Len(t, keys, maxInvalidatedPages+2)

	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		seen[key] = true
	}
	for page := 1; page <= maxInvalidatedPages; page++ {
		assert.True(t, seen[RoomPageKey(7, page)], fmt.Sprintf("page %d missing", page))
	}
	assert.True(t, seen[RoomListKey(participants[0])])
	assert.True(t, seen[RoomListKey(participants[1])])
}

func TestUnreadKeysPerUser(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()

	keys := UnreadKeys(9, userA, userB)
	assert.ElementsMatch(t, []string{
		RoomUnreadKey(9, userA),
		TotalUnreadKey(userA),
		RoomUnreadKey(9, userB),
		TotalUnreadKey(userB),
	}, keys)
}
