package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// PresenceRepository tracks which users currently hold an open chat
// connection on this instance. Entries expire on their own so a crashed
// connection cannot leave a user online forever; the hub refreshes them on
// join and on inbound activity.
type PresenceRepository struct {
	cache *cache.Cache
}

const presenceTTL = 2 * time.Minute

func NewPresenceRepository() *PresenceRepository {
	c := cache.New(presenceTTL, 5*time.Minute)
	return &PresenceRepository{cache: c}
}

func (r *PresenceRepository) MarkOnline(userID uuid.UUID) {
	r.cache.Set(userID.String(), time.Now(), cache.DefaultExpiration)
}

func (r *PresenceRepository) MarkOffline(userID uuid.UUID) {
	r.cache.Delete(userID.String())
}

func (r *PresenceRepository) IsOnline(userID uuid.UUID) bool {
	_, found := r.cache.Get(userID.String())
	return found
}
