package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"support-chat-be/internal/cache"
	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/repository/contract"
	"support-chat-be/internal/repository/unitofwork"
	"support-chat-be/pkg/events"

	"github.com/google/uuid"
)

// In-memory doubles for the store, broadcaster and activity pipeline.

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeStore struct {
	users    map[uuid.UUID]*entity.User
	rooms    map[int64]*entity.ChatRoom
	messages map[int64]*entity.ChatMessage

	// logs is written from consumer goroutines.
	mu   sync.Mutex
	logs []*entity.SystemLog

	nextRoomID    int64
	nextMessageID int64
}

func (s *fakeStore) logCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}

func (s *fakeStore) lastLog() *entity.SystemLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.logs) == 0 {
		return nil
	}
	return s.logs[len(s.logs)-1]
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uuid.UUID]*entity.User),
		rooms:    make(map[int64]*entity.ChatRoom),
		messages: make(map[int64]*entity.ChatMessage),
	}
}

func (s *fakeStore) addUser(role string) *entity.User {
	u := &entity.User{
		Id:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		FullName: "User " + role,
		Role:     role,
		Status:   entity.StatusActive,
	}
	s.users[u.Id] = u
	return u
}

func (s *fakeStore) addRoom(customer, staff *entity.User) *entity.ChatRoom {
	s.nextRoomID++
	room := &entity.ChatRoom{
		Id:        s.nextRoomID,
		UserId:    customer.Id,
		StaffId:   staff.Id,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.rooms[room.Id] = room
	return room
}

// Unit of work over the fake store.

type fakeUow struct{ store *fakeStore }

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository               { return &fakeUserRepo{u.store} }
func (u *fakeUow) ChatRoomRepository() contract.ChatRoomRepository       { return &fakeRoomRepo{u.store} }
func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository { return &fakeMsgRepo{u.store} }
func (u *fakeUow) SystemLogRepository() contract.SystemLogRepository     { return &fakeLogRepo{u.store} }

type fakeFactory struct{ store *fakeStore }

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.store.users[id], nil
}

func (r *fakeUserRepo) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.User, error) {
	var result []*entity.User
	for _, id := range ids {
		if u, ok := r.store.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) FindStaff(ctx context.Context) ([]*entity.User, error) {
	var result []*entity.User
	for _, u := range r.store.users {
		if u.IsStaff() {
			result = append(result, u)
		}
	}
	return result, nil
}

type fakeRoomRepo struct{ store *fakeStore }

func (r *fakeRoomRepo) CreateIfAbsent(ctx context.Context, room *entity.ChatRoom) (bool, error) {
	for _, existing := range r.store.rooms {
		if existing.UserId == room.UserId && existing.StaffId == room.StaffId {
			*room = *existing
			return false, nil
		}
	}
	r.store.nextRoomID++
	room.Id = r.store.nextRoomID
	room.CreatedAt = time.Now()
	room.UpdatedAt = time.Now()
	copied := *room
	r.store.rooms[room.Id] = &copied
	return true, nil
}

func (r *fakeRoomRepo) FindById(ctx context.Context, id int64) (*entity.ChatRoom, error) {
	return r.store.rooms[id], nil
}

func (r *fakeRoomRepo) FindByPair(ctx context.Context, userID, staffID uuid.UUID) (*entity.ChatRoom, error) {
	for _, room := range r.store.rooms {
		if room.UserId == userID && room.StaffId == staffID {
			return room, nil
		}
	}
	return nil, nil
}

func (r *fakeRoomRepo) FindForParticipant(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.ChatRoom, error) {
	var rooms []*entity.ChatRoom
	for _, room := range r.store.rooms {
		if room.HasParticipant(userID) {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].UpdatedAt.After(rooms[j].UpdatedAt) })
	if offset >= len(rooms) {
		return nil, nil
	}
	rooms = rooms[offset:]
	if limit < len(rooms) {
		rooms = rooms[:limit]
	}
	return rooms, nil
}

func (r *fakeRoomRepo) CountForParticipant(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, room := range r.store.rooms {
		if room.HasParticipant(userID) {
			count++
		}
	}
	return count, nil
}

func (r *fakeRoomRepo) Touch(ctx context.Context, id int64) error {
	if room, ok := r.store.rooms[id]; ok {
		room.UpdatedAt = time.Now()
	}
	return nil
}

type fakeMsgRepo struct{ store *fakeStore }

func (r *fakeMsgRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.store.nextMessageID++
	message.Id = r.store.nextMessageID
	message.CreatedAt = time.Now()
	copied := *message
	r.store.messages[message.Id] = &copied
	return nil
}

func (r *fakeMsgRepo) FindById(ctx context.Context, id int64) (*entity.ChatMessage, error) {
	return r.store.messages[id], nil
}

func (r *fakeMsgRepo) roomMessages(roomID int64) []*entity.ChatMessage {
	var msgs []*entity.ChatMessage
	for _, m := range r.store.messages {
		if m.RoomId == roomID && !m.IsDeleted {
			msgs = append(msgs, m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Id > msgs[j].Id })
	return msgs
}

func (r *fakeMsgRepo) FindPageForRoom(ctx context.Context, roomID int64, limit, offset int) ([]*entity.ChatMessage, error) {
	msgs := r.roomMessages(roomID)
	if offset >= len(msgs) {
		return nil, nil
	}
	msgs = msgs[offset:]
	if limit < len(msgs) {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (r *fakeMsgRepo) CountForRoom(ctx context.Context, roomID int64) (int64, error) {
	return int64(len(r.roomMessages(roomID))), nil
}

func (r *fakeMsgRepo) LastForRoom(ctx context.Context, roomID int64) (*entity.ChatMessage, error) {
	msgs := r.roomMessages(roomID)
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[0], nil
}

func (r *fakeMsgRepo) Delete(ctx context.Context, id int64) error {
	if m, ok := r.store.messages[id]; ok {
		m.IsDeleted = true
	}
	return nil
}

func (r *fakeMsgRepo) AddRead(ctx context.Context, messageID int64, userID uuid.UUID) error {
	m, ok := r.store.messages[messageID]
	if !ok {
		return nil
	}
	if !m.IsReadBy(userID) {
		m.ReadBy = append(m.ReadBy, userID)
	}
	return nil
}

func (r *fakeMsgRepo) MarkAllRead(ctx context.Context, roomID int64, userID uuid.UUID) error {
	for _, m := range r.store.messages {
		if m.RoomId == roomID && m.SenderId != userID && !m.IsDeleted && !m.IsReadBy(userID) {
			m.ReadBy = append(m.ReadBy, userID)
		}
	}
	return nil
}

func (r *fakeMsgRepo) CountUnread(ctx context.Context, roomID int64, userID uuid.UUID) (int64, error) {
	var count int64
	for _, m := range r.store.messages {
		if m.RoomId == roomID && m.SenderId != userID && !m.IsDeleted && !m.IsReadBy(userID) {
			count++
		}
	}
	return count, nil
}

func (r *fakeMsgRepo) CountTotalUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, m := range r.store.messages {
		room := r.store.rooms[m.RoomId]
		if room == nil || !room.HasParticipant(userID) {
			continue
		}
		if m.SenderId != userID && !m.IsDeleted && !m.IsReadBy(userID) {
			count++
		}
	}
	return count, nil
}

type fakeLogRepo struct{ store *fakeStore }

func (r *fakeLogRepo) Create(ctx context.Context, entry *entity.SystemLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.logs = append(r.store.logs, entry)
	return nil
}

// Collaborator doubles.

type fakeBroadcaster struct{ events []dto.ChatEvent }

func (b *fakeBroadcaster) BroadcastToRoom(ctx context.Context, event dto.ChatEvent) {
	b.events = append(b.events, event)
}

func (b *fakeBroadcaster) lastEvent() *dto.ChatEvent {
	if len(b.events) == 0 {
		return nil
	}
	return &b.events[len(b.events)-1]
}

type recordedActivity struct {
	module    string
	message   string
	eventType string
}

type fakeActivity struct{ records []recordedActivity }

func (a *fakeActivity) Record(ctx context.Context, module, message string, event events.Event) {
	rec := recordedActivity{module: module, message: message}
	if event != nil {
		rec.eventType = event.EventType()
	}
	a.records = append(a.records, rec)
}

type fakeStorage struct{ saved map[string][]byte }

func (s *fakeStorage) Save(data []byte, filename string) (string, error) {
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	path := "chat/test/" + filename
	s.saved[path] = data
	return path, nil
}

func (s *fakeStorage) URL(path string) string {
	return "http://localhost:3000/uploads/" + path
}

type fakePresence struct{ online map[uuid.UUID]bool }

func (p *fakePresence) IsOnline(userID uuid.UUID) bool { return p.online[userID] }

// Test fixture bundling the wired services.

type fixture struct {
	store       *fakeStore
	broadcaster *fakeBroadcaster
	activity    *fakeActivity
	storage     *fakeStorage
	presence    *fakePresence

	rooms    IChatRoomService
	messages IChatMessageService
	users    IUserService
}

func newFixture() *fixture {
	store := newFakeStore()
	factory := &fakeFactory{store: store}
	chatCache := cache.NewChatCache(nil, nopLogger{})
	broadcaster := &fakeBroadcaster{}
	activity := &fakeActivity{}
	attachmentStorage := &fakeStorage{}
	presence := &fakePresence{online: make(map[uuid.UUID]bool)}

	return &fixture{
		store:       store,
		broadcaster: broadcaster,
		activity:    activity,
		storage:     attachmentStorage,
		presence:    presence,
		rooms: NewChatRoomService(
			factory, chatCache, presence, attachmentStorage, activity, nopLogger{}, 20,
		),
		messages: NewChatMessageService(
			factory, chatCache, presence, attachmentStorage, broadcaster, activity, nopLogger{}, 20,
		),
		users: NewUserService(factory, presence),
	}
}
