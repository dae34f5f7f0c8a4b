package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/model"
	"support-chat-be/internal/repository/unitofwork"
	"support-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Exercises the real Postgres schema: room uniqueness, read-set idempotency
// and the unread counters. Needs DB_CONNECTION_STRING; skipped otherwise.
func TestChatRepositoriesAgainstPostgres(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)

	sqlDB, _ := gormDB.DB()
	require.NoError(t, sqlDB.Ping())

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ChatRoomRepository())
	assert.NotNil(t, uow.ChatMessageRepository())
	assert.NotNil(t, uow.SystemLogRepository())

	// Seed two participants directly; the read model has no create path.
	customer := &model.User{
		Id:       uuid.New(),
		Email:    "it-customer-" + uuid.NewString() + "@example.com",
		FullName: "Integration Customer",
		Role:     "user",
		Status:   "active",
	}
	staff := &model.User{
		Id:       uuid.New(),
		Email:    "it-staff-" + uuid.NewString() + "@example.com",
		FullName: "Integration Staff",
		Role:     "staff",
		Status:   "active",
	}
	require.NoError(t, gormDB.Create(customer).Error)
	require.NoError(t, gormDB.Create(staff).Error)

	t.Run("RoomIsUniquePerPair", func(t *testing.T) {
		room := &entity.ChatRoom{UserId: customer.Id, StaffId: staff.Id}
		created, err := uow.ChatRoomRepository().CreateIfAbsent(ctx, room)
		require.NoError(t, err)
		assert.True(t, created)
		require.NotZero(t, room.Id)

		again := &entity.ChatRoom{UserId: customer.Id, StaffId: staff.Id}
		created, err = uow.ChatRoomRepository().CreateIfAbsent(ctx, again)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, room.Id, again.Id)
	})

	t.Run("UnreadCountersAndReadSets", func(t *testing.T) {
		room := &entity.ChatRoom{UserId: customer.Id, StaffId: staff.Id}
		_, err := uow.ChatRoomRepository().CreateIfAbsent(ctx, room)
		require.NoError(t, err)

		text := "integration hello"
		msg := &entity.ChatMessage{
			RoomId:         room.Id,
			SenderId:       staff.Id,
			Text:           &text,
			AttachmentType: entity.AttachmentNone,
		}
		require.NoError(t, uow.ChatMessageRepository().Create(ctx, msg))
		require.NoError(t, uow.ChatMessageRepository().AddRead(ctx, msg.Id, staff.Id))
		// Re-adding the sender is a no-op thanks to the composite key.
		require.NoError(t, uow.ChatMessageRepository().AddRead(ctx, msg.Id, staff.Id))

		count, err := uow.ChatMessageRepository().CountUnread(ctx, room.Id, customer.Id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		count, err = uow.ChatMessageRepository().CountUnread(ctx, room.Id, staff.Id)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		require.NoError(t, uow.ChatMessageRepository().MarkAllRead(ctx, room.Id, customer.Id))
		require.NoError(t, uow.ChatMessageRepository().MarkAllRead(ctx, room.Id, customer.Id))

		count, err = uow.ChatMessageRepository().CountUnread(ctx, room.Id, customer.Id)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		loaded, err := uow.ChatMessageRepository().FindById(ctx, msg.Id)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.True(t, loaded.IsReadBy(staff.Id))
		assert.True(t, loaded.IsReadBy(customer.Id))
	})
}
