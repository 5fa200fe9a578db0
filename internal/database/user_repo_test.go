package database

import (
	"context"
	"testing"
	"time"

	"contactdesk-bot/internal/database/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func upsertedResponse() bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: 1},
		bson.E{Key: "nModified", Value: 0},
		bson.E{Key: "upserted", Value: bson.A{
			bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: primitive.NewObjectID()}},
		}},
	)
}

func matchedResponse() bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: 1},
		bson.E{Key: "nModified", Value: 0},
	)
}

func countResponse(ns string, n int64) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func TestAddUser(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()
	user := models.User{UserID: 42, Username: "alice", FirstName: "Alice"}

	mt.Run("new user", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(upsertedResponse())

		added, err := store.AddUser(ctx, user)
		require.NoError(mt, err)
		assert.True(mt, added)

		cmd := mt.GetStartedEvent()
		require.NotNil(mt, cmd)
		assert.Equal(mt, "update", cmd.CommandName)
	})

	mt.Run("second call is a no-op", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(upsertedResponse(), matchedResponse())

		first, err := store.AddUser(ctx, user)
		require.NoError(mt, err)
		second, err := store.AddUser(ctx, user)
		require.NoError(mt, err)

		assert.True(mt, first)
		assert.False(mt, second)
	})

	mt.Run("duplicate key race", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		added, err := store.AddUser(ctx, user)
		require.NoError(mt, err)
		assert.False(mt, added)
	})

	mt.Run("write failure", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Message: "shutdown in progress",
			Name:    "ShutdownInProgress",
		}))

		added, err := store.AddUser(ctx, user)
		require.Error(mt, err)
		assert.False(mt, added)
	})
}

func TestGetUser(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()
	ns := "db.users"

	mt.Run("found", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "user_id", Value: int64(42)},
			{Key: "username", Value: "alice"},
			{Key: "first_name", Value: "Alice"},
			{Key: "created_at", Value: created},
		}))

		user, err := store.GetUser(ctx, 42)
		require.NoError(mt, err)
		assert.Equal(mt, int64(42), user.UserID)
		assert.Equal(mt, "alice", user.Username)
		assert.True(mt, created.Equal(user.CreatedAt))
	})

	mt.Run("missing", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		user, err := store.GetUser(ctx, 7)
		assert.Nil(mt, user)
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestUserExistsAndCount(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()
	ns := "db.users"

	mt.Run("exists", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(countResponse(ns, 1))

		ok, err := store.UserExists(ctx, 42)
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("absent", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(countResponse(ns, 0))

		ok, err := store.UserExists(ctx, 42)
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("count", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(countResponse(ns, 3))

		n, err := store.CountUsers(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})
}

func TestListUsers(t *testing.T) {
	mt := newMockT(t)

	mt.Run("decodes all rows", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch,
			bson.D{{Key: "user_id", Value: int64(1)}, {Key: "first_name", Value: "A"}},
			bson.D{{Key: "user_id", Value: int64(2)}, {Key: "first_name", Value: "B"}},
		))

		users, err := store.ListUsers(context.Background())
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, int64(1), users[0].UserID)
		assert.Equal(mt, "B", users[1].FirstName)
	})

	mt.Run("empty", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		users, err := store.ListUsers(context.Background())
		require.NoError(mt, err)
		assert.Empty(mt, users)
	})
}

func TestEnsureSchema(t *testing.T) {
	mt := newMockT(t)

	mt.Run("creates indexes on every collection", func(mt *mtest.T) {
		order := schemaOrder()
		for range order {
			mt.AddMockResponses(mtest.CreateSuccessResponse())
		}

		require.NoError(mt, EnsureSchema(context.Background(), mt.DB))

		for _, name := range order {
			evt := mt.GetStartedEvent()
			require.NotNil(mt, evt)
			assert.Equal(mt, "createIndexes", evt.CommandName)
			assert.Equal(mt, name, evt.Command.Lookup("createIndexes").StringValue())
		}
	})

	mt.Run("stops on failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Message: "not authorized",
			Name:    "Unauthorized",
		}))

		err := EnsureSchema(context.Background(), mt.DB)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "users")
	})
}
