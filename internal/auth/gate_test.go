package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const adminID int64 = 1001

// MockSessions is a mock for database.AdminSessionRepository
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) SetAdminSession(ctx context.Context, userID int64, loggedIn bool) error {
	args := m.Called(ctx, userID, loggedIn)
	return args.Error(0)
}

func (m *MockSessions) IsAdminLoggedIn(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// memorySessions keeps the flag in a map so login/logout round trips can be observed.
type memorySessions struct {
	flags map[int64]bool
}

func (m *memorySessions) SetAdminSession(_ context.Context, userID int64, loggedIn bool) error {
	m.flags[userID] = loggedIn
	return nil
}

func (m *memorySessions) IsAdminLoggedIn(_ context.Context, userID int64) (bool, error) {
	return m.flags[userID], nil
}

func TestNewGate_Validation(t *testing.T) {
	sessions := &MockSessions{}

	_, err := NewGate(0, sessions, "pw", "")
	assert.Error(t, err)
	_, err = NewGate(adminID, nil, "pw", "")
	assert.Error(t, err)
	_, err = NewGate(adminID, sessions, "", "")
	assert.Error(t, err)
	_, err = NewGate(adminID, sessions, "", "not-a-bcrypt-hash")
	assert.Error(t, err)

	g, err := NewGate(adminID, sessions, "pw", "")
	require.NoError(t, err)
	assert.Equal(t, adminID, g.AdminID())
}

func TestIsAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("non privileged never reaches the store", func(t *testing.T) {
		sessions := &MockSessions{}
		g, _ := NewGate(adminID, sessions, "pw", "")

		ok, err := g.IsAdmin(ctx, 99)
		require.NoError(t, err)
		assert.False(t, ok)
		sessions.AssertNotCalled(t, "IsAdminLoggedIn", mock.Anything, mock.Anything)
	})

	t.Run("privileged and logged in", func(t *testing.T) {
		sessions := &MockSessions{}
		sessions.On("IsAdminLoggedIn", ctx, adminID).Return(true, nil).Once()
		g, _ := NewGate(adminID, sessions, "pw", "")

		ok, err := g.IsAdmin(ctx, adminID)
		require.NoError(t, err)
		assert.True(t, ok)
		sessions.AssertExpectations(t)
	})

	t.Run("privileged but logged out", func(t *testing.T) {
		sessions := &MockSessions{}
		sessions.On("IsAdminLoggedIn", ctx, adminID).Return(false, nil).Once()
		g, _ := NewGate(adminID, sessions, "pw", "")

		ok, err := g.IsAdmin(ctx, adminID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("store failure denies", func(t *testing.T) {
		sessions := &MockSessions{}
		sessions.On("IsAdminLoggedIn", ctx, adminID).Return(false, errors.New("timeout")).Once()
		g, _ := NewGate(adminID, sessions, "pw", "")

		ok, err := g.IsAdmin(ctx, adminID)
		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("non privileged is denied before password check", func(t *testing.T) {
		sessions := &MockSessions{}
		g, _ := NewGate(adminID, sessions, "pw", "")

		err := g.Login(ctx, 99, "pw")
		assert.ErrorIs(t, err, ErrNotPrivileged)
		sessions.AssertNotCalled(t, "SetAdminSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong password", func(t *testing.T) {
		sessions := &MockSessions{}
		g, _ := NewGate(adminID, sessions, "pw", "")

		err := g.Login(ctx, adminID, "nope")
		assert.ErrorIs(t, err, ErrWrongPassword)
		sessions.AssertNotCalled(t, "SetAdminSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("plain password with surrounding spaces", func(t *testing.T) {
		sessions := &MockSessions{}
		sessions.On("SetAdminSession", ctx, adminID, true).Return(nil).Once()
		g, _ := NewGate(adminID, sessions, "pw", "")

		require.NoError(t, g.Login(ctx, adminID, "  pw \n"))
		sessions.AssertExpectations(t)
	})

	t.Run("bcrypt hash", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
		require.NoError(t, err)
		sessions := &MockSessions{}
		sessions.On("SetAdminSession", ctx, adminID, true).Return(nil).Once()
		g, err := NewGate(adminID, sessions, "ignored", string(hash))
		require.NoError(t, err)

		assert.ErrorIs(t, g.Login(ctx, adminID, "ignored"), ErrWrongPassword)
		require.NoError(t, g.Login(ctx, adminID, "s3cret"))
		sessions.AssertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		sessions := &MockSessions{}
		sessions.On("SetAdminSession", ctx, adminID, true).Return(errors.New("down")).Once()
		g, _ := NewGate(adminID, sessions, "pw", "")

		err := g.Login(ctx, adminID, "pw")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrWrongPassword)
	})
}

func TestLogoutIsDurable(t *testing.T) {
	ctx := context.Background()
	sessions := &memorySessions{flags: map[int64]bool{}}
	g, _ := NewGate(adminID, sessions, "pw", "")

	require.NoError(t, g.Login(ctx, adminID, "pw"))
	ok, _ := g.IsAdmin(ctx, adminID)
	assert.True(t, ok)

	require.NoError(t, g.Logout(ctx, adminID))
	ok, _ = g.IsAdmin(ctx, adminID)
	assert.False(t, ok)

	fresh, _ := NewGate(adminID, sessions, "pw", "")
	ok, _ = fresh.IsAdmin(ctx, adminID)
	assert.False(t, ok)

	assert.ErrorIs(t, g.Logout(ctx, 99), ErrNotPrivileged)
}
