package handlers

import (
	"context"
	"testing"

	"contactdesk-bot/internal/database/models"
	"contactdesk-bot/internal/events"
	"contactdesk-bot/internal/locales"
	"contactdesk-bot/internal/relay"
	"contactdesk-bot/internal/session"
	"contactdesk-bot/pkg/telegoapi/mocks"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testAdminID    int64 = 1001
	testOperatorID int64 = 1001
)

// --- Mocks ---

// MockStore is a mock implementing database.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) AddUser(ctx context.Context, user models.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) UserExists(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]models.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) LogMessage(ctx context.Context, entry models.MessageLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockStore) CountMessages(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) AddSubmission(ctx context.Context, category models.Category, userID int64, text string) error {
	args := m.Called(ctx, category, userID, text)
	return args.Error(0)
}

func (m *MockStore) ListSubmissions(ctx context.Context, category models.Category) ([]models.SubmissionView, error) {
	args := m.Called(ctx, category)
	if rows, ok := args.Get(0).([]models.SubmissionView); ok {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) AddPromoCode(ctx context.Context, code, description string) error {
	args := m.Called(ctx, code, description)
	return args.Error(0)
}

func (m *MockStore) CheckPromoCode(ctx context.Context, code string) (*models.PromoCode, error) {
	args := m.Called(ctx, code)
	if p, ok := args.Get(0).(*models.PromoCode); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) SetAdminSession(ctx context.Context, userID int64, loggedIn bool) error {
	args := m.Called(ctx, userID, loggedIn)
	return args.Error(0)
}

func (m *MockStore) IsAdminLoggedIn(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockRelay is a mock implementing Relay
type MockRelay struct {
	mock.Mock
}

func (m *MockRelay) OperatorID() int64 {
	return testOperatorID
}

func (m *MockRelay) SendText(ctx context.Context, recipient int64, text string) error {
	args := m.Called(ctx, recipient, text)
	return args.Error(0)
}

func (m *MockRelay) ForwardOriginal(ctx context.Context, recipient, sourceChat int64, messageID int) error {
	args := m.Called(ctx, recipient, sourceChat, messageID)
	return args.Error(0)
}

func (m *MockRelay) NotifyOperator(ctx context.Context, fromUserID int64, body string) error {
	args := m.Called(ctx, fromUserID, body)
	return args.Error(0)
}

// MockBroadcaster is a mock implementing Broadcaster
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(ctx context.Context, recipients []int64, text string) relay.BroadcastResult {
	args := m.Called(ctx, recipients, text)
	return args.Get(0).(relay.BroadcastResult)
}

// MockGate is a mock implementing AdminGate
type MockGate struct {
	mock.Mock
}

func (m *MockGate) IsPrivileged(userID int64) bool {
	return userID == testAdminID
}

func (m *MockGate) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGate) Login(ctx context.Context, userID int64, password string) error {
	args := m.Called(ctx, userID, password)
	return args.Error(0)
}

func (m *MockGate) Logout(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockEvents is a mock implementing EventPublisher
type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) PublishSubmission(ctx context.Context, event events.SubmissionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// --- Fixture ---

type fixture struct {
	h           *MessageHandler
	bot         *mocks.MockBot
	store       *MockStore
	relay       *MockRelay
	broadcaster *MockBroadcaster
	gate        *MockGate
	events      *MockEvents
	tracker     *session.Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	locales.Init("uz")

	f := &fixture{
		bot:         &mocks.MockBot{},
		store:       &MockStore{},
		relay:       &MockRelay{},
		broadcaster: &MockBroadcaster{},
		gate:        &MockGate{},
		events:      &MockEvents{},
		tracker:     session.NewTracker(),
	}
	h, err := NewMessageHandler(Deps{
		Bot:         f.bot,
		Store:       f.store,
		Tracker:     f.tracker,
		Relay:       f.relay,
		Broadcaster: f.broadcaster,
		Gate:        f.gate,
		Events:      f.events,
		ChannelURL:  "https://t.me/contactdesk",
	})
	require.NoError(t, err)
	f.h = h
	return f
}

// allowDefaults registers catch-all expectations. Call it after any
// specific expectation so the specific ones match first.
func (f *fixture) allowDefaults() {
	f.store.On("AddUser", mock.Anything, mock.Anything).Return(false, nil).Maybe()
	f.store.On("LogMessage", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.bot.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{}, nil).Maybe()
	f.bot.On("EditMessageText", mock.Anything, mock.Anything).Return(&telego.Message{}, nil).Maybe()
	f.bot.On("AnswerCallbackQuery", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.relay.On("NotifyOperator", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.relay.On("ForwardOriginal", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.events.On("PublishSubmission", mock.Anything, mock.Anything).Return(nil).Maybe()
}

// lastSent returns the params of the most recent SendMessage call.
func (f *fixture) lastSent(t *testing.T) *telego.SendMessageParams {
	t.Helper()
	for i := len(f.bot.Calls) - 1; i >= 0; i-- {
		if f.bot.Calls[i].Method == "SendMessage" {
			return f.bot.Calls[i].Arguments.Get(1).(*telego.SendMessageParams)
		}
	}
	require.FailNow(t, "no message was sent")
	return nil
}

func uz(id string, data map[string]interface{}) string {
	return locales.GetMessage(locales.NewLocalizer("uz"), id, data, nil)
}

func textMessage(userID int64, text string) telego.Message {
	return telego.Message{
		MessageID: 10,
		From:      &telego.User{ID: userID, FirstName: "Ali", Username: "ali", LanguageCode: "uz"},
		Chat:      telego.Chat{ID: userID, Type: "private"},
		Text:      text,
	}
}
