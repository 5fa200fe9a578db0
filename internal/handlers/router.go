package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"contactdesk-bot/internal/database"
	"contactdesk-bot/internal/locales"
	"contactdesk-bot/internal/session"
	telegoapi "contactdesk-bot/pkg/telegoapi"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// redactedText replaces admin password replies in the message log.
const redactedText = "[redacted]"

// defaultBroadcastTimeout bounds one broadcast run. Broadcasts outlive the
// per-update timeout of the update loop but stop with BaseContext.
const defaultBroadcastTimeout = time.Hour

// broadcastReportTimeout bounds the result message sent after a broadcast.
const broadcastReportTimeout = 10 * time.Second

// Deps holds the dependencies required by the MessageHandler.
type Deps struct {
	Bot         telegoapi.BotAPI
	Store       database.Store
	Tracker     StateTracker
	Relay       Relay
	Broadcaster Broadcaster
	Gate        AdminGate
	Events      EventPublisher
	ChannelURL  string
	Debug       bool
	// BaseContext is the process lifetime context. Defaults to
	// context.Background().
	BaseContext context.Context
}

// MessageHandler is the dialogue router. It records every inbound event,
// resolves labels and commands to intents, completes open captures and
// answers media, contact and location messages.
type MessageHandler struct {
	bot         telegoapi.BotAPI
	store       database.Store
	tracker     StateTracker
	relay       Relay
	broadcaster Broadcaster
	gate        AdminGate
	events      EventPublisher
	channelURL  string
	debug       bool

	intents          map[Intent]intentRoute
	captures         map[session.State]func(ctx context.Context, req *request) error
	resolver         *LabelResolver
	baseCtx          context.Context
	broadcastTimeout time.Duration
}

// request carries one inbound message through the router.
type request struct {
	msg       telego.Message
	userID    int64
	chatID    int64
	localizer *i18n.Localizer
	isNew     bool
	logPrefix string
}

// NewMessageHandler validates deps and builds the intent table.
// locales.Init must have been called.
func NewMessageHandler(deps Deps) (*MessageHandler, error) {
	if deps.Bot == nil {
		return nil, fmt.Errorf("telego bot (BotAPI) instance cannot be nil")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("record store cannot be nil")
	}
	if deps.Tracker == nil {
		return nil, fmt.Errorf("state tracker cannot be nil")
	}
	if deps.Relay == nil {
		return nil, fmt.Errorf("relay cannot be nil")
	}
	if deps.Broadcaster == nil {
		return nil, fmt.Errorf("broadcaster cannot be nil")
	}
	if deps.Gate == nil {
		return nil, fmt.Errorf("admin gate cannot be nil")
	}
	if deps.Events == nil {
		return nil, fmt.Errorf("event publisher cannot be nil")
	}

	h := &MessageHandler{
		bot:              deps.Bot,
		store:            deps.Store,
		tracker:          deps.Tracker,
		relay:            deps.Relay,
		broadcaster:      deps.Broadcaster,
		gate:             deps.Gate,
		events:           deps.Events,
		channelURL:       deps.ChannelURL,
		debug:            deps.Debug,
		baseCtx:          deps.BaseContext,
		broadcastTimeout: defaultBroadcastTimeout,
	}
	if h.baseCtx == nil {
		h.baseCtx = context.Background()
	}
	h.intents = h.intentTable()
	h.captures = h.captureTable()

	labels := make(map[Intent]string, len(h.intents))
	for intent, route := range h.intents {
		labels[intent] = route.label
	}
	h.resolver = NewLabelResolver(labels)
	return h, nil
}

// HandleMessage processes one non-album message. Precedence: labels and
// commands, then the open capture (text only), then message shape, then the
// fallback reply.
func (h *MessageHandler) HandleMessage(ctx context.Context, message telego.Message) error {
	if message.From == nil {
		log.Printf("Ignoring message %d from chat %d without sender", message.MessageID, message.Chat.ID)
		return nil
	}

	req := h.newRequest(ctx, message)
	state := h.tracker.Get(req.userID)
	intent, isIntent := h.resolver.Resolve(message.Text)

	entry := inboundLogEntry(message)
	if state == session.StateAdminPassword && !isIntent && message.Text != "" {
		entry.Text = redactedText
	}
	h.logInbound(ctx, req, entry)

	switch {
	case isIntent:
		return h.dispatchIntent(ctx, req, intent)
	case state != session.StateNone && message.Text != "":
		return h.completeCapture(ctx, req, state)
	case len(message.Photo) > 0:
		return h.handlePhoto(ctx, req)
	case message.Video != nil:
		return h.handleVideo(ctx, req)
	case message.Document != nil:
		return h.handleDocument(ctx, req)
	case message.Contact != nil:
		return h.handleContact(ctx, req)
	case message.Location != nil:
		return h.handleLocation(ctx, req)
	case message.Text != "":
		return h.reply(ctx, req.chatID, h.msg(req, "MsgFallback", nil), nil)
	default:
		if h.debug {
			log.Printf("%s Ignoring unhandled message type (ID: %d)", req.logPrefix, message.MessageID)
		}
		return nil
	}
}

func (h *MessageHandler) newRequest(ctx context.Context, message telego.Message) *request {
	req := &request{
		msg:       message,
		userID:    message.From.ID,
		chatID:    message.Chat.ID,
		localizer: localizerFor(message.From),
		logPrefix: fmt.Sprintf("[Router User:%d]", message.From.ID),
	}
	req.isNew = h.registerUser(ctx, message.From)
	return req
}

func (h *MessageHandler) dispatchIntent(ctx context.Context, req *request, intent Intent) error {
	route, ok := h.intents[intent]
	if !ok {
		return fmt.Errorf("no handler registered for intent %s", intent)
	}
	req.logPrefix = fmt.Sprintf("[Router User:%d Intent:%s]", req.userID, intent)
	if h.debug {
		log.Printf("%s Dispatching", req.logPrefix)
	}

	if route.admin {
		allowed, err := h.requireAdmin(ctx, req)
		if err != nil || !allowed {
			return err
		}
	}
	return route.handle(ctx, req)
}

func (h *MessageHandler) completeCapture(ctx context.Context, req *request, state session.State) error {
	complete, ok := h.captures[state]
	if !ok {
		log.Printf("%s Unknown capture state %q, clearing", req.logPrefix, state)
		h.tracker.Clear(req.userID)
		return h.reply(ctx, req.chatID, h.msg(req, "MsgFallback", nil), nil)
	}
	req.logPrefix = fmt.Sprintf("[Router User:%d Capture:%s]", req.userID, state)
	return complete(ctx, req)
}

// requireAdmin re-checks the admin gate. On denial the user gets the
// "not admin" reply and false is returned.
func (h *MessageHandler) requireAdmin(ctx context.Context, req *request) (bool, error) {
	isAdmin, err := h.gate.IsAdmin(ctx, req.userID)
	if err != nil {
		log.Printf("%s Admin check failed: %v", req.logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s admin check: %w", req.logPrefix, err))
		return false, h.reply(ctx, req.chatID, h.msg(req, "MsgErrorGeneral", nil), nil)
	}
	if !isAdmin {
		log.Printf("%s Denied admin action", req.logPrefix)
		return false, h.reply(ctx, req.chatID, h.msg(req, "MsgErrorRequiresAdmin", nil), nil)
	}
	return true, nil
}

// operatorLocalizer renders texts addressed to the operator.
func operatorLocalizer() *i18n.Localizer {
	return locales.NewLocalizer()
}
