// Package bot runs the long-polling update loop and hands each update to the
// dialogue router.
package bot

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"contactdesk-bot/internal/locales"
	telegoapi "contactdesk-bot/pkg/telegoapi"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	"go.uber.org/ratelimit"
)

// updateTimeout bounds the processing of a single update.
const updateTimeout = 30 * time.Second

// UpdateHandler processes messages and callback queries.
type UpdateHandler interface {
	HandleMessage(ctx context.Context, message telego.Message) error
	HandleCallbackQuery(ctx context.Context, query telego.CallbackQuery) error
}

// AlbumCollector buffers media group items until the album is complete.
type AlbumCollector interface {
	HandleMessage(message telego.Message)
}

// Bot owns the update loop.
type Bot struct {
	bot         telegoapi.BotAPI
	updatesChan <-chan telego.Update
	handler     UpdateHandler
	albums      AlbumCollector
	debug       bool
	ratelimiter ratelimit.Limiter

	// userLocks serializes updates of one user. An entry lives only while
	// an update of that user is running or waiting.
	locksMu   sync.Mutex
	userLocks map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// Deps holds the dependencies required by the Bot.
type Deps struct {
	Bot         telegoapi.BotAPI
	UpdatesChan <-chan telego.Update
	Handler     UpdateHandler
	Albums      AlbumCollector
	Debug       bool
	// UpdatesRate is the number of updates started per second.
	UpdatesRate int
}

// New creates a new Bot instance from its dependencies.
func New(deps Deps) (*Bot, error) {
	if deps.Bot == nil {
		return nil, fmt.Errorf("telego bot (BotAPI) instance cannot be nil")
	}
	if deps.UpdatesChan == nil {
		return nil, fmt.Errorf("updates channel cannot be nil")
	}
	if deps.Handler == nil {
		return nil, fmt.Errorf("update handler cannot be nil")
	}
	if deps.Albums == nil {
		return nil, fmt.Errorf("album collector cannot be nil")
	}
	rate := deps.UpdatesRate
	if rate <= 0 {
		rate = 20
	}
	return &Bot{
		bot:         deps.Bot,
		updatesChan: deps.UpdatesChan,
		handler:     deps.Handler,
		albums:      deps.Albums,
		debug:       deps.Debug,
		ratelimiter: ratelimit.New(rate),
		userLocks:   make(map[int64]*userLock),
	}, nil
}

// Start processes updates until ctx is done or the channel closes, then
// waits for in-flight updates.
func (b *Bot) Start(ctx context.Context) {
	log.Println("Listening for updates...")

	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		log.Println("All update processing finished.")
	}()

	for {
		select {
		case <-ctx.Done():
			log.Println("Context done, stopping update processing...")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				log.Println("Updates channel closed.")
				return
			}
			b.ratelimiter.Take()
			wg.Add(1)
			go func(up telego.Update) {
				defer wg.Done()
				b.processUpdate(ctx, up)
			}(update)
		}
	}
}

// processUpdate routes one update. Panics are recovered and reported.
func (b *Bot) processUpdate(ctx context.Context, update telego.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC recovered in processUpdate: %v\n%s", r, debug.Stack())
			sentry.CurrentHub().Recover(r)
			sentry.Flush(2 * time.Second)
		}
	}()

	switch {
	case update.Message != nil:
		message := *update.Message
		if message.From == nil {
			log.Printf("Ignoring message %d from chat %d without sender", message.MessageID, message.Chat.ID)
			return
		}
		if message.MediaGroupID != "" {
			b.albums.HandleMessage(message)
			return
		}

		unlock := b.lockUser(message.From.ID)
		defer unlock()

		processingCtx, cancel := context.WithTimeout(ctx, updateTimeout)
		defer cancel()
		if err := b.handler.HandleMessage(processingCtx, message); err != nil {
			logPrefix := fmt.Sprintf("[Message User:%d Msg:%d]", message.From.ID, message.MessageID)
			log.Printf("%s Handler error: %v", logPrefix, err)
			sentry.CaptureException(fmt.Errorf("%s handler error: %w", logPrefix, err))
		}

	case update.CallbackQuery != nil:
		query := *update.CallbackQuery
		unlock := b.lockUser(query.From.ID)
		defer unlock()

		processingCtx, cancel := context.WithTimeout(ctx, updateTimeout)
		defer cancel()
		if err := b.handler.HandleCallbackQuery(processingCtx, query); err != nil {
			logPrefix := fmt.Sprintf("[Callback User:%d QueryID:%s]", query.From.ID, query.ID)
			log.Printf("%s Handler error: %v", logPrefix, err)
			sentry.CaptureException(fmt.Errorf("%s handler error: %w", logPrefix, err))
		}

	default:
		if b.debug {
			log.Printf("Ignoring unhandled update type (ID: %d)", update.UpdateID)
		}
	}
}

// lockUser serializes updates of one user and returns the unlock func.
// The entry is removed when no other update of the user holds or awaits it.
func (b *Bot) lockUser(userID int64) func() {
	b.locksMu.Lock()
	l, ok := b.userLocks[userID]
	if !ok {
		l = &userLock{}
		b.userLocks[userID] = l
	}
	l.refs++
	b.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		b.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(b.userLocks, userID)
		}
		b.locksMu.Unlock()
	}
}

// SetupCommands registers the slash commands shown in the client menu, once
// per loaded language.
func (b *Bot) SetupCommands(ctx context.Context) error {
	commands := func(lang string) []telego.BotCommand {
		localizer := locales.NewLocalizer(lang)
		return []telego.BotCommand{
			{Command: "start", Description: locales.GetMessage(localizer, "CmdStartDescription", nil, nil)},
			{Command: "admin", Description: locales.GetMessage(localizer, "CmdAdminDescription", nil, nil)},
			{Command: "cancel", Description: locales.GetMessage(localizer, "CmdCancelDescription", nil, nil)},
		}
	}

	defaultLang := locales.GetDefaultLanguageTag().String()
	if err := b.bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: commands(defaultLang)}); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	for _, tag := range locales.LanguageTags() {
		lang := tag.String()
		if lang == defaultLang {
			continue
		}
		params := &telego.SetMyCommandsParams{Commands: commands(lang), LanguageCode: lang}
		if err := b.bot.SetMyCommands(ctx, params); err != nil {
			return fmt.Errorf("failed to set bot commands for %s: %w", lang, err)
		}
	}

	log.Println("Bot commands successfully set.")
	return nil
}
