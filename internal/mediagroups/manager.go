// Package mediagroups collects the messages of a Telegram album (media group)
// so they can be handled as one submission.
package mediagroups

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
)

const (
	// DefaultProcessDelay is how long a group waits for further items.
	DefaultProcessDelay = 2 * time.Second
	// DefaultMaxGroupSize is Telegram's album limit.
	DefaultMaxGroupSize = 10
	// processTimeout bounds one album handler run.
	processTimeout = 30 * time.Second
)

// ProcessFunc handles one completed group, messages ordered by ID.
type ProcessFunc func(ctx context.Context, groupID string, messages []telego.Message) error

type groupState struct {
	mu       sync.Mutex
	messages []telego.Message
	timer    *time.Timer
	// closed is set once the group was taken for processing or dropped.
	closed bool
}

// Manager buffers album items until the group has been quiet for the
// configured delay, then hands them to the ProcessFunc once. Every new item
// restarts the delay.
type Manager struct {
	handler ProcessFunc
	delay   time.Duration
	maxSize int

	baseCtx context.Context
	groups  sync.Map // map[string]*groupState
	wg      sync.WaitGroup
}

// NewManager creates a manager. Handlers run with a context derived from ctx.
func NewManager(ctx context.Context, handler ProcessFunc, delay time.Duration, maxSize int) (*Manager, error) {
	if handler == nil {
		return nil, fmt.Errorf("media group handler cannot be nil")
	}
	if delay <= 0 {
		delay = DefaultProcessDelay
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxGroupSize
	}
	return &Manager{handler: handler, delay: delay, maxSize: maxSize, baseCtx: ctx}, nil
}

// HandleMessage adds message to its group and restarts the group's delay.
// Duplicates and items over the size limit are dropped.
func (m *Manager) HandleMessage(message telego.Message) {
	groupID := message.MediaGroupID
	if groupID == "" {
		return
	}

	for {
		val, _ := m.groups.LoadOrStore(groupID, &groupState{})
		state := val.(*groupState)

		state.mu.Lock()
		if state.closed {
			// Taken between LoadOrStore and Lock; start a new group.
			state.mu.Unlock()
			continue
		}
		m.addLocked(groupID, state, message)
		state.mu.Unlock()
		return
	}
}

func (m *Manager) addLocked(groupID string, state *groupState, message telego.Message) {
	for _, existing := range state.messages {
		if existing.MessageID == message.MessageID {
			return
		}
	}
	if len(state.messages) >= m.maxSize {
		log.Printf("[MediaGroupManager Group:%s] Group limit (%d) reached, message %d dropped.", groupID, m.maxSize, message.MessageID)
		return
	}
	state.messages = append(state.messages, message)

	switch {
	case state.timer == nil:
		m.wg.Add(1)
		state.timer = time.AfterFunc(m.delay, func() {
			defer m.wg.Done()
			m.process(groupID, state)
		})
	case state.timer.Stop():
		state.timer.Reset(m.delay)
	default:
		// The timer already fired; process has not taken the group yet and
		// will include this message.
	}
}

func (m *Manager) process(groupID string, state *groupState) {
	messages := m.takeGroup(groupID, state)
	if len(messages) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(m.baseCtx, processTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[MediaGroupManager Group:%s] PANIC recovered: %v", groupID, r)
			sentry.CurrentHub().Recover(r)
		}
	}()

	if err := m.handler(ctx, groupID, messages); err != nil {
		log.Printf("[MediaGroupManager Group:%s] Error processing group: %v", groupID, err)
		sentry.CaptureException(fmt.Errorf("media group %s: %w", groupID, err))
	}
}

// takeGroup closes state, removes it from the map and returns its messages
// sorted by ID.
func (m *Manager) takeGroup(groupID string, state *groupState) []telego.Message {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.closed {
		return nil
	}
	state.closed = true
	state.timer = nil
	m.groups.CompareAndDelete(groupID, state)

	messages := append([]telego.Message(nil), state.messages...)
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].MessageID < messages[j].MessageID
	})
	return messages
}

// Pending returns the number of groups still waiting to be processed.
func (m *Manager) Pending() int {
	n := 0
	m.groups.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Shutdown stops waiting timers, dropping their groups, and waits for
// groups already being processed.
func (m *Manager) Shutdown() {
	stopped := 0
	m.groups.Range(func(key, value any) bool {
		state := value.(*groupState)
		state.mu.Lock()
		// A timer that already fired is left to finish its group.
		if state.timer != nil && state.timer.Stop() {
			stopped++
			m.wg.Done()
			state.timer = nil
			state.closed = true
			m.groups.CompareAndDelete(key, state)
		}
		state.mu.Unlock()
		return true
	})
	m.wg.Wait()
	log.Printf("[MediaGroupManager] Shutdown complete. Stopped %d pending group(s).", stopped)
}
