package flow

import (
	"CallService/bot/chat"
	"CallService/bot/chat/commands"
	"CallService/entity"
	"CallService/internal/cache"
	"CallService/internal/lib/format"
	"CallService/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// UnknownStageError is returned when a chat stage record carries a
// value the dispatch table does not know.
type UnknownStageError struct {
	Stage entity.Stage
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown chat stage: %q", e.Stage)
}

type stageHandler func(ctx context.Context, msg *chat.Message, customer *entity.Customer) error

// Manager drives every conversation: the customer intake state machine,
// the attendant queue and the bidirectional relay.
type Manager struct {
	cache     *cache.Service
	messenger chat.Messenger
	commands  *commands.Commands
	filter    *chat.Filter
	events    EventSink
	log       *slog.Logger

	// botNumber resolves the CallCenter record for this instance.
	botNumber string

	handlers map[entity.Stage]stageHandler
	locks    perChatLocks
}

func NewManager(
	cacheService *cache.Service,
	messenger chat.Messenger,
	cmds *commands.Commands,
	filter *chat.Filter,
	botNumber string,
	log *slog.Logger,
) *Manager {
	m := &Manager{
		cache:     cacheService,
		messenger: messenger,
		commands:  cmds,
		filter:    filter,
		botNumber: botNumber,
		log:       log.With(sl.Module("flow.manager")),
	}
	// Static table: stage values outside of it fail with a typed error
	// instead of a silent fallthrough.
	m.handlers = map[entity.Stage]stageHandler{
		entity.StageInitial:     m.initialChat,
		entity.StageSetName:     m.setName,
		entity.StageCheckSector: m.checkSector,
		entity.StageSetSubject:  m.setSubject,
		entity.StageTransaction: m.transactionStage,
	}
	return m
}

// SetEventSink wires the optional transaction event stream.
func (m *Manager) SetEventSink(sink EventSink) {
	m.events = sink
}

// HandleMessage routes one inbound envelope. Messages from the same
// chat are processed in arrival order; different chats proceed
// concurrently.
func (m *Manager) HandleMessage(ctx context.Context, msg *chat.Message) error {
	if m.filter != nil && !m.filter.Allow(msg) {
		return nil
	}

	unlock := m.locks.lock(msg.Wuid)
	defer unlock()

	callCenter, err := m.cache.CallCenter(ctx, m.botNumber)
	if err != nil {
		return fmt.Errorf("resolving call center: %w", err)
	}
	if callCenter == nil {
		return fmt.Errorf("no call center registered for %s", m.botNumber)
	}

	if attendant, ok := m.cache.Attendant.FindByWuid(ctx, msg.Wuid); ok {
		return m.handleAttendant(ctx, attendant, msg)
	}

	customer, err := m.loadCustomer(ctx, msg)
	if err != nil {
		return fmt.Errorf("loading customer: %w", err)
	}

	stage, ok := m.cache.Stage.Find(ctx, msg.Wuid)
	if !ok || stage.Stage == entity.StageFinishedChat {
		return m.initialChat(ctx, msg, customer)
	}

	handler, ok := m.handlers[stage.Stage]
	if !ok {
		return &UnknownStageError{Stage: stage.Stage}
	}
	return handler(ctx, msg, customer)
}

// loadCustomer resolves the sender, creating the record on first
// contact. The profile picture lookup is best-effort.
func (m *Manager) loadCustomer(ctx context.Context, msg *chat.Message) (*entity.Customer, error) {
	if customer, ok := m.cache.Customer.FindByWuid(ctx, msg.Wuid); ok {
		return customer, nil
	}

	pictureURL, err := m.messenger.ProfilePictureURL(ctx, msg.Wuid)
	if err != nil || pictureURL == "" {
		pictureURL = entity.NoImage
	}

	customer, err := m.cache.Customer.Create(ctx, &entity.Customer{
		PushName:          msg.PushName,
		ProfilePictureURL: pictureURL,
		Wuid:              msg.Wuid,
		PhoneNumber:       entity.PhoneFromWuid(msg.Wuid),
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("customer created",
		slog.Int64("customer_id", customer.CustomerID),
		slog.String("wuid", customer.Wuid))
	return customer, nil
}

// sendText pushes a plain text message, logging delivery failures
// without interrupting the flow.
func (m *Manager) sendText(ctx context.Context, wuid, text string, opts *chat.SendOptions) {
	if _, err := m.messenger.SendText(ctx, wuid, text, opts); err != nil {
		m.log.Error("send failed", slog.String("wuid", wuid), sl.Err(err))
	}
}

func delayOpts(d time.Duration) *chat.SendOptions {
	return &chat.SendOptions{Delay: d}
}

// greeting renders the presentation template for the current hour.
func greeting(callCenter *entity.CallCenter, now time.Time) string {
	text := callCenter.Presentation
	text = strings.ReplaceAll(text, entity.PlaceholderBotName, "*"+callCenter.BotName+"*")
	text = strings.ReplaceAll(text, entity.PlaceholderDay, format.TimeDay(now.Hour()))
	return text
}
