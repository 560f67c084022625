// Package listener runs the live chat polling loop: it reads chat pages,
// drops redelivered and self-authored events, records prayer requests and
// acknowledges them in the chat.
package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"prayer_bot/internal/filter"
	"prayer_bot/internal/model"
	"prayer_bot/internal/partition"
	"prayer_bot/internal/reply"
	"prayer_bot/internal/storage"
	"prayer_bot/internal/telemetry"
	"prayer_bot/internal/text"
)

// Defaults applied by New.
const (
	DefaultBudget        = 4 * time.Hour
	DefaultBackoff       = 5 * time.Second
	DefaultPartitionName = "Prayer Requests"
)

// SessionResolver finds the live chat of the currently running broadcast.
// It returns model.ErrNoActiveSession (or an empty id) when nothing is live.
type SessionResolver interface {
	FindActiveSession(ctx context.Context) (string, error)
}

// Channel reads chat pages and posts messages into a live chat.
type Channel interface {
	ListEvents(ctx context.Context, chatID, cursor string) (model.Page, error)
	PostMessage(ctx context.Context, chatID, text string) error
}

// Notifier is told about every accepted request.
type Notifier interface {
	NotifyRequest(ctx context.Context, req model.PrayerRequest) error
}

// Sleeper waits between polls. It returns early with ctx.Err() on cancellation.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f(ctx, d).
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Listener polls one live chat until its runtime budget is spent.
type Listener struct {
	resolver   SessionResolver
	channel    Channel
	sink       storage.Sink
	notifier   Notifier
	classifier *filter.Classifier
	identities *filter.IdentitySet
	composer   *reply.Composer
	naming     partition.Naming
	staticName string
	budget     time.Duration
	backoff    time.Duration
	sleeper    Sleeper
	now        func() time.Time
	log        *slog.Logger
}

// New creates a Listener with the default keywords, templates, monthly
// partitions and a four hour budget.
func New(resolver SessionResolver, channel Channel, sink storage.Sink, log *slog.Logger) *Listener {
	return &Listener{
		resolver:   resolver,
		channel:    channel,
		sink:       sink,
		classifier: filter.NewClassifier(filter.DefaultKeywords),
		identities: filter.NewIdentitySet(nil),
		composer:   reply.New(reply.DefaultTemplates, nil),
		naming:     partition.Monthly,
		staticName: DefaultPartitionName,
		budget:     DefaultBudget,
		backoff:    DefaultBackoff,
		sleeper:    timerSleeper{},
		now:        time.Now,
		log:        log,
	}
}

// SetBudget overrides the wall-clock runtime budget.
func (l *Listener) SetBudget(d time.Duration) { l.budget = d }

// SetIdentities sets the bot's own identities, whose messages are ignored.
func (l *Listener) SetIdentities(s *filter.IdentitySet) { l.identities = s }

// SetPartitionNaming sets how the log partition is named.
func (l *Listener) SetPartitionNaming(n partition.Naming, staticName string) {
	l.naming = n
	l.staticName = staticName
}

// SetClassifier replaces the request classifier.
func (l *Listener) SetClassifier(c *filter.Classifier) { l.classifier = c }

// SetComposer replaces the reply composer.
func (l *Listener) SetComposer(c *reply.Composer) { l.composer = c }

// SetNotifier sets an optional notifier for accepted requests.
func (l *Listener) SetNotifier(n Notifier) { l.notifier = n }

// SetSleeper replaces the delay strategy used between polls and after errors.
func (l *Listener) SetSleeper(s Sleeper) { l.sleeper = s }

// SetClock replaces the time source.
func (l *Listener) SetClock(now func() time.Time) { l.now = now }

// session is the mutable state of one Run.
type session struct {
	chatID    string
	partition string
	cursor    string
	seen      map[string]struct{}
	deadline  time.Time
}

// Run resolves the live chat and polls it until the budget is spent.
// It returns nil when the budget expires, model.ErrNoActiveSession when
// nothing is live, and the terminal error otherwise. Transient read errors
// never end the loop.
func (l *Listener) Run(ctx context.Context) error {
	deadline := l.now().Add(l.budget)

	chatID, err := l.resolver.FindActiveSession(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNoActiveSession) {
			return err
		}
		return fmt.Errorf("find active session: %w", err)
	}
	if chatID == "" {
		return model.ErrNoActiveSession
	}
	l.log.Info("connected to live chat", "chat_id", chatID)

	s := &session{
		chatID:    chatID,
		partition: partition.Resolve(l.naming, l.staticName, l.now()),
		seen:      make(map[string]struct{}),
		deadline:  deadline,
	}
	if err := l.sink.EnsurePartition(ctx, s.partition); err != nil {
		l.log.Error("ensure log partition", "partition", s.partition, "error", err)
	}

	l.log.Info("listening for live chat messages", "partition", s.partition, "until", s.deadline.Format(time.RFC3339))

	for l.now().Before(s.deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := l.poll(ctx, s)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if isTerminal(err) {
			return err
		}
		telemetry.PollErrors.Inc()
		l.log.Error("poll live chat", "chat_id", s.chatID, "retry_in", l.backoff, "error", err)
		if err := l.sleeper.Sleep(ctx, l.backoff); err != nil {
			return err
		}
	}
	return nil
}

func isTerminal(err error) bool {
	return errors.Is(err, model.ErrChatClosed) || errors.Is(err, model.ErrUnauthorized)
}

// poll fetches one page, handles its events in order and waits the
// server-suggested interval. The cursor only advances on success.
func (l *Listener) poll(ctx context.Context, s *session) error {
	page, err := l.channel.ListEvents(ctx, s.chatID, s.cursor)
	if err != nil {
		return fmt.Errorf("list chat events: %w", err)
	}
	telemetry.PagesFetched.Inc()

	for _, ev := range page.Events {
		l.handleEvent(ctx, s, ev)
	}

	s.cursor = page.NextCursor
	return l.sleeper.Sleep(ctx, page.PollInterval)
}

func (l *Listener) handleEvent(ctx context.Context, s *session, ev model.ChatEvent) {
	if _, ok := s.seen[ev.ID]; ok {
		telemetry.DuplicateEvents.Inc()
		return
	}
	s.seen[ev.ID] = struct{}{}
	telemetry.EventsSeen.Inc()

	if !ev.HasText {
		return
	}

	author := strings.TrimSpace(text.Normalize(ev.AuthorName))
	msg := strings.TrimSpace(text.Normalize(ev.Text))

	if l.identities.Contains(author) {
		telemetry.BotEvents.Inc()
		return
	}
	if !l.classifier.IsRequest(msg) {
		return
	}

	telemetry.RequestsDetected.Inc()
	l.log.Info("prayer request detected", "author", author, "event_id", ev.ID)

	req := model.PrayerRequest{SubmittedAt: l.now(), Name: author, Text: msg}

	if err := l.sink.AppendRow(ctx, s.partition, req.Row()); err != nil {
		telemetry.SinkFailures.Inc()
		l.log.Error("append prayer request", "partition", s.partition, "event_id", ev.ID, "error", err)
	} else {
		telemetry.RowsAppended.Inc()
		l.log.Debug("prayer request recorded", "partition", s.partition, "event_id", ev.ID)
	}

	ack := text.Normalize(l.composer.Compose(author))
	if err := l.channel.PostMessage(ctx, s.chatID, ack); err != nil {
		telemetry.ReplyFailures.Inc()
		l.log.Error("send reply", "chat_id", s.chatID, "event_id", ev.ID, "error", err)
	} else {
		telemetry.RepliesSent.Inc()
		l.log.Debug("reply sent", "event_id", ev.ID)
	}

	if l.notifier != nil {
		if err := l.notifier.NotifyRequest(ctx, req); err != nil {
			l.log.Error("notify prayer team", "event_id", ev.ID, "error", err)
		}
	}
}
