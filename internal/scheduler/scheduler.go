package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"BrentLens/internal/collector"
	"BrentLens/internal/impact"
	"BrentLens/internal/notifier"
	"BrentLens/internal/recorder"
	"BrentLens/internal/render"
	"BrentLens/internal/session"
	"BrentLens/internal/table"
)

// Options tunes what the scheduled tasks and commands produce.
type Options struct {
	Title          string
	Rank           impact.RankOptions
	Chart          render.ChartOptions
	TableRows      int
	DigestOnReload bool
}

// Scheduler manages cron-driven session refreshes and chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Store    *session.Store
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	Opts     Options
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, st *session.Store, tn *notifier.TelegramNotifier, rec recorder.Recorder, opts Options) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Store:    st,
		Notifier: tn,
		Recorder: rec,
		Opts:     opts,
		Ctx:      ctx,
	}
}

// RegisterAll registers the refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RefreshNow reloads the session immediately (startup / manual trigger).
func (s *Scheduler) RefreshNow() error {
	_, err := s.Store.Refresh(s.Ctx)
	return err
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running scheduled refresh")
	sess, err := s.Store.Refresh(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] scheduled refresh: %v", err)
		var le *collector.LoadError
		if errors.As(err, &le) {
			s.trySend("DIGEST", notifier.FormatLoadError(le))
		}
		return
	}
	if s.Opts.DigestOnReload {
		s.trySend("DIGEST", s.digest(sess))
	}
}

func (s *Scheduler) digest(sess *session.Session) string {
	return notifier.FormatSummary(s.Opts.Title, sess.Overlay) + "\n" +
		notifier.FormatImpacts(sess.TopImpacts(s.Opts.Rank))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) notifier.Reply {
	name, arg, _ := strings.Cut(strings.TrimSpace(command), " ")
	if name == "/refresh" {
		if _, err := s.Store.Refresh(ctx); err != nil {
			return s.errorReply(err)
		}
	}

	sess, err := s.Store.Current()
	if err != nil {
		return s.errorReply(err)
	}

	switch name {
	case "/summary", "/refresh":
		return notifier.Reply{Text: notifier.FormatSummary(s.Opts.Title, sess.Overlay)}
	case "/impacts":
		return notifier.Reply{Text: notifier.FormatImpacts(sess.TopImpacts(s.Opts.Rank))}
	case "/events":
		if arg != "" {
			key, err := table.ParseSortKey(arg)
			if err != nil {
				return notifier.Reply{Text: fmt.Sprintf("%v\nColumns: %s", err, joinKeys())}
			}
			if sess, err = s.Store.RequestSort(key); err != nil {
				return s.errorReply(err)
			}
		}
		return notifier.Reply{Text: notifier.FormatEventTable(sess.SortedEvents(), sess.Cursor, s.Opts.TableRows)}
	case "/chart":
		var buf bytes.Buffer
		if err := render.Chart(&buf, sess.Overlay, s.Opts.Chart); err != nil {
			log.Printf("[ERROR] render chart: %v", err)
			return notifier.Reply{Text: fmt.Sprintf("Chart unavailable: %v", err)}
		}
		return notifier.Reply{Text: notifier.FormatHeadline(sess.Overlay) + "\n" + notifier.FormatLegend(), Photo: buf.Bytes()}
	default:
		return notifier.Reply{Text: "Commands:\n• /summary\n• /impacts\n• /events [" + joinKeys() + "]\n• /chart\n• /refresh"}
	}
}

func (s *Scheduler) errorReply(err error) notifier.Reply {
	var le *collector.LoadError
	if errors.As(err, &le) {
		return notifier.Reply{Text: notifier.FormatLoadError(le)}
	}
	return notifier.Reply{Text: fmt.Sprintf("❌ %v", err)}
}

func joinKeys() string {
	keys := make([]string, len(table.Keys))
	for i, k := range table.Keys {
		keys[i] = string(k)
	}
	return strings.Join(keys, "|")
}

func (s *Scheduler) trySend(kind, text string) {
	if !s.Notifier.Enabled() {
		return
	}
	err := s.Notifier.SendWithRetry(s.Ctx, text, 3)
	if err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
	s.recordDelivery(kind, "", err)
}

// RunCommand answers a polled command in the chat and records whether the
// reply was delivered.
func (s *Scheduler) RunCommand(ctx context.Context, command string) error {
	err := s.Notifier.Deliver(ctx, s.HandleCommand(ctx, command))
	s.recordDelivery("COMMAND", command, err)
	return err
}

func (s *Scheduler) recordDelivery(kind, command string, err error) {
	evt := &recorder.DeliveryEvent{
		At:      time.Now(),
		Channel: "telegram",
		Kind:    kind,
		Command: command,
		Success: err == nil,
	}
	if err != nil {
		evt.Error = err.Error()
	}
	if rerr := s.Recorder.RecordDelivery(evt); rerr != nil {
		log.Printf("[ERROR] record delivery: %v", rerr)
	}
}
