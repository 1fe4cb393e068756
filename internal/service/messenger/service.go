// Package messenger sends messages through a Transport and records every attempt
// in the send log.
package messenger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/metrics"
	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/scheduler"
	"github.com/jmehdipour/wa-assistant/internal/util"
	"go.uber.org/zap"
)

const Version = "1.0.0"

var (
	ErrEmptyMessage          = errors.New("message is empty")
	ErrAttachmentNotFound    = errors.New("attachment not found")
	ErrUnsupportedAttachment = errors.New("unsupported attachment type")
	ErrDeliveryFailed        = errors.New("delivery failed")
)

// Transport delivers one message to a canonical phone. attachment is a local file
// path or empty.
type Transport interface {
	Deliver(ctx context.Context, phone, message, attachment string) error
}

// Directory is the part of the store the messenger needs.
type Directory interface {
	Canonical(raw string) (string, error)
	CountryCode() string
	Now() time.Time
	AppendLogEntry(e model.SendLogEntry) error
	ListContactsByGroup(group string) []model.Contact
	CountContacts() int
	CountToday() int
	SaveSchedule(t model.ScheduledTask) error
	ListSchedules() []model.ScheduledTask
}

type Service struct {
	dir       Directory
	transport Transport

	delay           time.Duration
	sleep           func(ctx context.Context, d time.Duration) error
	attachmentTypes []string
	ownerPhone      string
	log             *zap.Logger
}

type Option func(*Service)

// WithDelay sets the pause between consecutive sends of a batch.
func WithDelay(d time.Duration) Option { return func(s *Service) { s.delay = d } }

func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) { s.sleep = fn }
}

// WithAttachmentTypes restricts attachments to the given extensions (".png").
// No restriction when empty.
func WithAttachmentTypes(exts []string) Option {
	return func(s *Service) {
		s.attachmentTypes = nil
		for _, e := range exts {
			s.attachmentTypes = append(s.attachmentTypes, strings.ToLower(e))
		}
	}
}

func WithOwnerPhone(phone string) Option { return func(s *Service) { s.ownerPhone = phone } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

func New(dir Directory, transport Transport, opts ...Option) *Service {
	s := &Service{
		dir:       dir,
		transport: transport,
		delay:     5 * time.Second,
		sleep:     sleepCtx,
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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

// Result is the outcome of one send within a batch.
type Result struct {
	Phone     string `json:"phone"`               // as given
	Canonical string `json:"canonical,omitempty"` // empty when the phone was rejected
	Sent      bool   `json:"sent"`
	Error     string `json:"error,omitempty"`
}

// SendInstant delivers message to phone right away.
func (s *Service) SendInstant(ctx context.Context, phone, message string) (string, error) {
	return s.send(ctx, phone, message, "", model.TypeInstant)
}

// SendScheduled is SendInstant recorded as a scheduled send.
func (s *Service) SendScheduled(ctx context.Context, phone, message string) (string, error) {
	return s.send(ctx, phone, message, "", model.TypeScheduled)
}

// SendAttachment delivers a local file with message as its caption.
func (s *Service) SendAttachment(ctx context.Context, phone, message, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.log.Error("attachment not found", zap.String("path", path))
		return "", fmt.Errorf("%w: %s", ErrAttachmentNotFound, path)
	}
	if len(s.attachmentTypes) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		ok := false
		for _, allowed := range s.attachmentTypes {
			if ext == allowed {
				ok = true
				break
			}
		}
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedAttachment, ext)
		}
	}

	return s.send(ctx, phone, message, path, model.TypeAttachment)
}

// send canonicalizes, delivers and logs. Rejected input is not logged; a transport
// failure is logged as failed and returned wrapped in ErrDeliveryFailed.
func (s *Service) send(ctx context.Context, phone, message, attachment string, typ model.MessageType) (string, error) {
	entry, err := s.deliver(ctx, "", phone, message, attachment, typ)
	return entry.Phone, err
}

// Deliver sends a queued envelope. The log entry reuses the envelope id so the log and
// the queue can be correlated.
func (s *Service) Deliver(ctx context.Context, env model.Envelope) (model.SendLogEntry, error) {
	typ := model.TypeInstant
	if env.Attachment != "" {
		typ = model.TypeAttachment
	}
	return s.deliver(ctx, env.ID, env.Phone, env.Text, env.Attachment, typ)
}

func (s *Service) deliver(ctx context.Context, id, phone, message, attachment string, typ model.MessageType) (model.SendLogEntry, error) {
	if strings.TrimSpace(message) == "" && attachment == "" {
		return model.SendLogEntry{}, ErrEmptyMessage
	}
	canonical, err := s.dir.Canonical(phone)
	if err != nil {
		return model.SendLogEntry{}, fmt.Errorf("%w: %q", err, phone)
	}

	entry := model.SendLogEntry{
		ID:        id,
		Timestamp: s.dir.Now(),
		Phone:     canonical,
		Message:   message,
		Type:      typ,
		Status:    model.StatusSent,
	}
	if entry.ID == "" {
		entry.ID = util.NewAt(entry.Timestamp)
	}

	derr := s.transport.Deliver(ctx, canonical, message, attachment)
	if derr != nil {
		entry.Status = model.StatusFailed
		entry.Error = derr.Error()
		s.log.Error("delivery failed", zap.String("phone", canonical), zap.String("type", typ.String()), zap.Error(derr))
	} else {
		s.log.Info("message sent", zap.String("phone", canonical), zap.String("type", typ.String()), zap.String("preview", preview(message)))
	}
	metrics.MessagesTotal.WithLabelValues(entry.Status.String(), typ.String()).Inc()

	if err := s.dir.AppendLogEntry(entry); err != nil {
		// the message already left; losing the log line must not turn it into a failure
		s.log.Warn("send log append failed", zap.String("phone", canonical), zap.Error(err))
	}

	if derr != nil {
		return entry, fmt.Errorf("%w: %v", ErrDeliveryFailed, derr)
	}
	return entry, nil
}

func preview(msg string) string {
	r := []rune(msg)
	if len(r) <= 50 {
		return msg
	}
	return string(r[:50]) + "..."
}

// SendMany sends message to every phone in order, pausing between (not after) sends.
// Per-recipient failures are reported in the results; only cancellation stops the batch.
func (s *Service) SendMany(ctx context.Context, phones []string, message string) ([]Result, error) {
	results := make([]Result, 0, len(phones))
	for i, p := range phones {
		if i > 0 {
			if err := s.sleep(ctx, s.delay); err != nil {
				return results, err
			}
		}

		r := Result{Phone: p}
		canonical, err := s.SendInstant(ctx, p, message)
		r.Canonical = canonical
		if err != nil {
			r.Error = err.Error()
		} else {
			r.Sent = true
		}
		results = append(results, r)
	}
	return results, nil
}

// Broadcast sends message to every contact of group. An empty group yields no results.
func (s *Service) Broadcast(ctx context.Context, group, message string) ([]Result, error) {
	contacts := s.dir.ListContactsByGroup(group)
	if len(contacts) == 0 {
		s.log.Warn("no contacts found in group", zap.String("group", group))
		return []Result{}, nil
	}

	phones := make([]string, len(contacts))
	for i, c := range contacts {
		phones[i] = c.Phone
	}

	results, err := s.SendMany(ctx, phones, message)
	s.log.Info("broadcast finished", zap.String("group", group), zap.Int("contacts", len(results)), zap.Int("sent", CountSent(results)))
	return results, err
}

func CountSent(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Sent {
			n++
		}
	}
	return n
}

// Schedule stores a daily message for phone at hhmm and returns the task with its
// next fire time. Scheduling the same phone and time again replaces the message.
func (s *Service) Schedule(phone, message, hhmm string) (model.ScheduledTask, time.Time, error) {
	if strings.TrimSpace(message) == "" {
		return model.ScheduledTask{}, time.Time{}, ErrEmptyMessage
	}
	canonical, err := s.dir.Canonical(phone)
	if err != nil {
		return model.ScheduledTask{}, time.Time{}, fmt.Errorf("%w: %q", err, phone)
	}
	hour, minute, err := scheduler.ParseHHMM(hhmm)
	if err != nil {
		return model.ScheduledTask{}, time.Time{}, err
	}

	now := s.dir.Now()
	task := model.ScheduledTask{
		ID:          model.ScheduleID(canonical, hour, minute),
		Phone:       canonical,
		Message:     message,
		Time:        scheduler.FormatHHMM(hour, minute),
		ScheduledAt: now,
	}
	if err := s.dir.SaveSchedule(task); err != nil {
		return model.ScheduledTask{}, time.Time{}, err
	}

	next := scheduler.NextDaily(now, hour, minute)
	s.log.Info("scheduled message", zap.String("phone", canonical), zap.String("time", task.Time), zap.Time("next", next))
	return task, next, nil
}

// Stats is a snapshot of the directory counters.
type Stats struct {
	Contacts  int `json:"contacts"`
	SentToday int `json:"sent_today"`
	Scheduled int `json:"scheduled"`
}

func (s *Service) Stats() Stats {
	return Stats{
		Contacts:  s.dir.CountContacts(),
		SentToday: s.dir.CountToday(),
		Scheduled: len(s.dir.ListSchedules()),
	}
}

// StatusReport renders the bot status message.
func (s *Service) StatusReport() string {
	st := s.Stats()
	var b strings.Builder
	b.WriteString("🤖 *Bot Status Report* 🤖\n\n")
	if s.ownerPhone != "" {
		fmt.Fprintf(&b, "📞 Bot Phone: %s\n", s.ownerPhone)
	}
	fmt.Fprintf(&b, "🌍 Country Code: +%s\n", s.dir.CountryCode())
	fmt.Fprintf(&b, "🕒 Local Time: %s\n", s.dir.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "📊 Total Contacts: %d\n", st.Contacts)
	fmt.Fprintf(&b, "📨 Messages Sent Today: %d\n", st.SentToday)
	fmt.Fprintf(&b, "⏰ Scheduled Messages: %d\n", st.Scheduled)
	fmt.Fprintf(&b, "🔧 Bot Version: %s\n", Version)
	b.WriteString("✅ Status: Operational\n")
	return b.String()
}

// SendStatus delivers StatusReport to phone.
func (s *Service) SendStatus(ctx context.Context, phone string) (string, error) {
	return s.SendInstant(ctx, phone, s.StatusReport())
}
