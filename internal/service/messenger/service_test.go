package messenger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/store"
	"github.com/jmehdipour/wa-assistant/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTransport struct{ mock.Mock }

func (m *mockTransport) Deliver(ctx context.Context, phone, message, attachment string) error {
	return m.Called(phone, message, attachment).Error(0)
}

type sleepRecorder struct{ calls []time.Duration }

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return ctx.Err()
}

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.Local)

func newTestService(t *testing.T, opts ...Option) (*Service, *store.Store, *mockTransport, *sleepRecorder) {
	t.Helper()
	st := store.New(t.TempDir(), store.WithCountryCode("27"), store.WithClock(func() time.Time { return testNow }))
	tr := &mockTransport{}
	rec := &sleepRecorder{}
	opts = append([]Option{WithDelay(5 * time.Second), WithSleep(rec.sleep)}, opts...)
	return New(st, tr, opts...), st, tr, rec
}

func TestSendInstantLogsSent(t *testing.T) {
	svc, st, tr, _ := newTestService(t)
	tr.On("Deliver", "27821234567", "hello", "").Return(nil).Once()

	phone, err := svc.SendInstant(context.Background(), "082 123 4567", "hello")
	require.NoError(t, err)
	assert.Equal(t, "27821234567", phone)

	entries := st.LogEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusSent, entries[0].Status)
	assert.Equal(t, model.TypeInstant, entries[0].Type)
	assert.Equal(t, "27821234567", entries[0].Phone)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, 1, st.CountToday())
	tr.AssertExpectations(t)
}

func TestSendInstantFailureIsLoggedAsFailed(t *testing.T) {
	svc, st, tr, _ := newTestService(t)
	tr.On("Deliver", "27821234567", "hello", "").Return(errors.New("gateway down")).Once()

	_, err := svc.SendInstant(context.Background(), "0821234567", "hello")
	require.ErrorIs(t, err, ErrDeliveryFailed)

	entries := st.LogEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusFailed, entries[0].Status)
	assert.Equal(t, "gateway down", entries[0].Error)
	assert.Equal(t, 1, st.CountToday())
}

func TestSendInstantRejectsBadInput(t *testing.T) {
	svc, st, tr, _ := newTestService(t)

	_, err := svc.SendInstant(context.Background(), "12", "hello")
	assert.ErrorIs(t, err, util.ErrInvalidPhone)

	_, err = svc.SendInstant(context.Background(), "0821234567", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	assert.Empty(t, st.LogEntries())
	tr.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendScheduledUsesScheduledType(t *testing.T) {
	svc, st, tr, _ := newTestService(t)
	tr.On("Deliver", "27821234567", "daily", "").Return(nil)

	_, err := svc.SendScheduled(context.Background(), "27821234567", "daily")
	require.NoError(t, err)
	require.Len(t, st.LogEntries(), 1)
	assert.Equal(t, model.TypeScheduled, st.LogEntries()[0].Type)
}

func TestSendAttachment(t *testing.T) {
	svc, st, tr, _ := newTestService(t, WithAttachmentTypes([]string{".PNG", ".pdf"}))
	dir := t.TempDir()
	img := filepath.Join(dir, "flyer.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o644))
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("txt"), 0o644))

	tr.On("Deliver", "27821234567", "caption", img).Return(nil).Once()

	_, err := svc.SendAttachment(context.Background(), "0821234567", "caption", img)
	require.NoError(t, err)
	require.Len(t, st.LogEntries(), 1)
	assert.Equal(t, model.TypeAttachment, st.LogEntries()[0].Type)

	_, err = svc.SendAttachment(context.Background(), "0821234567", "caption", filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, ErrAttachmentNotFound)

	_, err = svc.SendAttachment(context.Background(), "0821234567", "caption", txt)
	assert.ErrorIs(t, err, ErrUnsupportedAttachment)

	assert.Len(t, st.LogEntries(), 1)
	tr.AssertExpectations(t)
}

func TestSendManySleepsBetweenNotAfter(t *testing.T) {
	svc, st, tr, rec := newTestService(t)
	tr.On("Deliver", "27820000001", "hi", "").Return(nil)
	tr.On("Deliver", "27820000002", "hi", "").Return(errors.New("boom"))
	tr.On("Deliver", "27820000003", "hi", "").Return(nil)

	results, err := svc.SendMany(context.Background(), []string{"0820000001", "0820000002", "0820000003"}, "hi")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Sent)
	assert.False(t, results[1].Sent)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].Sent)
	assert.Equal(t, "0820000002", results[1].Phone)
	assert.Equal(t, 2, CountSent(results))

	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, rec.calls)
	assert.Len(t, st.LogEntries(), 3)
}

func TestSendManyStopsOnCancel(t *testing.T) {
	svc, _, tr, _ := newTestService(t)
	tr.On("Deliver", mock.Anything, "hi", "").Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := svc.SendMany(ctx, []string{"0820000001", "0820000002"}, "hi")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 1)
}

func TestBroadcastGroup(t *testing.T) {
	svc, st, tr, rec := newTestService(t)
	_, err := st.AddContact("A", "0820000001", "vip")
	require.NoError(t, err)
	_, err = st.AddContact("B", "0820000002", "general")
	require.NoError(t, err)
	_, err = st.AddContact("C", "0820000003", "vip")
	require.NoError(t, err)

	tr.On("Deliver", mock.Anything, "promo", "").Return(nil)

	results, err := svc.Broadcast(context.Background(), "vip", "promo")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "27820000001", results[0].Canonical)
	assert.Equal(t, "27820000003", results[1].Canonical)
	assert.Len(t, rec.calls, 1)
	tr.AssertNumberOfCalls(t, "Deliver", 2)

	empty, err := svc.Broadcast(context.Background(), "nobody", "promo")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSchedulePersistsAndComputesNext(t *testing.T) {
	svc, st, _, _ := newTestService(t)

	task, next, err := svc.Schedule("0821234567", "good morning", "08:00")
	require.NoError(t, err)
	assert.Equal(t, "27821234567_8_0", task.ID)
	assert.Equal(t, "08:00", task.Time)
	assert.Equal(t, time.Date(2026, 10, 18, 8, 0, 0, 0, time.Local), next)

	_, next, err = svc.Schedule("0821234567", "later", "21:15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 17, 21, 15, 0, 0, time.Local), next)

	// same phone and time replaces
	_, _, err = svc.Schedule("27821234567", "good morning!", "8:00")
	require.NoError(t, err)
	tasks := st.ListSchedules()
	require.Len(t, tasks, 2)

	_, _, err = svc.Schedule("0821234567", "x", "25:00")
	assert.Error(t, err)
}

func TestStatusReport(t *testing.T) {
	svc, st, tr, _ := newTestService(t, WithOwnerPhone("0748529340"))
	require.NoError(t, st.EnsureInitialized())
	tr.On("Deliver", "27748529340", mock.Anything, "").Return(nil)

	_, err := svc.SendStatus(context.Background(), "0748529340")
	require.NoError(t, err)

	report := svc.StatusReport()
	assert.Contains(t, report, "Bot Phone: 0748529340")
	assert.Contains(t, report, "Country Code: +27")
	assert.Contains(t, report, "Total Contacts: 1")
	assert.Contains(t, report, "Messages Sent Today: 1")
	assert.Contains(t, report, "Bot Version: "+Version)

	assert.Equal(t, Stats{Contacts: 1, SentToday: 1, Scheduled: 0}, svc.Stats())
}

func TestDeliverEnvelopeKeepsID(t *testing.T) {
	svc, st, tr, _ := newTestService(t)
	tr.On("Deliver", "27821234567", "queued", "").Return(nil).Once()
	tr.On("Deliver", "27821234567", "", "/tmp/x.png").Return(errors.New("no route")).Once()

	entry, err := svc.Deliver(context.Background(), model.Envelope{ID: "01JQUEUED", Phone: "0821234567", Text: "queued"})
	require.NoError(t, err)
	assert.Equal(t, "01JQUEUED", entry.ID)
	assert.Equal(t, model.TypeInstant, entry.Type)

	entry, err = svc.Deliver(context.Background(), model.Envelope{ID: "01JATTACH", Phone: "0821234567", Attachment: "/tmp/x.png"})
	require.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, model.TypeAttachment, entry.Type)
	assert.Equal(t, model.StatusFailed, entry.Status)

	logs := st.LogEntries()
	require.Len(t, logs, 2)
	assert.Equal(t, "01JQUEUED", logs[0].ID)
	assert.Equal(t, "01JATTACH", logs[1].ID)
}

func TestSendAfterCorruptLogStillRecordsEntry(t *testing.T) {
	svc, st, tr, _ := newTestService(t)
	require.NoError(t, os.WriteFile(filepath.Join(st.Dir(), store.LogFile), []byte("not json"), 0o644))
	tr.On("Deliver", "27821234567", "hello", "").Return(nil).Once()

	_, err := svc.SendInstant(context.Background(), "0821234567", "hello")
	require.NoError(t, err)

	entries := st.LogEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusSent, entries[0].Status)
	assert.Equal(t, 1, st.CountToday())
}
