package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/jmehdipour/wa-assistant/internal/config"
	"github.com/jmehdipour/wa-assistant/internal/dispatcher"
	"github.com/jmehdipour/wa-assistant/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Store.Dir = t.TempDir()
	return cfg
}

func TestOpenStoreSeeds(t *testing.T) {
	cfg := testConfig(t)
	st, err := OpenStore(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CountContacts())
	assert.Len(t, st.ListTemplates(), 3)

	cfg.Store.ContactsFormat = "xml"
	_, err = OpenStore(cfg)
	assert.Error(t, err)
}

func TestNewTransport(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	tr, closeFn, err := NewTransport(cfg, "manual", &out)
	require.NoError(t, err)
	assert.IsType(t, &dispatcher.ManualTransport{}, tr)
	require.NoError(t, tr.Deliver(context.Background(), "27821234567", "hi", ""))
	assert.Contains(t, out.String(), "+27821234567")
	require.NoError(t, closeFn())

	_, _, err = NewTransport(cfg, "http", &out)
	assert.ErrorIs(t, err, ErrNoProviders)

	cfg.Providers = []config.ProviderConfig{{Name: "gw", Enabled: true, BaseURL: "http://127.0.0.1:1/"}}
	tr, _, err = NewTransport(cfg, "http", &out)
	require.NoError(t, err)
	assert.IsType(t, &dispatcher.Dispatcher{}, tr)

	tr, closeFn, err = NewTransport(cfg, "kafka", &out)
	require.NoError(t, err)
	assert.IsType(t, &kafka.Producer{}, tr)
	require.NoError(t, closeFn())

	_, _, err = NewTransport(cfg, "pigeon", &out)
	assert.Error(t, err)
}

func TestNewMessengerUsesConfig(t *testing.T) {
	cfg := testConfig(t)
	st, err := OpenStore(cfg)
	require.NoError(t, err)
	var out bytes.Buffer
	tr, _, err := NewTransport(cfg, "manual", &out)
	require.NoError(t, err)

	msg := NewMessenger(cfg, st, tr)
	report := msg.StatusReport()
	assert.Contains(t, report, cfg.Owner.Phone)
	assert.Contains(t, report, "Total Contacts: 1")

	biz := NewBusiness(cfg, st)
	assert.Contains(t, biz.SalesPitch(), cfg.Owner.BusinessName)
}
