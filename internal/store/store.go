// Package store keeps contacts, message templates, the send log, daily schedules and
// business clients in plain files under one data directory.
//
// Every mutation reads the whole file, changes it in memory and rewrites it. A Store
// serializes its own mutations, but two processes sharing a directory can lose updates
// (last writer wins).
//
// Read-only operations never fail: a missing or unreadable file reads as an empty
// collection. Mutations treat a missing file as empty but refuse to overwrite a file
// they cannot parse.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/util"
	"go.uber.org/zap"
)

const (
	ContactsJSONFile = "contacts.json"
	ContactsTextFile = "contacts.txt"
	TemplatesFile    = "messages.json"
	LogFile          = "message_log.json"
	SchedulesFile    = "schedules.json"
	ClientsFile      = "clients.json"
)

var (
	ErrDuplicateContact = errors.New("contact already exists")
	ErrInvalidPhone     = util.ErrInvalidPhone
	ErrClientNotFound   = errors.New("client not found")
	ErrCorrupt          = errors.New("store file is unreadable")
)

type ContactsFormat string

const (
	FormatJSON ContactsFormat = "json"
	FormatText ContactsFormat = "text"
)

type Store struct {
	mu sync.Mutex

	dir         string
	countryCode string
	ownerName   string
	ownerPhone  string
	contacts    contactsCodec
	now         func() time.Time
	log         *zap.Logger
}

type Option func(*Store)

func WithCountryCode(cc string) Option { return func(s *Store) { s.countryCode = cc } }

// WithOwner sets the contact seeded into a fresh contacts file.
func WithOwner(name, phone string) Option {
	return func(s *Store) {
		s.ownerName = name
		s.ownerPhone = phone
	}
}

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = l } }

// WithContactsFormat selects contacts.json or the pipe-delimited contacts.txt.
// Unknown formats fall back to JSON.
func WithContactsFormat(f ContactsFormat) Option {
	return func(s *Store) {
		if f == FormatText {
			s.contacts = textCodec{}
			return
		}
		s.contacts = jsonCodec{}
	}
}

func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:         dir,
		countryCode: "27",
		ownerName:   "Sky Bot Admin",
		ownerPhone:  "0748529340",
		contacts:    jsonCodec{},
		now:         time.Now,
		log:         zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) CountryCode() string { return s.countryCode }

// Now is the store clock; callers stamp records with it so tests stay deterministic.
func (s *Store) Now() time.Time { return s.now() }

// Canonical normalizes raw with the store's country code and rejects too-short results.
func (s *Store) Canonical(raw string) (string, error) {
	return util.CanonicalPhone(raw, s.countryCode)
}

// EnsureInitialized creates the contacts and template files with their defaults if absent.
// Safe to call on every startup.
func (s *Store) EnsureInitialized() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ensureDir(s.dir); err != nil {
		return err
	}

	created, err := s.createIfAbsent(s.contacts.fileName(), func() error {
		return s.saveContacts([]model.Contact{{
			Name:        s.ownerName,
			Phone:       util.NormalizePhone(s.ownerPhone, s.countryCode),
			CountryCode: s.countryCode,
			Group:       "admin",
			AddedAt:     s.now(),
		}})
	})
	if err != nil {
		return err
	}
	if created {
		s.log.Info("created contacts file", zap.String("file", s.contacts.fileName()))
	}

	created, err = s.createIfAbsent(TemplatesFile, func() error {
		return writeJSON(s.path(TemplatesFile), defaultTemplates())
	})
	if err != nil {
		return err
	}
	if created {
		s.log.Info("created templates file", zap.String("file", TemplatesFile))
	}

	return nil
}
