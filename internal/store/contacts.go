package store

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/util"
	"go.uber.org/zap"
)

func (s *Store) loadContacts() ([]model.Contact, error) {
	b, err := readFile(s.path(s.contacts.fileName()))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []model.Contact{}, nil
	}
	cs, err := s.contacts.decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.contacts.fileName(), err)
	}
	if cs == nil {
		cs = []model.Contact{}
	}
	return cs, nil
}

func (s *Store) saveContacts(cs []model.Contact) error {
	b, err := s.contacts.encode(cs)
	if err != nil {
		return fmt.Errorf("encode contacts: %w", err)
	}
	return writeFile(s.path(s.contacts.fileName()), b)
}

// contactsOrEmpty backs the read-only operations.
func (s *Store) contactsOrEmpty() []model.Contact {
	cs, err := s.loadContacts()
	if err != nil {
		s.log.Warn("contacts unreadable, treating as empty", zap.Error(err))
		return []model.Contact{}
	}
	return cs
}

// AddContact stores a new contact keyed by its canonical phone. The text format
// cannot hold a group, so there every contact lands in model.DefaultGroup.
// It returns ErrInvalidPhone for numbers that normalize too short and
// ErrDuplicateContact when the canonical phone is already present.
func (s *Store) AddContact(name, phone, group string) (model.Contact, error) {
	canonical, err := s.Canonical(phone)
	if err != nil {
		return model.Contact{}, fmt.Errorf("add contact %q: %w", phone, err)
	}
	if strings.TrimSpace(group) == "" {
		group = model.DefaultGroup
	}
	if group != model.DefaultGroup && !s.contacts.storesGroup() {
		s.log.Warn("contacts format has no group column, using default",
			zap.String("group", group), zap.String("file", s.contacts.fileName()))
		group = model.DefaultGroup
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.loadContacts()
	if err != nil {
		return model.Contact{}, err
	}

	for _, c := range contacts {
		// hand-edited or text-format files may hold raw numbers
		if util.NormalizePhone(c.Phone, s.countryCode) == canonical {
			s.log.Warn("contact already exists", zap.String("phone", canonical))
			return model.Contact{}, fmt.Errorf("%w: %s", ErrDuplicateContact, canonical)
		}
	}

	c := model.Contact{
		Name:        strings.TrimSpace(name),
		Phone:       canonical,
		CountryCode: s.countryCode,
		Group:       group,
		AddedAt:     s.now(),
	}
	contacts = append(contacts, c)

	if err := s.saveContacts(contacts); err != nil {
		return model.Contact{}, err
	}

	s.log.Info("added contact", zap.String("name", c.Name), zap.String("phone", canonical), zap.String("group", group))
	return c, nil
}

// ListContacts returns every contact in insertion order.
func (s *Store) ListContacts() []model.Contact {
	return s.contactsOrEmpty()
}

// ListContactsByGroup returns the contacts whose group equals group exactly.
func (s *Store) ListContactsByGroup(group string) []model.Contact {
	out := []model.Contact{}
	for _, c := range s.contactsOrEmpty() {
		if c.Group == group {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) CountContacts() int {
	return len(s.contactsOrEmpty())
}
