package store

import (
	"fmt"
	"strings"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"go.uber.org/zap"
)

// AddClient registers a business client on plan. The id is max existing id + 1 and the
// price always follows the plan.
func (s *Store) AddClient(business, contact, phone string, plan model.Plan) (model.Client, error) {
	canonical, err := s.Canonical(phone)
	if err != nil {
		return model.Client{}, fmt.Errorf("add client %q: %w", business, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := loadJSON[model.Client](s.path(ClientsFile))
	if err != nil {
		return model.Client{}, err
	}

	next := 1
	for _, c := range clients {
		if c.ID >= next {
			next = c.ID + 1
		}
	}

	c := model.Client{
		ID:       next,
		Business: strings.TrimSpace(business),
		Contact:  strings.TrimSpace(contact),
		Phone:    canonical,
		Plan:     plan,
		Price:    plan.Price(),
		JoinDate: s.now().Format("2006-01-02"),
		Status:   model.ClientActive,
	}

	if err := writeJSON(s.path(ClientsFile), append(clients, c)); err != nil {
		return model.Client{}, err
	}

	s.log.Info("added client", zap.Int("id", c.ID), zap.String("business", c.Business), zap.String("plan", plan.String()))
	return c, nil
}

func (s *Store) ListClients() []model.Client {
	clients, err := loadJSON[model.Client](s.path(ClientsFile))
	if err != nil {
		s.log.Warn("clients unreadable, treating as empty", zap.Error(err))
		return []model.Client{}
	}
	return clients
}

// CancelClient marks client id as cancelled.
func (s *Store) CancelClient(id int) (model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := loadJSON[model.Client](s.path(ClientsFile))
	if err != nil {
		return model.Client{}, err
	}

	for i := range clients {
		if clients[i].ID != id {
			continue
		}
		clients[i].Status = model.ClientCancelled
		if err := writeJSON(s.path(ClientsFile), clients); err != nil {
			return model.Client{}, err
		}
		return clients[i], nil
	}

	return model.Client{}, fmt.Errorf("%w: %d", ErrClientNotFound, id)
}
