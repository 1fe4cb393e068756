package store

import (
	"fmt"
	"strings"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"go.uber.org/zap"
)

func defaultTemplates() []model.MessageTemplate {
	return []model.MessageTemplate{
		{ID: 1, Content: "Hello from Sky Bot! 🤖", Category: "greeting"},
		{ID: 2, Content: "Your GitHub repository: https://github.com/Sky95360/Sky_b.o.t", Category: "info"},
		{ID: 3, Content: "Sky Bot is online and ready to help!", Category: "status"},
	}
}

func (s *Store) ListTemplates() []model.MessageTemplate {
	ts, err := loadJSON[model.MessageTemplate](s.path(TemplatesFile))
	if err != nil {
		s.log.Warn("templates unreadable, treating as empty", zap.Error(err))
		return []model.MessageTemplate{}
	}
	return ts
}

// Template looks a template up by id.
func (s *Store) Template(id int) (model.MessageTemplate, bool) {
	for _, t := range s.ListTemplates() {
		if t.ID == id {
			return t, true
		}
	}
	return model.MessageTemplate{}, false
}

// AddTemplate appends a template with the next id (max existing + 1).
func (s *Store) AddTemplate(content, category string) (model.MessageTemplate, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.MessageTemplate{}, fmt.Errorf("template content is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts, err := loadJSON[model.MessageTemplate](s.path(TemplatesFile))
	if err != nil {
		return model.MessageTemplate{}, err
	}

	next := 1
	for _, t := range ts {
		if t.ID >= next {
			next = t.ID + 1
		}
	}

	t := model.MessageTemplate{ID: next, Content: content, Category: strings.TrimSpace(category)}
	if err := writeJSON(s.path(TemplatesFile), append(ts, t)); err != nil {
		return model.MessageTemplate{}, err
	}
	return t, nil
}
