package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/model"
)

type contactsCodec interface {
	fileName() string
	decode(b []byte) ([]model.Contact, error)
	encode(cs []model.Contact) ([]byte, error)
	storesGroup() bool
}

type jsonCodec struct{}

func (jsonCodec) fileName() string { return ContactsJSONFile }

func (jsonCodec) storesGroup() bool { return true }

func (jsonCodec) decode(b []byte) ([]model.Contact, error) {
	var out []model.Contact
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (jsonCodec) encode(cs []model.Contact) ([]byte, error) {
	return json.MarshalIndent(cs, "", "    ")
}

// textCodec reads and writes one `name|phone|timestamp` line per contact.
// Group and country code are not stored; they read back as "general" and empty.
type textCodec struct{}

const textTimeLayout = "2006-01-02 15:04:05.000000"

func (textCodec) fileName() string { return ContactsTextFile }

func (textCodec) storesGroup() bool { return false }

func (textCodec) decode(b []byte) ([]model.Contact, error) {
	var out []model.Contact
	sc := bufio.NewScanner(bytes.NewReader(b))
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, "|")
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: want 3 fields, got %d", line, len(parts))
		}
		added, err := parseTextTime(parts[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, model.Contact{
			Name:    parts[0],
			Phone:   parts[1],
			Group:   model.DefaultGroup,
			AddedAt: added,
		})
	}
	return out, sc.Err()
}

func (textCodec) encode(cs []model.Contact) ([]byte, error) {
	var buf bytes.Buffer
	for _, c := range cs {
		if strings.ContainsAny(c.Name, "|\n") {
			return nil, fmt.Errorf("contact name %q contains a reserved character", c.Name)
		}
		fmt.Fprintf(&buf, "%s|%s|%s\n", c.Name, c.Phone, c.AddedAt.Format(textTimeLayout))
	}
	return buf.Bytes(), nil
}

func parseTextTime(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	return model.ParseTimestamp(s)
}
