package model

// Envelope is the send request carried over Kafka.
type Envelope struct {
	ID         string `json:"id"` // ULID
	Phone      string `json:"phone"`
	Text       string `json:"text"`
	Attachment string `json:"attachment,omitempty"`
}
