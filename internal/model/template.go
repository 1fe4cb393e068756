package model

type MessageTemplate struct {
	ID       int    `json:"id"`
	Content  string `json:"content"`
	Category string `json:"category"`
}
