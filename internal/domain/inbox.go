package domain

import "time"

// Thread is one WhatsApp conversation in the merchant inbox.
type Thread struct {
	ID            string    `json:"id"`
	ContactName   string    `json:"contactName"`
	ContactPhone  string    `json:"contactPhone"`
	LastMessage   string    `json:"lastMessage"`
	UnreadCount   int       `json:"unreadCount"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

type Message struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	Direction string    `json:"direction"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sentAt"`
}

// UnreadTotal sums unread counts across threads.
func UnreadTotal(threads []Thread) int {
	total := 0
	for _, t := range threads {
		total += t.UnreadCount
	}
	return total
}
