package chat

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
)

// Chat lifecycle statuses. A closed chat is terminal; there is no reopen.
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Chat is a two-party conversation between a client and an admin. Names and
// the admin email are denormalized onto the record, as are the last-message
// preview fields.
type Chat struct {
	ID         string `json:"id" firestore:"-"`
	ClientID   string `json:"client_id" firestore:"clientId"`
	ClientName string `json:"client_name" firestore:"clientName"`
	AdminID    string `json:"admin_id" firestore:"adminId"`
	AdminName  string `json:"admin_name" firestore:"adminName"`
	AdminEmail string `json:"admin_email" firestore:"adminEmail"`
	Status     string `json:"status" firestore:"status"`

	LastMessage     string    `json:"last_message,omitempty" firestore:"lastMessage"`
	LastMessageTime time.Time `json:"last_message_time,omitempty" firestore:"lastMessageTime"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	ClosedAt  time.Time `json:"closed_at,omitempty" firestore:"closedAt"`
}

func (c Chat) IsClosed() bool { return c.Status == StatusClosed }

// Message belongs to exactly one Chat and is append-only. Timestamp is
// server-assigned; it stays zero while the write is still in flight.
type Message struct {
	ID         string    `json:"id" firestore:"-"`
	SenderID   string    `json:"sender_id" firestore:"senderId"`
	SenderName string    `json:"sender_name" firestore:"senderName"`
	Text       string    `json:"text" firestore:"text"`
	Timestamp  time.Time `json:"timestamp" firestore:"timestamp,serverTimestamp"`
}

// SortMessages orders messages ascending by server timestamp. Messages without
// a timestamp yet sort after all timestamped ones, preserving perceived send
// order for optimistic local writes. The sort is stable.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		ti, tj := msgs[i].Timestamp, msgs[j].Timestamp
		if ti.IsZero() {
			return false
		}
		if tj.IsZero() {
			return true
		}
		return ti.Before(tj)
	})
}

// NewChat is a client's request for a conversation with a specific admin.
type NewChat struct {
	AdminID string `json:"admin_id" validate:"required"`
}

func (nc *NewChat) Validate(validate *validator.Validate) error {
	return validate.Struct(nc)
}

// NewMessage is an outgoing message body.
type NewMessage struct {
	Text string `json:"text" validate:"required"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.Text = core.CleanString(nm.Text)
	return validate.Struct(nm)
}
