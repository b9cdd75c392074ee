package messages

import (
	"time"

	"github.com/google/uuid"

	"github.com/skillbazaar/backend/pkg/db/models"
)

// SendInput is the payload for a direct message.
type SendInput struct {
	RecipientID uuid.UUID `json:"recipient_id" validate:"required"`
	Body        string    `json:"body" validate:"required"`
}

// View is the API shape of a message.
type View struct {
	ID          uuid.UUID `json:"id"`
	SenderID    uuid.UUID `json:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// Conversation is a cursor-paginated page of messages between two users,
// newest first.
type Conversation struct {
	Messages   []View `json:"messages"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func toView(row models.Message) View {
	return View{
		ID:          row.ID,
		SenderID:    row.SenderID,
		RecipientID: row.RecipientID,
		Body:        row.Body,
		CreatedAt:   row.CreatedAt,
	}
}
