package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/enums"
)

// View is the notification row returned by the API.
type View struct {
	ID        uuid.UUID              `json:"id"`
	Type      enums.NotificationType `json:"type"`
	Message   string                 `json:"message"`
	OrderID   *uuid.UUID             `json:"order_id,omitempty"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}

// List wraps a page of notifications plus the next cursor.
type List struct {
	Notifications []View `json:"notifications"`
	NextCursor    string `json:"next_cursor,omitempty"`
}

// ListInput captures listing options.
type ListInput struct {
	UnreadOnly bool
}

func toView(n *models.Notification) View {
	return View{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		OrderID:   n.OrderID,
		Read:      n.Read(),
		CreatedAt: n.CreatedAt,
	}
}
