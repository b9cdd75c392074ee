package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/skillbazaar/backend/pkg/db/models"
)

// AddInput is the payload for posting a review against an order.
type AddInput struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Rating  int       `json:"rating" validate:"required"`
	Comment string    `json:"comment"`
}

// View is the API shape of a single review.
type View struct {
	ID           uuid.UUID `json:"id"`
	OrderID      uuid.UUID `json:"order_id"`
	ReviewerID   uuid.UUID `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// List is a cursor-paginated page of reviews.
type List struct {
	Reviews    []View `json:"reviews"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func toView(row models.Review) View {
	view := View{
		ID:         row.ID,
		OrderID:    row.OrderID,
		ReviewerID: row.ReviewerID,
		Rating:     row.Rating,
		Comment:    row.Comment,
		CreatedAt:  row.CreatedAt,
	}
	if row.Reviewer != nil {
		view.ReviewerName = row.Reviewer.Name
	}
	return view
}
