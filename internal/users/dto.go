package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skillbazaar/backend/pkg/db/models"
)

// Profile is the user view returned by the API. Financial totals are only
// populated for the owner's own profile.
type Profile struct {
	ID            uuid.UUID        `json:"id"`
	Email         string           `json:"email,omitempty"`
	Name          string           `json:"name"`
	Location      *string          `json:"location,omitempty"`
	Phone         *string          `json:"phone,omitempty"`
	Skills        []string         `json:"skills"`
	Interests     []string         `json:"interests"`
	TotalEarnings *decimal.Decimal `json:"total_earnings,omitempty"`
	TotalSpending *decimal.Decimal `json:"total_spending,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// UpdateProfileInput captures the mutable profile fields.
type UpdateProfileInput struct {
	Name      *string   `json:"name"`
	Location  *string   `json:"location"`
	Phone     *string   `json:"phone"`
	Skills    *[]string `json:"skills"`
	Interests *[]string `json:"interests"`
}

// OwnerProfile maps a user row into the view the owner sees.
func OwnerProfile(user *models.User) Profile {
	profile := PublicProfile(user)
	profile.Email = user.Email
	earnings := user.TotalEarnings
	spending := user.TotalSpending
	profile.TotalEarnings = &earnings
	profile.TotalSpending = &spending
	return profile
}

// PublicProfile maps a user row into the view other users see.
func PublicProfile(user *models.User) Profile {
	return Profile{
		ID:        user.ID,
		Name:      user.Name,
		Location:  user.Location,
		Phone:     user.Phone,
		Skills:    user.Skills,
		Interests: user.Interests,
		CreatedAt: user.CreatedAt,
	}
}
