package auth

// RegisterInput captures the signup payload.
type RegisterInput struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8"`
	Name      string   `json:"name" validate:"required"`
	Location  *string  `json:"location"`
	Phone     *string  `json:"phone"`
	Skills    []string `json:"skills"`
	Interests []string `json:"interests"`
}

// LoginInput captures the credential check payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput carries the rotation inputs.
type RefreshInput struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is returned by register, login, and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
