package auth

import "time"

// Roles mirror the user_role enum in the database.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleFarmer    = "farmer"
	RoleUser      = "user"
)

// Config drives authentication behavior.
type Config struct {
	Secret          string
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
	Google          GoogleConfig
}

// GoogleConfig holds OAuth settings for Google sign-in.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// User represents a persisted account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	PhotoURL     string    `json:"photoUrl"`
	Role         string    `json:"role"`
	Region       string    `json:"region"`
	IsVerified   bool      `json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity links an account to an external auth provider.
type Identity struct {
	ID              string
	UserID          string
	Provider        string
	ProviderSubject string
	ProviderEmail   string
	CreatedAt       time.Time
}

// RegisterRequest captures the registration payload.
type RegisterRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
	Region      string `json:"region"`
}

// LoginRequest captures login details.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the signed tokens.
type LoginResponse struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	User         UserView `json:"user"`
}

// UserView trims sensitive fields.
type UserView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoUrl"`
	Role        string    `json:"role"`
	Region      string    `json:"region"`
	IsVerified  bool      `json:"isVerified"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Claims are extracted from a validated JWT.
type Claims struct {
	UserID    string
	Email     string
	Role      string
	TokenType string
	ExpiresAt time.Time
}
