package response

import (
	"time"

	"socialgram/internal/data/entity"
	"socialgram/pkg/token"
)

// SignUpResponse carries a token pair even though the account is still NEW.
// Tokens are identity carriers; endpoints keep gating on auth_status.
type SignUpResponse struct {
	UserID      string             `json:"user_id"`
	AuthChannel entity.AuthChannel `json:"auth_type"`
	AuthStatus  entity.AuthStatus  `json:"auth_status"`
	Access      string             `json:"access"`
	Refresh     string             `json:"refresh"`
	ExpiresIn   int64              `json:"expires_in"`
}

type VerifyResponse struct {
	UserID     string            `json:"user_id"`
	AuthStatus entity.AuthStatus `json:"auth_status"`
	Access     string            `json:"access"`
	Refresh    string            `json:"refresh"`
	ExpiresIn  int64             `json:"expires_in"`
}

type LoginResponse struct {
	ID         string            `json:"id"`
	FullName   string            `json:"full_name"`
	Username   string            `json:"username"`
	AuthStatus entity.AuthStatus `json:"auth_status"`
	Access     string            `json:"access"`
	Refresh    string            `json:"refresh"`
	ExpiresIn  int64             `json:"expires_in"`
}

type TokenResponse struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	ExpiresIn int64  `json:"expires_in"`
}

type UserResponse struct {
	ID          string             `json:"id"`
	FirstName   string             `json:"first_name"`
	LastName    string             `json:"last_name"`
	Username    string             `json:"username"`
	Email       *string            `json:"email,omitempty"`
	PhoneNumber *string            `json:"phone_number,omitempty"`
	Role        entity.UserRole    `json:"role"`
	AuthChannel entity.AuthChannel `json:"auth_type"`
	AuthStatus  entity.AuthStatus  `json:"auth_status"`
	Gender      entity.Gender      `json:"gender"`
	Image       *string            `json:"image,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Helper converters
func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Username:    user.Username,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		AuthChannel: user.AuthChannel,
		AuthStatus:  user.AuthStatus,
		Gender:      user.Gender,
		Image:       user.Image,
		CreatedAt:   user.CreatedAt,
	}
}

func LoginToResponse(user *entity.User, pair *token.TokenPair) LoginResponse {
	resp := LoginResponse{
		ID:         user.ID.String(),
		FullName:   user.FullName(),
		Username:   user.Username,
		AuthStatus: user.AuthStatus,
	}

	if pair != nil {
		resp.Access = pair.AccessToken
		resp.Refresh = pair.RefreshToken
		resp.ExpiresIn = pair.ExpiresIn
	}

	return resp
}

func TokenToResponse(pair *token.TokenPair) TokenResponse {
	return TokenResponse{
		Access:    pair.AccessToken,
		Refresh:   pair.RefreshToken,
		ExpiresIn: pair.ExpiresIn,
	}
}
