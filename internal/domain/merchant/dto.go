package merchant

import "time"

// RegisterRequest is the account creation body
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	CompanyName string `json:"company_name" validate:"required,min=2,max=255"`
	ContactName string `json:"contact_name" validate:"omitempty,max=255"`
	Phone       string `json:"phone" validate:"omitempty,e164"`
}

// LoginRequest is the login body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateProfileRequest updates company details
type UpdateProfileRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=2,max=255"`
	ContactName string `json:"contact_name" validate:"omitempty,max=255"`
	Phone       string `json:"phone" validate:"omitempty,e164"`
}

// DeviceTokenRequest registers a push device token
type DeviceTokenRequest struct {
	Token string `json:"token" validate:"required,max=512"`
}

// MerchantResponse is the public account shape
type MerchantResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CompanyName string    `json:"company_name"`
	ContactName string    `json:"contact_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TokensResponse carries the session token pair
type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthResponse is the register/login/refresh response
type AuthResponse struct {
	Merchant MerchantResponse `json:"merchant"`
	Tokens   TokensResponse   `json:"tokens"`
}

// ToResponse converts a merchant to its API shape
func ToResponse(m *Merchant) MerchantResponse {
	resp := MerchantResponse{
		ID:          m.ID.String(),
		Email:       m.Email,
		Role:        string(m.Role),
		CompanyName: m.CompanyName,
		CreatedAt:   m.CreatedAt,
	}
	if m.ContactName.Valid {
		resp.ContactName = m.ContactName.String
	}
	if m.Phone.Valid {
		resp.Phone = m.Phone.String
	}
	return resp
}
