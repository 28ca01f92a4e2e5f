package merchant

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/leadflow/leadflow-api/internal/pkg/jwt"
	"github.com/leadflow/leadflow-api/internal/pkg/password"
)

// Service handles merchant account and session logic
type Service struct {
	repo       *Repository
	jwtService *jwt.Service
	redis      *redis.Client // nil if Redis disabled
}

// NewService creates merchant service
func NewService(repo *Repository, jwtService *jwt.Service, redis *redis.Client) *Service {
	return &Service{repo: repo, jwtService: jwtService, redis: redis}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new merchant account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	if existing, _ := s.repo.GetByEmail(ctx, email); existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	m := &Merchant{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         RoleMerchant,
		CompanyName:  req.CompanyName,
		ContactName:  sql.NullString{String: req.ContactName, Valid: req.ContactName != ""},
		Phone:        sql.NullString{String: req.Phone, Valid: req.Phone != ""},
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, m)
}

// Login authenticates a merchant
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	m, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil || m == nil {
		return nil, ErrInvalidCredentials
	}

	if !password.Verify(req.Password, m.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if m.IsSuspended {
		return nil, ErrMerchantSuspended
	}

	return s.generateTokens(ctx, m)
}

// Refresh rotates the refresh token and issues a new access token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	// The stored hash must still exist; logout or rotation kills it.
	refreshHash := jwt.HashRefreshToken(refreshToken)
	merchantID, err := s.getRefreshToken(ctx, refreshHash)
	if err != nil || merchantID != claims.UserID {
		return nil, ErrInvalidRefreshToken
	}

	m, err := s.repo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, ErrMerchantNotFound
	}
	if m.IsSuspended {
		return nil, ErrMerchantSuspended
	}

	_ = s.deleteRefreshToken(ctx, refreshHash)

	return s.generateTokens(ctx, m)
}

// Logout invalidates the refresh token
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.deleteRefreshToken(ctx, jwt.HashRefreshToken(refreshToken))
}

// Get returns the merchant account
func (s *Service) Get(ctx context.Context, merchantID uuid.UUID) (*Merchant, error) {
	return s.repo.GetByID(ctx, merchantID)
}

// UpdateProfile updates company details
func (s *Service) UpdateProfile(ctx context.Context, merchantID uuid.UUID, req *UpdateProfileRequest) (*Merchant, error) {
	err := s.repo.UpdateProfile(ctx, merchantID,
		req.CompanyName,
		sql.NullString{String: req.ContactName, Valid: req.ContactName != ""},
		sql.NullString{String: req.Phone, Valid: req.Phone != ""},
	)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, merchantID)
}

// RegisterDevice adds a push device token
func (s *Service) RegisterDevice(ctx context.Context, merchantID uuid.UUID, token string) error {
	return s.repo.AddDeviceToken(ctx, merchantID, token)
}

// UnregisterDevice removes a push device token
func (s *Service) UnregisterDevice(ctx context.Context, merchantID uuid.UUID, token string) error {
	return s.repo.RemoveDeviceToken(ctx, merchantID, token)
}

// generateTokens creates the access/refresh token pair
func (s *Service) generateTokens(ctx context.Context, m *Merchant) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(m.ID, string(m.Role), m.IsSuspended)
	if err != nil {
		return nil, err
	}

	refreshToken, _, expiresAt, err := s.jwtService.GenerateRefreshToken(m.ID)
	if err != nil {
		return nil, err
	}

	refreshHash := jwt.HashRefreshToken(refreshToken)
	if err := s.storeRefreshToken(ctx, refreshHash, m.ID, time.Until(expiresAt)); err != nil {
		return nil, err
	}

	return &AuthResponse{
		Merchant: ToResponse(m),
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(s.jwtService.GetAccessTTL().Seconds()),
		},
	}, nil
}

// Redis helpers (handle nil redis gracefully)
func (s *Service) storeRefreshToken(ctx context.Context, tokenHash string, merchantID uuid.UUID, ttl time.Duration) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Set(ctx, "refresh:"+tokenHash, merchantID.String(), ttl).Err()
}

func (s *Service) getRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	if s.redis == nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	val, err := s.redis.Get(ctx, "refresh:"+tokenHash).Result()
	if err != nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	return uuid.Parse(val)
}

func (s *Service) deleteRefreshToken(ctx context.Context, tokenHash string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, "refresh:"+tokenHash).Err()
}
