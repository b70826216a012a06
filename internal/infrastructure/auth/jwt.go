package auth

import (
	"errors"
	"time"

	"github.com/craftline/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingTenantID    = errors.New("missing tenant_id in claims")
	ErrMissingUserID      = errors.New("missing user_id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims carries the tenant and user identity alongside the registered JWT
// claims. Refresh tokens omit username/roles and track how many times the
// pair has been rotated.
type Claims struct {
	jwt.RegisteredClaims
	TenantID     string    `json:"tenant_id"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	RoleIDs      []string  `json:"role_ids,omitempty"`
	Permissions  []string  `json:"permissions,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"` // always "Bearer"
}

// JWTService signs and validates HS256 token pairs. Access and refresh
// tokens use separate secrets so a leaked access secret cannot mint
// refresh tokens.
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	maxRefreshCount   int
}

// NewJWTService builds the service from config. An empty refresh secret
// falls back to the access secret.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := []byte(cfg.RefreshSecret)
	if cfg.RefreshSecret == "" {
		refreshSecret = []byte(cfg.Secret)
	}

	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     refreshSecret,
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
		maxRefreshCount:   cfg.MaxRefreshCount,
	}
}

// GenerateTokenInput identifies the principal a token pair is minted for.
type GenerateTokenInput struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	Username    string
	RoleIDs     []uuid.UUID
	Permissions []string
}

// registered builds the RegisteredClaims block shared by both token kinds.
func (s *JWTService) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    s.issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

// GenerateTokenPair mints a fresh access/refresh pair for the given identity.
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	roleIDs := make([]string, len(input.RoleIDs))
	for i, rid := range input.RoleIDs {
		roleIDs[i] = rid.String()
	}

	return s.mintPair(
		input.TenantID.String(),
		input.UserID.String(),
		input.Username,
		roleIDs,
		input.Permissions,
		0,
	)
}

// RefreshTokenPair rotates a token pair. The refresh token must be valid and
// under the rotation cap; permissions are re-read by the caller so revoked
// grants do not survive a refresh.
func (s *JWTService) RefreshTokenPair(refreshToken string, permissions []string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.RefreshCount >= s.maxRefreshCount {
		return nil, ErrMaxRefreshExceeded
	}

	if _, err := uuid.Parse(claims.TenantID); err != nil {
		return nil, ErrInvalidClaims
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrInvalidClaims
	}

	return s.mintPair(
		claims.TenantID,
		claims.UserID,
		claims.Username,
		claims.RoleIDs,
		permissions,
		claims.RefreshCount+1,
	)
}

// mintPair signs an access token with the full claim set and a refresh token
// with identity claims only.
func (s *JWTService) mintPair(tenantID, userID, username string, roleIDs, permissions []string, refreshCount int) (*TokenPair, error) {
	now := time.Now()

	accessClaims := &Claims{
		RegisteredClaims: s.registered(userID, now, s.accessExpiration),
		TenantID:         tenantID,
		UserID:           userID,
		Username:         username,
		RoleIDs:          roleIDs,
		Permissions:      permissions,
		TokenType:        TokenTypeAccess,
	}
	accessToken, err := s.sign(accessClaims, s.accessSecret)
	if err != nil {
		return nil, err
	}

	refreshClaims := &Claims{
		RegisteredClaims: s.registered(userID, now, s.refreshExpiration),
		TenantID:         tenantID,
		UserID:           userID,
		TokenType:        TokenTypeRefresh,
		RefreshCount:     refreshCount,
	}
	refreshToken, err := s.sign(refreshClaims, s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(s.accessExpiration),
		RefreshTokenExpiresAt: now.Add(s.refreshExpiration),
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) sign(claims *Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateAccessToken parses and verifies an access token.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, s.accessSecret, TokenTypeAccess)
}

// ValidateRefreshToken parses and verifies a refresh token.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, s.refreshSecret, TokenTypeRefresh)
}

func (s *JWTService) parse(tokenString string, secret []byte, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Reject any token signed with a non-HMAC method before touching
		// the secret.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != want {
		return nil, ErrInvalidTokenType
	}
	if claims.TenantID == "" {
		return nil, ErrMissingTenantID
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}

	return claims, nil
}

// GetTenantUUID parses the tenant id claim.
func (c *Claims) GetTenantUUID() (uuid.UUID, error) {
	return uuid.Parse(c.TenantID)
}

// GetUserUUID parses the user id claim.
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetRoleUUIDs parses the role id claims.
func (c *Claims) GetRoleUUIDs() ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(c.RoleIDs))
	for _, rid := range c.RoleIDs {
		id, err := uuid.Parse(rid)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// HasPermission reports whether the claims carry the given permission.
func (c *Claims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether at least one of the given permissions is present.
func (c *Claims) HasAnyPermission(permissions ...string) bool {
	for _, p := range permissions {
		if c.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every given permission is present.
func (c *Claims) HasAllPermissions(permissions ...string) bool {
	for _, p := range permissions {
		if !c.HasPermission(p) {
			return false
		}
	}
	return true
}

// GetIssuedAtTime returns the issued-at claim, or the zero time when absent.
func (c *Claims) GetIssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// GetExpiresAtTime returns the expiry claim, or the zero time when absent.
func (c *Claims) GetExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// GetRemainingTTL returns how long until the token expires, floored at zero.
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if remaining := time.Until(c.ExpiresAt.Time); remaining > 0 {
		return remaining
	}
	return 0
}

// GetAccessTokenExpiration exposes the configured access token lifetime.
func (s *JWTService) GetAccessTokenExpiration() time.Duration {
	return s.accessExpiration
}

// GetRefreshTokenExpiration exposes the configured refresh token lifetime.
func (s *JWTService) GetRefreshTokenExpiration() time.Duration {
	return s.refreshExpiration
}
