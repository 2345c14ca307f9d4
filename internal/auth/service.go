// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/freelancehub/internal/core"
	"github.com/carterperez-dev/freelancehub/internal/middleware"
)

type UserInfo struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
}

// UserProvider is the slice of the user store the auth flows need.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	Create(ctx context.Context, u NewUser) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type Service struct {
	jwt    *JWTManager
	users  UserProvider
	hasher *core.PasswordHasher
	redis  *redis.Client
}

func NewService(
	jwt *JWTManager,
	users UserProvider,
	hasher *core.PasswordHasher,
	redisClient *redis.Client,
) *Service {
	return &Service{
		jwt:    jwt,
		users:  users,
		hasher: hasher,
		redis:  redisClient,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, core.ValidationError("name is required")
	}
	if !core.IsValidRole(req.Role) {
		return nil, core.ValidationError("role must be client or freelancer")
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, NewUser{
		Name:         name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("email is already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	invalid := core.UnauthorizedError("invalid email or password")

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention, result is irrelevant
			_, _ = s.hasher.VerifyTimingSafe(req.Password, nil)
			return nil, invalid
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := s.hasher.VerifyTimingSafe(req.Password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, invalid
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user.ID, req.Password)
	}

	issued, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &LoginResponse{
		Token:     issued.Token,
		TokenType: "Bearer",
		ExpiresIn: int(time.Until(issued.ExpiresAt).Seconds()),
		ExpiresAt: issued.ExpiresAt,
		User:      toUserResponse(user),
	}, nil
}

func (s *Service) upgradeHash(ctx context.Context, userID int64, password string) {
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		slog.Warn("rehash password failed", "user_id", userID, "error", err)
		return
	}
	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		slog.Warn("store rehashed password failed", "user_id", userID, "error", err)
	}
}

// Logout puts the token's jti on the revocation list until it would have
// expired anyway.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	if claims == nil || claims.JTI == "" {
		return core.UnauthorizedError("")
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	key := core.RedisKey("revoked", claims.JTI)
	if err := s.redis.Set(ctx, key, claims.UserID, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

func (s *Service) isRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.redis.Exists(ctx, core.RedisKey("revoked", jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

// VerifyAccessToken checks the signature and claims, then the revocation
// list. A Redis outage fails open so logins keep working.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.isRevoked(ctx, claims.JTI)
	if err != nil {
		slog.Warn("token revocation check failed, allowing",
			"error", err,
			"user_id", claims.UserID,
		)
		return claims, nil
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}
