package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// sessions issues, rotates and revokes token pairs for one subject
type sessions struct {
	subject   auth.Subject
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// TokenError converts a JWT validation error into a domain error
func TokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError(shared.CodeTokenExpired, "Token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError(shared.CodeTokenExpired, "Session has expired, please log in again")
	case errors.Is(err, auth.ErrTokenRevoked):
		return shared.NewDomainError(shared.CodeTokenInvalid, "Token has been revoked")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrInvalidClaims):
		return shared.NewDomainError(shared.CodeTokenInvalid, "Invalid token")
	}
	return err
}

// checkRevoked returns auth.ErrTokenRevoked when the token was blacklisted
// individually or by a revoke-all for its owner
func (s *sessions) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if revoked {
		return auth.ErrTokenRevoked
	}
	revoked, err = s.blacklist.IsRevokedForUser(ctx, claims.UserID, claims.IssuedAtTime())
	if err != nil {
		return fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if revoked {
		return auth.ErrTokenRevoked
	}
	return nil
}

// rotate validates a refresh token, reloads the identity through load and
// issues a new pair. The old refresh token is consumed first.
func (s *sessions) rotate(ctx context.Context, refreshToken string, load func(uuid.UUID) (auth.Identity, error)) (*auth.TokenPair, uuid.UUID, error) {
	if refreshToken == "" {
		return nil, uuid.Nil, shared.NewAuthenticationError("Refresh token is required")
	}
	claims, err := s.jwt.ValidateRefreshToken(s.subject, refreshToken)
	if err != nil {
		return nil, uuid.Nil, TokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, uuid.Nil, TokenError(err)
	}

	id, _ := claims.UserUUID()
	ident, err := load(id)
	if err != nil {
		return nil, uuid.Nil, err
	}

	// Claiming the old token is what makes it single-use: of two concurrent
	// refreshes only one wins the claim
	claimed, err := s.blacklist.Claim(ctx, claims.ID, claims.RemainingTTL())
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if !claimed {
		return nil, uuid.Nil, TokenError(auth.ErrTokenRevoked)
	}

	pair, err := s.jwt.Refresh(claims, ident)
	if err != nil {
		return nil, uuid.Nil, TokenError(err)
	}
	return pair, id, nil
}

// revoke blacklists the access token and, when given, the refresh token
func (s *sessions) revoke(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if access != nil {
		if err := s.blacklist.Revoke(ctx, access.ID, access.RemainingTTL()); err != nil {
			return fmt.Errorf("failed to revoke access token: %w", err)
		}
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := s.jwt.ValidateRefreshToken(s.subject, refreshToken)
	if err != nil {
		// An expired or foreign refresh token needs no revocation
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// revokeAll rejects every token issued to userID so far
func (s *sessions) revokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.blacklist.RevokeAllFor(ctx, userID.String(), s.jwt.RefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke sessions", zap.String("user_id", userID.String()), zap.Error(err))
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}
