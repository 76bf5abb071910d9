package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/policy"
	"github.com/acadex/acadex-api/internal/repository"
	"github.com/acadex/acadex-api/internal/session"
	"github.com/acadex/acadex-api/pkg/googleauth"
)

// IdentityVerifier abstracts Google ID token verification.
type IdentityVerifier interface {
	Verify(idToken string) (googleauth.Claims, error)
}

// AuthService drives the delegated login flow and session lifecycle.
type AuthService interface {
	// BeginLogin stashes the pre-selected role and returns the opaque state
	// the client must carry through the identity-provider round-trip.
	BeginLogin(ctx context.Context, role string) (string, error)
	// CompleteLogin consumes the stashed role, verifies the ID token and
	// creates or fetches the user. The stored role is immutable: a mismatch
	// with the pre-selected role fails the login.
	CompleteLogin(ctx context.Context, state, idToken string) (dto.UserResponse, string, error)
	CurrentUser(ctx context.Context, principal policy.Principal) (dto.UserResponse, error)
	Logout(ctx context.Context, token string) error
	// DeleteAccount removes the user and everything they own, then destroys
	// the session.
	DeleteAccount(ctx context.Context, principal policy.Principal, token string) error
}

type authService struct {
	users    repository.UserRepository
	sessions session.Store
	verifier IdentityVerifier
	logger   zerolog.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users repository.UserRepository, sessions session.Store, verifier IdentityVerifier, logger zerolog.Logger) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		verifier: verifier,
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) BeginLogin(ctx context.Context, role string) (string, error) {
	if !models.ValidRole(role) {
		return "", ErrRoleNotSelected
	}

	state := uuid.NewString()
	if err := s.sessions.StashRole(ctx, state, role); err != nil {
		return "", err
	}

	return state, nil
}

func (s *authService) CompleteLogin(ctx context.Context, state, idToken string) (dto.UserResponse, string, error) {
	role, err := s.sessions.ConsumeRole(ctx, state)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return dto.UserResponse{}, "", ErrRoleNotSelected
		}
		return dto.UserResponse{}, "", err
	}
	if !models.ValidRole(role) {
		return dto.UserResponse{}, "", ErrRoleNotSelected
	}

	claims, err := s.verifier.Verify(idToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("id token rejected")
		return dto.UserResponse{}, "", ErrInvalidIDToken
	}

	user, err := s.users.GetByGoogleID(ctx, claims.Subject)
	switch {
	case err == nil:
		if user.Role != role {
			s.logger.Warn().
				Uint("user_id", user.ID).
				Str("stored_role", user.Role).
				Str("selected_role", role).
				Msg("login rejected: role mismatch")
			return dto.UserResponse{}, "", ErrRoleMismatch
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			GoogleID:    claims.Subject,
			DisplayName: claims.DisplayName,
			Email:       claims.Email,
			Role:        role,
		}
		if err := s.users.Create(ctx, &user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return dto.UserResponse{}, "", ErrEmailTaken
			}
			return dto.UserResponse{}, "", err
		}
		s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user created on first login")
	default:
		return dto.UserResponse{}, "", err
	}

	token, err := s.sessions.Create(ctx, policy.Principal{UserID: user.ID, Role: user.Role})
	if err != nil {
		return dto.UserResponse{}, "", err
	}

	return dto.NewUserResponse(user), token, nil
}

func (s *authService) CurrentUser(ctx context.Context, principal policy.Principal) (dto.UserResponse, error) {
	if err := policy.RequireAuthenticated(principal); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, policy.ErrUnauthenticated
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

func (s *authService) DeleteAccount(ctx context.Context, principal policy.Principal, token string) error {
	if err := policy.RequireAuthenticated(principal); err != nil {
		return err
	}

	if err := s.users.DeleteCascade(ctx, principal.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.ErrUnauthenticated
		}
		return err
	}

	s.logger.Info().Uint("user_id", principal.UserID).Msg("account deleted with owned data")

	if err := s.sessions.Destroy(ctx, token); err != nil {
		s.logger.Warn().Err(err).Msg("failed to destroy session after account deletion")
	}

	return nil
}
