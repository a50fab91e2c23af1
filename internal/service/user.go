package service

import (
	"context"
	"log/slog"

	"github.com/Amir-Wake/Ebookd/internal/domain"
	"github.com/Amir-Wake/Ebookd/internal/errors"
	"github.com/Amir-Wake/Ebookd/internal/store"
)

// UserService manages account documents. Accounts are keyed by the auth
// subject and created lazily on first authenticated request.
type UserService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(st *store.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  st,
		logger: logger,
	}
}

// ProfilePatch carries the writable fields of a user profile.
type ProfilePatch struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,max=200"`
	ProfileImageURL *string `json:"profile_image_url,omitempty" validate:"omitempty,url,max=2000"`
}

// EnsureUser loads the account document for the auth subject, creating it
// with role "user" if this is the subject's first request.
func (s *UserService) EnsureUser(ctx context.Context, subjectID, email string) (*domain.User, error) {
	user, err := s.store.EnsureUser(ctx, subjectID, email)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "ensure user")
	}
	return user, nil
}

// GetUser retrieves an account document by id.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, errors.NotFoundf("user %s not found", userID)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "get user")
	}
	return user, nil
}

// UpdateProfile applies a partial profile update to the user's own account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.ProfileImageURL != nil {
		user.ProfileImageURL = *patch.ProfileImageURL
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, errors.NotFoundf("user %s not found", userID)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "update user")
	}

	s.logger.Info("updated profile", "user_id", userID)

	return user, nil
}

// DeleteAccount removes the user's account document. Their reviews remain;
// review documents carry the author id, not a reference that must resolve.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return errors.NotFoundf("user %s not found", userID)
		}
		return errors.Wrap(err, errors.CodeInternal, "delete user")
	}

	s.logger.Info("deleted account", "user_id", userID)

	return nil
}

// ListUsers returns all account documents. Admin only, enforced at the
// API layer.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list users")
	}
	return users, nil
}
