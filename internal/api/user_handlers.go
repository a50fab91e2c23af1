package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Amir-Wake/Ebookd/internal/domain"
	"github.com/Amir-Wake/Ebookd/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Current user",
		Description: "Returns the caller's account",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update profile",
		Description: "Partially updates the caller's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteAccount",
		Method:        http.MethodDelete,
		Path:          "/api/v1/users/me",
		Summary:       "Delete account",
		Description:   "Deletes the caller's account. Reviews the caller wrote are kept.",
		Tags:          []string{"Users"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteAccount)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns all accounts. Admin only.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUsers)
}

// === DTOs ===

// UserResponse contains account data in API responses.
type UserResponse struct {
	ID              string    `json:"id" doc:"User ID"`
	Email           string    `json:"email" doc:"Email address"`
	Name            string    `json:"name,omitempty" doc:"Display name"`
	Role            string    `json:"role" doc:"Account role"`
	ProfileImageURL string    `json:"profile_image_url,omitempty" doc:"Profile image URL"`
	CreatedAt       time.Time `json:"created_at" doc:"Account creation time"`
	UpdatedAt       time.Time `json:"updated_at" doc:"Last update time"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            string(u.Role),
		ProfileImageURL: u.ProfileImageURL,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// UserOutput wraps a single account for Huma.
type UserOutput struct {
	Body UserResponse
}

// UsersOutput wraps an account list for Huma.
type UsersOutput struct {
	Body struct {
		Users []UserResponse `json:"users" doc:"Accounts"`
	}
}

// UpdateProfileInput wraps the profile patch request for Huma.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          service.ProfilePatch
}

// AuthenticatedInput carries only the Authorization header.
type AuthenticatedInput struct {
	Authorization string `header:"Authorization"`
}

// === Handlers ===

func (s *Server) handleCurrentUser(ctx context.Context, input *AuthenticatedInput) (*UserOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: toUserResponse(user)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	updated, err := s.services.User.UpdateProfile(ctx, user.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: toUserResponse(updated)}, nil
}

func (s *Server) handleDeleteAccount(ctx context.Context, input *AuthenticatedInput) (*struct{}, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.User.DeleteAccount(ctx, user.ID); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}

func (s *Server) handleListUsers(ctx context.Context, input *AuthenticatedInput) (*UsersOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	users, err := s.services.User.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := &UsersOutput{}
	out.Body.Users = make([]UserResponse, len(users))
	for i, u := range users {
		out.Body.Users[i] = toUserResponse(u)
	}
	return out, nil
}
