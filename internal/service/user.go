package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiabytes/chatX/internal/models"
	"github.com/xiabytes/chatX/internal/repository"
	"github.com/xiabytes/chatX/pkg/apperrors"
)

const searchLimit = 10

// UserService is the user directory: identity records keyed by the external
// auth-provider id.
type UserService struct {
	store repository.Store
	log   *zap.SugaredLogger
}

func NewUserService(store repository.Store, log *zap.SugaredLogger) *UserService {
	return &UserService{store: store, log: log}
}

// Create inserts a new user record at first sign-in. No duplicate check is
// performed here; the caller is expected to have consulted Read first.
func (s *UserService) Create(ctx context.Context, externalID, email, name, avatarURL string, createdAt time.Time) (string, error) {
	u := &models.User{
		UserID:    externalID,
		Email:     email,
		Name:      name,
		AvatarURL: avatarURL,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	id, err := s.store.InsertUser(ctx, u)
	if err != nil {
		s.log.Errorw("insert user failed", "user_id", externalID, "error", err)
		return "", apperrors.Persistence("user information did not insert successfully", err)
	}
	return id, nil
}

// Read returns the user for an external id, or nil when absent. Absence is
// not an error; it is how the sign-in flow decides whether to call Create.
func (s *UserService) Read(ctx context.Context, externalID string) (*models.User, error) {
	u, err := s.store.FindUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, apperrors.Persistence("reading user did not work", err)
	}
	return u, nil
}

// Rename patches the display name only.
func (s *UserService) Rename(ctx context.Context, externalID, name string) (*models.User, error) {
	u, err := s.store.FindUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, apperrors.Persistence("reading user did not work", err)
	}
	if u == nil {
		return nil, apperrors.NotFound("user not found")
	}
	if err := s.store.PatchUserName(ctx, u.ID, name); err != nil {
		return nil, apperrors.Persistence("updating name failed", err)
	}
	u.Name = name
	return u, nil
}

// UpdateAvatar patches the avatar URL only.
func (s *UserService) UpdateAvatar(ctx context.Context, externalID, avatarURL string) (*models.User, error) {
	u, err := s.store.FindUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, apperrors.Persistence("reading user did not work", err)
	}
	if u == nil {
		return nil, apperrors.NotFound("user not found")
	}
	if err := s.store.PatchUserAvatar(ctx, u.ID, avatarURL); err != nil {
		return nil, apperrors.Persistence("updating avatar failed", err)
	}
	u.AvatarURL = avatarURL
	return u, nil
}

// Search matches term as a case-insensitive substring of name or email,
// excluding the requesting user, capped at ten results in scan order. An
// empty term returns no results rather than the whole directory.
func (s *UserService) Search(ctx context.Context, term, excludingExternalID string) ([]models.UserSummary, error) {
	if term == "" {
		return []models.UserSummary{}, nil
	}
	users, err := s.store.SearchUsers(ctx, term, excludingExternalID, searchLimit)
	if err != nil {
		return nil, apperrors.Persistence("user search failed", err)
	}
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}
