package repository

import (
	"context"
	"time"

	"github.com/xiabytes/chatX/internal/models"
)

// Store is the document-store surface the services run against. Lookups
// return (nil, nil) for absence; only infrastructure failures are errors.
type Store interface {
	// Users
	InsertUser(ctx context.Context, u *models.User) (string, error)
	FindUserByExternalID(ctx context.Context, userID string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	PatchUserName(ctx context.Context, id, name string) error
	PatchUserAvatar(ctx context.Context, id, avatarURL string) error
	SearchUsers(ctx context.Context, term, excludeUserID string, limit int64) ([]*models.User, error)

	// Conversations
	UpsertConversation(ctx context.Context, c *models.Conversation) (string, bool, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListConversationsForUser(ctx context.Context, participantID string) ([]*models.Conversation, error)
	SetLastMessage(ctx context.Context, conversationID, messageID string, at time.Time) error
	DeleteConversation(ctx context.Context, id string) error

	// Messages
	InsertMessage(ctx context.Context, m *models.Message) (string, error)
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID string, limit int64) ([]*models.Message, error)
	DeleteMessagesByConversation(ctx context.Context, conversationID string) (int64, error)

	// Media
	InsertMedia(ctx context.Context, m *models.Media) error
	GetMedia(ctx context.Context, id string) (*models.Media, error)
}
