package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/xiabytes/chatX/internal/models"
	"github.com/xiabytes/chatX/internal/repository"
	"github.com/xiabytes/chatX/pkg/apperrors"
)

// ConversationService is the conversation directory: one record per unordered
// pair of users, with a denormalized last-message pointer for previews.
type ConversationService struct {
	store    repository.Store
	notifier Notifier
	log      *zap.SugaredLogger
}

func NewConversationService(store repository.Store, notifier Notifier, log *zap.SugaredLogger) *ConversationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ConversationService{store: store, notifier: notifier, log: log}
}

// DeleteResult is what a conversation delete reports back.
type DeleteResult struct {
	Success         bool  `json:"success"`
	DeletedMessages int64 `json:"deleted_messages"`
}

// GetOrCreate returns the conversation id for the pair, creating the record on
// first contact. The pair is canonicalized and the insert is a conditional
// upsert, so (A,B) and (B,A) — sequential or concurrent — resolve to one id.
func (s *ConversationService) GetOrCreate(ctx context.Context, currentUserID, participantUserID string) (string, error) {
	current, err := s.store.FindUserByExternalID(ctx, currentUserID)
	if err != nil {
		return "", apperrors.Persistence("reading user did not work", err)
	}
	other, err := s.store.FindUserByExternalID(ctx, participantUserID)
	if err != nil {
		return "", apperrors.Persistence("reading user did not work", err)
	}
	if current == nil || other == nil {
		return "", apperrors.NotFound("user not found")
	}

	now := time.Now().UTC()
	conv := &models.Conversation{
		PairKey:        models.PairKey(current.ID, other.ID),
		ParticipantOne: current.ID,
		ParticipantTwo: other.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	id, created, err := s.store.UpsertConversation(ctx, conv)
	if err != nil {
		return "", apperrors.Persistence("creating conversation failed", err)
	}
	if created {
		s.notifier.Notify(ctx, Event{
			Kind:           EventConversationCreated,
			ConversationID: id,
			Recipients:     []string{current.UserID, other.UserID},
		})
	}
	return id, nil
}

// ListForUser assembles the chat list: for every conversation the user is in,
// the other participant's profile and a preview of the most recent message.
// An unknown user gets an empty list, not an error. A last-message pointer
// that no longer resolves (crash mid cascade delete) renders as no preview.
func (s *ConversationService) ListForUser(ctx context.Context, externalUserID string) ([]models.ConversationSummary, error) {
	user, err := s.store.FindUserByExternalID(ctx, externalUserID)
	if err != nil {
		return nil, apperrors.Persistence("reading user did not work", err)
	}
	if user == nil {
		return []models.ConversationSummary{}, nil
	}

	convs, err := s.store.ListConversationsForUser(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Persistence("listing conversations failed", err)
	}

	// Sort on the raw timestamp, newest first. The formatted time string is
	// for display only and has no usable ordering.
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})

	now := time.Now()
	out := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary := models.ConversationSummary{
			ID:   conv.ID,
			Name: "Unknown",
			Time: FormatChatTime(conv.UpdatedAt, now),
		}

		other, err := s.store.FindUserByID(ctx, conv.OtherParticipant(user.ID))
		if err != nil {
			return nil, apperrors.Persistence("reading user did not work", err)
		}
		if other != nil {
			summary.Name = other.Name
			summary.ChatImage = other.AvatarURL
		}

		if conv.LastMessageID != "" {
			last, err := s.store.GetMessage(ctx, conv.LastMessageID)
			if err != nil {
				return nil, apperrors.Persistence("reading message did not work", err)
			}
			if last != nil {
				summary.LastMessage = last.Content
				summary.Type = last.Type
			}
		}

		out = append(out, summary)
	}
	return out, nil
}

// Delete removes a conversation and all its messages. Only a participant may
// delete. Messages go first; if that phase fails the parent delete proceeds
// anyway and readers tolerate the orphans.
func (s *ConversationService) Delete(ctx context.Context, requestingUserID, conversationID string) (DeleteResult, error) {
	user, err := s.store.FindUserByExternalID(ctx, requestingUserID)
	if err != nil {
		return DeleteResult{}, apperrors.Persistence("reading user did not work", err)
	}
	if user == nil {
		return DeleteResult{}, apperrors.NotFound("user not found")
	}

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return DeleteResult{}, apperrors.Persistence("reading conversation did not work", err)
	}
	if conv == nil {
		return DeleteResult{}, apperrors.NotFound("conversation not found")
	}
	if !conv.HasParticipant(user.ID) {
		return DeleteResult{}, apperrors.Unauthorized("unauthorized to delete this conversation")
	}

	deleted, err := s.store.DeleteMessagesByConversation(ctx, conversationID)
	if err != nil {
		s.log.Warnw("cascade message delete failed, deleting conversation anyway",
			"conversation_id", conversationID, "error", err)
	}

	if err := s.store.DeleteConversation(ctx, conversationID); err != nil {
		return DeleteResult{}, apperrors.Persistence("deleting conversation failed", err)
	}

	otherID := conv.OtherParticipant(user.ID)
	recipients := []string{user.UserID}
	if other, err := s.store.FindUserByID(ctx, otherID); err == nil && other != nil {
		recipients = append(recipients, other.UserID)
	}
	s.notifier.Notify(ctx, Event{
		Kind:           EventConversationDeleted,
		ConversationID: conversationID,
		Recipients:     recipients,
	})

	return DeleteResult{Success: true, DeletedMessages: deleted}, nil
}
