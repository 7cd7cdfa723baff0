package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiabytes/chatX/internal/models"
	"github.com/xiabytes/chatX/internal/repository"
	"github.com/xiabytes/chatX/pkg/apperrors"
)

const defaultMessageLimit = 50

// MessageService is the append-only message log scoped to a conversation.
type MessageService struct {
	store    repository.Store
	notifier Notifier
	log      *zap.SugaredLogger
}

func NewMessageService(store repository.Store, notifier Notifier, log *zap.SugaredLogger) *MessageService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &MessageService{store: store, notifier: notifier, log: log}
}

// Append inserts a message, then patches the parent conversation's
// last-message pointer and timestamp. The two writes are not atomic; a preview
// may lag a just-appended message and readers tolerate that.
func (s *MessageService) Append(ctx context.Context, conversationID, senderExternalID, content, msgType, mediaURL string) (string, error) {
	sender, err := s.store.FindUserByExternalID(ctx, senderExternalID)
	if err != nil {
		return "", apperrors.Persistence("reading user did not work", err)
	}
	if sender == nil {
		return "", apperrors.NotFound("sender not found")
	}

	if msgType == "" {
		msgType = models.MessageTypeText
	}
	if !models.ValidMessageType(msgType) {
		return "", apperrors.InvalidArg("unknown message type " + msgType)
	}

	now := time.Now().UTC()
	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       sender.ID,
		Content:        content,
		Type:           msgType,
		MediaURL:       mediaURL,
		IsEdited:       false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	id, err := s.store.InsertMessage(ctx, msg)
	if err != nil {
		return "", apperrors.Persistence("sending message failed", err)
	}

	if err := s.store.SetLastMessage(ctx, conversationID, id, now); err != nil {
		s.log.Warnw("last-message pointer update failed",
			"conversation_id", conversationID, "message_id", id, "error", err)
	}

	recipients := []string{sender.UserID}
	if conv, err := s.store.GetConversation(ctx, conversationID); err == nil && conv != nil {
		if other, err := s.store.FindUserByID(ctx, conv.OtherParticipant(sender.ID)); err == nil && other != nil {
			recipients = append(recipients, other.UserID)
		}
	}
	s.notifier.Notify(ctx, Event{
		Kind:           EventMessageAppended,
		ConversationID: conversationID,
		Recipients:     recipients,
		Payload: models.MessageView{
			ID:           id,
			SenderUserID: sender.UserID,
			Sender:       sender.Name,
			Content:      content,
			Time:         FormatChatTime(now, time.Now()),
			IsSent:       true,
			Type:         msgType,
			MediaURL:     mediaURL,
		},
	})

	return id, nil
}

// List returns up to limit messages oldest-first, each resolved with the
// sender's display name and external id. History beyond the limit is not
// retrievable; there is no pagination cursor.
func (s *MessageService) List(ctx context.Context, conversationID string, limit int64) ([]models.MessageView, error) {
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	msgs, err := s.store.ListMessages(ctx, conversationID, limit)
	if err != nil {
		return nil, apperrors.Persistence("listing messages failed", err)
	}

	now := time.Now()
	senders := make(map[string]*models.User)
	out := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		sender, ok := senders[m.SenderID]
		if !ok {
			sender, err = s.store.FindUserByID(ctx, m.SenderID)
			if err != nil {
				return nil, apperrors.Persistence("reading user did not work", err)
			}
			senders[m.SenderID] = sender
		}

		view := models.MessageView{
			ID:       m.ID,
			Sender:   "Unknown",
			Content:  m.Content,
			Time:     FormatChatTime(m.CreatedAt, now),
			IsSent:   true,
			Type:     m.Type,
			MediaURL: m.MediaURL,
		}
		if sender != nil {
			view.SenderUserID = sender.UserID
			view.Sender = sender.Name
		}
		out = append(out, view)
	}
	return out, nil
}
