package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xiabytes/chatX/internal/models"
)

// MemoryStore keeps everything in process memory. It backs the service tests
// and local development without a running mongod. The single mutex stands in
// for the per-document atomicity the real store provides.
type MemoryStore struct {
	mu        sync.Mutex
	users     []*models.User
	convs     map[string]*models.Conversation
	convByKey map[string]string
	messages  []*models.Message
	media     map[string]*models.Media
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		convs:     make(map[string]*models.Conversation),
		convByKey: make(map[string]string),
		media:     make(map[string]*models.Media),
	}
}

// ---------- users ----------

func (s *MemoryStore) InsertUser(_ context.Context, u *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	s.users = append(s.users, &cp)
	return u.ID, nil
}

func (s *MemoryStore) FindUserByExternalID(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UserID == userID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) PatchUserName(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			u.Name = name
			u.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

func (s *MemoryStore) PatchUserAvatar(_ context.Context, id, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			u.AvatarURL = avatarURL
			u.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

// SearchUsers scans in insertion order, matching term as a case-insensitive
// substring of name or email.
func (s *MemoryStore) SearchUsers(_ context.Context, term, excludeUserID string, limit int64) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(term)
	var out []*models.User
	for _, u := range s.users {
		if u.UserID == excludeUserID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) {
			cp := *u
			out = append(out, &cp)
			if int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

// ---------- conversations ----------

func (s *MemoryStore) UpsertConversation(_ context.Context, c *models.Conversation) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.convByKey[c.PairKey]; ok {
		return id, false, nil
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	s.convs[c.ID] = &cp
	s.convByKey[c.PairKey] = c.ID
	return c.ID, true, nil
}

func (s *MemoryStore) GetConversation(_ context.Context, id string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ListConversationsForUser(_ context.Context, participantID string) ([]*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Conversation
	for _, c := range s.convs {
		if c.HasParticipant(participantID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) SetLastMessage(_ context.Context, conversationID, messageID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.convs[conversationID]; ok {
		c.LastMessageID = messageID
		c.UpdatedAt = at
	}
	return nil
}

func (s *MemoryStore) DeleteConversation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.convs[id]; ok {
		delete(s.convByKey, c.PairKey)
		delete(s.convs, id)
	}
	return nil
}

// ---------- messages ----------

func (s *MemoryStore) InsertMessage(_ context.Context, m *models.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	cp := *m
	s.messages = append(s.messages, &cp)
	return m.ID, nil
}

func (s *MemoryStore) GetMessage(_ context.Context, id string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListMessages(_ context.Context, conversationID string, limit int64) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) DeleteMessagesByConversation(_ context.Context, conversationID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []*models.Message
	var deleted int64
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	s.messages = kept
	return deleted, nil
}

// ---------- media ----------

func (s *MemoryStore) InsertMedia(_ context.Context, m *models.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	cp := *m
	s.media[m.ID] = &cp
	return nil
}

func (s *MemoryStore) GetMedia(_ context.Context, id string) (*models.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.media[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}
