package models

import (
	"sort"
	"strings"
	"time"
)

// Conversation is one record per unordered pair of users. PairKey is the
// canonical (sorted) join of the two participant ids and is what the
// get-or-create upsert conditions on.
type Conversation struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	PairKey        string    `bson:"pair_key" json:"-"`
	ParticipantOne string    `bson:"participant_one" json:"participant_one"`
	ParticipantTwo string    `bson:"participant_two" json:"participant_two"`
	LastMessageID  string    `bson:"last_message_id,omitempty" json:"last_message_id,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// PairKey canonicalizes a participant pair so (A,B) and (B,A) collide.
func PairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.ParticipantOne == userID {
		return c.ParticipantTwo
	}
	return c.ParticipantOne
}

// HasParticipant reports whether userID is one of the two members.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantOne == userID || c.ParticipantTwo == userID
}

// ConversationSummary is the view record assembled for the chat list: the other
// participant's profile plus a preview of the most recent message.
type ConversationSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ChatImage   string `json:"chat_image,omitempty"`
	LastMessage string `json:"last_message"`
	Time        string `json:"time"`
	Unread      int    `json:"unread"`
	Type        string `json:"type,omitempty"`
}
