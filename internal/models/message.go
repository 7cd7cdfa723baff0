package models

import "time"

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
	MessageTypeAudio = "audio"
	MessageTypeFile  = "file"
)

// ValidMessageType reports whether t is one of the declared type tags. Only
// text and image are currently produced by clients.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypeAudio, MessageTypeFile:
		return true
	}
	return false
}

// Message belongs to exactly one conversation. ReplyTo and IsEdited are
// declared extension points; no handler mutates them today.
type Message struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversation_id"`
	SenderID       string    `bson:"sender_id" json:"sender_id"`
	Content        string    `bson:"content" json:"content"`
	Type           string    `bson:"type" json:"type"`
	MediaURL       string    `bson:"media_url,omitempty" json:"media_url,omitempty"`
	ReplyTo        string    `bson:"reply_to,omitempty" json:"reply_to,omitempty"`
	IsEdited       bool      `bson:"is_edited" json:"is_edited"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// MessageView is a message resolved for rendering: sender display fields and a
// human-relative time string. The Time field is presentation-only and must not
// be parsed or sorted by callers.
type MessageView struct {
	ID           string `json:"id"`
	SenderUserID string `json:"sender_user_id"`
	Sender       string `json:"sender"`
	Content      string `json:"content"`
	Time         string `json:"time"`
	IsSent       bool   `json:"is_sent"`
	Type         string `json:"type"`
	MediaURL     string `json:"media_url,omitempty"`
}
