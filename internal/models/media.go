package models

import "time"

// Media is the side-table of uploaded asset metadata. Key is the object
// storage key; URL is set when the bucket serves public reads.
type Media struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	MessageID   string    `bson:"message_id,omitempty" json:"message_id,omitempty"`
	Key         string    `bson:"key" json:"key"`
	URL         string    `bson:"url,omitempty" json:"url,omitempty"`
	Thumbnail   string    `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Type        string    `bson:"type" json:"type"`
	Size        int64     `bson:"size" json:"size"`
	ContentType string    `bson:"content_type" json:"content_type"`
	FileName    string    `bson:"file_name" json:"file_name"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
