package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xiabytes/chatX/internal/models"
)

type MongoStore struct {
	client   *mongo.Client
	db       *mongo.Database
	users    *mongo.Collection
	convs    *mongo.Collection
	messages *mongo.Collection
	media    *mongo.Collection
}

// NewMongoStore connects and ensures indexes. The pair_key index is unique so
// the get-or-create upsert cannot produce two conversations for one pair; the
// users collection deliberately has no unique index on user_id (duplicate
// sign-ins are a documented gap handled upstream).
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(database)
	s := &MongoStore{
		client:   client,
		db:       db,
		users:    db.Collection("users"),
		convs:    db.Collection("conversations"),
		messages: db.Collection("messages"),
		media:    db.Collection("media"),
	}

	_, _ = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	_, _ = s.convs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "pair_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "participant_one", Value: 1}}},
		{Keys: bson.D{{Key: "participant_two", Value: 1}}},
	})
	_, _ = s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	_, _ = s.media.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "message_id", Value: 1}},
	})

	return s, nil
}

func (s *MongoStore) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ---------- users ----------

func (s *MongoStore) InsertUser(ctx context.Context, u *models.User) (string, error) {
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	_, err := s.users.InsertOne(ctx, u)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (s *MongoStore) FindUserByExternalID(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"user_id": userID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) PatchUserName(ctx context.Context, id, name string) error {
	_, err := s.users.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":       name,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

func (s *MongoStore) PatchUserAvatar(ctx context.Context, id, avatarURL string) error {
	_, err := s.users.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"avatar_url": avatarURL,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

func (s *MongoStore) SearchUsers(ctx context.Context, term, excludeUserID string, limit int64) ([]*models.User, error) {
	pattern := regexp.QuoteMeta(term)
	filter := bson.M{
		"user_id": bson.M{"$ne": excludeUserID},
		"$or": []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"email": bson.M{"$regex": pattern, "$options": "i"}},
		},
	}
	cur, err := s.users.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------- conversations ----------

// UpsertConversation is the atomic get-or-create: a single findOneAndUpdate
// with $setOnInsert keyed on pair_key. Concurrent calls for the same pair all
// observe the one inserted document.
func (s *MongoStore) UpsertConversation(ctx context.Context, c *models.Conversation) (string, bool, error) {
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	res := s.convs.FindOneAndUpdate(ctx,
		bson.M{"pair_key": c.PairKey},
		bson.M{"$setOnInsert": bson.M{
			"_id":             c.ID,
			"pair_key":        c.PairKey,
			"participant_one": c.ParticipantOne,
			"participant_two": c.ParticipantTwo,
			"created_at":      c.CreatedAt,
			"updated_at":      c.UpdatedAt,
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	var existing models.Conversation
	if err := res.Decode(&existing); err != nil {
		return "", false, err
	}
	return existing.ID, existing.ID == c.ID, nil
}

func (s *MongoStore) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var c models.Conversation
	err := s.convs.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoStore) ListConversationsForUser(ctx context.Context, participantID string) ([]*models.Conversation, error) {
	filter := bson.M{"$or": []bson.M{
		{"participant_one": participantID},
		{"participant_two": participantID},
	}}
	cur, err := s.convs.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Conversation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) SetLastMessage(ctx context.Context, conversationID, messageID string, at time.Time) error {
	_, err := s.convs.UpdateByID(ctx, conversationID, bson.M{"$set": bson.M{
		"last_message_id": messageID,
		"updated_at":      at,
	}})
	return err
}

func (s *MongoStore) DeleteConversation(ctx context.Context, id string) error {
	_, err := s.convs.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ---------- messages ----------

func (s *MongoStore) InsertMessage(ctx context.Context, m *models.Message) (string, error) {
	if m.ID == "" {
		m.ID = primitive.NewObjectID().Hex()
	}
	_, err := s.messages.InsertOne(ctx, m)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (s *MongoStore) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	var m models.Message
	err := s.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MongoStore) ListMessages(ctx context.Context, conversationID string, limit int64) ([]*models.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(limit)
	cur, err := s.messages.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) DeleteMessagesByConversation(ctx context.Context, conversationID string) (int64, error) {
	res, err := s.messages.DeleteMany(ctx, bson.M{"conversation_id": conversationID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ---------- media ----------

func (s *MongoStore) InsertMedia(ctx context.Context, m *models.Media) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.media.InsertOne(ctx, m)
	return err
}

func (s *MongoStore) GetMedia(ctx context.Context, id string) (*models.Media, error) {
	var m models.Media
	err := s.media.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
