package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiabytes/chatX/pkg/apperrors"
)

func seedUsers(t *testing.T, f *fixture, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := f.users.Create(context.Background(), id, id+"@example.com", "User "+id, "", time.Now().UTC())
		require.NoError(t, err)
	}
}

func TestConversationService_GetOrCreateIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "u1", "u2")

	first, err := f.conversations.GetOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := f.conversations.GetOrCreate(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.Equal(t, first, second, "reversed pair must resolve to the same conversation")

	created := f.notifier.byKind(EventConversationCreated)
	assert.Len(t, created, 1, "only the first call creates")
}

func TestConversationService_GetOrCreateUnknownUser(t *testing.T) {
	f := newFixture(t)
	seedUsers(t, f, "u1")

	_, err := f.conversations.GetOrCreate(context.Background(), "u1", "ghost")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.conversations.GetOrCreate(context.Background(), "ghost", "u1")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestConversationService_ListForUnknownUserIsEmpty(t *testing.T) {
	f := newFixture(t)

	got, err := f.conversations.ListForUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConversationService_ListForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "u1", "u2", "u3")

	convA, err := f.conversations.GetOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)
	convB, err := f.conversations.GetOrCreate(ctx, "u1", "u3")
	require.NoError(t, err)

	_, err = f.messages.Append(ctx, convA, "u2", "hello from u2", "text", "")
	require.NoError(t, err)
	_, err = f.messages.Append(ctx, convB, "u3", "newer message", "text", "")
	require.NoError(t, err)

	got, err := f.conversations.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// convB was touched last, so it sorts first regardless of what the
	// formatted time strings would compare as.
	assert.Equal(t, convB, got[0].ID)
	assert.Equal(t, "User u3", got[0].Name)
	assert.Equal(t, "newer message", got[0].LastMessage)
	assert.Equal(t, "text", got[0].Type)
	assert.NotEmpty(t, got[0].Time)

	assert.Equal(t, convA, got[1].ID)
	assert.Equal(t, "hello from u2", got[1].LastMessage)
}

func TestConversationService_ListTreatsDanglingPreviewAsAbsent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "u1", "u2")

	conv, err := f.conversations.GetOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)

	// a crash between the two delete phases leaves the pointer dangling
	require.NoError(t, f.store.SetLastMessage(ctx, conv, "gone-message-id", time.Now().UTC()))

	got, err := f.conversations.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].LastMessage)
	assert.Empty(t, got[0].Type)
}

func TestConversationService_DeleteByNonParticipant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "u1", "u2", "u3")

	conv, err := f.conversations.GetOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)
	_, err = f.messages.Append(ctx, conv, "u1", "hi", "text", "")
	require.NoError(t, err)

	_, err = f.conversations.Delete(ctx, "u3", conv)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))

	// conversation and messages intact
	msgs, err := f.messages.List(ctx, conv, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
	convs, err := f.conversations.ListForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, convs, 1)
}

func TestConversationService_DeleteUnknownTargets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "u1", "u2")

	conv, err := f.conversations.GetOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)

	_, err = f.conversations.Delete(ctx, "ghost", conv)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.conversations.Delete(ctx, "u1", "no-such-conversation")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

// The end-to-end walk from the product scenario: two users, one conversation,
// two messages, delete, empty history.
func TestConversationLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "u1", "u2")

	conv, err := f.conversations.GetOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)

	m1, err := f.messages.Append(ctx, conv, "u1", "hi", "text", "")
	require.NoError(t, err)
	m2, err := f.messages.Append(ctx, conv, "u2", "hey", "text", "")
	require.NoError(t, err)

	msgs, err := f.messages.List(ctx, conv, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, m1, msgs[0].ID)
	assert.Equal(t, "u1", msgs[0].SenderUserID)
	assert.Equal(t, m2, msgs[1].ID)
	assert.Equal(t, "u2", msgs[1].SenderUserID)

	res, err := f.conversations.Delete(ctx, "u1", conv)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(2), res.DeletedMessages)

	after, err := f.messages.List(ctx, conv, 0)
	require.NoError(t, err)
	assert.Empty(t, after)

	deleted := f.notifier.byKind(EventConversationDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, conv, deleted[0].ConversationID)
	assert.ElementsMatch(t, []string{"u1", "u2"}, deleted[0].Recipients)
}
