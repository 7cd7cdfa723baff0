package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiabytes/chatX/pkg/apperrors"
)

func TestMessageService_AppendThenListOrdersAscending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "u1", "u2")

	conv, err := f.conversations.GetOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := f.messages.Append(ctx, conv, "u1", fmt.Sprintf("msg %d", i), "text", "")
		require.NoError(t, err)
		ids = append(ids, id)
	}

	got, err := f.messages.List(ctx, conv, 0)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, v := range got {
		assert.Equal(t, ids[i], v.ID, "appended message order must be preserved")
		assert.Equal(t, fmt.Sprintf("msg %d", i), v.Content)
		assert.Equal(t, "User u1", v.Sender)
		assert.NotEmpty(t, v.Time)
	}
}

func TestMessageService_ListHonorsLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "u1", "u2")

	conv, err := f.conversations.GetOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		_, err := f.messages.Append(ctx, conv, "u1", "m", "text", "")
		require.NoError(t, err)
	}

	got, err := f.messages.List(ctx, conv, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestMessageService_AppendUnknownSender(t *testing.T) {
	f := newFixture(t)

	_, err := f.messages.Append(context.Background(), "any-conv", "ghost", "hi", "text", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMessageService_AppendDefaultsToText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "u1", "u2")

	conv, err := f.conversations.GetOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)

	_, err = f.messages.Append(ctx, conv, "u1", "hi", "", "")
	require.NoError(t, err)

	got, err := f.messages.List(ctx, conv, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "text", got[0].Type)
}

func TestMessageService_AppendRejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "u1")

	_, err := f.messages.Append(ctx, "conv", "u1", "hi", "sticker", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestMessageService_AppendImageCarriesMediaURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "u1", "u2")

	conv, err := f.conversations.GetOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)

	_, err = f.messages.Append(ctx, conv, "u1", "", "image", "https://cdn/img.png")
	require.NoError(t, err)

	got, err := f.messages.List(ctx, conv, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "image", got[0].Type)
	assert.Equal(t, "https://cdn/img.png", got[0].MediaURL)
}

func TestMessageService_AppendUpdatesPreviewAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "u1", "u2")

	conv, err := f.conversations.GetOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)

	id, err := f.messages.Append(ctx, conv, "u1", "latest", "text", "")
	require.NoError(t, err)

	stored, err := f.store.GetConversation(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, id, stored.LastMessageID)

	events := f.notifier.byKind(EventMessageAppended)
	require.Len(t, events, 1)
	assert.Equal(t, conv, events[0].ConversationID)
	assert.ElementsMatch(t, []string{"u1", "u2"}, events[0].Recipients)
}
