package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatapi/internal/domain"
	"chatapi/internal/store/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	require.NoError(t, sqlite.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:       username,
		HashedPassword: "x",
		IsActive:       true,
		CreatedAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, sqlite.NewUserRepo(db).Create(context.Background(), u))
	return u
}

func seedConversation(t *testing.T, db *sql.DB, creator *domain.User, title string) *domain.Conversation {
	t.Helper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &domain.Conversation{CreatedAt: now, UpdatedAt: now}
	if title != "" {
		c.Title = &title
	}
	require.NoError(t, sqlite.NewConversationRepo(db).Create(context.Background(), c, creator.ID))
	return c
}

func seedMessage(t *testing.T, db *sql.DB, conv *domain.Conversation, sender *domain.User, content string, at time.Time) *domain.Message {
	t.Helper()
	m := &domain.Message{
		ConversationID: conv.ID,
		SenderID:       sender.ID,
		Content:        content,
		MessageType:    domain.MessageTypeText,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	require.NoError(t, sqlite.NewMessageRepo(db).Create(context.Background(), m))
	return m
}

func TestConversationCreateAddsCreator(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")

	conv := seedConversation(t, db, u1, "general")

	parts := sqlite.NewParticipantRepo(db)
	ok, err := parts.IsParticipant(ctx, conv.ID, u1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	users, err := parts.ListParticipants(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].Username)
}

func TestParticipantAddIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")
	conv := seedConversation(t, db, u1, "")

	parts := sqlite.NewParticipantRepo(db)
	require.NoError(t, parts.Add(ctx, conv.ID, u2.ID))
	require.NoError(t, parts.Add(ctx, conv.ID, u2.ID))

	users, err := parts.ListParticipants(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestConversationListScopedToParticipant(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")
	mine := seedConversation(t, db, u1, "mine")
	seedConversation(t, db, u2, "theirs")

	repo := sqlite.NewConversationRepo(db)
	convs, count, err := repo.List(ctx, u1.ID, domain.ConversationQuery{}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, convs, 1)
	assert.Equal(t, mine.ID, convs[0].ID)
}

func TestMessageListVisibility(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")
	convA := seedConversation(t, db, u1, "alpha")
	convB := seedConversation(t, db, u2, "beta")

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedMessage(t, db, convA, u1, "visible", at)
	seedMessage(t, db, convB, u2, "hidden", at)

	repo := sqlite.NewMessageRepo(db)

	msgs, count, err := repo.List(ctx, u1.ID, domain.MessageQuery{}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, msgs, 1)
	assert.Equal(t, "visible", msgs[0].Content)
	assert.Equal(t, "u1", msgs[0].SenderUsername)

	// A conversation filter cannot escape the visibility restriction.
	msgs, count, err = repo.List(ctx, u1.ID, domain.MessageQuery{ConversationID: &convB.ID}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, msgs)
}

func TestMessageDateFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")
	conv := seedConversation(t, db, u1, "")

	seedMessage(t, db, conv, u1, "old", time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC))
	seedMessage(t, db, conv, u1, "new", time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))

	repo := sqlite.NewMessageRepo(db)
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	msgs, count, err := repo.List(ctx, u1.ID, domain.MessageQuery{DateAfter: &after}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, msgs, 1)
	assert.Equal(t, "new", msgs[0].Content)

	before := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	msgs, _, err = repo.List(ctx, u1.ID, domain.MessageQuery{DateBefore: &before}, 0, 20)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "old", msgs[0].Content)
}

func TestMessageContentAndSenderFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u1 := seedUser(t, db, "Alice")
	u2 := seedUser(t, db, "bob")
	conv := seedConversation(t, db, u1, "")
	require.NoError(t, sqlite.NewParticipantRepo(db).Add(ctx, conv.ID, u2.ID))

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedMessage(t, db, conv, u1, "Hello World", at)
	seedMessage(t, db, conv, u2, "goodbye", at.Add(time.Minute))

	repo := sqlite.NewMessageRepo(db)

	// Case-insensitive substring on content.
	msgs, count, err := repo.List(ctx, u1.ID, domain.MessageQuery{Content: "hello"}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hello World", msgs[0].Content)

	// Case-insensitive substring on sender username.
	msgs, _, err = repo.List(ctx, u1.ID, domain.MessageQuery{SenderUsername: "alice"}, 0, 20)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(u1.ID), msgs[0].SenderID)

	// Conjunctive filters narrow each other.
	msgs, _, err = repo.List(ctx, u1.ID, domain.MessageQuery{Content: "hello", SenderUsername: "bob"}, 0, 20)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMessageFilterMetacharactersAreLiteral(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")
	conv := seedConversation(t, db, u1, "")

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedMessage(t, db, conv, u1, "progress is 100% done", at)
	seedMessage(t, db, conv, u1, "100 reasons to celebrate", at.Add(time.Minute))
	seedMessage(t, db, conv, u1, "fixed in v1_2", at.Add(2*time.Minute))
	seedMessage(t, db, conv, u1, "fixed in v102", at.Add(3*time.Minute))

	repo := sqlite.NewMessageRepo(db)

	// % must not act as a wildcard.
	msgs, count, err := repo.List(ctx, u1.ID, domain.MessageQuery{Content: "100%"}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, msgs, 1)
	assert.Equal(t, "progress is 100% done", msgs[0].Content)

	// _ must not act as a single-character wildcard.
	msgs, count, err = repo.List(ctx, u1.ID, domain.MessageQuery{Content: "v1_2"}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, msgs, 1)
	assert.Equal(t, "fixed in v1_2", msgs[0].Content)

	// Same for the cross-field search term.
	_, count, err = repo.List(ctx, u1.ID, domain.MessageQuery{Search: "100%"}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMessageSearchOrSemantics(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u1 := seedUser(t, db, "planner")
	u2 := seedUser(t, db, "guest")
	conv := seedConversation(t, db, u1, "Weekly Standup")
	require.NoError(t, sqlite.NewParticipantRepo(db).Add(ctx, conv.ID, u2.ID))

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedMessage(t, db, conv, u2, "nothing to report", at)
	seedMessage(t, db, conv, u2, "the plan is ready", at.Add(time.Minute))

	repo := sqlite.NewMessageRepo(db)

	// "standup" only matches the conversation title, so every message in the
	// conversation matches.
	_, count, err := repo.List(ctx, u1.ID, domain.MessageQuery{Search: "standup"}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// "plan" matches one message's content and nothing else.
	_, count, err = repo.List(ctx, u1.ID, domain.MessageQuery{Search: "plan"}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, count, err = repo.List(ctx, u1.ID, domain.MessageQuery{Search: "report"}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMessageOrderingDeterministic(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")
	conv := seedConversation(t, db, u1, "")

	// Identical timestamps force the id tie-break.
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedMessage(t, db, conv, u1, fmt.Sprintf("msg-%d", i), at)
	}

	repo := sqlite.NewMessageRepo(db)

	first, _, err := repo.List(ctx, u1.ID, domain.MessageQuery{}, 0, 20)
	require.NoError(t, err)
	second, _, err := repo.List(ctx, u1.ID, domain.MessageQuery{}, 0, 20)
	require.NoError(t, err)

	require.Len(t, first, 5)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	// Ties broken by id ascending.
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].ID, first[i].ID)
	}
}

func TestMessageDefaultOrderingNewestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")
	conv := seedConversation(t, db, u1, "")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedMessage(t, db, conv, u1, "oldest", base)
	seedMessage(t, db, conv, u1, "middle", base.Add(time.Hour))
	seedMessage(t, db, conv, u1, "newest", base.Add(2*time.Hour))

	repo := sqlite.NewMessageRepo(db)
	msgs, _, err := repo.List(ctx, u1.ID, domain.MessageQuery{Ordering: domain.Ordering{Field: "created_at", Desc: true}}, 0, 20)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "newest", msgs[0].Content)
	assert.Equal(t, "oldest", msgs[2].Content)
}

func TestMessagePaginationCount(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")
	conv := seedConversation(t, db, u1, "")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 45; i++ {
		seedMessage(t, db, conv, u1, fmt.Sprintf("msg-%d", i), base.Add(time.Duration(i)*time.Second))
	}

	repo := sqlite.NewMessageRepo(db)

	page1, count, err := repo.List(ctx, u1.ID, domain.MessageQuery{}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 45, count)
	assert.Len(t, page1, 20)

	page3, count, err := repo.List(ctx, u1.ID, domain.MessageQuery{}, 40, 20)
	require.NoError(t, err)
	assert.Equal(t, 45, count)
	assert.Len(t, page3, 5)

	beyond, count, err := repo.List(ctx, u1.ID, domain.MessageQuery{}, 80, 20)
	require.NoError(t, err)
	assert.Equal(t, 45, count)
	assert.Empty(t, beyond)
}

func TestMessageDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")
	conv := seedConversation(t, db, u1, "")
	msg := seedMessage(t, db, conv, u1, "doomed", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	repo := sqlite.NewMessageRepo(db)
	require.NoError(t, repo.Delete(ctx, msg.ID))

	got, err := repo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
