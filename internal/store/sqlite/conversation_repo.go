package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"chatapi/internal/domain"
)

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

var _ domain.ConversationRepository = (*ConversationRepo)(nil)

// Create inserts the conversation together with the creator's participation
// row in a single transaction, so there is no window in which the
// conversation exists without its creator as a participant.
func (r *ConversationRepo) Create(ctx context.Context, c *domain.Conversation, creatorID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO conversations (title, created_at, updated_at)
		VALUES (?, ?, ?)
	`, c.Title, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	c.ID = id

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO conversation_participants (conversation_id, user_id, joined_at)
		VALUES (?, ?, ?)
	`, id, creatorID, c.CreatedAt); err != nil {
		return fmt.Errorf("insert creator participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	query := `
		SELECT id, title, created_at, updated_at
		FROM conversations
		WHERE id = ?
	`
	c := &domain.Conversation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.Title,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

// List returns one page of the conversations visible to viewerID plus the
// total match count. The participant join restricts the set before q's
// filters apply.
func (r *ConversationRepo) List(ctx context.Context, viewerID int64, q domain.ConversationQuery, offset, limit int) ([]*domain.Conversation, int, error) {
	base := `
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id AND cp.user_id = ?
	`
	args := []any{viewerID}

	var where []string
	if q.Search != "" {
		where = append(where, `LOWER(COALESCE(c.title, '')) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(q.Search))
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) `+base+whereSQL, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}

	query := `SELECT c.id, c.title, c.created_at, c.updated_at ` +
		base + whereSQL +
		orderClause(q.Ordering, conversationOrderColumns, "c.id") +
		` LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	res := []*domain.Conversation{}
	for rows.Next() {
		c := &domain.Conversation{}
		if err := rows.Scan(
			&c.ID,
			&c.Title,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan conversation: %w", err)
		}
		res = append(res, c)
	}
	return res, count, rows.Err()
}

func (r *ConversationRepo) Update(ctx context.Context, c *domain.Conversation) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE conversations
		SET title = ?, updated_at = ?
		WHERE id = ?
	`, c.Title, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	return nil
}
