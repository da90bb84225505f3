package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"chatapi/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

const messageColumns = `m.id, m.conversation_id, m.sender_id, u.username, m.content, m.message_type, m.created_at, m.updated_at`

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (conversation_id, sender_id, content, message_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		m.ConversationID,
		m.SenderID,
		m.Content,
		m.MessageType,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.id = ?
	`
	m := &domain.Message{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.ConversationID,
		&m.SenderID,
		&m.SenderUsername,
		&m.Content,
		&m.MessageType,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

// List returns one page of messages visible to viewerID plus the total match
// count. The participant join restricts the result to conversations the
// viewer belongs to before any filter in q applies, so filters can only
// narrow an already-safe set.
func (r *MessageRepo) List(ctx context.Context, viewerID int64, q domain.MessageQuery, offset, limit int) ([]*domain.Message, int, error) {
	base := `
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		JOIN conversations c ON c.id = m.conversation_id
		JOIN conversation_participants cp ON cp.conversation_id = m.conversation_id AND cp.user_id = ?
	`
	args := []any{viewerID}

	var where []string
	if q.Content != "" {
		where = append(where, `LOWER(m.content) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(q.Content))
	}
	if q.DateAfter != nil {
		where = append(where, `m.created_at >= ?`)
		args = append(args, *q.DateAfter)
	}
	if q.DateBefore != nil {
		where = append(where, `m.created_at <= ?`)
		args = append(args, *q.DateBefore)
	}
	if q.SenderUsername != "" {
		where = append(where, `LOWER(u.username) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(q.SenderUsername))
	}
	if q.SenderID != nil {
		where = append(where, `m.sender_id = ?`)
		args = append(args, *q.SenderID)
	}
	if q.ConversationID != nil {
		where = append(where, `m.conversation_id = ?`)
		args = append(args, *q.ConversationID)
	}
	if q.Search != "" {
		where = append(where, `(LOWER(m.content) LIKE ? ESCAPE '\' OR LOWER(u.username) LIKE ? ESCAPE '\' OR LOWER(COALESCE(c.title, '')) LIKE ? ESCAPE '\')`)
		p := likePattern(q.Search)
		args = append(args, p, p, p)
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) `+base+whereSQL, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	query := `SELECT ` + messageColumns + base + whereSQL +
		orderClause(q.Ordering, messageOrderColumns, "m.id") +
		` LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	res := []*domain.Message{}
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&m.SenderID,
			&m.SenderUsername,
			&m.Content,
			&m.MessageType,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}
	return res, count, rows.Err()
}

func (r *MessageRepo) Update(ctx context.Context, m *domain.Message) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE messages
		SET content = ?, message_type = ?, updated_at = ?
		WHERE id = ?
	`, m.Content, m.MessageType, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	return nil
}

func (r *MessageRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
