package contact

import (
	"context"
	"database/sql"

	"github.com/kapu/messenger-api-go/internal/domain"
	"github.com/kapu/messenger-api-go/internal/service/database"
	"github.com/kapu/messenger-api-go/pkg/errors"
	"go.uber.org/zap"
)

const conversationTable = "conversation"

// ConversationRepository reads conversations from the local message store.
type ConversationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewConversationRepository(postgres *database.PostgresService, logger *zap.Logger) *ConversationRepository {
	return &ConversationRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

// FindAll returns conversations newest first. limit <= 0 means no limit.
func (r *ConversationRepository) FindAll(ctx context.Context, limit int) ([]domain.Conversation, error) {
	query := `
		SELECT id, title, phone_numbers, image_uri, color, mute,
		       private_notifications, is_group
		FROM conversation
		ORDER BY timestamp DESC
	`
	return r.query(ctx, query, limit, "find_all")
}

// FindAttachable returns the conversations AttachList would keep, filtered in
// SQL: a single phone number and a non-empty avatar. limit <= 0 means no
// limit.
func (r *ConversationRepository) FindAttachable(ctx context.Context, limit int) ([]domain.Conversation, error) {
	query := `
		SELECT id, title, phone_numbers, image_uri, color, mute,
		       private_notifications, is_group
		FROM conversation
		WHERE phone_numbers NOT LIKE '%,%'
		  AND image_uri IS NOT NULL AND image_uri <> ''
		ORDER BY timestamp DESC
	`
	return r.query(ctx, query, limit, "find_attachable")
}

// FindByID returns nil, nil when the conversation does not exist.
func (r *ConversationRepository) FindByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	query := `
		SELECT id, title, phone_numbers, image_uri, color, mute,
		       private_notifications, is_group
		FROM conversation
		WHERE id = $1
		LIMIT 1
	`

	c, err := scanConversation(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to query conversation by id", conversationTable, "find_by_id", err)
	}
	return &c, nil
}

func (r *ConversationRepository) query(ctx context.Context, query string, limit int, op string) ([]domain.Conversation, error) {
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("failed to query conversations", conversationTable, op, err)
	}
	defer rows.Close()

	conversations := make([]domain.Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			r.logger.Warn("Failed to scan conversation row", zap.Error(err))
			continue
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to iterate conversations", conversationTable, op, err)
	}

	return conversations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (domain.Conversation, error) {
	var (
		c        domain.Conversation
		imageURI sql.NullString
		color    sql.NullInt64
	)

	if err := row.Scan(&c.ID, &c.Title, &c.PhoneNumbers, &imageURI, &color, &c.Mute, &c.Private, &c.Group); err != nil {
		return domain.Conversation{}, err
	}

	if imageURI.Valid {
		c.ImageURI = imageURI.String
	}
	if color.Valid {
		c.Color = int(color.Int64)
	}
	return c, nil
}
