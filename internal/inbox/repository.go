package inbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/equipdesk/backoffice/internal/domain"
)

// Repository stores the admin inbox: messages and notifications, both
// JSONB documents with recipient and read flag promoted for the unread
// queries. The worker writes here when events arrive off Kafka.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateMessage(ctx context.Context, message *domain.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO messages (id, recipient_id, read, created_at, data)
		VALUES ($1, $2, $3, $4, $5)
	`, message.ID, message.RecipientID, message.Read, message.CreatedAt, data)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *Repository) ListMessages(ctx context.Context, recipientID string, unreadOnly bool) ([]domain.Message, error) {
	query := `
		SELECT data FROM messages
		WHERE recipient_id = $1
	`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	messages := []domain.Message{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var message domain.Message
		if err := json.Unmarshal(data, &message); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

// MarkMessageRead flips the read flag. Returns false when no such
// message exists.
func (r *Repository) MarkMessageRead(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE messages
		SET read = true, data = jsonb_set(data, '{read}', 'true')
		WHERE id = $1
	`, id)
	if err != nil {
		return false, fmt.Errorf("mark message read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *Repository) CreateNotification(ctx context.Context, notification *domain.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, read, created_at, data)
		VALUES ($1, $2, $3, $4, $5)
	`, notification.ID, notification.RecipientID, notification.Read, notification.CreatedAt, data)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *Repository) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool) ([]domain.Notification, error) {
	query := `
		SELECT data FROM notifications
		WHERE recipient_id = $1
	`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	notifications := []domain.Notification{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var notification domain.Notification
		if err := json.Unmarshal(data, &notification); err != nil {
			return nil, fmt.Errorf("unmarshal notification: %w", err)
		}
		notifications = append(notifications, notification)
	}

	return notifications, rows.Err()
}

func (r *Repository) MarkNotificationRead(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET read = true, data = jsonb_set(data, '{read}', 'true')
		WHERE id = $1
	`, id)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
