package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/quorum-ai/quorum/pkg/models"
)

// defaultReadLimit bounds GetMessages when the caller passes no limit.
const defaultReadLimit = 50

// Inbox manages durable, bounded, per-agent mailboxes. It owns the
// messages table exclusively.
type Inbox struct {
	db          *DB
	maxMessages int
}

// NewInbox creates an Inbox with the given per-recipient message cap.
func NewInbox(db *DB, maxMessages int) *Inbox {
	return &Inbox{db: db, maxMessages: maxMessages}
}

// Send inserts a message and enforces the recipient's cap by evicting
// the oldest excess messages for that recipient only.
func (i *Inbox) Send(to, content, from, metadata string) (*models.Message, error) {
	msg := &models.Message{
		ID:        models.NewID(),
		From:      from,
		To:        to,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}

	_, err := i.db.Exec(
		`INSERT INTO messages (message_id, from_agent, to_agent, content, timestamp, read, metadata)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		msg.ID, msg.From, msg.To, msg.Content, formatTime(msg.Timestamp), nullableString(msg.Metadata),
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	if err := i.enforceLimit(to); err != nil {
		return nil, err
	}
	return msg, nil
}

// GetMessages returns the recipient's messages newest-first. A
// non-positive limit selects the default.
func (i *Inbox) GetMessages(agent string, unreadOnly bool, limit int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = defaultReadLimit
	}

	query := `SELECT message_id, from_agent, to_agent, content, timestamp, read, metadata
		 FROM messages WHERE to_agent = ?`
	args := []any{agent}
	if unreadOnly {
		query += " AND read = 0"
	}
	query += " ORDER BY timestamp DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := i.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	var msgs []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// MarkRead marks the given message ids read for the recipient, or all
// unread messages when ids is empty. Returns the affected count.
func (i *Inbox) MarkRead(agent string, ids []string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if len(ids) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
		args := make([]any, 0, len(ids)+1)
		args = append(args, agent)
		for _, id := range ids {
			args = append(args, id)
		}
		res, err = i.db.Exec(
			fmt.Sprintf("UPDATE messages SET read = 1 WHERE to_agent = ? AND message_id IN (%s)", placeholders),
			args...,
		)
	} else {
		res, err = i.db.Exec(
			"UPDATE messages SET read = 1 WHERE to_agent = ? AND read = 0", agent)
	}
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return count, nil
}

// Summary returns message counts and the oldest unread timestamp for
// the recipient.
func (i *Inbox) Summary(agent string) (*models.InboxSummary, error) {
	summary := &models.InboxSummary{AgentName: agent}

	row := i.db.QueryRow("SELECT COUNT(*) FROM messages WHERE to_agent = ?", agent)
	if err := row.Scan(&summary.Total); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	row = i.db.QueryRow("SELECT COUNT(*) FROM messages WHERE to_agent = ? AND read = 0", agent)
	if err := row.Scan(&summary.Unread); err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}

	if summary.Unread > 0 {
		var oldest sql.NullString
		row = i.db.QueryRow(
			"SELECT MIN(timestamp) FROM messages WHERE to_agent = ? AND read = 0", agent)
		if err := row.Scan(&oldest); err != nil {
			return nil, fmt.Errorf("oldest unread: %w", err)
		}
		summary.OldestUnread = parseNullableTime(oldest)
	}

	return summary, nil
}

// Clear deletes all messages for the recipient and returns the count.
func (i *Inbox) Clear(agent string) (int64, error) {
	res, err := i.db.Exec("DELETE FROM messages WHERE to_agent = ?", agent)
	if err != nil {
		return 0, fmt.Errorf("clear inbox: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return count, nil
}

// enforceLimit evicts the oldest messages past the recipient's cap.
func (i *Inbox) enforceLimit(agent string) error {
	var count int
	row := i.db.QueryRow("SELECT COUNT(*) FROM messages WHERE to_agent = ?", agent)
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("count messages: %w", err)
	}

	if count <= i.maxMessages {
		return nil
	}

	excess := count - i.maxMessages
	_, err := i.db.Exec(
		`DELETE FROM messages WHERE message_id IN (
			SELECT message_id FROM messages WHERE to_agent = ?
			ORDER BY timestamp ASC, rowid ASC LIMIT ?
		)`, agent, excess)
	if err != nil {
		return fmt.Errorf("evict oldest messages: %w", err)
	}
	return nil
}

// scanMessage reads one message row.
func scanMessage(row rowScanner) (*models.Message, error) {
	var (
		msg       models.Message
		timestamp string
		read      int
		metadata  sql.NullString
	)
	err := row.Scan(&msg.ID, &msg.From, &msg.To, &msg.Content, &timestamp, &read, &metadata)
	if err != nil {
		return nil, err
	}

	ts, err := parseTime(timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp: %w", err)
	}
	msg.Timestamp = ts
	msg.Read = read != 0
	msg.Metadata = metadata.String
	return &msg, nil
}
