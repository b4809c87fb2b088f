package db

import (
	"database/sql"
	"fmt"

	"erpchat/models"

	_ "github.com/lib/pq"
)

type SessionRepository interface {
	CreateSession(name string) (*models.Session, error)
	GetSessionByID(id int) (*models.Session, error)
	AppendMessage(msg *models.Message) error
	ListMessages(sessionID int) ([]models.Message, error)
}

type PostgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(databaseURL string) (*PostgresSessionRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresSessionRepository{db: db}, nil
}

func (r *PostgresSessionRepository) CreateSession(name string) (*models.Session, error) {
	query := `
		INSERT INTO erpchat.sessions (name)
		VALUES ($1)
		RETURNING id, name, createdAt`

	session := &models.Session{}
	row := r.db.QueryRow(query, name)

	if err := row.Scan(&session.ID, &session.Name, &session.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (r *PostgresSessionRepository) GetSessionByID(id int) (*models.Session, error) {
	query := `
		SELECT id, name, createdAt
		FROM erpchat.sessions
		WHERE id = $1`

	session := &models.Session{}
	row := r.db.QueryRow(query, id)

	if err := row.Scan(&session.ID, &session.Name, &session.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session with id %d not found", id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// AppendMessage persists the message with the next sequence for its
// session. The sequence is assigned in the insert itself so concurrent
// sessions never interleave numbering.
func (r *PostgresSessionRepository) AppendMessage(msg *models.Message) error {
	query := `
		INSERT INTO erpchat.messages (session_id, sequence, role, content, tool_name, visible)
		SELECT $1, COALESCE(MAX(sequence), 0) + 1, $2, $3, $4, $5
		FROM erpchat.messages
		WHERE session_id = $1
		RETURNING id, sequence, createdAt`

	row := r.db.QueryRow(query, msg.SessionID, msg.Role, msg.EncodeStoredContent(), msg.ToolName, msg.Visible)

	if err := row.Scan(&msg.ID, &msg.Sequence, &msg.CreatedAt); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	return nil
}

func (r *PostgresSessionRepository) ListMessages(sessionID int) ([]models.Message, error) {
	query := `
		SELECT id, session_id, sequence, role, content, tool_name, visible, createdAt
		FROM erpchat.messages
		WHERE session_id = $1
		ORDER BY sequence ASC`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		var stored string
		err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Sequence, &msg.Role, &stored, &msg.ToolName, &msg.Visible, &msg.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.DecodeStoredContent(stored)
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over messages: %w", err)
	}

	return messages, nil
}

func (r *PostgresSessionRepository) Close() error {
	return r.db.Close()
}
