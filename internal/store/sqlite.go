package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS businesses (
        id TEXT PRIMARY KEY, -- UUID
        name TEXT NOT NULL,
        generated_code TEXT NOT NULL DEFAULT '',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS customization_usage (
        business_id TEXT PRIMARY KEY,
        messages_used INTEGER NOT NULL DEFAULT 0,
        generations_used INTEGER NOT NULL DEFAULT 0,
        FOREIGN KEY (business_id) REFERENCES businesses (id)
    );

    CREATE TABLE IF NOT EXISTS customization_messages (
        id TEXT PRIMARY KEY, -- UUID
        business_id TEXT NOT NULL,
        sender TEXT NOT NULL CHECK (sender IN ('user', 'assistant')),
        content TEXT NOT NULL,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (business_id) REFERENCES businesses (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Business methods
func (s *SQLiteStore) GetBusinessByID(businessID string) (*Business, error) {
	var biz Business
	err := s.db.QueryRow("SELECT id, name, generated_code, created_at, updated_at FROM businesses WHERE id = ?", businessID).Scan(&biz.ID, &biz.Name, &biz.GeneratedCode, &biz.CreatedAt, &biz.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to query business: %w", err)
	}
	return &biz, nil
}

func (s *SQLiteStore) CreateBusiness(name, generatedCode string) (*Business, error) {
	businessID := uuid.NewString()
	now := time.Now()
	_, err := s.db.Exec("INSERT INTO businesses (id, name, generated_code, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		businessID, name, generatedCode, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert business: %w", err)
	}
	return &Business{ID: businessID, Name: name, GeneratedCode: generatedCode, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *SQLiteStore) UpdateGeneratedCode(businessID, generatedCode string) error {
	res, err := s.db.Exec("UPDATE businesses SET generated_code = ?, updated_at = ? WHERE id = ?",
		generatedCode, time.Now(), businessID)
	if err != nil {
		return fmt.Errorf("failed to update generated code: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("business %s not found", businessID)
	}
	return nil
}

// Usage methods
func (s *SQLiteStore) GetUsage(businessID string) (*Usage, error) {
	usage := Usage{BusinessID: businessID}
	err := s.db.QueryRow("SELECT messages_used, generations_used FROM customization_usage WHERE business_id = ?", businessID).Scan(&usage.MessagesUsed, &usage.GenerationsUsed)
	if err != nil {
		if err == sql.ErrNoRows {
			return &usage, nil // No usage recorded yet
		}
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	return &usage, nil
}

func (s *SQLiteStore) IncrementMessagesUsed(businessID string) error {
	return s.incrementUsage(businessID, "messages_used")
}

func (s *SQLiteStore) IncrementGenerationsUsed(businessID string) error {
	return s.incrementUsage(businessID, "generations_used")
}

func (s *SQLiteStore) incrementUsage(businessID, column string) error {
	// column is one of two fixed names, never caller input.
	query := fmt.Sprintf(`
        INSERT INTO customization_usage (business_id, %s) VALUES (?, 1)
        ON CONFLICT (business_id) DO UPDATE SET %s = %s + 1`, column, column, column)
	if _, err := s.db.Exec(query, businessID); err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}
	return nil
}

// Customization message methods
func (s *SQLiteStore) AppendCustomizationMessage(businessID, sender, content string) (*CustomizationMessage, error) {
	msg := CustomizationMessage{
		ID:         uuid.NewString(),
		BusinessID: businessID,
		Sender:     sender,
		Content:    content,
		Timestamp:  time.Now(),
	}
	_, err := s.db.Exec("INSERT INTO customization_messages (id, business_id, sender, content, timestamp) VALUES (?, ?, ?, ?, ?)",
		msg.ID, msg.BusinessID, msg.Sender, msg.Content, msg.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to insert customization message: %w", err)
	}
	return &msg, nil
}

func (s *SQLiteStore) GetCustomizationMessages(businessID string) ([]CustomizationMessage, error) {
	rows, err := s.db.Query("SELECT id, business_id, sender, content, timestamp FROM customization_messages WHERE business_id = ? ORDER BY timestamp ASC", businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query customization messages: %w", err)
	}
	defer rows.Close()

	var messages []CustomizationMessage
	for rows.Next() {
		var msg CustomizationMessage
		if err := rows.Scan(&msg.ID, &msg.BusinessID, &msg.Sender, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan customization message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
