package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/clearpathfinancial/clearpath-api/internal/config"
	"github.com/clearpathfinancial/clearpath-api/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Chat messages

func (c *DatabaseClient) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg == nil {
		return errors.New("nil message")
	}
	const q = `
		INSERT INTO chat_messages (id, sender_name, sender_email, body, sender_role, escalation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		msg.ID, msg.SenderName, msg.SenderEmail, msg.Body, msg.SenderRole, msg.Escalation, msg.CreatedAt)
	return err
}

// ListMessagesByEmail returns the visitor's conversation: their own messages
// plus everything sent from the reserved support identity, oldest first.
func (c *DatabaseClient) ListMessagesByEmail(ctx context.Context, email string) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, sender_name, sender_email, body, sender_role, escalation, created_at
		FROM chat_messages
		WHERE sender_email = $1 OR sender_email = $2
		ORDER BY created_at ASC
	`
	return c.scanMessages(ctx, q, email, models.SupportEmail)
}

func (c *DatabaseClient) ListAllMessages(ctx context.Context) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, sender_name, sender_email, body, sender_role, escalation, created_at
		FROM chat_messages
		ORDER BY created_at ASC
	`
	return c.scanMessages(ctx, q)
}

func (c *DatabaseClient) scanMessages(ctx context.Context, q string, args ...any) ([]models.ChatMessage, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(
			&m.ID, &m.SenderName, &m.SenderEmail, &m.Body, &m.SenderRole, &m.Escalation, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Documents

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, visitor_email, visitor_name, file_name, file_type, stored_path,
			 analysis_text, report_path, status, time_zone, local_date_text, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.VisitorEmail, doc.VisitorName, doc.FileName, doc.FileType, doc.StoredPath,
		doc.AnalysisText, doc.ReportPath, doc.Status, doc.TimeZone, doc.LocalDateText, doc.CreatedAt)
	return err
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, visitor_email, visitor_name, file_name, file_type, stored_path,
		       analysis_text, report_path, status, time_zone, local_date_text, created_at
		FROM documents
		WHERE id = $1
	`
	var d models.Document
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.VisitorEmail, &d.VisitorName, &d.FileName, &d.FileType, &d.StoredPath,
		&d.AnalysisText, &d.ReportPath, &d.Status, &d.TimeZone, &d.LocalDateText, &d.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocumentsByEmail(ctx context.Context, email string) ([]models.Document, error) {
	const q = `
		SELECT id, visitor_email, visitor_name, file_name, file_type, stored_path,
		       analysis_text, report_path, status, time_zone, local_date_text, created_at
		FROM documents
		WHERE visitor_email = $1
		ORDER BY created_at DESC
	`
	return c.scanDocuments(ctx, q, email)
}

func (c *DatabaseClient) ListAllDocuments(ctx context.Context) ([]models.Document, error) {
	const q = `
		SELECT id, visitor_email, visitor_name, file_name, file_type, stored_path,
		       analysis_text, report_path, status, time_zone, local_date_text, created_at
		FROM documents
		ORDER BY created_at DESC
	`
	return c.scanDocuments(ctx, q)
}

func (c *DatabaseClient) scanDocuments(ctx context.Context, q string, args ...any) ([]models.Document, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.VisitorEmail, &d.VisitorName, &d.FileName, &d.FileType, &d.StoredPath,
			&d.AnalysisText, &d.ReportPath, &d.Status, &d.TimeZone, &d.LocalDateText, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateDocumentAnalysis(ctx context.Context, id, analysis string) error {
	const q = `UPDATE documents SET analysis_text = $2 WHERE id = $1`
	return c.execOne(ctx, q, id, analysis)
}

func (c *DatabaseClient) UpdateDocumentReport(ctx context.Context, id, reportPath string) error {
	const q = `UPDATE documents SET report_path = $2 WHERE id = $1`
	return c.execOne(ctx, q, id, reportPath)
}

func (c *DatabaseClient) UpdateDocumentStatus(ctx context.Context, id, status string) error {
	const q = `UPDATE documents SET status = $2 WHERE id = $1`
	return c.execOne(ctx, q, id, status)
}

func (c *DatabaseClient) DeleteDocument(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	return c.execOne(ctx, q, id)
}

func (c *DatabaseClient) execOne(ctx context.Context, q string, args ...any) error {
	res, err := c.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %v", args[0])
	}
	return nil
}

// ClearConversation removes every message and document for a visitor email
// in one transaction and returns the deleted documents so the caller can
// remove stored files.
func (c *DatabaseClient) ClearConversation(ctx context.Context, email string) ([]models.Document, error) {
	docs, err := c.ListDocumentsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE sender_email = $1`, email); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE visitor_email = $1`, email); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return docs, nil
}
