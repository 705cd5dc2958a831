package db

import (
	"context"

	"github.com/clearpathfinancial/clearpath-api/internal/models"
)

// DbClient defines all persistence operations the services need.
// Two implementations exist: Postgres (durable) and in-memory (ephemeral).
// The variant is selected once at startup and injected, never switched
// per call.
type DbClient interface {
	CreateMessage(ctx context.Context, msg *models.ChatMessage) error
	ListMessagesByEmail(ctx context.Context, email string) ([]models.ChatMessage, error)
	ListAllMessages(ctx context.Context) ([]models.ChatMessage, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByEmail(ctx context.Context, email string) ([]models.Document, error)
	ListAllDocuments(ctx context.Context) ([]models.Document, error)
	UpdateDocumentAnalysis(ctx context.Context, id, analysis string) error
	UpdateDocumentReport(ctx context.Context, id, reportPath string) error
	UpdateDocumentStatus(ctx context.Context, id, status string) error
	DeleteDocument(ctx context.Context, id string) error

	// ClearConversation deletes every message and document belonging to the
	// visitor email and returns the deleted documents so callers can remove
	// the stored files.
	ClearConversation(ctx context.Context, email string) ([]models.Document, error)

	Close() error
}
