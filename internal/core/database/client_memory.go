package db

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/clearpathfinancial/clearpath-api/internal/models"
)

// MemoryClient is the ephemeral DbClient variant, selected at startup when
// no DATABASE_URL is configured. Data does not survive a restart.
type MemoryClient struct {
	mu        sync.RWMutex
	messages  []models.ChatMessage
	documents map[string]models.Document
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{documents: make(map[string]models.Document)}
}

func (c *MemoryClient) Close() error { return nil }

func (c *MemoryClient) CreateMessage(_ context.Context, msg *models.ChatMessage) error {
	if msg == nil {
		return errors.New("nil message")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, *msg)
	return nil
}

func (c *MemoryClient) ListMessagesByEmail(_ context.Context, email string) ([]models.ChatMessage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.ChatMessage
	for _, m := range c.messages {
		if m.SenderEmail == email || m.SenderEmail == models.SupportEmail {
			out = append(out, m)
		}
	}
	sortMessages(out)
	return out, nil
}

func (c *MemoryClient) ListAllMessages(_ context.Context) ([]models.ChatMessage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ChatMessage, len(c.messages))
	copy(out, c.messages)
	sortMessages(out)
	return out, nil
}

func sortMessages(msgs []models.ChatMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

func (c *MemoryClient) CreateDocument(_ context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents[doc.ID] = *doc
	return nil
}

func (c *MemoryClient) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.documents[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (c *MemoryClient) ListDocumentsByEmail(_ context.Context, email string) ([]models.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.Document
	for _, d := range c.documents {
		if d.VisitorEmail == email {
			out = append(out, d)
		}
	}
	sortDocuments(out)
	return out, nil
}

func (c *MemoryClient) ListAllDocuments(_ context.Context) ([]models.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Document, 0, len(c.documents))
	for _, d := range c.documents {
		out = append(out, d)
	}
	sortDocuments(out)
	return out, nil
}

func sortDocuments(docs []models.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
}

func (c *MemoryClient) UpdateDocumentAnalysis(_ context.Context, id, analysis string) error {
	return c.mutateDocument(id, func(d *models.Document) { d.AnalysisText = &analysis })
}

func (c *MemoryClient) UpdateDocumentReport(_ context.Context, id, reportPath string) error {
	return c.mutateDocument(id, func(d *models.Document) { d.ReportPath = &reportPath })
}

func (c *MemoryClient) UpdateDocumentStatus(_ context.Context, id, status string) error {
	return c.mutateDocument(id, func(d *models.Document) { d.Status = status })
}

func (c *MemoryClient) mutateDocument(id string, fn func(*models.Document)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.documents[id]
	if !ok {
		return errors.New("document not found: " + id)
	}
	fn(&d)
	c.documents[id] = d
	return nil
}

func (c *MemoryClient) DeleteDocument(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.documents[id]; !ok {
		return errors.New("document not found: " + id)
	}
	delete(c.documents, id)
	return nil
}

func (c *MemoryClient) ClearConversation(_ context.Context, email string) ([]models.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.messages[:0]
	for _, m := range c.messages {
		if m.SenderEmail != email {
			kept = append(kept, m)
		}
	}
	c.messages = kept

	var removed []models.Document
	for id, d := range c.documents {
		if d.VisitorEmail == email {
			removed = append(removed, d)
			delete(c.documents, id)
		}
	}
	sortDocuments(removed)
	return removed, nil
}

var _ DbClient = (*MemoryClient)(nil)
