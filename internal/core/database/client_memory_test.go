package db

import (
	"context"
	"testing"
	"time"

	"github.com/clearpathfinancial/clearpath-api/internal/models"
)

func seedMessage(t *testing.T, c *MemoryClient, id, email, role string, at time.Time) {
	t.Helper()
	err := c.CreateMessage(context.Background(), &models.ChatMessage{
		ID:          id,
		SenderEmail: email,
		SenderRole:  role,
		Body:        "body " + id,
		CreatedAt:   at,
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
}

func seedDocument(t *testing.T, c *MemoryClient, id, email string, at time.Time) {
	t.Helper()
	err := c.CreateDocument(context.Background(), &models.Document{
		ID:           id,
		VisitorEmail: email,
		FileName:     id + ".pdf",
		FileType:     "application/pdf",
		StoredPath:   "uploads/" + id,
		Status:       models.StatusPending,
		CreatedAt:    at,
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
}

func TestMemoryClientConversationScoping(t *testing.T) {
	c := NewMemoryClient()
	base := time.Now().UTC()

	seedMessage(t, c, "m1", "a@example.com", models.RoleVisitor, base)
	seedMessage(t, c, "m2", models.SupportEmail, models.RoleAdmin, base.Add(time.Second))
	seedMessage(t, c, "m3", "b@example.com", models.RoleVisitor, base.Add(2*time.Second))
	seedMessage(t, c, "m4", "a@example.com", models.RoleAI, base.Add(3*time.Second))

	msgs, err := c.ListMessagesByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("ListMessagesByEmail: %v", err)
	}

	// visitor's own messages plus the shared support identity, oldest first
	wantIDs := []string{"m1", "m2", "m4"}
	if len(msgs) != len(wantIDs) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(wantIDs))
	}
	for i, want := range wantIDs {
		if msgs[i].ID != want {
			t.Fatalf("position %d: got %q, want %q", i, msgs[i].ID, want)
		}
	}

	all, _ := c.ListAllMessages(context.Background())
	if len(all) != 4 {
		t.Fatalf("ListAllMessages: got %d, want 4", len(all))
	}
}

func TestMemoryClientDocumentLifecycle(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()
	seedDocument(t, c, "d1", "a@example.com", time.Now().UTC())

	analysis := "# Accounts\n- one item"
	if err := c.UpdateDocumentAnalysis(ctx, "d1", analysis); err != nil {
		t.Fatalf("UpdateDocumentAnalysis: %v", err)
	}
	if err := c.UpdateDocumentReport(ctx, "d1", "reports/d1"); err != nil {
		t.Fatalf("UpdateDocumentReport: %v", err)
	}
	if err := c.UpdateDocumentStatus(ctx, "d1", models.StatusReviewed); err != nil {
		t.Fatalf("UpdateDocumentStatus: %v", err)
	}

	doc, err := c.GetDocumentByID(ctx, "d1")
	if err != nil || doc == nil {
		t.Fatalf("GetDocumentByID: %v, %v", doc, err)
	}
	if doc.AnalysisText == nil || *doc.AnalysisText != analysis {
		t.Fatalf("analysis not persisted: %+v", doc.AnalysisText)
	}
	if doc.ReportPath == nil || *doc.ReportPath != "reports/d1" {
		t.Fatalf("report path not persisted: %+v", doc.ReportPath)
	}
	if doc.Status != models.StatusReviewed {
		t.Fatalf("status not persisted: %q", doc.Status)
	}

	if err := c.DeleteDocument(ctx, "d1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if doc, _ := c.GetDocumentByID(ctx, "d1"); doc != nil {
		t.Fatal("document survived delete")
	}
	if err := c.DeleteDocument(ctx, "d1"); err == nil {
		t.Fatal("expected error deleting a missing document")
	}
}

func TestMemoryClientUnknownDocumentIsNilNotError(t *testing.T) {
	c := NewMemoryClient()
	doc, err := c.GetDocumentByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc != nil {
		t.Fatalf("expected nil, got %+v", doc)
	}
}

func TestMemoryClientListDocumentsNewestFirst(t *testing.T) {
	c := NewMemoryClient()
	base := time.Now().UTC()
	seedDocument(t, c, "old", "a@example.com", base)
	seedDocument(t, c, "new", "a@example.com", base.Add(time.Hour))

	docs, err := c.ListDocumentsByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("ListDocumentsByEmail: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "new" || docs[1].ID != "old" {
		t.Fatalf("wrong order: %+v", docs)
	}
}

func TestMemoryClientClearConversation(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()
	base := time.Now().UTC()

	seedMessage(t, c, "m1", "a@example.com", models.RoleVisitor, base)
	seedMessage(t, c, "m2", "b@example.com", models.RoleVisitor, base)
	seedDocument(t, c, "d1", "a@example.com", base)
	seedDocument(t, c, "d2", "b@example.com", base)

	removed, err := c.ClearConversation(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("ClearConversation: %v", err)
	}
	if len(removed) != 1 || removed[0].ID != "d1" {
		t.Fatalf("expected d1 returned for file cleanup, got %+v", removed)
	}

	// the other visitor's data is untouched
	if msgs, _ := c.ListMessagesByEmail(ctx, "b@example.com"); len(msgs) != 1 {
		t.Fatalf("other visitor's messages affected: %+v", msgs)
	}
	if doc, _ := c.GetDocumentByID(ctx, "d2"); doc == nil {
		t.Fatal("other visitor's document removed")
	}
	if msgs, _ := c.ListMessagesByEmail(ctx, "a@example.com"); len(msgs) != 0 {
		t.Fatalf("cleared visitor still has messages: %+v", msgs)
	}
}
