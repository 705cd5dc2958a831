package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clearpathfinancial/clearpath-api/internal/core"
	"github.com/clearpathfinancial/clearpath-api/internal/core/assistant"
	db "github.com/clearpathfinancial/clearpath-api/internal/core/database"
	"github.com/clearpathfinancial/clearpath-api/internal/core/report"
	"github.com/clearpathfinancial/clearpath-api/internal/models"
)

// Client errors surfaced before any side effect occurs.
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidUpload   = errors.New("invalid upload payload")
	ErrNotFound        = errors.New("document not found")
)

var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
}

// UploadRequest carries one document submission from the widget.
type UploadRequest struct {
	VisitorEmail  string `json:"visitor_email"`
	VisitorName   string `json:"visitor_name"`
	FileName      string `json:"file_name"`
	FileType      string `json:"file_type"`
	FileData      string `json:"file_data"` // base64
	TimeZone      string `json:"time_zone"`
	LocalDateText string `json:"local_date_text"`
}

// DocumentService runs the upload -> analysis -> report pipeline and owns
// document-scoped storage access.
type DocumentService struct {
	db       db.DbClient
	storage  core.ObjectClient
	llm      core.LLMProvider
	raster   core.Rasterizer
	renderer *report.Renderer
	bucket   string
	log      *zap.Logger
}

func NewDocumentService(dbc db.DbClient, storage core.ObjectClient, llm core.LLMProvider, raster core.Rasterizer, bucket string, log *zap.Logger) *DocumentService {
	return &DocumentService{
		db:       dbc,
		storage:  storage,
		llm:      llm,
		raster:   raster,
		renderer: report.NewRenderer(),
		bucket:   bucket,
		log:      log,
	}
}

// UploadAndAnalyze executes the full pipeline within one request:
// validate, store raw bytes, run the vision analysis, normalize, render the
// branded report, persist everything, and return the completed document.
// Model or rasterizer failure degrades to fallback text; it never fails the
// request.
func (s *DocumentService) UploadAndAnalyze(ctx context.Context, req UploadRequest) (*models.Document, error) {
	if req.VisitorEmail == "" || req.FileName == "" {
		return nil, ErrInvalidUpload
	}
	if !allowedTypes[req.FileType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, req.FileType)
	}
	data, err := base64.StdEncoding.DecodeString(req.FileData)
	if err != nil || len(data) == 0 {
		return nil, fmt.Errorf("%w: file data is not valid base64", ErrInvalidUpload)
	}

	docID := uuid.NewString()
	rawKey := s.objectKey("uploads", docID, req.FileName)

	if _, err := s.storage.UploadFile(ctx, s.bucket, rawKey, data, req.FileType); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc := &models.Document{
		ID:            docID,
		VisitorEmail:  req.VisitorEmail,
		VisitorName:   req.VisitorName,
		FileName:      req.FileName,
		FileType:      req.FileType,
		StoredPath:    rawKey,
		Status:        models.StatusPending,
		TimeZone:      req.TimeZone,
		LocalDateText: req.LocalDateText,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.db.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	analysis := s.analyze(ctx, docID, req.FileType, data)
	if err := s.db.UpdateDocumentAnalysis(ctx, docID, analysis); err != nil {
		return nil, fmt.Errorf("persist analysis: %w", err)
	}
	doc.AnalysisText = &analysis

	pdfBytes, err := s.renderer.Render(req.VisitorName, req.LocalDateText, analysis)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	reportKey := s.objectKey("reports", docID, reportFileName(req.LocalDateText))
	if _, err := s.storage.UploadFile(ctx, s.bucket, reportKey, pdfBytes, "application/pdf"); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}
	if err := s.db.UpdateDocumentReport(ctx, docID, reportKey); err != nil {
		return nil, fmt.Errorf("persist report path: %w", err)
	}
	doc.ReportPath = &reportKey

	// Surface the result in the conversation so the widget can offer the
	// download without a separate notification channel.
	notice := &models.ChatMessage{
		ID:          uuid.NewString(),
		SenderName:  AssistantName,
		SenderEmail: req.VisitorEmail,
		Body:        "I've finished reviewing your document. Your analysis is ready and you can download the PDF report from this chat.",
		SenderRole:  models.RoleAI,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.CreateMessage(ctx, notice); err != nil {
		s.log.Warn("failed to post analysis-ready message",
			zap.String("document_id", docID), zap.Error(err))
	}

	s.log.Info("document pipeline completed",
		zap.String("document_id", docID),
		zap.String("visitor_email", req.VisitorEmail),
		zap.String("file_type", req.FileType),
	)
	return doc, nil
}

// analyze returns normalized analysis text for the upload, substituting the
// fixed fallback when the collaborators fail or nothing usable comes back.
func (s *DocumentService) analyze(ctx context.Context, docID, mimeType string, data []byte) string {
	image := data
	imageMime := mimeType

	if mimeType == "application/pdf" {
		// Only the first page is rasterized; full-document extraction is
		// deliberately not attempted.
		png, err := s.raster.RasterizePage(ctx, data, 1)
		if err != nil {
			s.log.Warn("rasterization failed, using fallback analysis",
				zap.String("document_id", docID), zap.Error(err))
			return assistant.FallbackAnalysis
		}
		image = png
		imageMime = "image/png"
	}

	raw, err := s.llm.AnalyzeImage(ctx, assistant.AnalysisInstruction, imageMime, image)
	if err != nil {
		s.log.Warn("model analysis failed, using fallback analysis",
			zap.String("document_id", docID), zap.Error(err))
		return assistant.FallbackAnalysis
	}

	normalized := assistant.NormalizeAnalysis(raw)
	if normalized == "" {
		s.log.Warn("model output normalized to nothing usable, using fallback analysis",
			zap.String("document_id", docID))
		return assistant.FallbackAnalysis
	}
	return normalized
}

// Report returns the PDF for a document: the persisted copy when available,
// otherwise a fresh layout-equivalent render from the stored analysis text.
func (s *DocumentService) Report(ctx context.Context, id string) ([]byte, string, error) {
	doc, err := s.db.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if doc == nil {
		return nil, "", ErrNotFound
	}

	fileName := reportFileName(doc.LocalDateText)

	if doc.ReportPath != nil {
		data, err := s.storage.GetFile(ctx, s.bucket, *doc.ReportPath)
		if err == nil {
			return data, fileName, nil
		}
		s.log.Warn("stored report unavailable, re-rendering",
			zap.String("document_id", id), zap.Error(err))
	}

	analysis := ""
	if doc.AnalysisText != nil {
		analysis = *doc.AnalysisText
	}
	data, err := s.renderer.Render(doc.VisitorName, doc.LocalDateText, analysis)
	if err != nil {
		return nil, "", fmt.Errorf("render report: %w", err)
	}
	return data, fileName, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.db.GetDocumentByID(ctx, id)
}

func (s *DocumentService) ListAll(ctx context.Context) ([]models.Document, error) {
	return s.db.ListAllDocuments(ctx)
}

// Delete removes the document row plus its stored files.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.db.GetDocumentByID(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}
	if err := s.db.DeleteDocument(ctx, id); err != nil {
		return err
	}
	s.removeFiles(ctx, doc)
	return nil
}

// ClearVisitor removes every message and document for a visitor email,
// including the stored raw uploads and generated reports.
func (s *DocumentService) ClearVisitor(ctx context.Context, email string) error {
	docs, err := s.db.ClearConversation(ctx, email)
	if err != nil {
		return err
	}
	for i := range docs {
		s.removeFiles(ctx, &docs[i])
	}
	s.log.Info("conversation cleared",
		zap.String("visitor_email", email), zap.Int("documents_removed", len(docs)))
	return nil
}

func (s *DocumentService) removeFiles(ctx context.Context, doc *models.Document) {
	if err := s.storage.DeleteFile(ctx, s.bucket, doc.StoredPath); err != nil {
		s.log.Warn("failed to delete stored upload",
			zap.String("document_id", doc.ID), zap.Error(err))
	}
	if doc.ReportPath != nil {
		if err := s.storage.DeleteFile(ctx, s.bucket, *doc.ReportPath); err != nil {
			s.log.Warn("failed to delete stored report",
				zap.String("document_id", doc.ID), zap.Error(err))
		}
	}
}

// objectKey creates a consistent storage key layout.
func (s *DocumentService) objectKey(prefix, docID, filename string) string {
	filename = strings.TrimSpace(path.Base(filename))
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join(prefix, docID, filename)
}

func reportFileName(dateLabel string) string {
	label := strings.ReplaceAll(strings.TrimSpace(dateLabel), " ", "-")
	if label == "" {
		label = "analysis"
	}
	return "credit-report-" + label + ".pdf"
}
