package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clearpathfinancial/clearpath-api/internal/core"
	"github.com/clearpathfinancial/clearpath-api/internal/core/assistant"
	db "github.com/clearpathfinancial/clearpath-api/internal/core/database"
	"github.com/clearpathfinancial/clearpath-api/internal/models"
)

var ErrInvalidMessage = errors.New("invalid message payload")

// AssistantName is the sender name stored on AI-authored messages.
const AssistantName = "Ava"

// replyJob is one queued AI-reply generation. MessageID identifies the
// visitor message that triggered it so the history can be rebuilt around it.
type replyJob struct {
	MessageID    string
	VisitorEmail string
	Body         string
}

// ChatService persists chat messages and generates AI replies in the
// background. The visitor's own message is acknowledged immediately; the
// reply appears later as a new stored message discovered via polling.
type ChatService struct {
	db   db.DbClient
	llm  core.LLMProvider
	jobs chan replyJob
	log  *zap.Logger
}

// NewChatService constructs the service with a bounded reply queue.
func NewChatService(dbc db.DbClient, llm core.LLMProvider, queueSize int, log *zap.Logger) *ChatService {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &ChatService{
		db:   dbc,
		llm:  llm,
		jobs: make(chan replyJob, queueSize),
		log:  log,
	}
}

// Start runs the single reply worker. Generation failures are logged and
// swallowed; the conversation simply lacks a reply. There is no retry.
func (s *ChatService) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				s.log.Info("chat reply worker shutting down")
				return
			case job := <-s.jobs:
				s.generateReply(ctx, job)
			}
		}
	}()
}

// SubmitVisitorMessage stores the visitor's message, schedules the AI reply,
// and returns the stored message immediately.
func (s *ChatService) SubmitVisitorMessage(ctx context.Context, name, email, body string) (*models.ChatMessage, error) {
	if email == "" || body == "" {
		return nil, ErrInvalidMessage
	}

	msg := &models.ChatMessage{
		ID:          uuid.NewString(),
		SenderName:  name,
		SenderEmail: email,
		Body:        body,
		SenderRole:  models.RoleVisitor,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.jobs <- replyJob{MessageID: msg.ID, VisitorEmail: email, Body: body}
	return msg, nil
}

// SubmitSupportMessage stores a staff reply under the reserved support
// identity. No AI reply is generated for staff messages.
func (s *ChatService) SubmitSupportMessage(ctx context.Context, name, body string) (*models.ChatMessage, error) {
	if body == "" {
		return nil, ErrInvalidMessage
	}
	msg := &models.ChatMessage{
		ID:          uuid.NewString(),
		SenderName:  name,
		SenderEmail: models.SupportEmail,
		Body:        body,
		SenderRole:  models.RoleAdmin,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ConfirmEscalation appends the flagged confirmation message the widget
// shows once the visitor accepts the specialist hand-off.
func (s *ChatService) ConfirmEscalation(ctx context.Context, email string) (*models.ChatMessage, error) {
	if email == "" {
		return nil, ErrInvalidMessage
	}
	msg := &models.ChatMessage{
		ID:          uuid.NewString(),
		SenderName:  AssistantName,
		SenderEmail: email,
		Body:        "You're all set. A ClearPath specialist has been notified and will join this conversation shortly.",
		SenderRole:  models.RoleAI,
		Escalation:  true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Conversation returns a visitor's messages (their own plus the support
// identity's), oldest first.
func (s *ChatService) Conversation(ctx context.Context, email string) ([]models.ChatMessage, error) {
	return s.db.ListMessagesByEmail(ctx, email)
}

// ListAll returns every stored message for the admin view.
func (s *ChatService) ListAll(ctx context.Context) ([]models.ChatMessage, error) {
	return s.db.ListAllMessages(ctx)
}

// generateReply builds the bounded context, calls the model, and stores the
// AI message. Called from the worker goroutine only.
func (s *ChatService) generateReply(ctx context.Context, job replyJob) {
	genCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	history, err := s.db.ListMessagesByEmail(genCtx, job.VisitorEmail)
	if err != nil {
		s.log.Error("reply worker: load history failed",
			zap.String("visitor_email", job.VisitorEmail), zap.Error(err))
		return
	}

	// The triggering message is already stored; the context builder wants
	// it as the incoming message, not part of the history.
	prior := history[:0:0]
	for _, m := range history {
		if m.ID != job.MessageID {
			prior = append(prior, m)
		}
	}

	pc := assistant.BuildContext(prior, job.Body)

	raw, err := s.llm.Generate(genCtx, pc.SystemPrompt, pc.Turns)
	if err != nil {
		s.log.Error("reply worker: model call failed",
			zap.String("visitor_email", job.VisitorEmail), zap.Error(err))
		return
	}

	body, escalate := assistant.ParseEscalationMarker(raw)
	if pc.ForceEscalation {
		escalate = true
	}
	if body == "" {
		s.log.Warn("reply worker: model returned empty reply",
			zap.String("visitor_email", job.VisitorEmail))
		return
	}

	reply := &models.ChatMessage{
		ID:          uuid.NewString(),
		SenderName:  AssistantName,
		SenderEmail: job.VisitorEmail,
		Body:        body,
		SenderRole:  models.RoleAI,
		Escalation:  escalate,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.CreateMessage(genCtx, reply); err != nil {
		s.log.Error("reply worker: persist reply failed",
			zap.String("visitor_email", job.VisitorEmail), zap.Error(err))
	}
}
