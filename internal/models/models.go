package models

import (
	"time"
)

// SupportEmail is the reserved identity staff replies are stored under.
// A visitor's conversation is their own messages plus everything sent
// from this identity.
const SupportEmail = "support@clearpathfinancial.com"

// Sender roles for chat messages.
const (
	RoleVisitor = "visitor"
	RoleAI      = "ai"
	RoleAdmin   = "admin"
)

// Document review statuses.
const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
	StatusArchived = "archived"
)

// ChatMessage represents one turn in a visitor conversation. Messages are
// never mutated after creation; CreatedAt is the sole ordering key.
type ChatMessage struct {
	ID          string    `db:"id" json:"id"`
	SenderName  string    `db:"sender_name" json:"sender_name"`
	SenderEmail string    `db:"sender_email" json:"sender_email"`
	Body        string    `db:"body" json:"body"`
	SenderRole  string    `db:"sender_role" json:"sender_role"` // visitor | ai | admin
	Escalation  bool      `db:"escalation" json:"escalation"`   // only meaningful on ai messages
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Document represents an uploaded credit report and its derived artifacts.
// AnalysisText and ReportPath are filled in after the model call and report
// render; callers must treat each as independently nullable until both are
// observed set.
type Document struct {
	ID            string    `db:"id" json:"id"`
	VisitorEmail  string    `db:"visitor_email" json:"visitor_email"`
	VisitorName   string    `db:"visitor_name" json:"visitor_name"`
	FileName      string    `db:"file_name" json:"file_name"`
	FileType      string    `db:"file_type" json:"file_type"` // application/pdf | image/png | image/jpeg
	StoredPath    string    `db:"stored_path" json:"stored_path"`
	AnalysisText  *string   `db:"analysis_text" json:"analysis_text,omitempty"`
	ReportPath    *string   `db:"report_path" json:"report_path,omitempty"`
	Status        string    `db:"status" json:"status"` // pending | reviewed | archived
	TimeZone      string    `db:"time_zone" json:"time_zone"`
	LocalDateText string    `db:"local_date_text" json:"local_date_text"` // pre-formatted in the visitor's zone
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
