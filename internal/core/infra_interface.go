package core

import (
	"context"
)

// ChatTurn is one role-tagged entry of the bounded history sent to the model.
type ChatTurn struct {
	Role string // "user" or "model"
	Text string
}

// LLMProvider abstracts the generative model service. Implementations accept
// a system instruction plus ordered history and return free text, possibly
// ending with a machine-readable escalation marker.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, turns []ChatTurn) (string, error)
	AnalyzeImage(ctx context.Context, instruction, mimeType string, image []byte) (string, error)
}

// Rasterizer renders a single page of a PDF to a PNG image. Only the first
// page is ever requested; full-document extraction is out of scope.
type Rasterizer interface {
	RasterizePage(ctx context.Context, pdf []byte, page int) ([]byte, error)
}

// ObjectClient defines interactions with S3 or any blob storage.
// It's abstract so the AWS variant can be swapped for local disk.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}
