package objectclient

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clearpathfinancial/clearpath-api/internal/core"
)

// LocalClient stores blobs on the local filesystem under root/bucket/key.
// It satisfies the same ObjectClient contract as the S3 variant so the
// backend can be chosen once at startup.
type LocalClient struct {
	root string
}

func NewLocalClient(root string) (core.ObjectClient, error) {
	if root == "" {
		return nil, fmt.Errorf("local store dir not set")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &LocalClient{root: root}, nil
}

func (c *LocalClient) path(bucket, key string) (string, error) {
	clean := filepath.Join(c.root, bucket, filepath.FromSlash(key))
	// Reject keys that escape the store root.
	if !strings.HasPrefix(clean, filepath.Clean(c.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return clean, nil
}

func (c *LocalClient) UploadFile(_ context.Context, bucket, key string, data []byte, _ string) (string, error) {
	p, err := c.path(bucket, key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalize object: %w", err)
	}
	return p, nil
}

func (c *LocalClient) DeleteFile(_ context.Context, bucket, key string) error {
	p, err := c.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (c *LocalClient) GetFile(_ context.Context, bucket, key string) ([]byte, error) {
	p, err := c.path(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}
