// Package raster adapts an external rasterizer binary (pdftoppm by default)
// behind the core.Rasterizer interface. Only single pages are converted;
// nothing here reads the PDF's text.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/clearpathfinancial/clearpath-api/internal/core"
)

type PdftoppmRasterizer struct {
	cmd string
}

func NewPdftoppmRasterizer(cmd string) *PdftoppmRasterizer {
	if cmd == "" {
		cmd = "pdftoppm"
	}
	return &PdftoppmRasterizer{cmd: cmd}
}

// RasterizePage converts one page (1-based) of the PDF to a PNG image.
func (r *PdftoppmRasterizer) RasterizePage(ctx context.Context, pdf []byte, page int) ([]byte, error) {
	if page < 1 {
		page = 1
	}

	dir, err := os.MkdirTemp("", "clearpath-raster-")
	if err != nil {
		return nil, fmt.Errorf("raster temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("raster write input: %w", err)
	}

	outPrefix := filepath.Join(dir, "page")
	pageArg := strconv.Itoa(page)

	cmd := exec.CommandContext(ctx, r.cmd,
		"-png", "-r", "150",
		"-f", pageArg, "-l", pageArg,
		"-singlefile",
		in, outPrefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("raster %s page %d: %w (%s)", r.cmd, page, err, stderr.String())
	}

	out, err := os.ReadFile(outPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("raster read output: %w", err)
	}
	return out, nil
}

var _ core.Rasterizer = (*PdftoppmRasterizer)(nil)
