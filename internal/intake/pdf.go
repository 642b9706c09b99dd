package intake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tripdocs/extractor/internal/ocr"
)

// pdfPageTexts extracts per-page text. pdftotext separates pages with \f.
func (c *Coordinator) pdfPageTexts(ctx context.Context, path string) ([]string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := c.runner.Run(ctx, c.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, ocr.Truncate(string(errb), 512))
	}
	return strings.Split(string(out), "\f"), nil
}

// renderPage rasterizes one 1-based page to a PNG in its own temp dir.
// The caller must invoke cleanup on every exit from its page loop.
func (c *Coordinator) renderPage(ctx context.Context, path string, page int) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "trx-page-*")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	prefix := filepath.Join(tmpDir, "page")
	pageArg := strconv.Itoa(page)
	// pdftoppm -f <n> -l <n> -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := c.runner.Run(ctx, c.cfg.Pdftoppm,
		"-f", pageArg, "-l", pageArg,
		"-r", strconv.Itoa(c.cfg.DPI),
		"-png", path, prefix)
	if err != nil {
		return "", cleanup, fmt.Errorf("pdftoppm: %w: %s", err, ocr.Truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", cleanup, fmt.Errorf("pdftoppm produced no image for page %d", page)
	}
	return matches[0], cleanup, nil
}

// spoolTemp writes the incoming bytes to a temp file for the exec tools.
// The returned cleanup removes the file; it is safe to call more than once.
func spoolTemp(data []byte, ext string) (string, func(), error) {
	f, err := os.CreateTemp("", "trx-doc-*"+ext)
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return f.Name(), cleanup, nil
}
