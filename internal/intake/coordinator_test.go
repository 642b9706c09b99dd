package intake

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdocs/extractor/constants"
	"github.com/tripdocs/extractor/internal/common"
	"github.com/tripdocs/extractor/internal/llm"
	"github.com/tripdocs/extractor/internal/ocr"
)

// stubRunner dispatches on the binary name so one stub can play pdftotext,
// pdftoppm, and tesseract in a single scenario.
type stubRunner struct {
	pdftotextOut string
	pdftotextErr error
	tesseractOut string
	tesseractErr error

	calls []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, name)
	switch name {
	case "pdftotext":
		return []byte(s.pdftotextOut), nil, s.pdftotextErr
	case "pdftoppm":
		// emit the page image the coordinator globs for
		prefix := args[len(args)-1]
		if err := os.WriteFile(prefix+"-1.png", []byte("png"), 0o644); err != nil {
			return nil, nil, err
		}
		return nil, nil, nil
	case "tesseract":
		return []byte(s.tesseractOut), nil, s.tesseractErr
	}
	return nil, nil, errors.New("unexpected command " + name)
}

func newTestCoordinator(runner *stubRunner, maxPages int) *Coordinator {
	engine := ocr.NewEngine(ocr.Config{}, runner, nil)
	return NewCoordinator(Config{MaxOCRPages: maxPages}, runner, engine, nil)
}

func okChain(captured *string) Chain {
	return func(_ context.Context, text string) (*llm.CandidateRecord, error) {
		if captured != nil {
			*captured = text
		}
		return &llm.CandidateRecord{Kind: constants.Flight, Fields: map[string]any{}}, nil
	}
}

func TestProcess_TextDocument(t *testing.T) {
	c := newTestCoordinator(&stubRunner{}, 0)

	var got string
	text := "Flight receipt: LONDON to PARIS, 2024-04-01, total 199.99 GBP."
	out, err := c.Process(context.Background(), Document{
		Data:      []byte(text),
		MediaType: constants.MediaTypeText,
		Filename:  "receipt.txt",
	}, okChain(&got))

	require.NoError(t, err)
	assert.Equal(t, constants.MethodText, out.Method)
	assert.False(t, out.OCRUsed)
	assert.Equal(t, text, got)
	assert.Equal(t, len(text), out.InputLength)
}

func TestProcess_TextTooShort(t *testing.T) {
	c := newTestCoordinator(&stubRunner{}, 0)

	chainCalled := false
	_, err := c.Process(context.Background(), Document{
		Data:      []byte(strings.Repeat("x", minTextLength-1)),
		MediaType: constants.MediaTypeText,
	}, func(context.Context, string) (*llm.CandidateRecord, error) {
		chainCalled = true
		return nil, nil
	})

	require.Error(t, err)
	assert.Equal(t, common.KindInput, common.KindOf(err))
	assert.False(t, chainCalled)
}

func TestProcess_UnsupportedMediaType(t *testing.T) {
	c := newTestCoordinator(&stubRunner{}, 0)
	_, err := c.Process(context.Background(), Document{
		Data:      []byte("data"),
		MediaType: "application/zip",
	}, okChain(nil))
	require.Error(t, err)
	assert.Equal(t, common.KindInput, common.KindOf(err))
}

func TestProcess_PDFWithTextLayer(t *testing.T) {
	runner := &stubRunner{
		pdftotextOut: "Hotel receipt for JANE DOE, Grand Plaza Berlin, total 240.00 EUR.",
	}
	c := newTestCoordinator(runner, 0)

	out, err := c.Process(context.Background(), Document{
		Data:      []byte("%PDF-1.4"),
		MediaType: constants.MediaTypePDF,
		Filename:  "hotel.pdf",
	}, okChain(nil))

	require.NoError(t, err)
	assert.Equal(t, constants.MethodPDFText, out.Method)
	assert.False(t, out.OCRUsed)
	assert.NotContains(t, runner.calls, "pdftoppm")
}

func TestProcess_PDFThresholdBoundary(t *testing.T) {
	// 39 chars of text layer -> OCR fallback; 40 -> direct text path
	short := strings.Repeat("x", minTextLength-1)
	runner := &stubRunner{pdftotextOut: short, tesseractOut: "ocr recovered text"}
	c := newTestCoordinator(runner, 1)

	out, err := c.Process(context.Background(), Document{
		Data:      []byte("%PDF-1.4"),
		MediaType: constants.MediaTypePDF,
	}, okChain(nil))
	require.NoError(t, err)
	assert.Equal(t, constants.MethodPDFOCR, out.Method)

	runner = &stubRunner{pdftotextOut: strings.Repeat("x", minTextLength)}
	c = newTestCoordinator(runner, 1)

	out, err = c.Process(context.Background(), Document{
		Data:      []byte("%PDF-1.4"),
		MediaType: constants.MediaTypePDF,
	}, okChain(nil))
	require.NoError(t, err)
	assert.Equal(t, constants.MethodPDFText, out.Method)
	assert.Equal(t, minTextLength, out.InputLength)
}

func TestProcess_PDFFallsBackToOCR(t *testing.T) {
	// two pages of effectively empty text layer
	runner := &stubRunner{
		pdftotextOut: " \f ",
		tesseractOut: "Scanned flight receipt LONDON to PARIS 2024-04-01 total 199.99 GBP",
	}
	c := newTestCoordinator(runner, 3)

	var got string
	out, err := c.Process(context.Background(), Document{
		Data:      []byte("%PDF-1.4"),
		MediaType: constants.MediaTypePDF,
		Filename:  "scan.pdf",
	}, okChain(&got))

	require.NoError(t, err)
	assert.Equal(t, constants.MethodPDFOCR, out.Method)
	assert.True(t, out.OCRUsed)
	assert.Equal(t, 1, out.Page)
	assert.Contains(t, got, "Scanned flight receipt")
	assert.Contains(t, runner.calls, "pdftoppm")
	assert.Contains(t, runner.calls, "tesseract")
}

func TestProcess_OCRRetriesNextPage(t *testing.T) {
	runner := &stubRunner{
		pdftotextOut: " \f \f ",
		tesseractOut: "page text",
	}
	c := newTestCoordinator(runner, 3)

	attempt := 0
	out, err := c.Process(context.Background(), Document{
		Data:      []byte("%PDF-1.4"),
		MediaType: constants.MediaTypePDF,
	}, func(_ context.Context, _ string) (*llm.CandidateRecord, error) {
		attempt++
		if attempt == 1 {
			return nil, common.NewDecodeError("no JSON object in model response", nil)
		}
		return &llm.CandidateRecord{Kind: constants.Hotel, Fields: map[string]any{}}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Page)
	assert.Equal(t, 2, attempt)
}

func TestProcess_OCRExhaustedKeepsFirstError(t *testing.T) {
	runner := &stubRunner{
		pdftotextOut: " \f \f ",
		tesseractOut: "page text",
	}
	c := newTestCoordinator(runner, 2)

	attempt := 0
	_, err := c.Process(context.Background(), Document{
		Data:      []byte("%PDF-1.4"),
		MediaType: constants.MediaTypePDF,
	}, func(_ context.Context, _ string) (*llm.CandidateRecord, error) {
		attempt++
		if attempt == 1 {
			return nil, common.NewDecodeError("first failure", nil)
		}
		return nil, common.NewSchemaError("second failure", nil)
	})

	require.Error(t, err)
	assert.Equal(t, common.KindDecode, common.KindOf(err))
	assert.Contains(t, err.Error(), "first failure")
	assert.Equal(t, 2, attempt)
}

func TestProcess_PDFTextToolFailureGoesToOCR(t *testing.T) {
	runner := &stubRunner{
		pdftotextErr: errors.New("exit status 1"),
		tesseractOut: "scanned text recovered from the page image",
	}
	c := newTestCoordinator(runner, 1)

	out, err := c.Process(context.Background(), Document{
		Data:      []byte("%PDF-1.4"),
		MediaType: constants.MediaTypePDF,
	}, okChain(nil))

	require.NoError(t, err)
	assert.True(t, out.OCRUsed)
	assert.Equal(t, constants.MethodPDFOCR, out.Method)
}

func TestProcess_Image(t *testing.T) {
	runner := &stubRunner{tesseractOut: "photographed hotel bill for JANE DOE"}
	c := newTestCoordinator(runner, 0)

	out, err := c.Process(context.Background(), Document{
		Data:      []byte{0x89, 0x50, 0x4e, 0x47},
		MediaType: constants.MediaTypePNG,
		Filename:  "bill.png",
	}, okChain(nil))

	require.NoError(t, err)
	assert.Equal(t, constants.MethodImageOCR, out.Method)
	assert.True(t, out.OCRUsed)
	assert.Equal(t, 1, out.Page)
	assert.NotContains(t, runner.calls, "pdftoppm")
}

func TestProcess_ImageOCRFailure(t *testing.T) {
	runner := &stubRunner{tesseractErr: errors.New("no text layer")}
	c := newTestCoordinator(runner, 0)

	_, err := c.Process(context.Background(), Document{
		Data:      []byte{0xff, 0xd8},
		MediaType: constants.MediaTypeJPEG,
	}, okChain(nil))

	require.Error(t, err)
	assert.Equal(t, common.KindUpstream, common.KindOf(err))
}
