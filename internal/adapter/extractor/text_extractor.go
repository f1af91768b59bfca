package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"

	"github.com/ledongthuc/pdf"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

const (
	MediaTypePDF    = "application/pdf"
	defaultEncoding = "UTF-8"
)

// TextExtractor implements domain.TextExtractor for PDF and plain-text uploads
type TextExtractor struct {
	detector *chardet.Detector
}

// NewTextExtractor creates a new TextExtractor
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{detector: chardet.NewTextDetector()}
}

// Extract implements domain.TextExtractor.
// The data slice is only read, never modified.
func (e *TextExtractor) Extract(data []byte, mediaType string) (string, error) {
	if isPDF(mediaType) {
		return e.extractPDF(data)
	}
	return e.extractText(data)
}

func isPDF(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = strings.TrimSpace(mediaType)
	}
	return strings.EqualFold(mt, MediaTypePDF)
}

func (e *TextExtractor) extractPDF(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Error("PDF reader panicked", zap.Any("panic", r))
			text, err = "", domain.NewExtractionError("pdf", fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		logger.Get().Error("Error extracting text from PDF", zap.Error(err))
		return "", domain.NewExtractionError("pdf", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			logger.Get().Error("Error extracting text from PDF page", zap.Int("page", i), zap.Error(err))
			return "", domain.NewExtractionError("pdf", fmt.Errorf("page %d: %w", i, err))
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	logger.Get().Info("Successfully extracted text from PDF", zap.Int("pages", numPages))
	return strings.TrimSpace(sb.String()), nil
}

func (e *TextExtractor) extractText(data []byte) (string, error) {
	name, enc := e.detectEncoding(data)
	logger.Get().Info("Detected file encoding", zap.String("encoding", name))

	var decoded string
	if enc == unicode.UTF8 {
		if !utf8.Valid(data) {
			return "", domain.NewExtractionError(name, errors.New("invalid UTF-8 byte sequence"))
		}
		decoded = string(data)
	} else {
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			logger.Get().Error("Error decoding file content", zap.String("encoding", name), zap.Error(err))
			return "", domain.NewExtractionError(name, err)
		}
		decoded = string(out)
	}

	decoded = strings.TrimPrefix(decoded, "\uFEFF")
	return strings.TrimSpace(decoded), nil
}

// detectEncoding returns the best-confidence charset, or UTF-8 when nothing usable is found
func (e *TextExtractor) detectEncoding(data []byte) (string, encoding.Encoding) {
	if len(data) == 0 {
		return defaultEncoding, unicode.UTF8
	}

	result, err := e.detector.DetectBest(data)
	if err != nil || result == nil || result.Charset == "" {
		return defaultEncoding, unicode.UTF8
	}

	enc, err := htmlindex.Get(result.Charset)
	if err != nil {
		logger.Get().Debug("Detected charset has no decoder, falling back to UTF-8",
			zap.String("charset", result.Charset), zap.Int("confidence", result.Confidence))
		return defaultEncoding, unicode.UTF8
	}
	if enc == unicode.UTF8 {
		return defaultEncoding, unicode.UTF8
	}
	return result.Charset, enc
}
