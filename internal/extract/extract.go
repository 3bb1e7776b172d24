// Package extract turns uploaded files into plain text for quiz generation.
//
// Plain text, PDF, DOCX and XLSX are supported. Any other file yields the
// "File Name:" sentinel, which the prompt builder forwards unframed.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/quizrr/quizrr/internal/quizgen"
)

// MaxUploadBytes is the largest file Extract accepts.
const MaxUploadBytes = 10 << 20

// ErrTooLarge is returned for files over MaxUploadBytes.
var ErrTooLarge = errors.New("file exceeds 10 MB upload limit")

// MIME types recognized in addition to file extensions.
const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// File is an uploaded document.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type format int

const (
	formatUnsupported format = iota
	formatText
	formatPDF
	formatDOCX
	formatXLSX
)

func detect(f File) format {
	ext := strings.ToLower(filepath.Ext(f.Name))
	ct := strings.ToLower(f.ContentType)
	switch {
	case strings.HasPrefix(ct, "text/") || ext == ".txt" || ext == ".md":
		return formatText
	case ct == mimePDF || ext == ".pdf":
		return formatPDF
	case ct == mimeDOCX || ext == ".docx":
		return formatDOCX
	case ct == mimeXLSX || ext == ".xlsx":
		return formatXLSX
	}
	return formatUnsupported
}

// Unsupported returns the placeholder content for a file whose type
// cannot be read.
func Unsupported(name string) string {
	return fmt.Sprintf("%s %s (Content extraction not supported for this file type yet)",
		quizgen.UnsupportedFilePrefix, name)
}

// Extractor reads uploaded files. The PDF engine is created on first use
// and shared afterwards. Safe for concurrent use.
type Extractor struct {
	log logrus.FieldLogger

	sf  singleflight.Group
	mu  sync.Mutex
	pdf *pdfEngine
}

// New creates an Extractor. A nil log discards output.
func New(log logrus.FieldLogger) *Extractor {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Extractor{log: log}
}

// Extract returns the text content of f. Unsupported types yield the
// Unsupported sentinel rather than an error.
func (e *Extractor) Extract(ctx context.Context, f File) (string, error) {
	if len(f.Data) > MaxUploadBytes {
		return "", ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch detect(f) {
	case formatText:
		return decodeText(f.Data)
	case formatPDF:
		engine, err := e.pdfEngine()
		if err != nil {
			return "", err
		}
		text, err := engine.extract(ctx, f.Data)
		if err != nil {
			return "", fmt.Errorf("extract pdf %s: %w", f.Name, err)
		}
		return text, nil
	case formatDOCX:
		text, err := extractDOCX(f.Data, maxDocumentXMLBytes)
		if err != nil {
			return "", fmt.Errorf("extract docx %s: %w", f.Name, err)
		}
		return text, nil
	case formatXLSX:
		text, err := extractXLSX(f.Data)
		if err != nil {
			return "", fmt.Errorf("extract xlsx %s: %w", f.Name, err)
		}
		return text, nil
	}

	e.log.WithFields(logrus.Fields{
		"file":         f.Name,
		"content_type": f.ContentType,
	}).Info("unsupported file type, sending name only")
	return Unsupported(f.Name), nil
}

// pdfEngine returns the shared engine, creating it once.
func (e *Extractor) pdfEngine() (*pdfEngine, error) {
	e.mu.Lock()
	engine := e.pdf
	e.mu.Unlock()
	if engine != nil {
		return engine, nil
	}

	v, err, _ := e.sf.Do("pdf", func() (any, error) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.pdf == nil {
			e.pdf = newPDFEngine()
			e.log.Debug("pdf engine initialized")
		}
		return e.pdf, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pdfEngine), nil
}
