// Package download saves generated documents locally. It guards against
// duplicate concurrent downloads and detects missing or corrupt PDFs so
// callers can fall back to the DOCX.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/nexconsult/docsync/internal/backend"
	"github.com/nexconsult/docsync/internal/templates"
	"github.com/nexconsult/docsync/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	TypeDOCX = "docx"
	TypePDF  = "pdf"

	// DefaultMinPDFBytes is the smallest blob accepted as a PDF
	DefaultMinPDFBytes = 100
)

var (
	ErrDuplicate      = errors.New("download already in progress")
	ErrNoURL          = errors.New("download URL not available")
	ErrPDFUnavailable = errors.New("Arquivo PDF não foi encontrado no servidor. O sistema pode estar gerando o arquivo ou houve um problema na conversão. Use o arquivo DOCX como alternativa.")
	ErrPDFCorrupt     = errors.New("Arquivo PDF corrompido ou muito pequeno. Use o arquivo DOCX como alternativa.")
	ErrNotFound       = errors.New("file not found on server")
)

// Fetcher is the subset of the backend client used here
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
	Probe(ctx context.Context, rawURL string) error
}

// Links are the download locations returned by a generation call
type Links struct {
	DownloadURL    string `json:"download_url"`
	PDFDownloadURL string `json:"pdf_download_url,omitempty"`
	OutputFilename string `json:"output_filename,omitempty"`
	PDFFilename    string `json:"pdf_filename,omitempty"`
}

// Result describes a saved file
type Result struct {
	FileType  string    `json:"file_type"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	Size      string    `json:"size"`
	SavedAt   time.Time `json:"saved_at"`
}

type key struct {
	fileType string
	filename string
}

// Downloader fetches files and writes them to a directory
type Downloader struct {
	fetcher     Fetcher
	dir         string
	minPDFBytes int
	logger      *logrus.Logger

	mu       sync.Mutex
	inFlight map[key]struct{}
}

// New creates a Downloader writing into dir
func New(fetcher Fetcher, dir string, minPDFBytes int, logger *logrus.Logger) *Downloader {
	if minPDFBytes <= 0 {
		minPDFBytes = DefaultMinPDFBytes
	}
	return &Downloader{
		fetcher:     fetcher,
		dir:         dir,
		minPDFBytes: minPDFBytes,
		logger:      logger,
		inFlight:    make(map[key]struct{}),
	}
}

// Download fetches rawURL and saves it as filename. While a download for the
// same (fileType, filename) is running, further calls return ErrDuplicate
// without fetching.
func (d *Downloader) Download(ctx context.Context, fileType, rawURL, filename string) (*Result, error) {
	k := key{fileType: fileType, filename: filename}

	d.mu.Lock()
	if _, busy := d.inFlight[k]; busy {
		d.mu.Unlock()
		return nil, ErrDuplicate
	}
	d.inFlight[k] = struct{}{}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.inFlight, k)
		d.mu.Unlock()
	}()

	if rawURL == "" {
		return nil, fmt.Errorf("%w: URL não disponível para %s", ErrNoURL, fileType)
	}

	log := d.logger.WithFields(logrus.Fields{
		"file_type": fileType,
		"filename":  filename,
	})

	data, err := d.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			if fileType == TypePDF {
				return nil, ErrPDFUnavailable
			}
			return nil, fmt.Errorf("%w: Arquivo %s não encontrado no servidor", ErrNotFound, strings.ToUpper(fileType))
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", fileType, err)
	}

	if fileType == TypePDF && len(data) < d.minPDFBytes {
		log.WithField("size", len(data)).Warn("PDF too small, treating as corrupt")
		return nil, fmt.Errorf("%w (%d bytes)", ErrPDFCorrupt, len(data))
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}
	path := filepath.Join(d.dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", filename, err)
	}

	size := int64(len(data))
	log.WithFields(logrus.Fields{
		"path": path,
		"size": utils.FormatFileSize(size),
	}).Info("Document saved")

	return &Result{
		FileType:  fileType,
		Filename:  filepath.Base(filename),
		Path:      path,
		SizeBytes: size,
		Size:      utils.FormatFileSize(size),
		SavedAt:   time.Now(),
	}, nil
}

// InFlight reports whether a download for the key is running
func (d *Downloader) InFlight(fileType, filename string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.inFlight[key{fileType: fileType, filename: filename}]
	return ok
}

var (
	docExtSuffix = regexp.MustCompile(`(?i)\.(docx|doc)$`)
	lastSegment  = regexp.MustCompile(`([^/]+)$`)
)

// PDFURL derives the PDF location from the generation links
func PDFURL(l Links) string {
	if l.PDFDownloadURL != "" {
		return l.PDFDownloadURL
	}
	docx := l.DownloadURL
	switch {
	case docx == "":
		return ""
	case strings.Contains(docx, ".docx"):
		return strings.Replace(docx, ".docx", ".pdf", 1)
	case docExtSuffix.MatchString(docx):
		return docExtSuffix.ReplaceAllString(docx, ".pdf")
	case strings.Contains(docx, "processed_"):
		return docx + ".pdf"
	default:
		return lastSegment.ReplaceAllString(docx, "${1}.pdf")
	}
}

// CheckPDF probes the derived PDF URL. When the backend gave no direct PDF
// link a second probe replaces a trailing .doc/.docx with .pdf.
func CheckPDF(ctx context.Context, f Fetcher, l Links) bool {
	pdfURL := PDFURL(l)
	if pdfURL == "" {
		return false
	}
	if err := f.Probe(ctx, pdfURL); err == nil {
		return true
	}
	if l.PDFDownloadURL != "" || l.DownloadURL == "" {
		return false
	}
	fallback := docExtSuffix.ReplaceAllString(l.DownloadURL, ".pdf")
	return f.Probe(ctx, fallback) == nil
}

// Filename builds "<slug>_<YYYY-MM-DD>.<ext>" from the template name
func Filename(templateName, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", templates.Slug(templateName), now.UTC().Format("2006-01-02"), ext)
}

// Filenames returns the DOCX and PDF names, preferring the backend's
func Filenames(l Links, templateName string, now time.Time) (docx, pdf string) {
	docx = l.OutputFilename
	if docx == "" {
		docx = Filename(templateName, TypeDOCX, now)
	}
	pdf = l.PDFFilename
	if pdf == "" {
		pdf = Filename(templateName, TypePDF, now)
	}
	return docx, pdf
}
