package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nexconsult/docsync/internal/backend"
	"github.com/nexconsult/docsync/internal/download"
	"github.com/nexconsult/docsync/internal/templates"
	"github.com/sirupsen/logrus"
)

const generationKeyPrefix = "generation:"

// GenerationResult is what a successful generation leaves behind for the
// download step
type GenerationResult struct {
	SessionID    string `json:"session_id"`
	TemplateType string `json:"template_type"`
	TemplateName string `json:"template_name"`
	download.Links
	FormatsAvailable []string  `json:"formats_available"`
	PDFAvailable     *bool     `json:"pdf_available,omitempty"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// DownloadOption is one downloadable artifact
type DownloadOption struct {
	FileType  string `json:"file_type"`
	Filename  string `json:"filename"`
	URL       string `json:"url,omitempty"`
	Available bool   `json:"available"`
	InFlight  bool   `json:"in_flight"`
	Message   string `json:"message,omitempty"`
}

// DownloadOptions lists the artifacts of a generated session
type DownloadOptions struct {
	SessionID    string           `json:"session_id"`
	TemplateName string           `json:"template_name"`
	Options      []DownloadOption `json:"options"`
	Stepper      []StepperStep    `json:"stepper"`
}

// DocumentService generates documents and saves them locally
type DocumentService struct {
	backend    BackendClient
	reviews    *ReviewService
	cache      CacheServiceInterface
	downloader *download.Downloader
	metrics    Recorder
	resultTTL  time.Duration
	logger     *logrus.Logger

	mu         sync.Mutex
	generating map[string]struct{}
}

// NewDocumentService creates a new document service
func NewDocumentService(client BackendClient, reviews *ReviewService, cache CacheServiceInterface, downloader *download.Downloader, resultTTL time.Duration, metrics Recorder, logger *logrus.Logger) *DocumentService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &DocumentService{
		backend:    client,
		reviews:    reviews,
		cache:      cache,
		downloader: downloader,
		metrics:    metrics,
		resultTTL:  resultTTL,
		logger:     logger,
		generating: make(map[string]struct{}),
	}
}

// Generate renders the session's documents. Only one generation per session
// runs at a time and pending field edits are sent first.
func (s *DocumentService) Generate(ctx context.Context, sessionID string) (*GenerationResult, error) {
	controller, err := s.reviews.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state := controller.Snapshot(); !state.CanGenerate {
		return nil, &MissingFieldsError{Fields: state.MissingFields}
	}

	s.mu.Lock()
	if _, busy := s.generating[sessionID]; busy {
		s.mu.Unlock()
		return nil, ErrGenerationInProgress
	}
	s.generating[sessionID] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.generating, sessionID)
		s.mu.Unlock()
	}()

	controller.Flush()

	templateType := controller.TemplateID()
	log := s.logger.WithFields(logrus.Fields{
		"session_id":    sessionID,
		"template_type": templateType,
	})

	start := time.Now()
	env, err := s.backend.Generate(ctx, sessionID, backend.GenerateRequest{
		FormatType:   download.TypeDOCX,
		TemplateType: templateType,
	})
	s.metrics.Generation(templateType, time.Since(start), err)
	if err != nil {
		log.WithError(err).Error("Document generation failed")
		return nil, err
	}

	result := &GenerationResult{
		SessionID:    sessionID,
		TemplateType: templateType,
		TemplateName: templates.DisplayName(templateType, templateType),
		Links: download.Links{
			DownloadURL:    env.DownloadURL,
			PDFDownloadURL: env.PDFDownloadURL,
			OutputFilename: env.OutputFilename,
			PDFFilename:    env.PDFFilename,
		},
		FormatsAvailable: env.FormatsAvailable,
		GeneratedAt:      time.Now().UTC(),
	}
	s.store(ctx, result)

	log.WithFields(logrus.Fields{
		"download_url": result.DownloadURL,
		"formats":      result.FormatsAvailable,
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("Documents generated")
	return result, nil
}

// Generating reports whether a generation is running for the session
func (s *DocumentService) Generating(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.generating[sessionID]
	return ok
}

// Result returns the cached generation result of a session
func (s *DocumentService) Result(ctx context.Context, sessionID string) (*GenerationResult, error) {
	var result GenerationResult
	if err := s.cache.GetJSON(ctx, generationKeyPrefix+sessionID, &result); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrNotGenerated
		}
		return nil, err
	}
	return &result, nil
}

// Options lists the DOCX and PDF artifacts. PDF availability is probed once
// and remembered.
func (s *DocumentService) Options(ctx context.Context, sessionID string) (*DownloadOptions, error) {
	result, err := s.Result(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if result.PDFAvailable == nil {
		available := download.CheckPDF(ctx, s.backend, result.Links)
		result.PDFAvailable = &available
		s.store(ctx, result)
	}

	docxName, pdfName := download.Filenames(result.Links, result.TemplateName, result.GeneratedAt)
	docx := DownloadOption{
		FileType:  download.TypeDOCX,
		Filename:  docxName,
		URL:       result.DownloadURL,
		Available: result.DownloadURL != "",
		InFlight:  s.downloader.InFlight(download.TypeDOCX, docxName),
	}
	pdf := DownloadOption{
		FileType:  download.TypePDF,
		Filename:  pdfName,
		URL:       download.PDFURL(result.Links),
		Available: *result.PDFAvailable,
		InFlight:  s.downloader.InFlight(download.TypePDF, pdfName),
	}
	if !pdf.Available {
		pdf.Message = download.ErrPDFUnavailable.Error()
	}

	return &DownloadOptions{
		SessionID:    sessionID,
		TemplateName: result.TemplateName,
		Options:      []DownloadOption{docx, pdf},
		Stepper:      StepperFor(ViewDownload),
	}, nil
}

// Download saves one artifact of a generated session. A PDF that turns out
// missing or corrupt is marked unavailable.
func (s *DocumentService) Download(ctx context.Context, sessionID, fileType string) (*download.Result, error) {
	if fileType != download.TypeDOCX && fileType != download.TypePDF {
		return nil, ErrUnsupportedFileType
	}
	result, err := s.Result(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	docxName, pdfName := download.Filenames(result.Links, result.TemplateName, result.GeneratedAt)
	rawURL, filename := result.DownloadURL, docxName
	if fileType == download.TypePDF {
		rawURL, filename = download.PDFURL(result.Links), pdfName
	}

	saved, err := s.downloader.Download(ctx, fileType, rawURL, filename)
	if err != nil {
		s.metrics.Download(fileType, downloadOutcome(err))
		if errors.Is(err, download.ErrPDFUnavailable) || errors.Is(err, download.ErrPDFCorrupt) {
			unavailable := false
			result.PDFAvailable = &unavailable
			s.store(ctx, result)
		}
		return nil, err
	}
	s.metrics.Download(fileType, "success")
	return saved, nil
}

func (s *DocumentService) store(ctx context.Context, result *GenerationResult) {
	if err := s.cache.SetJSON(ctx, generationKeyPrefix+result.SessionID, result, s.resultTTL); err != nil {
		s.logger.WithFields(logrus.Fields{
			"session_id": result.SessionID,
			"error":      err.Error(),
		}).Warn("Failed to cache generation result")
	}
}

func downloadOutcome(err error) string {
	switch {
	case errors.Is(err, download.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, download.ErrPDFUnavailable), errors.Is(err, download.ErrNotFound):
		return "not_found"
	case errors.Is(err, download.ErrPDFCorrupt):
		return "corrupt"
	default:
		return "error"
	}
}
