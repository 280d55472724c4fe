package wizard

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxFileSize is the per-file upload limit
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

var (
	ErrInvalidFileType = errors.New("Apenas arquivos PDF, JPG e PNG são aceitos. Por favor, selecione um arquivo válido.")
	ErrFileTooLarge    = errors.New("O arquivo é muito grande. O tamanho máximo permitido é 10MB.")
)

// acceptedTypes maps each accepted MIME type to its extensions
var acceptedTypes = map[string][]string{
	"application/pdf": {".pdf"},
	"image/jpeg":      {".jpg", ".jpeg"},
	"image/png":       {".png"},
}

// UploadedFile is a file held in memory until submission
type UploadedFile struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
	Content   []byte `json:"-"`
}

// NewUploadedFile builds an UploadedFile, sniffing the MIME type from content
// when the declared one is missing or generic.
func NewUploadedFile(name, declaredType string, content []byte) UploadedFile {
	mime := strings.ToLower(strings.TrimSpace(declaredType))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "" || mime == "application/octet-stream" {
		mime = mimetype.Detect(content).String()
		if i := strings.Index(mime, ";"); i >= 0 {
			mime = mime[:i]
		}
	}
	return UploadedFile{
		Name:      name,
		SizeBytes: int64(len(content)),
		MimeType:  mime,
		Content:   content,
	}
}

// AcceptFile applies the upload filter: the MIME type or the extension must be
// one of PDF, JPEG or PNG, and the size must not exceed maxSize.
func AcceptFile(f UploadedFile, maxSize int64) error {
	if !acceptedType(f.Name, f.MimeType) {
		return ErrInvalidFileType
	}
	if f.SizeBytes > maxSize {
		return ErrFileTooLarge
	}
	return nil
}

func acceptedType(name, mime string) bool {
	if _, ok := acceptedTypes[mime]; ok {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, exts := range acceptedTypes {
		for _, e := range exts {
			if e == ext {
				return true
			}
		}
	}
	return false
}
