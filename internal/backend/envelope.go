package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nexconsult/docsync/internal/validation"
)

// Envelope is the normalized backend response. The backend answers either
// {success, data:{...}} or a flat object; both decode here, with fields
// inside data taking precedence over root fields.
type Envelope struct {
	Success           bool                 `json:"success"`
	Message           string               `json:"message,omitempty"`
	Error             string               `json:"error,omitempty"`
	SessionID         string               `json:"session_id,omitempty"`
	TemplateType      string               `json:"template_type,omitempty"`
	ExtractedData     validation.FormData  `json:"extracted_data,omitempty"`
	ValidationResults validation.ResultMap `json:"validation_results,omitempty"`
	DownloadURL       string               `json:"download_url,omitempty"`
	PDFDownloadURL    string               `json:"pdf_download_url,omitempty"`
	OutputFilename    string               `json:"output_filename,omitempty"`
	PDFFilename       string               `json:"pdf_filename,omitempty"`
	FormatsAvailable  []string             `json:"formats_available,omitempty"`
	HTML              string               `json:"html,omitempty"`
}

type payload struct {
	Message           *string             `json:"message"`
	Error             *string             `json:"error"`
	SessionID         *string             `json:"session_id"`
	TemplateType      *string             `json:"template_type"`
	ExtractedData     validation.FormData `json:"extracted_data"`
	ValidationResults json.RawMessage     `json:"validation_results"`
	DownloadURL       *string             `json:"download_url"`
	PDFDownloadURL    *string             `json:"pdf_download_url"`
	OutputFilename    *string             `json:"output_filename"`
	PDFFilename       *string             `json:"pdf_filename"`
	FormatsAvailable  []string            `json:"formats_available"`
	HTML              *string             `json:"html"`
}

// DecodeEnvelope parses a response body. A missing success flag reads as
// success.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var root map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON body: %v", ErrBackendFailure, err)
	}

	env := &Envelope{Success: true}
	if raw, ok := root["success"]; ok {
		var success bool
		if err := json.Unmarshal(raw, &success); err == nil {
			env.Success = success
		}
	}

	var p payload
	if err := unmarshalNumber(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendFailure, err)
	}
	env.apply(p)

	if raw, ok := root["data"]; ok && isObject(raw) {
		var inner payload
		if err := unmarshalNumber(raw, &inner); err == nil {
			env.apply(inner)
		}
	}
	return env, nil
}

// Failure returns ErrBackendFailure carrying the backend's message when the
// envelope reports success:false
func (e *Envelope) Failure(fallback string) error {
	if e.Success {
		return nil
	}
	msg := e.Error
	if msg == "" {
		msg = e.Message
	}
	if msg == "" {
		msg = fallback
	}
	return fmt.Errorf("%w: %s", ErrBackendFailure, msg)
}

func (e *Envelope) apply(p payload) {
	setString(&e.Message, p.Message)
	setString(&e.Error, p.Error)
	setString(&e.SessionID, p.SessionID)
	setString(&e.TemplateType, p.TemplateType)
	setString(&e.DownloadURL, p.DownloadURL)
	setString(&e.PDFDownloadURL, p.PDFDownloadURL)
	setString(&e.OutputFilename, p.OutputFilename)
	setString(&e.PDFFilename, p.PDFFilename)
	setString(&e.HTML, p.HTML)
	if p.ExtractedData != nil {
		e.ExtractedData = p.ExtractedData
	}
	if len(p.FormatsAvailable) > 0 {
		e.FormatsAvailable = p.FormatsAvailable
	}
	if isObject(p.ValidationResults) {
		var results validation.ResultMap
		if err := json.Unmarshal(p.ValidationResults, &results); err == nil {
			e.ValidationResults = results
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func unmarshalNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
