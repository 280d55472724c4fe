package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nexconsult/docsync/internal/config"
	"github.com/nexconsult/docsync/internal/logger"
	"github.com/nexconsult/docsync/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*config.BackendConfig)) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.BackendConfig{
		BaseURL:         srv.URL + "/",
		RequestTimeout:  5 * time.Second,
		GenerateTimeout: time.Second,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return NewClient(cfg, logger.Discard()), srv
}

func TestDecodeEnvelopeShapes(t *testing.T) {
	wrapped, err := DecodeEnvelope([]byte(`{"success":true,"data":{"session_id":"s1","template_type":"cessao_credito","extracted_data":{"client":{"name":"Ana","cpf":52998224725}}}}`))
	require.NoError(t, err)
	assert.True(t, wrapped.Success)
	assert.Equal(t, "s1", wrapped.SessionID)
	assert.Equal(t, "52998224725", wrapped.ExtractedData.Get("client.cpf"))

	flat, err := DecodeEnvelope([]byte(`{"session_id":"s2","validation_results":{"client.cpf":{"status":"valid","message":"CPF válido"}}}`))
	require.NoError(t, err)
	assert.True(t, flat.Success)
	assert.Equal(t, "s2", flat.SessionID)
	assert.Equal(t, validation.StatusValid, flat.ValidationResults["client.cpf"].Status)

	mixed, err := DecodeEnvelope([]byte(`{"success":true,"data":{"client":{"name":"Ana"}},"validation_results":{"client.name":{"status":"warning","message":"Recomendado incluir nome e sobrenome"}}}`))
	require.NoError(t, err)
	assert.Equal(t, validation.StatusWarning, mixed.ValidationResults["client.name"].Status)

	failed, err := DecodeEnvelope([]byte(`{"success":false,"message":"sessão expirada"}`))
	require.NoError(t, err)
	assert.ErrorIs(t, failed.Failure("x"), ErrBackendFailure)
	assert.Contains(t, failed.Failure("x").Error(), "sessão expirada")

	_, err = DecodeEnvelope([]byte(`<html>`))
	assert.ErrorIs(t, err, ErrBackendFailure)
}

func TestProcessSendsMultipart(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/documents/process", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "cessao_credito", r.FormValue("template"))

		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "proposta.pdf", files[0].Filename)
		assert.Equal(t, "application/pdf", files[0].Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":{"session_id":"abc","template_type":"cessao_credito","extracted_data":{}}}`)
	})

	env, err := client.Process(context.Background(), "cessao_credito", []Upload{
		{Name: "proposta.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4")},
		{Name: "cnh.jpg", ContentType: "image/jpeg", Content: []byte{0xff, 0xd8, 0xff}},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", env.SessionID)
}

func TestProcessReportsBackendFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"Nenhum arquivo válido"}`)
	})

	_, err := client.Process(context.Background(), "cessao_credito", nil)
	assert.ErrorIs(t, err, ErrBackendFailure)
}

func TestUpdateFieldSendsPatch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/sessions/s1", r.URL.Path)

		var update FieldUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&update))
		assert.Equal(t, FieldUpdate{Field: "client.cpf", Value: "529.982.247-25", OldValue: ""}, update)

		_, _ = io.WriteString(w, `{"success":true,"validation_results":{"client.cpf":{"status":"valid","message":"CPF válido"}}}`)
	})

	results, err := client.UpdateField(context.Background(), "s1", FieldUpdate{Field: "client.cpf", Value: "529.982.247-25"})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusValid, results["client.cpf"].Status)
}

func TestGenerateTimeoutIsDistinct(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(cfg *config.BackendConfig) { cfg.GenerateTimeout = 50 * time.Millisecond })
	defer close(release)

	_, err := client.Generate(context.Background(), "s1", GenerateRequest{FormatType: "docx", TemplateType: "cessao_credito"})
	assert.ErrorIs(t, err, ErrGenerationTimeout)
}

func TestGenerateRequiresDownloadURL(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "docx", req.FormatType)
		_, _ = io.WriteString(w, `{"success":true,"data":{}}`)
	})

	_, err := client.Generate(context.Background(), "s1", GenerateRequest{FormatType: "docx", TemplateType: "cessao_credito"})
	assert.ErrorIs(t, err, ErrBackendFailure)
}

func TestGenerateDefaultsFormats(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"download_url":"/api/files/download/processed_abc.docx","output_filename":"termo.docx"}}`)
	})

	env, err := client.Generate(context.Background(), "s1", GenerateRequest{FormatType: "docx"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docx"}, env.FormatsAvailable)
	assert.Equal(t, "termo.docx", env.OutputFilename)
	assert.Equal(t, client.BaseURL()+"/api/files/download/processed_abc.docx", client.ResolveURL(env.DownloadURL))
}

func TestPreviewReturnsHTML(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents/templates/pagamento_terceiro/preview", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "extracted_data")
		_, _ = io.WriteString(w, `{"success":true,"data":{"html":"<div>ok</div>"}}`)
	})

	html, err := client.Preview(context.Background(), "pagamento_terceiro", nil)
	require.NoError(t, err)
	assert.Equal(t, "<div>ok</div>", html)
}

func TestFetchNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.Fetch(context.Background(), "/api/files/download/x.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "fetch", statusErr.Operation)

	assert.ErrorIs(t, client.Probe(context.Background(), "/api/files/download/x.pdf"), ErrNotFound)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "boom", http.StatusBadGateway)
	}, func(cfg *config.BackendConfig) {
		cfg.Breaker = config.BreakerConfig{
			Enabled:         true,
			MinRequests:     2,
			FailureRatio:    0.5,
			OpenTimeout:     time.Minute,
			HalfOpenMaxCall: 1,
		}
	})

	for i := 0; i < 2; i++ {
		_, err := client.GetSession(context.Background(), "s1")
		var statusErr *HTTPStatusError
		require.True(t, errors.As(err, &statusErr))
	}

	_, err := client.GetSession(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Equal(t, "open", client.State())
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}, func(cfg *config.BackendConfig) {
		cfg.Breaker = config.BreakerConfig{Enabled: true, MinRequests: 1, FailureRatio: 0.1, OpenTimeout: time.Minute, HalfOpenMaxCall: 1}
	})

	for i := 0; i < 3; i++ {
		_, err := client.Fetch(context.Background(), "/missing")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, "closed", client.State())
}
