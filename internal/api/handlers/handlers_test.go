package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexconsult/docsync/internal/backend"
	"github.com/nexconsult/docsync/internal/config"
	"github.com/nexconsult/docsync/internal/download"
	"github.com/nexconsult/docsync/internal/logger"
	"github.com/nexconsult/docsync/internal/metrics"
	"github.com/nexconsult/docsync/internal/models"
	"github.com/nexconsult/docsync/internal/services"
	"github.com/nexconsult/docsync/internal/templates"
	"github.com/nexconsult/docsync/internal/validation"
	"github.com/nexconsult/docsync/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubBackend struct {
	sessions map[string]*backend.Envelope
}

func (s *stubBackend) Process(_ context.Context, templateID string, _ []backend.Upload) (*backend.Envelope, error) {
	return &backend.Envelope{Success: true, SessionID: "sess-1", TemplateType: templateID, ExtractedData: sampleForm()}, nil
}

func (s *stubBackend) GetSession(_ context.Context, id string) (*backend.Envelope, error) {
	if env, ok := s.sessions[id]; ok {
		return env, nil
	}
	return nil, &backend.HTTPStatusError{Operation: "get_session", StatusCode: 404, Status: "404 Not Found"}
}

func (s *stubBackend) UpdateField(context.Context, string, backend.FieldUpdate) (validation.ResultMap, error) {
	return nil, nil
}

func (s *stubBackend) Generate(_ context.Context, id string, _ backend.GenerateRequest) (*backend.Envelope, error) {
	return &backend.Envelope{Success: true, DownloadURL: "/files/" + id + ".docx", FormatsAvailable: []string{"docx"}}, nil
}

func (s *stubBackend) Preview(context.Context, string, validation.FormData) (string, error) {
	return `<p>Nome: <span class="field-highlight filled">Maria</span> CPF: <span class="field-highlight empty">CPF do cliente</span></p><script>alert(1)</script>`, nil
}

func (s *stubBackend) Probe(context.Context, string) error {
	return &backend.HTTPStatusError{Operation: "probe", StatusCode: 404, Status: "404 Not Found"}
}

func (s *stubBackend) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	return []byte("PK\x03\x04" + rawURL), nil
}

func (s *stubBackend) State() string { return "closed" }

func sampleForm() validation.FormData {
	return validation.FormData{
		"client": map[string]any{
			"name":    "Maria Silva Souza",
			"cpf":     "529.982.247-25",
			"rg":      "12.345.678-9",
			"address": "Rua das Flores, 123, 01310-100",
		},
		"usedVehicle": map[string]any{
			"brand":  "Fiat",
			"model":  "Uno",
			"year":   "2015/2016",
			"color":  "Branco",
			"plate":  "ABC1D23",
			"chassi": "9BWZZZ377VT004251",
			"value":  float64(35000),
		},
	}
}

type testAPI struct {
	router  *gin.Engine
	reviews *services.ReviewService
	cache   *services.CacheService
	checks  []string
}

func newTestAPI(t *testing.T, maxFileSize int64) *testAPI {
	t.Helper()
	log := logger.Discard()
	sb := &stubBackend{sessions: map[string]*backend.Envelope{}}
	cache := services.NewCacheService(nil, time.Hour, log)
	reviews := services.NewReviewService(sb, services.NewPreviewAnalyzer(log), services.NewChromeRenderer(config.BrowserConfig{}, log),
		config.ReviewConfig{DebounceDelay: 10 * time.Millisecond, DebounceMaxWait: 50 * time.Millisecond}, nil, log)
	t.Cleanup(reviews.CloseAll)
	wizards := services.NewWizardService(sb, reviews, cache, config.UploadConfig{MaxFileSize: maxFileSize, WizardTTL: time.Hour}, nil, log)
	documents := services.NewDocumentService(sb, reviews, cache, download.New(sb, t.TempDir(), 0, log), time.Hour, nil, log)

	api := &testAPI{reviews: reviews, cache: cache}
	r := gin.New()

	th := NewTemplateHandler(log)
	r.GET("/templates", th.List)
	r.GET("/templates/:id", th.Get)

	vh := NewValidationHandler(func(status string) { api.checks = append(api.checks, status) }, log)
	r.POST("/validate", vh.ValidateField)
	r.POST("/validate/batch", vh.ValidateBatch)

	wh := NewWizardHandler(wizards, maxFileSize, log)
	r.POST("/wizards", wh.Create)
	r.GET("/wizards/:id", wh.Get)
	r.POST("/wizards/:id/files", wh.DropFile)
	r.DELETE("/wizards/:id/files", wh.RemoveFile)
	r.POST("/wizards/:id/batch", wh.Batch)
	r.POST("/wizards/:id/next", wh.Next)
	r.POST("/wizards/:id/previous", wh.Previous)
	r.POST("/wizards/:id/cancel", wh.Cancel)
	r.POST("/wizards/:id/finish", wh.Finish)

	sh := NewSessionHandler(reviews, documents, log)
	r.GET("/sessions/:id", sh.Get)
	r.PATCH("/sessions/:id", sh.UpdateField)
	r.DELETE("/sessions/:id", sh.Close)
	r.GET("/sessions/:id/preview", sh.Preview)
	r.GET("/sessions/:id/preview.pdf", sh.PreviewPDF)
	r.POST("/sessions/:id/generate", sh.Generate)
	r.GET("/sessions/:id/downloads", sh.Downloads)
	r.POST("/sessions/:id/downloads/:type", sh.Download)

	ch := NewCacheHandler(cache, log)
	r.GET("/cache/stats", ch.GetStats)
	r.DELETE("/cache/clear", ch.Clear)

	api.router = r
	return api
}

func (a *testAPI) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type part struct {
	field, name, contentType string
	content                  []byte
}

func (a *testAPI) upload(path string, parts []part, values map[string][]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, p.field, p.name))
		h.Set("Content-Type", p.contentType)
		w, _ := mw.CreatePart(h)
		_, _ = w.Write(p.content)
	}
	for key, vs := range values {
		for _, v := range vs {
			_ = mw.WriteField(key, v)
		}
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func pdfPart(field, name string) part {
	return part{field: field, name: name, contentType: "application/pdf", content: []byte("%PDF-1.4\n" + name)}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestTemplatesCatalog(t *testing.T) {
	api := newTestAPI(t, wizard.DefaultMaxFileSize)

	w := api.do(http.MethodGet, "/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[models.TemplateListResponse](t, w)
	assert.Equal(t, len(templates.All()), list.Total)

	w = api.do(http.MethodGet, "/templates/contrato_aluguel", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrorCodeUnknownTemplate, decode[models.ErrorResponse](t, w).Code)
}

func TestValidateField(t *testing.T) {
	api := newTestAPI(t, wizard.DefaultMaxFileSize)

	w := api.do(http.MethodPost, "/validate", models.ValidateFieldRequest{Field: "client.cpf", Value: "529.982.247-25"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.ValidationResponse](t, w)
	assert.Equal(t, validation.StatusValid, resp.Result.Status)
	assert.Equal(t, []string{"valid"}, api.checks)

	w = api.do(http.MethodPost, "/validate", map[string]string{"value": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateBatch(t *testing.T) {
	api := newTestAPI(t, wizard.DefaultMaxFileSize)

	data := sampleForm().With("client.cpf", "111.111.111-11")
	w := api.do(http.MethodPost, "/validate/batch", models.ValidateBatchRequest{ExtractedData: data})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.BatchValidationResponse](t, w)
	assert.False(t, resp.Valid)
	assert.Equal(t, validation.StatusInvalid, resp.Results["client.cpf"].Status)
}

func TestWizardUploadAndFinish(t *testing.T) {
	api := newTestAPI(t, wizard.DefaultMaxFileSize)

	w := api.do(http.MethodPost, "/wizards", models.CreateWizardRequest{TemplateID: templates.ResponsabilidadeVeiculo})
	require.Equal(t, http.StatusCreated, w.Code)
	view := decode[services.WizardView](t, w)
	assert.Equal(t, services.ViewUpload, view.View)

	w = api.do(http.MethodPost, "/wizards/"+view.ID+"/finish", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ErrorCodeWizardIncomplete, decode[models.ErrorResponse](t, w).Code)

	w = api.upload("/wizards/"+view.ID+"/files", []part{pdfPart("file", "proposta.pdf")}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view = decode[services.WizardView](t, w)
	assert.True(t, view.AllStepsComplete)
	assert.Equal(t, "proposta.pdf", view.FilesBySlotID[templates.SlotProposta].Name)

	w = api.do(http.MethodPost, "/wizards/"+view.ID+"/finish", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view = decode[services.WizardView](t, w)
	assert.Equal(t, "sess-1", view.SessionID)
	assert.Equal(t, wizard.PhaseSubmitted, view.Phase)

	w = api.do(http.MethodGet, "/sessions/sess-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		SessionID     string              `json:"session_id"`
		ExtractedData validation.FormData `json:"extracted_data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "Maria Silva Souza", state.ExtractedData.Get("client.name"))
}

func TestDropRejectsUnsupportedFile(t *testing.T) {
	api := newTestAPI(t, wizard.DefaultMaxFileSize)
	view := decode[services.WizardView](t, api.do(http.MethodPost, "/wizards", models.CreateWizardRequest{TemplateID: templates.PagamentoTerceiro}))

	w := api.upload("/wizards/"+view.ID+"/files", []part{{field: "file", name: "notes.txt", contentType: "text/plain", content: []byte("hello")}}, nil)
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, models.ErrorCodeInvalidFileType, decode[models.ErrorResponse](t, w).Code)

	w = api.upload("/wizards/"+view.ID+"/files", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDropRejectsOversizedFile(t *testing.T) {
	api := newTestAPI(t, 16)
	view := decode[services.WizardView](t, api.do(http.MethodPost, "/wizards", models.CreateWizardRequest{TemplateID: templates.PagamentoTerceiro}))

	w := api.upload("/wizards/"+view.ID+"/files", []part{pdfPart("file", "a-rather-long-proposal.pdf")}, nil)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, models.ErrorCodeFileTooLarge, decode[models.ErrorResponse](t, w).Code)
}

func TestDropJudgesTypeBeforeSize(t *testing.T) {
	api := newTestAPI(t, 16)
	view := decode[services.WizardView](t, api.do(http.MethodPost, "/wizards", models.CreateWizardRequest{TemplateID: templates.PagamentoTerceiro}))

	payload := bytes.Repeat([]byte{0x4d, 0x5a}, 64)
	w := api.upload("/wizards/"+view.ID+"/files", []part{{field: "file", name: "setup.exe", contentType: "application/x-msdownload", content: payload}}, nil)
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, models.ErrorCodeInvalidFileType, decode[models.ErrorResponse](t, w).Code)
}

func TestWizardNavigation(t *testing.T) {
	api := newTestAPI(t, wizard.DefaultMaxFileSize)
	view := decode[services.WizardView](t, api.do(http.MethodPost, "/wizards", models.CreateWizardRequest{TemplateID: templates.PagamentoTerceiro}))
	base := "/wizards/" + view.ID

	w := api.do(http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ErrorCodeStepIncomplete, decode[models.ErrorResponse](t, w).Code)

	require.Equal(t, http.StatusOK, api.upload(base+"/files", []part{pdfPart("file", "proposta.pdf")}, nil).Code)
	w = api.do(http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[services.WizardView](t, w).CurrentStepIndex)

	w = api.do(http.MethodPost, base+"/previous", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[services.WizardView](t, w).CurrentStepIndex)

	w = api.do(http.MethodDelete, base+"/files", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[services.WizardView](t, w).FilesBySlotID)

	w = api.do(http.MethodPost, base+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, wizard.PhaseCancelled, decode[services.WizardView](t, w).Phase)

	w = api.do(http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ErrorCodeWizardClosed, decode[models.ErrorResponse](t, w).Code)
}

func TestUnknownWizard(t *testing.T) {
	api := newTestAPI(t, wizard.DefaultMaxFileSize)

	w := api.do(http.MethodGet, "/wizards/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrorCodeWizardNotFound, decode[models.ErrorResponse](t, w).Code)
}

func TestBatchUpload(t *testing.T) {
	api := newTestAPI(t, wizard.DefaultMaxFileSize)
	view := decode[services.WizardView](t, api.do(http.MethodPost, "/wizards", models.CreateWizardRequest{TemplateID: templates.PagamentoTerceiro}))
	path := "/wizards/" + view.ID + "/batch"

	w := api.upload(path,
		[]part{pdfPart("files", "proposta.pdf")},
		map[string][]string{"slots": {templates.SlotProposta}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	var incomplete struct {
		Code    string `json:"code"`
		Details struct {
			Missing []string `json:"missing"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &incomplete))
	assert.Equal(t, models.ErrorCodeWizardIncomplete, incomplete.Code)
	assert.Len(t, incomplete.Details.Missing, 2)

	w = api.upload(path,
		[]part{pdfPart("files", "pagamento.pdf"), pdfPart("files", "proposta.pdf"), pdfPart("files", "cnh.pdf")},
		map[string][]string{"slots": {templates.SlotComprovantePagamento, templates.SlotProposta, templates.SlotCNHTerceiro}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[services.BatchResult](t, w)
	assert.True(t, result.Wizard.AllStepsComplete)
	assert.Equal(t, "cnh.pdf", result.Wizard.FilesBySlotID[templates.SlotCNHTerceiro].Name)

	w = api.upload(path, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionEditAndClose(t *testing.T) {
	api := newTestAPI(t, wizard.DefaultMaxFileSize)
	api.reviews.Open(&backend.Envelope{SessionID: "s1", ExtractedData: sampleForm()}, templates.ResponsabilidadeVeiculo)

	w := api.do(http.MethodPatch, "/sessions/s1", models.FieldUpdateRequest{Field: "usedVehicle.plate", Value: "ABC1234"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var update struct {
		Field  string            `json:"field"`
		Result validation.FieldValidationResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &update))
	assert.Equal(t, "usedVehicle.plate", update.Field)
	assert.Equal(t, validation.StatusValid, update.Result.Status)

	w = api.do(http.MethodPatch, "/sessions/s1", map[string]string{"value": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/sessions/s1", nil).Code)

	w = api.do(http.MethodDelete, "/sessions/s1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrorCodeSessionNotFound, decode[models.ErrorResponse](t, w).Code)

	w = api.do(http.MethodGet, "/sessions/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreviewRoutes(t *testing.T) {
	api := newTestAPI(t, wizard.DefaultMaxFileSize)
	api.reviews.Open(&backend.Envelope{SessionID: "s1", ExtractedData: sampleForm()}, templates.ResponsabilidadeVeiculo)

	w := api.do(http.MethodGet, "/sessions/s1/preview", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	analysis := decode[services.PreviewAnalysis](t, w)
	assert.Equal(t, 2, analysis.Placeholders)
	assert.Equal(t, 50, analysis.Completion)
	assert.Equal(t, []string{"CPF do cliente"}, analysis.EmptyLabels)
	assert.NotContains(t, analysis.HTML, "script")

	w = api.do(http.MethodGet, "/sessions/s1/preview.pdf", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, models.ErrorCodeRendererDisabled, decode[models.ErrorResponse](t, w).Code)
}

func TestGenerateBlockedByMissingFields(t *testing.T) {
	api := newTestAPI(t, wizard.DefaultMaxFileSize)
	api.reviews.Open(&backend.Envelope{SessionID: "s1", ExtractedData: sampleForm().With("client.cpf", "")}, templates.ResponsabilidadeVeiculo)

	w := api.do(http.MethodPost, "/sessions/s1/generate", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Code    string `json:"code"`
		Details struct {
			MissingFields []struct {
				Field string `json:"field"`
			} `json:"missing_fields"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.ErrorCodeCannotGenerate, body.Code)
	require.Len(t, body.Details.MissingFields, 1)
	assert.Equal(t, "client.cpf", body.Details.MissingFields[0].Field)
}

func TestGenerateAndDownload(t *testing.T) {
	api := newTestAPI(t, wizard.DefaultMaxFileSize)
	api.reviews.Open(&backend.Envelope{SessionID: "s1", ExtractedData: sampleForm()}, templates.ResponsabilidadeVeiculo)

	w := api.do(http.MethodGet, "/sessions/s1/downloads", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ErrorCodeNotGenerated, decode[models.ErrorResponse](t, w).Code)

	w = api.do(http.MethodPost, "/sessions/s1/generate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[services.GenerationResult](t, w)
	assert.Equal(t, "s1", result.SessionID)
	assert.Equal(t, []string{"docx"}, result.FormatsAvailable)

	w = api.do(http.MethodGet, "/sessions/s1/downloads", nil)
	require.Equal(t, http.StatusOK, w.Code)
	options := decode[services.DownloadOptions](t, w)
	available := map[string]bool{}
	for _, o := range options.Options {
		available[o.FileType] = o.Available
	}
	assert.True(t, available["docx"])
	assert.False(t, available["pdf"])

	w = api.do(http.MethodPost, "/sessions/s1/downloads/docx", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decode[download.Result](t, w)
	assert.Equal(t, "docx", saved.FileType)
	assert.FileExists(t, saved.Path)

	w = api.do(http.MethodPost, "/sessions/s1/downloads/xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCacheRoutes(t *testing.T) {
	api := newTestAPI(t, wizard.DefaultMaxFileSize)
	require.NoError(t, api.cache.Set(context.Background(), "k", "v"))

	w := api.do(http.MethodGet, "/cache/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stats")

	w = api.do(http.MethodDelete, "/cache/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exists, err := api.cache.Exists(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

type staticHealth map[string]interface{}

func (s staticHealth) Health() map[string]interface{} { return s }

func TestHealthAggregation(t *testing.T) {
	checker := staticHealth{
		"redis":    map[string]interface{}{"status": "disabled"},
		"backend":  map[string]interface{}{"status": "degraded", "breaker": "half-open"},
		"renderer": map[string]interface{}{"status": "healthy"},
	}
	h := NewHealthHandler(checker, logger.Discard())
	r := gin.New()
	r.GET("/health", h.GetHealth)
	r.GET("/health/ready", h.GetReadiness)
	r.GET("/health/live", h.GetLiveness)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.HealthResponse](t, w)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "half-open", resp.Services["backend"].Details["breaker"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	checker["backend"] = map[string]interface{}{"status": "unhealthy", "breaker": "open"}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "circuit is open")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.Validation("valid")

	r := gin.New()
	r.GET("/metrics", NewMetricsHandler(m.Handler(), logger.Discard()).GetMetrics)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "docsync_")
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("drop: %w", wizard.ErrBusy), http.StatusConflict, models.ErrorCodeWizardBusy},
		{&services.MissingFieldsError{}, http.StatusUnprocessableEntity, models.ErrorCodeCannotGenerate},
		{backend.ErrGenerationTimeout, http.StatusGatewayTimeout, models.ErrorCodeGenerationTimeout},
		{&backend.HTTPStatusError{Operation: "generate", StatusCode: 500, Status: "500"}, http.StatusBadGateway, models.ErrorCodeBackendError},
		{download.ErrDuplicate, http.StatusConflict, models.ErrorCodeDownloadInProgress},
		{errors.New("boom"), http.StatusInternalServerError, models.ErrorCodeInternalError},
	}
	for _, tc := range cases {
		status, code := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}
