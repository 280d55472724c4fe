package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/nexconsult/docsync/internal/config"
	"github.com/sirupsen/logrus"
)

// ErrRendererDisabled is returned when PDF previews are turned off
var ErrRendererDisabled = errors.New("preview renderer is disabled")

// A4 in inches
const (
	paperWidth  = 8.27
	paperHeight = 11.69
)

// ChromeRenderer renders preview HTML to PDF in a headless Chrome.
// The browser starts on first use and is shared by all renders; every
// render gets its own tab.
type ChromeRenderer struct {
	config config.BrowserConfig
	logger *logrus.Logger

	mu       sync.Mutex
	browser  context.Context
	cancel   context.CancelFunc
	renders  int
	failures int
	lastErr  string
	closed   bool
}

// NewChromeRenderer creates a renderer; Chrome is not launched until needed
func NewChromeRenderer(cfg config.BrowserConfig, logger *logrus.Logger) *ChromeRenderer {
	return &ChromeRenderer{config: cfg, logger: logger}
}

// RenderPDF loads html into a blank tab and prints it to an A4 PDF
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	if !r.config.Enabled {
		return nil, ErrRendererDisabled
	}

	browserCtx, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()

	timeout := r.config.RenderTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, runCancel := context.WithTimeout(tabCtx, timeout)
	defer runCancel()

	// Propagate caller cancellation to the tab
	stop := context.AfterFunc(ctx, runCancel)
	defer stop()

	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)

	r.mu.Lock()
	r.renders++
	if err != nil {
		r.failures++
		r.lastErr = err.Error()
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.WithError(err).Warn("Preview PDF render failed")
		return nil, fmt.Errorf("failed to render preview: %w", err)
	}

	r.logger.WithField("bytes", len(pdf)).Debug("Preview PDF rendered")
	return pdf, nil
}

func (r *ChromeRenderer) ensureBrowser() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("preview renderer is closed")
	}
	if r.browser != nil && r.browser.Err() == nil {
		return r.browser, nil
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(1240, 1754),
	}
	if r.config.Headless {
		opts = append(opts, chromedp.Headless)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Launch now so a missing Chrome fails here rather than inside a tab
	startCtx, startCancel := context.WithTimeout(browserCtx, 15*time.Second)
	defer startCancel()
	if err := chromedp.Run(startCtx); err != nil {
		browserCancel()
		allocCancel()
		r.lastErr = err.Error()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	r.browser = browserCtx
	r.cancel = func() { browserCancel(); allocCancel() }
	r.logger.Info("Preview browser started")
	return r.browser, nil
}

// Health returns renderer health status
func (r *ChromeRenderer) Health() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.config.Enabled {
		return map[string]interface{}{"status": "disabled"}
	}

	health := map[string]interface{}{
		"status":   "healthy",
		"started":  r.browser != nil && r.browser.Err() == nil,
		"renders":  r.renders,
		"failures": r.failures,
	}
	if r.lastErr != "" {
		health["last_error"] = r.lastErr
		if r.renders > 0 && r.failures == r.renders {
			health["status"] = "degraded"
		}
	}
	return health
}

// Close shuts the browser down
func (r *ChromeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
		r.browser = nil
	}
	return nil
}
