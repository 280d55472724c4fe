package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// PreviewAnalysis summarizes a rendered template preview
type PreviewAnalysis struct {
	HTML         string   `json:"html"`
	Placeholders int      `json:"placeholders"`
	Filled       int      `json:"filled"`
	Empty        int      `json:"empty"`
	EmptyLabels  []string `json:"empty_labels,omitempty"`
	Completion   int      `json:"completion"`
}

// PreviewAnalyzer sanitizes backend preview HTML and counts the field
// placeholders still left unfilled
type PreviewAnalyzer struct {
	logger *logrus.Logger
}

// NewPreviewAnalyzer creates a new analyzer
func NewPreviewAnalyzer(logger *logrus.Logger) *PreviewAnalyzer {
	return &PreviewAnalyzer{
		logger: logger,
	}
}

// Analyze strips scripts and inline handlers and inspects .field-highlight spans
func (a *PreviewAnalyzer) Analyze(html string) (*PreviewAnalysis, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	removed := doc.Find("script, iframe, object, embed").Length()
	doc.Find("script, iframe, object, embed").Remove()
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		kept := node.Attr[:0]
		for _, attr := range node.Attr {
			if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
				continue
			}
			if attr.Key == "href" && strings.HasPrefix(strings.ToLower(strings.TrimSpace(attr.Val)), "javascript:") {
				continue
			}
			kept = append(kept, attr)
		}
		node.Attr = kept
	})

	result := &PreviewAnalysis{}
	highlights := doc.Find(".field-highlight")
	result.Placeholders = highlights.Length()
	highlights.Each(func(_ int, s *goquery.Selection) {
		switch {
		case s.HasClass("empty"):
			result.Empty++
			if label := strings.TrimSpace(s.Text()); label != "" {
				result.EmptyLabels = append(result.EmptyLabels, label)
			}
		case s.HasClass("filled"):
			result.Filled++
		}
	})
	if result.Placeholders > 0 {
		result.Completion = int(math.Round(100 * float64(result.Placeholders-result.Empty) / float64(result.Placeholders)))
	} else {
		result.Completion = 100
	}

	body, err := doc.Find("body").Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}
	result.HTML = strings.TrimSpace(body)

	a.logger.WithFields(logrus.Fields{
		"placeholders":    result.Placeholders,
		"empty":           result.Empty,
		"removed_scripts": removed,
	}).Debug("Preview analyzed")

	return result, nil
}

// PrintableDocument wraps a preview fragment in a standalone UTF-8 page
func PrintableDocument(fragment string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html lang="pt-BR"><head><meta charset="utf-8">`)
	b.WriteString(`<style>body{font-family:Arial,Helvetica,sans-serif;margin:24px;color:#171717}`)
	b.WriteString(`.field-highlight.empty{background:#fef3c7;color:#92400e}</style></head><body>`)
	b.WriteString(fragment)
	b.WriteString(`</body></html>`)
	return b.String()
}
