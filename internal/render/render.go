// Package render produces the printable invoice: HTML from a template and
// PDF by printing that HTML in headless Chrome.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"showpro/internal/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

//go:embed templates/*.html
var templatesFS embed.FS

const DefaultPDFTimeout = 30 * time.Second

var funcs = template.FuncMap{
	"money": money,
	"date":  formatDate,
	"str": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

var invoiceTmpl = template.Must(template.New("invoice.html").Funcs(funcs).ParseFS(templatesFS, "templates/invoice.html"))

func money(v any) string {
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", n)
	case *float64:
		if n == nil {
			return "0.00"
		}
		return fmt.Sprintf("%.2f", *n)
	default:
		return fmt.Sprint(v)
	}
}

func formatDate(v any) string {
	switch d := v.(type) {
	case models.Date:
		return d.Time().Format("2 Jan 2006")
	case *models.Date:
		if d == nil {
			return ""
		}
		return d.Time().Format("2 Jan 2006")
	default:
		return fmt.Sprint(v)
	}
}

// InvoiceHTML renders the invoice document.
func InvoiceHTML(doc models.InvoiceDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}
	return buf.Bytes(), nil
}

// PDFPrinter prints HTML to PDF with a headless Chrome started per call.
type PDFPrinter struct {
	Timeout time.Duration
}

func NewPDFPrinter(timeout time.Duration) *PDFPrinter {
	if timeout <= 0 {
		timeout = DefaultPDFTimeout
	}
	return &PDFPrinter{Timeout: timeout}
}

// Print loads html into a blank page and prints it.
func (p *PDFPrinter) Print(parentCtx context.Context, html []byte) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, p.Timeout)
	defer timeoutCancel()

	var pdf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("failed to print pdf: %w", err)
	}
	return pdf, nil
}
