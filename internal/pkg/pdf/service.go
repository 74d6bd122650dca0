// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
)

// ErrDisabled is returned when PDF export is switched off.
var ErrDisabled = errors.New("pdf export is disabled")

// Service handles PDF generation
type Service struct {
	config *config.Config
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		now:    time.Now,
	}
}

// Enabled reports whether quotes can be exported.
func (s *Service) Enabled() bool {
	return s.config.PDF.Enabled
}

// GenerateCartQuote renders the cart as a printable quote.
func (s *Service) GenerateCartQuote(customer string, c *cart.CartResponse) (*bytes.Buffer, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	htmlContent, err := s.RenderCartQuote(customer, c)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderCartQuote produces the HTML the PDF is printed from.
func (s *Service) RenderCartQuote(customer string, c *cart.CartResponse) (string, error) {
	data := QuoteData{
		Company:  s.config.PDF.CompanyName,
		Customer: customer,
		Date:     s.now().Format("January 2, 2006"),
		Totals:   c.Totals,
	}
	for i := range c.Items {
		item := &c.Items[i]
		line := QuoteLine{Quantity: item.Quantity, LineTotal: item.LineTotal()}
		if item.Variant != nil {
			line.VariantID = item.Variant.ID
			line.Color = item.Variant.Color
			line.UnitPrice = item.Variant.DiscountedPrice()
			line.Discount = item.Variant.Discount
		}
		if item.Size != nil {
			line.Size = item.Size.Size
		}
		data.Lines = append(data.Lines, line)
	}

	var buf bytes.Buffer
	if err := quoteTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// QuoteData is what the quote template is rendered from.
type QuoteData struct {
	Company  string
	Customer string
	Date     string
	Lines    []QuoteLine
	Totals   cart.CartTotals
}

// QuoteLine is one printed cart line.
type QuoteLine struct {
	VariantID uint
	Color     string
	Size      string
	Quantity  int
	Discount  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

var quoteTemplate = template.Must(template.New("quote").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Company}} quote</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        h1 { font-size: 22px; margin-bottom: 4px; }
        .meta { color: #666; margin-bottom: 24px; }
        table { width: 100%; border-collapse: collapse; }
        th, td { padding: 8px; border-bottom: 1px solid #ddd; text-align: left; }
        td.num, th.num { text-align: right; }
        .totals td { font-weight: bold; border-bottom: none; }
    </style>
</head>
<body>
    <h1>{{.Company}}</h1>
    <div class="meta">Quote for {{.Customer}} &middot; {{.Date}}</div>
    <table>
        <thead>
            <tr>
                <th>Variant</th>
                <th>Color</th>
                <th>Size</th>
                <th class="num">Qty</th>
                <th class="num">Unit price</th>
                <th class="num">Total</th>
            </tr>
        </thead>
        <tbody>
        {{- range .Lines}}
            <tr>
                <td>#{{.VariantID}}</td>
                <td>{{.Color}}</td>
                <td>{{if .Size}}{{.Size}}{{else}}-{{end}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{.UnitPrice.StringFixed 2}}{{if .Discount}} (-{{.Discount}}%){{end}}</td>
                <td class="num">{{.LineTotal.StringFixed 2}}</td>
            </tr>
        {{- else}}
            <tr><td colspan="6">Your cart is empty.</td></tr>
        {{- end}}
        </tbody>
        <tfoot>
            <tr class="totals">
                <td colspan="3">{{.Totals.ItemCount}} lines</td>
                <td class="num">{{.Totals.TotalQuantity}}</td>
                <td></td>
                <td class="num">{{.Totals.SubTotal.StringFixed 2}}</td>
            </tr>
        </tfoot>
    </table>
</body>
</html>
`))
