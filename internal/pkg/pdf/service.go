// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
	tmpl   *template.Template
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		tmpl:   template.Must(template.New("receipt").Parse(receiptTemplate)),
		now:    time.Now,
	}
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string
	IssuedOn      string
	OrderedOn     string
	Currency      string
	Order         *order.WithItems
	Lines         []ReceiptLine
	Total         string
	Shop          config.ReceiptConfig
}

// ReceiptLine is one printed item row
type ReceiptLine struct {
	Name      string
	Size      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// GenerateReceipt renders a PDF receipt for an order. productNames maps
// product ids to display names; unknown ids print the id.
func (s *Service) GenerateReceipt(o *order.WithItems, productNames map[string]string) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(o, productNames)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	// Convert HTML to PDF
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA5)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML produces the receipt markup
func (s *Service) RenderHTML(o *order.WithItems, productNames map[string]string) (string, error) {
	data := ReceiptData{
		ReceiptNumber: ReceiptNumber(o.ID),
		IssuedOn:      s.now().Format("January 2, 2006"),
		OrderedOn:     o.CreatedAt.Format("January 2, 2006 15:04"),
		Currency:      s.config.Receipt.Currency,
		Order:         o,
		Total:         o.Total.StringFixed(2),
		Shop:          s.config.Receipt,
	}

	for _, item := range o.Items {
		name, ok := productNames[item.ProductID]
		if !ok {
			name = item.ProductID
		}
		data.Lines = append(data.Lines, ReceiptLine{
			Name:      name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.Price.StringFixed(2),
			LineTotal: item.LineTotal().StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// ReceiptNumber derives a short printable number from an order id
func ReceiptNumber(orderID string) string {
	short := strings.ReplaceAll(orderID, "-", "")
	if len(short) > 10 {
		short = short[:10]
	}
	return "RCPT-" + strings.ToUpper(short)
}

const receiptTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #3b2f2f; }
        .header { border-bottom: 2px solid #6f4e37; padding-bottom: 12px; margin-bottom: 16px; }
        .shop-name { font-size: 22px; font-weight: bold; color: #6f4e37; }
        .meta { font-size: 12px; color: #666; }
        table { width: 100%; border-collapse: collapse; margin-top: 16px; }
        th, td { padding: 6px 4px; text-align: left; font-size: 12px; }
        th { border-bottom: 1px solid #ccc; }
        td.num, th.num { text-align: right; }
        .total { font-size: 16px; font-weight: bold; text-align: right; margin-top: 12px; }
        .notice { font-size: 11px; color: #a33; margin-top: 8px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="shop-name">{{.Shop.ShopName}}</div>
        <div class="meta">
            {{if .Shop.ShopAddress}}{{.Shop.ShopAddress}}<br>{{end}}
            {{.Shop.ShopEmail}}{{if .Shop.ShopPhone}} | {{.Shop.ShopPhone}}{{end}}
        </div>
    </div>

    <div class="meta">
        Receipt <strong>{{.ReceiptNumber}}</strong> issued {{.IssuedOn}}<br>
        Order {{.Order.ID}} placed {{.OrderedOn}}<br>
        Status: {{.Order.Status}} | Payment: {{.Order.PaymentMethod}}
    </div>

    <div class="meta" style="margin-top: 12px;">
        <strong>Ship to</strong><br>
        {{.Order.ShippingName}}<br>
        {{.Order.ShippingAddress}}<br>
        {{.Order.ShippingCity}}, {{.Order.ShippingState}} {{.Order.ShippingPostalCode}}<br>
        {{.Order.ShippingCountry}}<br>
        {{.Order.ShippingPhone}}
    </div>

    <table>
        <thead>
            <tr>
                <th>Item</th>
                <th>Size</th>
                <th class="num">Qty</th>
                <th class="num">Unit price</th>
                <th class="num">Amount</th>
            </tr>
        </thead>
        <tbody>
            {{range .Lines}}
            <tr>
                <td>{{.Name}}</td>
                <td>{{.Size}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{.UnitPrice}}</td>
                <td class="num">{{.LineTotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>
    {{if not .Lines}}<div class="notice">The items of this order could not be recorded.</div>{{end}}

    <div class="total">Total: {{.Currency}} {{.Total}}</div>
</body>
</html>
`
