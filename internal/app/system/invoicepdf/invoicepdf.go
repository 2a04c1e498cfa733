// Package invoicepdf renders invoices as A4 PDF documents.
package invoicepdf

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-pdf/fpdf"
)

// LineGSTPercent is the flat rate shown per item row.
const LineGSTPercent = 18

// HSNCode is printed under every item description.
const HSNCode = "9984"

// Letterhead holds the issuing company's details.
type Letterhead struct {
	CompanyName  string
	Address      []string
	GSTIN        string
	SupportEmail string
	SupportPhone string
}

// DefaultLetterhead is used when configuration leaves the fields empty.
var DefaultLetterhead = Letterhead{
	CompanyName:  "Event Hub Management Private Limited",
	Address:      []string{"Rajipa Green Land Residency Shop No D-25,", "Near Abjibapa Residency Nikol Ahmedabad 380024, Gujarat India"},
	GSTIN:        "24AAECM7209G1ZF",
	SupportEmail: "support@eventhub.in",
	SupportPhone: "+91 9876543210",
}

// Terms are printed below the totals block.
var Terms = []string{
	"1. Payment Terms: Payment in full must be made at the time of purchase.",
	"2. Onboarding Fees, Yearly Rentals, and Subscription Fees are non-refundable.",
	"3. Refunds can be initiated for Pass and Promotional Message purchases.",
	"4. Onboarding Fees, Yearly Rentals, and Subscription Fees are non-refundable.",
	"5. Payment Methods: We accept Onboarding & Rental payments through Bank Transfer, Cheque,",
	"   IMPS, NEFT, and purchasing payments through our portal, which includes Card and UPI options.",
	"6. Prices for goods and services are as specified in the invoice.",
	"7. All prices are in Indian Rupees (INR) and do not include taxes unless explicitly stated.",
	"8. The buyer is responsible for any applicable taxes, duties, or other governmental charges associated with the purchase.",
	"9. Returns and refunds will be processed in accordance with our return policy.",
	"10. In case of late payment, the seller reserves the right to charge a late fee or discontinue services.",
	"11. Dispute Resolution: Any disputes or disagreements should be resolved through negotiation and good faith discussions.",
	"12. Ownership and Title: Ownership and title of goods will be transferred to the buyer upon full payment.",
	"13. Confidentiality: Both parties agree to maintain the confidentiality of any sensitive information disclosed.",
	"14. Governing Law: This invoice is governed by and construed in accordance with the laws of India and its jurisdiction.",
	"15. Changes to Terms and Conditions: These terms and conditions may be subject to change without prior notice.",
	"16. Entire Agreement: This invoice constitutes the entire agreement between the parties.",
	"17. By accepting this invoice, the buyer acknowledges and agrees to abide by these terms and conditions.",
}

// Totals is the summary block at the foot of the items table.
type Totals struct {
	Gross      float64
	Discount   float64
	GST        float64
	GrandTotal float64
}

// ComputeTotals derives the summary from stored invoice values. Gross is
// the sum of line amounts; GST and the grand total are taken as stored.
func ComputeTotals(inv models.Invoice) Totals {
	return Totals{
		Gross:      inv.Subtotal(),
		Discount:   inv.Discount,
		GST:        inv.GST,
		GrandTotal: inv.TotalAmount,
	}
}

// Row is one rendered line of the items table.
type Row struct {
	Amount    float64
	Discount  float64
	Subtotal  float64
	GST       float64
	LineTotal float64
}

// ComputeRow applies the flat per-line GST rate.
func ComputeRow(l models.InvoiceLine) Row {
	gst := l.Amount * LineGSTPercent / 100
	return Row{
		Amount:    l.Amount,
		Subtotal:  l.Amount,
		GST:       gst,
		LineTotal: l.Amount + gst,
	}
}

// Filename is the attachment name for an invoice download.
func Filename(inv models.Invoice) string {
	return "invoice-" + inv.InvoiceID + ".pdf"
}

// Page geometry in points.
const (
	marginLeft  = 30.0
	tableWidth  = 535.0
	rowHeight   = 40.0
	footerTop   = 780.0
	footerLimit = footerTop - 10
	topOfPage   = 40.0
)

var columns = []struct {
	title string
	x, w  float64
	align string
}{
	{"S.no", 35, 25, "L"},
	{"Description", 65, 170, "L"},
	{"Amount", 240, 40, "R"},
	{"Discount", 290, 40, "R"},
	{"Sub total", 340, 40, "R"},
	{"GST %", 390, 30, "R"},
	{"GST", 430, 40, "R"},
	{"Total", 490, 60, "R"},
}

// Render writes the invoice PDF to w. The document is built in memory so
// nothing reaches w when rendering fails.
func Render(w io.Writer, inv models.Invoice, lh Letterhead) error {
	var buf bytes.Buffer
	if err := render(&buf, inv, lh.withDefaults()); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (lh Letterhead) withDefaults() Letterhead {
	d := DefaultLetterhead
	if lh.CompanyName != "" {
		d.CompanyName = lh.CompanyName
	}
	if len(lh.Address) > 0 {
		d.Address = lh.Address
	}
	if lh.GSTIN != "" {
		d.GSTIN = lh.GSTIN
	}
	if lh.SupportEmail != "" {
		d.SupportEmail = lh.SupportEmail
	}
	if lh.SupportPhone != "" {
		d.SupportPhone = lh.SupportPhone
	}
	return d
}

func render(w io.Writer, inv models.Invoice, lh Letterhead) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Invoice "+inv.InvoiceID, true)
	inv, lh = encodeText(pdf.UnicodeTranslatorFromDescriptor(""), inv, lh)
	pdf.SetFooterFunc(func() { footer(pdf, lh) })
	pdf.AddPage()

	header(pdf, lh)
	billing(pdf, inv)

	y := tableHeader(pdf, 200)
	pdf.SetFont("Helvetica", "", 8)
	for i, l := range inv.Services {
		if y+rowHeight > footerLimit {
			pdf.AddPage()
			y = tableHeader(pdf, topOfPage)
		}
		itemRow(pdf, i+1, l, y)
		y += rowHeight
	}
	pdf.Line(marginLeft, y, marginLeft+tableWidth, y)
	y += 10

	if y+60 > footerLimit {
		pdf.AddPage()
		y = topOfPage
	}
	y = totals(pdf, ComputeTotals(inv), y)

	termsHeight := 35 + float64(len(Terms))*10
	if y+termsHeight > footerLimit {
		pdf.AddPage()
		y = topOfPage - 20
	}
	terms(pdf, y+20)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render invoice %s: %w", inv.InvoiceID, err)
	}
	return pdf.Output(w)
}

// encodeText maps caller-supplied strings onto cp1252, the encoding of the
// core Helvetica font. The customer name is upper-cased first since the
// result is no longer UTF-8.
func encodeText(tr func(string) string, inv models.Invoice, lh Letterhead) (models.Invoice, Letterhead) {
	inv.InvoiceID = tr(inv.InvoiceID)
	inv.Status = tr(inv.Status)
	inv.Customer.Name = tr(strings.ToUpper(inv.Customer.Name))
	inv.Customer.Email = tr(inv.Customer.Email)
	services := make([]models.InvoiceLine, len(inv.Services))
	for i, l := range inv.Services {
		l.ServiceName = tr(l.ServiceName)
		services[i] = l
	}
	inv.Services = services

	lh.CompanyName = tr(lh.CompanyName)
	address := make([]string, len(lh.Address))
	for i, line := range lh.Address {
		address[i] = tr(line)
	}
	lh.Address = address
	lh.GSTIN = tr(lh.GSTIN)
	lh.SupportEmail = tr(lh.SupportEmail)
	lh.SupportPhone = tr(lh.SupportPhone)
	return inv, lh
}

func header(pdf *fpdf.Fpdf, lh Letterhead) {
	pdf.SetFillColor(0xef, 0x44, 0x44)
	pdf.Rect(40, 40, 150, 50, "F")
	pdf.SetTextColor(0xff, 0xff, 0xff)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(60, 72, "Event Hub")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 10)
	rightText(pdf, 300, 40, 265, lh.CompanyName)
	pdf.SetFont("Helvetica", "", 9)
	y := 55.0
	for _, line := range lh.Address {
		rightText(pdf, 300, y, 265, line)
		y += 13
	}
	pdf.SetFont("Helvetica", "B", 9)
	rightText(pdf, 300, y+2, 265, "GST: "+lh.GSTIN)
}

func billing(pdf *fpdf.Fpdf, inv models.Invoice) {
	const top = 110.0
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.Text(40, top+8, "BILLING TO")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(40, top+25, inv.Customer.Name)
	if inv.Customer.Email != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.Text(40, top+39, inv.Customer.Email)
	}

	pdf.SetFont("Helvetica", "B", 10)
	rightText(pdf, 400, top, 165, "INVOICE")
	rightText(pdf, 400, top+15, 165, "Invoice No: "+inv.InvoiceID)
	pdf.SetFont("Helvetica", "", 10)
	rightText(pdf, 400, top+30, 165, "Invoice Date: "+inv.Date.Format("02/01/2006"))
	rightText(pdf, 400, top+45, 165, "Status: "+inv.Status)
}

func tableHeader(pdf *fpdf.Fpdf, top float64) float64 {
	pdf.SetFillColor(0xe2, 0xe8, 0xf0)
	pdf.Rect(marginLeft, top, tableWidth, 25, "F")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 8)
	for _, c := range columns {
		pdf.SetXY(c.x, top+8)
		pdf.CellFormat(c.w, 10, c.title, "", 0, c.align, false, 0, "")
	}
	pdf.Line(marginLeft, top+25, marginLeft+tableWidth, top+25)
	return top + 35
}

func itemRow(pdf *fpdf.Fpdf, n int, l models.InvoiceLine, y float64) {
	r := ComputeRow(l)

	pdf.SetFont("Helvetica", "", 8)
	cell(pdf, 0, y, strconv.Itoa(n))

	pdf.SetFont("Helvetica", "B", 8)
	cell(pdf, 1, y, l.ServiceName)
	pdf.SetFont("Helvetica", "", 7)
	cell(pdf, 1, y+10, "HSN/SAC: "+HSNCode)
	cell(pdf, 1, y+20, fmt.Sprintf("Qty %s X %s price = Rs.%s", num(l.Qty), num(l.UnitPrice), num(l.Amount)))

	pdf.SetFont("Helvetica", "", 8)
	cell(pdf, 2, y, money(r.Amount))
	cell(pdf, 3, y, money(r.Discount))
	cell(pdf, 4, y, money(r.Subtotal))
	cell(pdf, 5, y, fmt.Sprintf("%d%%", LineGSTPercent))
	cell(pdf, 6, y, money(r.GST))
	cell(pdf, 7, y, money(r.LineTotal))
}

func totals(pdf *fpdf.Fpdf, t Totals, y float64) float64 {
	lines := []struct {
		label, value string
		bold         bool
	}{
		{"Gross Amount (Rs.)", money(t.Gross), false},
		{"Discount (Rs.)", "- " + money(t.Discount), false},
		{"GST (Rs.)", money(t.GST), false},
		{"Grand Total (Incl.GST) (Rs.)", money(t.GrandTotal), true},
	}
	for _, l := range lines {
		style := ""
		if l.bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 8)
		pdf.SetXY(340, y)
		pdf.CellFormat(140, 10, l.label, "", 0, "R", false, 0, "")
		pdf.SetXY(490, y)
		pdf.CellFormat(60, 10, l.value, "", 0, "R", false, 0, "")
		y += 12
	}
	return y + 8
}

func terms(pdf *fpdf.Fpdf, y float64) {
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(40, y+8, "TERMS AND CONDITIONS")
	pdf.SetFont("Helvetica", "", 7)
	y += 23
	for _, t := range Terms {
		pdf.Text(40, y+6, t)
		y += 10
	}
}

func footer(pdf *fpdf.Fpdf, lh Letterhead) {
	pdf.SetFillColor(0xf1, 0xf5, 0xf9)
	pdf.Rect(marginLeft, footerTop, tableWidth, 40, "F")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(50, 795)
	pdf.CellFormat(150, 10, lh.SupportEmail, "", 0, "L", false, 0, "")
	pdf.SetXY(200, 795)
	pdf.CellFormat(195, 10, "GST - "+lh.GSTIN, "", 0, "C", false, 0, "")
	pdf.SetXY(395, 795)
	pdf.CellFormat(150, 10, "Mobile - "+lh.SupportPhone, "", 0, "R", false, 0, "")
}

func cell(pdf *fpdf.Fpdf, col int, y float64, txt string) {
	c := columns[col]
	pdf.SetXY(c.x, y)
	pdf.CellFormat(c.w, 10, txt, "", 0, c.align, false, 0, "")
}

func rightText(pdf *fpdf.Fpdf, x, y, w float64, txt string) {
	pdf.SetXY(x, y)
	pdf.CellFormat(w, 12, txt, "", 0, "R", false, 0, "")
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
