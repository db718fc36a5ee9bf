// Package invoice renders the customer-facing PDF for a booking.
package invoice

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/phpdave11/gofpdf"
)

type line struct {
	label  string
	amount int64
}

// Render builds the invoice PDF and returns it with a download file name.
func Render(b *domain.Booking, loc *time.Location, issued time.Time) ([]byte, string, error) {
	const op = "invoice.Render"

	if loc == nil {
		loc = time.UTC
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+b.BookingNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	for _, s := range []string{
		"Booking no : " + b.BookingNumber,
		"Issued     : " + issued.In(loc).Format("2006-01-02 15:04"),
		"Ceremony   : " + b.EventType,
		"Date       : " + b.EventDate.In(loc).Format("Mon, 02 Jan 2006 15:04"),
		"Venue      : " + b.VenueCity,
		"Status     : " + string(b.Status),
	} {
		pdf.Cell(0, 6, s)
		pdf.Ln(6)
	}
	if b.Muhurat != "" {
		pdf.Cell(0, 6, "Muhurat    : "+b.Muhurat)
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Charges")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for _, l := range lines(b.Charges) {
		pdf.CellFormat(130, 7, l.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, rupees(l.amount), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(130, 9, "Grand total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, rupees(b.GrandTotal), "T", 1, "R", false, 0, "")

	if b.RefundAmount > 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(130, 7, "Refund", "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, "-"+rupees(b.RefundAmount), "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "GST is charged on platform and travel service fees only. "+
		"Dakshina and travel, food and accommodation costs are passed through untaxed.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("%s:%w", op, err)
	}

	return buf.Bytes(), fmt.Sprintf("invoice-%s.pdf", b.BookingNumber), nil
}

func lines(c domain.Charges) []line {
	all := []line{
		{"Dakshina", c.DakshinaAmount},
		{"Travel", c.TravelCost},
		{"Food allowance", c.FoodAllowanceAmount},
		{"Accommodation", c.AccommodationCost},
		{"Platform fee", c.PlatformFee},
		{"GST on platform fee", c.PlatformFeeGST},
		{"Travel service fee", c.TravelServiceFee},
		{"GST on travel service fee", c.TravelServiceFeeGST},
	}

	out := all[:1]
	for _, l := range all[1:] {
		if l.amount != 0 {
			out = append(out, l)
		}
	}
	return out
}

// rupees formats n with Indian digit grouping, e.g. Rs 1,23,456.
func rupees(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return "Rs " + sign + s
	}

	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}

	return "Rs " + sign + strings.Join(groups, ",") + "," + tail
}
