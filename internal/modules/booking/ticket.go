package booking

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"rsc.io/qr"

	"railway/internal/domain"
	"railway/internal/pkg/utils"
)

//go:embed templates/ticket.html
var ticketFS embed.FS

var ticketTmpl = template.Must(template.New("ticket.html").Funcs(template.FuncMap{
	"rupees":  formatRupees,
	"date":    utils.DisplayDate,
	"upper":   strings.ToUpper,
	"inc":     func(i int) int { return i + 1 },
	"caption": func(s string) string { return strings.ReplaceAll(s, "-", " ") },
}).ParseFS(ticketFS, "templates/ticket.html"))

type ticketView struct {
	Booking   *domain.Booking
	QR        template.URL
	PrintedAt string
}

func renderTicket(b *domain.Booking, now time.Time) ([]byte, error) {
	qrURL, err := pnrQR(b.PNR)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = ticketTmpl.Execute(&buf, ticketView{
		Booking:   b,
		QR:        qrURL,
		PrintedAt: now.Format("02 Jan 2006 15:04"),
	})
	if err != nil {
		return nil, fmt.Errorf("render ticket %s: %w", b.PNR, err)
	}
	return buf.Bytes(), nil
}

// pnrQR encodes the PNR as a PNG data URL.
func pnrQR(pnr string) (template.URL, error) {
	code, err := qr.Encode(pnr, qr.M)
	if err != nil {
		return "", fmt.Errorf("qr for %s: %w", pnr, err)
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(code.PNG())), nil
}

// formatRupees groups digits the Indian way: 123456 -> ₹1,23,456.
func formatRupees(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var out string
	if len(digits) <= 3 {
		out = digits
	} else {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		out = strings.Join(groups, ",") + "," + tail
	}

	if neg {
		return "-₹" + out
	}
	return "₹" + out
}
