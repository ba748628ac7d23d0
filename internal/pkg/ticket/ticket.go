package ticket

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

var ErrInvalidPayload = errors.New("invalid ticket payload")

const payloadVersion = "MT1"

// Signer issues and verifies QR payloads of the form MT1|bookingID|eventID|signature.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func (s *Signer) Payload(bookingID, eventID string) string {
	data := fmt.Sprintf("%s|%s|%s", payloadVersion, bookingID, eventID)
	return data + "|" + s.sign(data)
}

// Verify returns the booking and event ids carried by a signed payload.
func (s *Signer) Verify(payload string) (bookingID, eventID string, err error) {
	parts := strings.Split(strings.TrimSpace(payload), "|")
	if len(parts) != 4 || parts[0] != payloadVersion || parts[1] == "" {
		return "", "", ErrInvalidPayload
	}
	data := strings.Join(parts[:3], "|")
	if !hmac.Equal([]byte(parts[3]), []byte(s.sign(data))) {
		return "", "", ErrInvalidPayload
	}
	return parts[1], parts[2], nil
}

// Details is what gets printed on a ticket.
type Details struct {
	BookingID  string
	MuseumName string
	EventTitle string
	EventDate  string
	Slot       string
	NumTickets int
	TicketType string
	Holder     string
	PricePaid  float64
	Currency   string
}

// Render draws a one-page PDF ticket with the payload as a QR code.
func Render(d Details, payload string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Ticket "+d.BookingID, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, d.MuseumName)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, d.EventTitle)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	lines := []string{
		"Date: " + d.EventDate,
		"Time: " + d.Slot,
		fmt.Sprintf("Tickets: %d %s", d.NumTickets, d.TicketType),
		"Holder: " + d.Holder,
		fmt.Sprintf("Paid: %.2f %s", d.PricePaid, d.Currency),
		"Booking: " + d.BookingID,
	}
	for _, l := range lines {
		pdf.Cell(0, 8, l)
		pdf.Ln(8)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 140, 30, 50, 50, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}
