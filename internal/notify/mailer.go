package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var orderPlacedTmpl = template.Must(template.New("order_placed.html").
	Funcs(template.FuncMap{"money": formatMoney}).
	ParseFS(templateFS, "templates/order_placed.html"))

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Sender delivers one HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Mailer emails the seller about every placed order.
type Mailer struct {
	sender Sender
	seller string
}

func NewMailer(sender Sender, sellerEmail string) *Mailer {
	return &Mailer{
		sender: sender,
		seller: sellerEmail,
	}
}

var _ port.OrderNotifier = (*Mailer)(nil)

func (m *Mailer) NotifyOrderPlaced(ctx context.Context, order domain.Order) error {
	if m.seller == "" {
		return fmt.Errorf("seller email is empty")
	}

	body, err := RenderOrderPlaced(order)
	if err != nil {
		return fmt.Errorf("RenderOrderPlaced: %w", err)
	}

	if err := m.sender.Send(ctx, m.seller, OrderPlacedSubject(order), body); err != nil {
		return fmt.Errorf("sender.Send: %w", err)
	}

	return nil
}

func OrderPlacedSubject(order domain.Order) string {
	return fmt.Sprintf("New Order #%s from %s", order.ShortID(), order.Customer.Name)
}

func RenderOrderPlaced(order domain.Order) (string, error) {
	var buf bytes.Buffer
	if err := orderPlacedTmpl.Execute(&buf, order); err != nil {
		return "", fmt.Errorf("tmpl.Execute: %w", err)
	}
	return buf.String(), nil
}

func formatMoney(amount decimal.Decimal, cur currency.Unit) string {
	return amount.StringFixed(2) + " " + cur.String()
}

type smtpSender struct {
	cfg SMTPConfig
}

// NewSMTPSender talks to a relay that supports STARTTLS and PLAIN auth.
func NewSMTPSender(cfg SMTPConfig) Sender {
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return fmt.Errorf("conn.SetDeadline: %w", err)
		}
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp.NewClient: %w", err)
	}
	defer c.Close()

	if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
		return fmt.Errorf("c.StartTLS: %w", err)
	}

	if s.cfg.User != "" {
		if err := c.Auth(smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)); err != nil {
			return fmt.Errorf("c.Auth: %w", err)
		}
	}

	if err := c.Mail(envelopeFrom(s.cfg)); err != nil {
		return fmt.Errorf("c.Mail: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("c.Rcpt: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("c.Data: %w", err)
	}

	if _, err := w.Write(buildMessage(s.cfg.From, to, subject, htmlBody, time.Now())); err != nil {
		w.Close()
		return fmt.Errorf("w.Write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("w.Close: %w", err)
	}

	return c.Quit()
}

func envelopeFrom(cfg SMTPConfig) string {
	if cfg.User != "" && strings.Contains(cfg.User, "@") {
		return cfg.User
	}
	return cfg.From
}

func buildMessage(from, to, subject, htmlBody string, now time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}
