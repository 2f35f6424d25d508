package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPConfig holds connection settings for an SMTP relay.
// Port 465 uses implicit TLS; any other port upgrades with STARTTLS when offered.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail through an authenticated SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
	now func() time.Time
}

// NewSMTPSender creates an SMTPSender.
// PRE: cfg.Host and cfg.Port are set
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPSender{cfg: cfg, now: time.Now}
}

// Send delivers req in one SMTP transaction, issuing RCPT for To and Bcc.
// PRE: req passes Validate
// POST: Message accepted by the relay; returns the generated Message-ID
func (s *SMTPSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if err := req.Validate(); err != nil {
		return SendResult{}, err
	}
	from := req.From
	if from == "" {
		from = s.cfg.From
	}
	envelopeFrom, err := mail.ParseAddress(from)
	if err != nil {
		return SendResult{}, fmt.Errorf("smtp: invalid from address: %w", err)
	}

	msgID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.cfg.Host)
	raw, err := buildMessage(req, from, msgID, s.now())
	if err != nil {
		return SendResult{}, err
	}

	if err := s.deliver(ctx, envelopeFrom.Address, append(append([]string{}, req.To...), req.Bcc...), raw); err != nil {
		slog.Error("smtp_send_failed", "error", err, "host", s.cfg.Host, "bcc_count", len(req.Bcc), "subject", req.Subject)
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}

	slog.Info("smtp_sent", "message_id", msgID, "bcc_count", len(req.Bcc), "subject", req.Subject)
	return SendResult{MessageID: msgID, SentAt: s.now()}, nil
}

func (s *SMTPSender) deliver(ctx context.Context, from string, rcpts []string, raw []byte) error {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	tlsConfig := &tls.Config{ServerName: s.cfg.Host}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if s.cfg.Port == "465" {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if s.cfg.Port != "465" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return err
			}
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range rcpts {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// buildMessage renders req as RFC 5322 text. The HTML body is quoted-printable;
// attachments ride in a multipart/related envelope so cid: references resolve.
// Bcc addresses are deliberately absent from the output.
func buildMessage(req SendRequest, from, msgID string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }

	header("From", from)
	if len(req.To) > 0 {
		header("To", strings.Join(req.To, ", "))
	} else {
		header("To", "undisclosed-recipients:;")
	}
	if req.ReplyTo != "" {
		header("Reply-To", req.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", req.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", msgID)
	header("MIME-Version", "1.0")

	if len(req.Attachments) == 0 {
		header("Content-Type", `text/html; charset="utf-8"`)
		header("Content-Transfer-Encoding", "quoted-printable")
		buf.WriteString("\r\n")
		if err := writeQuotedPrintable(&buf, req.HTML); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	header("Content-Type", fmt.Sprintf(`multipart/related; boundary="%s"; type="text/html"`, mw.Boundary()))
	buf.WriteString("\r\n")

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {`text/html; charset="utf-8"`},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, err
	}
	if err := writeQuotedPrintable(htmlPart, req.HTML); err != nil {
		return nil, err
	}

	for _, a := range req.Attachments {
		h := textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf(`%s; name="%s"`, a.ContentType, a.Filename)},
			"Content-Transfer-Encoding": {"base64"},
		}
		if a.ContentID != "" {
			h.Set("Content-ID", "<"+a.ContentID+">")
			h.Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, a.Filename))
		} else {
			h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, a.Filename))
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if err := writeBase64Lines(part, a.Data); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeQuotedPrintable(w io.Writer, s string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(s)); err != nil {
		return err
	}
	return qp.Close()
}

// writeBase64Lines wraps encoded output at 76 columns as RFC 2045 requires.
func writeBase64Lines(w io.Writer, data []byte) error {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 76 {
		if _, err := fmt.Fprintf(w, "%s\r\n", enc[:76]); err != nil {
			return err
		}
		enc = enc[76:]
	}
	_, err := fmt.Fprintf(w, "%s\r\n", enc)
	return err
}
