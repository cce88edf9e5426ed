package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	gosmtp "net/smtp"
	"sort"
	"strings"
	"time"

	"github.com/jaytaylor/html2text"

	"github.com/goliatone/go-statuspage/pkg/adapters"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
)

// Adapter delivers email using an SMTP server with optional TLS/STARTTLS.
type Adapter struct {
	name string
	base adapters.BaseAdapter
	caps adapters.Capability
	cfg  Config
	now  func() time.Time
}

type Option func(*Adapter)

// Config captures connection/auth options for SMTP.
type Config struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	UseTLS        bool
	UseStartTLS   bool
	SkipTLSVerify bool
	Timeout       time.Duration
	AuthDisabled  bool
	Headers       map[string]string
	PlainOnly     bool // send text/plain even when HTML is available
}

// WithName overrides the provider name (defaults to smtp).
func WithName(name string) Option {
	return func(a *Adapter) {
		if name != "" {
			a.name = name
		}
	}
}

// WithConfig sets the adapter configuration. Zero port and timeout keep the defaults.
func WithConfig(cfg Config) Option {
	return func(a *Adapter) {
		if cfg.Port == 0 {
			cfg.Port = a.cfg.Port
		}
		if cfg.Timeout <= 0 {
			cfg.Timeout = a.cfg.Timeout
		}
		a.cfg = cfg
	}
}

// WithCredentials configures username/password auth.
func WithCredentials(username, password string) Option {
	return func(a *Adapter) {
		a.cfg.Username = username
		a.cfg.Password = password
	}
}

// WithHostPort sets host and port.
func WithHostPort(host string, port int) Option {
	return func(a *Adapter) {
		if host != "" {
			a.cfg.Host = host
		}
		if port > 0 {
			a.cfg.Port = port
		}
	}
}

// WithFrom sets the default From address.
func WithFrom(from string) Option {
	return func(a *Adapter) {
		if from != "" {
			a.cfg.From = from
		}
	}
}

func New(l logger.Logger, opts ...Option) *Adapter {
	adapter := &Adapter{
		name: "smtp",
		base: adapters.NewBaseAdapter(l),
		caps: adapters.Capability{
			Name:     "smtp",
			Channels: []string{adapters.ChannelEmail},
			Formats:  []string{"text/plain", "text/html"},
		},
		cfg: Config{
			Port:        587,
			UseStartTLS: true,
			Timeout:     10 * time.Second,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	return adapter
}

func (a *Adapter) Name() string { return a.name }

func (a *Adapter) Capabilities() adapters.Capability { return a.caps }

func (a *Adapter) Send(ctx context.Context, msg adapters.Message) error {
	if strings.TrimSpace(a.cfg.Host) == "" {
		return fmt.Errorf("smtp: host is required")
	}
	from := adapters.FirstNonEmpty(msg.From, a.cfg.From)
	if from == "" {
		return fmt.Errorf("smtp: from address is required")
	}
	fromAddr, err := mail.ParseAddress(from)
	if err != nil {
		return fmt.Errorf("smtp: invalid from address: %w", err)
	}
	toAddr, err := mail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("smtp: invalid to address: %w", err)
	}
	if strings.TrimSpace(msg.Text) == "" && strings.TrimSpace(msg.HTML) == "" {
		return fmt.Errorf("smtp: content empty")
	}

	headers, body := a.buildMessage(fromAddr.String(), toAddr.String(), msg)

	addr := net.JoinHostPort(a.cfg.Host, fmt.Sprint(a.cfg.Port))
	dialer := &net.Dialer{Timeout: a.cfg.Timeout}
	tlsCfg := &tls.Config{
		ServerName:         a.cfg.Host,
		InsecureSkipVerify: a.cfg.SkipTLSVerify,
	}

	client, conn, err := a.newClient(ctx, dialer, addr, tlsCfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Quit()
		_ = conn.Close()
	}()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if a.cfg.UseStartTLS && !a.cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsCfg); err != nil {
				return fmt.Errorf("smtp: starttls failed: %w", err)
			}
		}
	}

	if !a.cfg.AuthDisabled && a.cfg.Username != "" {
		auth := gosmtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp: auth failed: %w", err)
		}
	}

	if err := client.Mail(fromAddr.Address); err != nil {
		return fmt.Errorf("smtp: mail from failed: %w", err)
	}
	if err := client.Rcpt(toAddr.Address); err != nil {
		return fmt.Errorf("smtp: rcpt to failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp: open data: %w", err)
	}
	if _, err := w.Write([]byte(headers + "\r\n\r\n" + body)); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp: write data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: close data: %w", err)
	}

	a.base.LogSuccess(a.name, msg)
	return nil
}

func (a *Adapter) newClient(ctx context.Context, dialer *net.Dialer, addr string, tlsCfg *tls.Config) (*gosmtp.Client, net.Conn, error) {
	var (
		conn net.Conn
		err  error
	)
	if a.cfg.UseTLS {
		td := &tls.Dialer{NetDialer: dialer, Config: tlsCfg}
		conn, err = td.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, nil, fmt.Errorf("smtp: tls dial failed: %w", err)
		}
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, nil, fmt.Errorf("smtp: dial failed: %w", err)
		}
	}
	client, err := gosmtp.NewClient(conn, a.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("smtp: new client failed: %w", err)
	}
	return client, conn, nil
}

// buildMessage returns the header block and body. Subjects are Q-encoded so
// emoji survive transport.
func (a *Adapter) buildMessage(from, to string, msg adapters.Message) (string, string) {
	headers := map[string]string{
		"From":         from,
		"To":           to,
		"Subject":      mime.QEncoding.Encode("utf-8", msg.Subject),
		"MIME-Version": "1.0",
		"Date":         a.now().UTC().Format(time.RFC1123Z),
	}
	for k, v := range a.cfg.Headers {
		headers[k] = v
	}
	for k, v := range msg.Headers {
		if v == "" {
			continue
		}
		headers[k] = v
	}

	textBody := msg.Text
	if strings.TrimSpace(textBody) == "" && msg.HTML != "" {
		textBody = htmlToText(msg.HTML)
	}

	if a.cfg.PlainOnly || msg.HTML == "" {
		headers["Content-Type"] = "text/plain; charset=UTF-8"
		return formatHeaders(headers), textBody
	}

	boundary := fmt.Sprintf("alt-%d", a.now().UnixNano())
	headers["Content-Type"] = fmt.Sprintf("multipart/alternative; boundary=%s", boundary)

	var sb strings.Builder
	sb.WriteString("--" + boundary + "\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	sb.WriteString(textBody + "\r\n")
	sb.WriteString("--" + boundary + "\r\n")
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	sb.WriteString(msg.HTML + "\r\n")
	sb.WriteString("--" + boundary + "--")
	return formatHeaders(headers), sb.String()
}

func formatHeaders(headers map[string]string) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, headers[k]))
	}
	return strings.Join(lines, "\r\n")
}

func htmlToText(html string) string {
	plain, err := html2text.FromString(html, html2text.Options{PrettyTables: true})
	if err == nil {
		if trimmed := strings.TrimSpace(plain); trimmed != "" {
			return trimmed
		}
	}
	return stripTags(html)
}

func stripTags(html string) string {
	var out strings.Builder
	inTag := false
	for _, r := range html {
		switch r {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				out.WriteRune(r)
			}
		}
	}
	return strings.TrimSpace(out.String())
}
