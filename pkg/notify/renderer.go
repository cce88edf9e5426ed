package notify

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	i18n "github.com/goliatone/go-i18n"
	gotemplate "github.com/goliatone/go-template"
	"github.com/jaytaylor/html2text"
)

const defaultBodyTemplate = `<div style="font-family:sans-serif;max-width:600px">
<h2>{{ title }}</h2>
{% if details %}<p>{{ details }}</p>{% endif %}
<table cellpadding="4">
{% for row in rows %}<tr><td><strong>{{ row.label }}</strong></td><td>{{ row.value }}</td></tr>
{% endfor %}</table>
<hr>
<p style="color:#888;font-size:12px">{{ footer }}</p>
</div>`

var ErrTranslatorRequired = errors.New("notify: translator is required")

// Content is a rendered email for one locale.
type Content struct {
	Locale  string
	Subject string
	Title   string
	HTML    string
	Text    string
}

// Renderer turns notices into localized email content.
type Renderer struct {
	engine        *gotemplate.Engine
	mu            sync.Mutex
	translator    i18n.Translator
	defaultLocale string
	product       string
	body          string
}

type RendererOption func(*Renderer)

// WithProductName sets the product name used in the footer.
func WithProductName(name string) RendererOption {
	return func(r *Renderer) {
		if strings.TrimSpace(name) != "" {
			r.product = strings.TrimSpace(name)
		}
	}
}

// WithDefaultLocale sets the locale used when a recipient has none or an unknown one.
func WithDefaultLocale(locale string) RendererOption {
	return func(r *Renderer) {
		if strings.TrimSpace(locale) != "" {
			r.defaultLocale = strings.TrimSpace(locale)
		}
	}
}

// WithBodyTemplate replaces the HTML body template. It receives title,
// details, rows (label/value) and footer.
func WithBodyTemplate(tpl string) RendererOption {
	return func(r *Renderer) {
		if strings.TrimSpace(tpl) != "" {
			r.body = tpl
		}
	}
}

// NewRenderer builds a renderer backed by go-template.
func NewRenderer(translator i18n.Translator, opts ...RendererOption) (*Renderer, error) {
	if translator == nil {
		return nil, ErrTranslatorRequired
	}
	engine, err := gotemplate.NewRenderer(gotemplate.WithBaseDir("."))
	if err != nil {
		return nil, fmt.Errorf("notify: renderer config: %w", err)
	}
	r := &Renderer{
		engine:        engine,
		translator:    translator,
		defaultLocale: "en",
		product:       "Status Page",
		body:          defaultBodyTemplate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Render produces the subject and bodies of a notice in locale.
func (r *Renderer) Render(n Notice, locale string) (Content, error) {
	if err := n.Validate(); err != nil {
		return Content{}, err
	}
	locale = r.resolveLocale(locale)
	entity := strings.ToLower(strings.TrimSpace(n.EntityType))
	action := strings.ToLower(strings.TrimSpace(n.Action))

	orgName := firstNonBlank(n.OrgName, n.OrgID)
	event := r.t(locale, fmt.Sprintf("event.%s.%s", entity, action))
	subject := r.t(locale, "email.subject", Emoji(entity, action), event, orgName)
	title := r.t(locale, fmt.Sprintf("title.%s.%s", entity, action))

	rows := []map[string]any{}
	if n.EntityName != "" {
		rows = append(rows, map[string]any{"label": r.t(locale, "entity."+entity), "value": n.EntityName})
	}
	if app := n.Fields["application"]; app != "" && entity != EntityApplication {
		rows = append(rows, map[string]any{"label": r.t(locale, "email.label.app"), "value": app})
	}
	if n.Status != "" {
		rows = append(rows, map[string]any{"label": r.t(locale, "email.label.status"), "value": n.Status})
	}
	if window := n.Fields["window"]; window != "" {
		rows = append(rows, map[string]any{"label": r.t(locale, "email.label.window"), "value": window})
	}
	rows = append(rows,
		map[string]any{"label": r.t(locale, "email.label.org"), "value": orgName},
		map[string]any{"label": r.t(locale, "email.label.actor"), "value": firstNonBlank(n.ActorName, r.t(locale, "email.actor.unknown"))},
	)

	data := map[string]any{
		"title":   title,
		"details": n.Details,
		"rows":    rows,
		"footer":  r.t(locale, "email.footer", orgName, r.product),
		"locale":  locale,
	}

	r.mu.Lock()
	html, err := r.engine.RenderString(r.body, data)
	r.mu.Unlock()
	if err != nil {
		return Content{}, fmt.Errorf("notify: render body: %w", err)
	}

	text, err := html2text.FromString(html, html2text.Options{PrettyTables: true})
	if err != nil {
		return Content{}, fmt.Errorf("notify: text body: %w", err)
	}

	return Content{
		Locale:  locale,
		Subject: subject,
		Title:   title,
		HTML:    html,
		Text:    strings.TrimSpace(text),
	}, nil
}

func (r *Renderer) resolveLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if base, _, ok := strings.Cut(locale, "-"); ok {
		locale = base
	}
	if locale == "" {
		return r.defaultLocale
	}
	if _, err := r.translator.Translate(locale, "email.subject", "", "", ""); err != nil {
		return r.defaultLocale
	}
	return locale
}

// t translates key, falling back to the default locale and then to the key itself.
func (r *Renderer) t(locale, key string, args ...any) string {
	if out, err := r.translator.Translate(locale, key, args...); err == nil {
		return out
	}
	if locale != r.defaultLocale {
		if out, err := r.translator.Translate(r.defaultLocale, key, args...); err == nil {
			return out
		}
	}
	return key
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
