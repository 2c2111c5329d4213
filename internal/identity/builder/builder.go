// Package builder turns the flat identity configuration into an immutable
// registry. Malformed fields never abort a build; they are dropped and
// reported as diagnostics.
package builder

import (
	"context"
	"io"
	"log/slog"

	"webfinger/internal/identity/models"
	"webfinger/internal/identity/source"
	"webfinger/internal/identity/validation"
)

// ResourcePrefix is prepended to every configured email to form its key.
const ResourcePrefix = "acct:"

// Fields named in diagnostics and metrics.
const (
	FieldEmail = "email"
	FieldAlias = "alias"
	FieldLink  = "link"
)

// Diagnostic describes one dropped configuration entry. Link is zero unless
// Field is FieldLink.
type Diagnostic struct {
	Field  string
	User   int
	Link   int
	Key    string
	Value  string
	Reason string
}

// Report collects the diagnostics of one build.
type Report struct {
	Diagnostics []Diagnostic
}

// Dropped counts diagnostics for field.
func (r Report) Dropped(field string) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Field == field {
			n++
		}
	}
	return n
}

// Log writes one line per diagnostic. Dropped emails and links are warnings;
// aliases are filtered silently and only show up at debug level.
func (r Report) Log(logger *slog.Logger) {
	for _, d := range r.Diagnostics {
		level := slog.LevelWarn
		msg := "invalid email, identity skipped"
		switch d.Field {
		case FieldAlias:
			level = slog.LevelDebug
			msg = "invalid alias dropped"
		case FieldLink:
			msg = "invalid link href, link skipped"
		}
		logger.Log(context.Background(), level, msg, "key", d.Key, "value", d.Value, "reason", d.Reason)
	}
}

// FieldRecorder receives one call per dropped field.
type FieldRecorder interface {
	IncrementFieldsDropped(field string)
}

type options struct {
	logger   *slog.Logger
	recorder FieldRecorder
}

// Option configures Build.
type Option func(*options)

// WithLogger logs the report as the build finishes.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRecorder counts dropped fields, typically into Prometheus.
func WithRecorder(r FieldRecorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// Build constructs the registry from kv. It cannot fail; the worst case is an
// empty registry with a report explaining why.
func Build(kv source.KeyValues, opts ...Option) (*models.Registry, Report) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		report  Report
		records []models.DiscoveryRecord
	)
	for _, user := range kv.Blocks() {
		rec, diags, ok := buildRecord(user)
		report.Diagnostics = append(report.Diagnostics, diags...)
		if ok {
			records = append(records, rec)
		}
	}

	report.Log(o.logger)
	if o.recorder != nil {
		for _, d := range report.Diagnostics {
			o.recorder.IncrementFieldsDropped(d.Field)
		}
	}

	return models.NewRegistry(records), report
}

func buildRecord(user source.UserBlock) (models.DiscoveryRecord, []Diagnostic, bool) {
	if v := validation.Email(user.Email); !v.Valid {
		return models.DiscoveryRecord{}, []Diagnostic{{
			Field:  FieldEmail,
			User:   user.Index,
			Key:    source.EmailKey(user.Index),
			Value:  user.Email,
			Reason: v.Reason,
		}}, false
	}

	var diags []Diagnostic
	rec := models.DiscoveryRecord{
		Subject: ResourcePrefix + user.Email,
		Aliases: []string{},
		Links:   []models.LinkRecord{},
	}

	for _, raw := range user.Aliases {
		alias := validation.TrimURI(raw)
		if v := validation.AbsoluteURI(alias); !v.Valid {
			diags = append(diags, Diagnostic{
				Field:  FieldAlias,
				User:   user.Index,
				Key:    source.AliasesKey(user.Index),
				Value:  raw,
				Reason: v.Reason,
			})
			continue
		}
		rec.Aliases = append(rec.Aliases, alias)
	}

	for _, link := range user.Links {
		href := validation.TrimURI(link.Href)
		if v := validation.AbsoluteURI(href); !v.Valid {
			diags = append(diags, Diagnostic{
				Field:  FieldLink,
				User:   user.Index,
				Link:   link.Index,
				Key:    source.HrefKey(user.Index, link.Index),
				Value:  link.Href,
				Reason: v.Reason,
			})
			continue
		}
		rec.Links = append(rec.Links, models.LinkRecord{Rel: link.Rel, Href: href, Type: link.Type})
	}

	return rec, diags, true
}
