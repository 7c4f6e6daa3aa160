package security

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ppiankov/docsite/internal/ghapi"
)

// DefaultAPIBase is the public GitHub repositories endpoint root.
const DefaultAPIBase = "https://api.github.com/repos"

const alertQuery = "?state=open&per_page=100"

// Alert listing endpoints, relative to <api_base>/<repo>.
const (
	pathDependabot     = "/dependabot/alerts"
	pathCodeScanning   = "/code-scanning/alerts"
	pathSecretScanning = "/secret-scanning/alerts"
)

// Drainer drains one paginated listing.
type Drainer interface {
	Drain(ctx context.Context, url string, header http.Header) ghapi.Collection
}

// Options configure a Builder.
type Options struct {
	// APIBase overrides DefaultAPIBase, e.g. for test doubles.
	APIBase string
	// Token is attached as a bearer credential when non-empty.
	Token  string
	Logger zerolog.Logger
}

// Builder collects the three alert categories of a repository and shapes
// them into a Snapshot.
type Builder struct {
	drainer Drainer
	apiBase string
	token   string
	logger  zerolog.Logger
}

// NewBuilder creates a Builder that drains listings through d.
func NewBuilder(d Drainer, opts Options) *Builder {
	base := strings.TrimRight(opts.APIBase, "/")
	if base == "" {
		base = DefaultAPIBase
	}
	return &Builder{
		drainer: d,
		apiBase: base,
		token:   opts.Token,
		logger:  opts.Logger,
	}
}

// Build collects the snapshot for repo ("owner/name"). An empty repo
// returns EmptySnapshot without touching the network. Collection problems
// never surface as errors; each category keeps what it gathered.
func (b *Builder) Build(ctx context.Context, repo string) Snapshot {
	if repo == "" {
		b.logger.Info().Msg("no repository configured, skipping security collection")
		return EmptySnapshot()
	}

	header := b.header()
	root := b.apiBase + "/" + repo

	dependabot := b.drain(ctx, root+pathDependabot+alertQuery, header, "dependabot")
	code := b.drain(ctx, root+pathCodeScanning+alertQuery, header, "code_scanning")
	secret := b.drain(ctx, root+pathSecretScanning+alertQuery, header, "secret_scanning")

	return Snapshot{
		Severity:       CountSeverities(dependabot.Items),
		CodeScanning:   map[string]int{"open": len(code.Items)},
		SecretScanning: map[string]int{"open": len(secret.Items)},
	}
}

func (b *Builder) header() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/vnd.github+json")
	if b.token != "" {
		h.Set("Authorization", "Bearer "+b.token)
	}
	return h
}

func (b *Builder) drain(ctx context.Context, url string, header http.Header, category string) ghapi.Collection {
	col := b.drainer.Drain(ctx, url, header)
	b.logger.Info().
		Str("category", category).
		Int("items", len(col.Items)).
		Int("pages", col.Pages).
		Int("retries", col.Retries).
		Str("stop", string(col.Stop)).
		Msg("collected alerts")
	return col
}

// CountSeverities tallies vulnerability alerts per severity level. The
// advisory level label wins over the top-level one; unknown labels and
// items that are not objects are skipped.
func CountSeverities(alerts []any) SeverityCounts {
	counts := SeverityCounts{}
	for _, l := range Levels {
		counts[l] = 0
	}
	for _, a := range alerts {
		alert, ok := a.(map[string]any)
		if !ok {
			continue
		}
		if level := severityOf(alert); IsLevel(level) {
			counts[level]++
		}
	}
	return counts
}

func severityOf(alert map[string]any) string {
	level := alert["severity"]
	if advisory, ok := alert["security_advisory"].(map[string]any); ok {
		if v, set := advisory["severity"]; set && v != nil && v != "" {
			// A set advisory severity wins even when it is not a string.
			level = v
		}
	}
	s, _ := level.(string)
	return s
}
