package ghapi

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxRetries is the number of consecutive rate-limited answers
	// tolerated before a collection gives up.
	DefaultMaxRetries = 5
	// DefaultDeadline is the wall-clock budget of one collection.
	DefaultDeadline = 60 * time.Second
	// DefaultInitialBackoff is the first wait after a rate-limited answer.
	DefaultInitialBackoff = 1 * time.Second
	// DefaultMaxBackoff caps the doubling wait.
	DefaultMaxBackoff = 10 * time.Second
)

// StopReason records why a collection ended.
type StopReason string

const (
	StopComplete         StopReason = "complete"
	StopRetriesExhausted StopReason = "retries_exhausted"
	StopDeadline         StopReason = "deadline"
	StopMalformed        StopReason = "malformed"
	StopNetworkFailure   StopReason = "network_failure"
)

// Collection is everything a drain managed to obtain. Partial results are
// normal: Stop tells how the walk ended.
type Collection struct {
	Items   []any
	Pages   int
	Retries int
	Stop    StopReason
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configure a Paginator. Zero durations fall back to the defaults;
// MaxRetries is used as given, so start from DefaultOptions.
type Options struct {
	MaxRetries     int
	Deadline       time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Locator        NextLocator
	Sleep          SleepFunc
	Now            func() time.Time
	Logger         zerolog.Logger
}

// DefaultOptions returns the stock retry and deadline policy.
func DefaultOptions() Options {
	return Options{
		MaxRetries:     DefaultMaxRetries,
		Deadline:       DefaultDeadline,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
		Logger:         zerolog.Nop(),
	}
}

// Paginator follows next-page links until the listing is drained, the
// retry ceiling is hit or the deadline passes.
type Paginator struct {
	fetcher        Fetcher
	locator        NextLocator
	maxRetries     int
	deadline       time.Duration
	initialBackoff time.Duration
	maxBackoff     time.Duration
	sleep          SleepFunc
	now            func() time.Time
	logger         zerolog.Logger
}

// NewPaginator creates a Paginator on top of fetcher.
func NewPaginator(fetcher Fetcher, opts Options) *Paginator {
	p := &Paginator{
		fetcher:        fetcher,
		locator:        opts.Locator,
		maxRetries:     opts.MaxRetries,
		deadline:       opts.Deadline,
		initialBackoff: opts.InitialBackoff,
		maxBackoff:     opts.MaxBackoff,
		sleep:          opts.Sleep,
		now:            opts.Now,
		logger:         opts.Logger,
	}
	if p.locator == nil {
		p.locator = LinkHeader{}
	}
	if p.maxRetries < 0 {
		p.maxRetries = 0
	}
	if p.deadline <= 0 {
		p.deadline = DefaultDeadline
	}
	if p.initialBackoff <= 0 {
		p.initialBackoff = DefaultInitialBackoff
	}
	if p.maxBackoff <= 0 {
		p.maxBackoff = DefaultMaxBackoff
	}
	if p.sleep == nil {
		p.sleep = sleepContext
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Drain collects every item reachable from url. It never fails: network
// trouble, malformed pages and throttling all end the walk early with
// whatever was gathered so far.
func (p *Paginator) Drain(ctx context.Context, url string, header http.Header) Collection {
	start := p.now()
	ctx, cancel := context.WithTimeout(ctx, p.deadline)
	defer cancel()

	log := p.logger.With().Str("collection", url).Logger()
	bo := p.newBackOff()
	col := Collection{Items: make([]any, 0)}
	attempts := 0
	next := url

	for {
		if p.now().Sub(start) > p.deadline {
			log.Warn().Dur("deadline", p.deadline).Int("items", len(col.Items)).Msg("pagination deadline reached")
			col.Stop = StopDeadline
			return col
		}

		out := Classify(p.fetcher.Get(ctx, next, header), p.locator)

		switch out.Kind {
		case KindRateLimited:
			attempts++
			if attempts > p.maxRetries {
				log.Warn().Int("max_retries", p.maxRetries).Int("status", out.Status).Msg("exceeded retry limit")
				col.Stop = StopRetriesExhausted
				return col
			}
			wait := bo.NextBackOff()
			log.Info().Int("status", out.Status).Int("attempt", attempts).Dur("wait", wait).Msg("rate limited, backing off")
			col.Retries++
			if err := p.sleep(ctx, wait); err != nil {
				log.Warn().Dur("deadline", p.deadline).Msg("pagination deadline reached during backoff")
				col.Stop = StopDeadline
				return col
			}

		case KindSuccess:
			attempts = 0
			col.Items = append(col.Items, out.Items...)
			col.Pages++
			if out.Next == "" {
				col.Stop = StopComplete
				return col
			}
			next = out.Next

		case KindNetworkFailure:
			if ctx.Err() != nil {
				log.Warn().Dur("deadline", p.deadline).Msg("pagination deadline reached during fetch")
				col.Stop = StopDeadline
				return col
			}
			log.Info().Str("url", next).Msg("fetch failed, keeping partial results")
			col.Stop = StopNetworkFailure
			return col

		default:
			log.Info().Str("url", next).Int("status", out.Status).Msg("unexpected payload, keeping partial results")
			col.Stop = StopMalformed
			return col
		}
	}
}

// newBackOff builds the per-collection doubling schedule. Every drain owns
// its own schedule; a successful page does not rewind it.
func (p *Paginator) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initialBackoff
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = p.maxBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
