package ghapi

import "net/http"

// Kind tags the outcome of a single fetch.
type Kind int

const (
	// KindSuccess carries a page of items.
	KindSuccess Kind = iota
	// KindRateLimited is a 403 or 429 answer; the same URL may be retried.
	KindRateLimited
	// KindMalformed is any answer whose body is not a JSON array.
	KindMalformed
	// KindNetworkFailure is the status-0 signal from the fetcher.
	KindNetworkFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRateLimited:
		return "rate_limited"
	case KindMalformed:
		return "malformed"
	case KindNetworkFailure:
		return "network_failure"
	default:
		return "unknown"
	}
}

// Outcome is a classified Response.
type Outcome struct {
	Kind   Kind
	Status int
	Items  []any
	// Next is the following page; empty when this was the last page.
	Next string
}

// Classify turns a raw response into an Outcome.
func Classify(resp Response, locator NextLocator) Outcome {
	switch {
	case resp.Status == http.StatusForbidden || resp.Status == http.StatusTooManyRequests:
		return Outcome{Kind: KindRateLimited, Status: resp.Status}
	case resp.Status == 0:
		return Outcome{Kind: KindNetworkFailure}
	}

	items, ok := resp.Body.([]any)
	if !ok {
		return Outcome{Kind: KindMalformed, Status: resp.Status}
	}

	out := Outcome{Kind: KindSuccess, Status: resp.Status, Items: items}
	if next, ok := locator.Next(resp); ok {
		out.Next = next
	}
	return out
}
