package ghapi

import "regexp"

// NextLocator extracts the next page URL from a response.
type NextLocator interface {
	Next(resp Response) (string, bool)
}

var nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// LinkHeader reads RFC 8288 style Link headers as sent by GitHub:
//
//	<https://api.github.com/...&page=2>; rel="next", <...>; rel="last"
type LinkHeader struct{}

// Next returns the rel="next" target, if any.
func (LinkHeader) Next(resp Response) (string, bool) {
	m := nextLinkPattern.FindStringSubmatch(resp.Link)
	if m == nil {
		return "", false
	}
	return m[1], true
}
