package grocery

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseListingURI validates a user supplied listing page uri, it must be an
// absolute http(s) url with a host.
func ParseListingURI(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrMalformedURI, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w %q: scheme must be http or https", ErrMalformedURI, raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w %q: missing host", ErrMalformedURI, raw)
	}
	return u, nil
}
