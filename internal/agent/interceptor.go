package agent

import (
	"net/http"
	"strings"
)

// The storefront theme mutates the cart through whatever code paths it
// likes; there is no event we can subscribe to. What every path shares is
// the HTTP client, so the interceptor sits on the transport and watches
// requests go by.
var mutationSuffixes = []string{
	"/cart/add.js",
	"/cart/update.js",
	"/cart/change.js",
	"/cart/clear.js",
}

// IsCartMutationPath reports whether a request path hits one of the cart
// mutation endpoints. Matching is on the path suffix only, so cache-busting
// or tracking query parameters appended by the theme do not hide a mutation.
func IsCartMutationPath(path string) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for _, suffix := range mutationSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// Transport wraps a RoundTripper and fires onCartMutated after every
// completed cart mutation. The response passes through untouched and the
// callback must not block; the caller never waits on a save.
type Transport struct {
	base          http.RoundTripper
	onCartMutated func()
}

func NewTransport(base http.RoundTripper, onCartMutated func()) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		base:          base,
		onCartMutated: onCartMutated,
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err == nil && IsCartMutationPath(req.URL.Path) {
		t.onCartMutated()
	}
	return resp, err
}
