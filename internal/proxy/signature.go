package proxy

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Shopify sends the proxy signature under "signature" for app proxy
// requests and under "hmac" for OAuth callbacks. Both cover the same
// canonical message.
var signatureFields = []string{"signature", "hmac"}

// Verify checks that params were signed by the shared app secret.
//
// The signed message is every query parameter except the signature fields
// themselves, sorted by key and joined as "key=value" pairs with "&".
// A missing signature fails closed rather than erroring: this check gates
// every save and restore, and an unsigned request is simply untrusted.
func Verify(params map[string]string, secret []byte) bool {
	var supplied string
	for _, field := range signatureFields {
		if v, ok := params[field]; ok && v != "" {
			supplied = v
			break
		}
	}
	if supplied == "" {
		return false
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "signature" || k == "hmac" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	message := strings.Join(parts, "&")

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	expected := hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal is constant-time and treats a length mismatch as a plain
	// mismatch, never a panic. A direct string compare here would leak
	// timing.
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(supplied)))
}

// Sign produces the hex digest for params the same way Verify expects it.
// Used by tests and by local tooling that has to emulate the proxy.
func Sign(params map[string]string, secret []byte) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "signature" || k == "hmac" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}
