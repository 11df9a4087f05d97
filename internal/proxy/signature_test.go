package proxy

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func digest(message string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerify(t *testing.T) {
	secret := []byte("shpss_test_secret")

	t.Run("valid signature field", func(t *testing.T) {
		params := map[string]string{
			"shop":        "demo.myshopify.com",
			"customer_id": "42",
			"timestamp":   "1700000000",
		}
		params["signature"] = digest("customer_id=42&shop=demo.myshopify.com&timestamp=1700000000", secret)

		if !Verify(params, secret) {
			t.Fatal("expected valid signature to verify")
		}
	})

	t.Run("hmac field as fallback", func(t *testing.T) {
		params := map[string]string{
			"shop": "demo.myshopify.com",
			"code": "abc123",
		}
		params["hmac"] = digest("code=abc123&shop=demo.myshopify.com", secret)

		if !Verify(params, secret) {
			t.Fatal("expected hmac field to verify")
		}
	})

	t.Run("tampered parameter flips result", func(t *testing.T) {
		params := map[string]string{
			"shop":        "demo.myshopify.com",
			"customer_id": "42",
		}
		params["signature"] = digest("customer_id=42&shop=demo.myshopify.com", secret)
		params["customer_id"] = "43"

		if Verify(params, secret) {
			t.Fatal("expected tampered params to fail")
		}
	})

	t.Run("wrong secret flips result", func(t *testing.T) {
		params := map[string]string{
			"shop": "demo.myshopify.com",
		}
		params["signature"] = digest("shop=demo.myshopify.com", secret)

		if Verify(params, []byte("some-other-secret")) {
			t.Fatal("expected wrong secret to fail")
		}
	})

	t.Run("missing signature fails closed", func(t *testing.T) {
		params := map[string]string{
			"shop": "demo.myshopify.com",
		}
		if Verify(params, secret) {
			t.Fatal("expected missing signature to fail")
		}
	})

	t.Run("length mismatch is a failure not a panic", func(t *testing.T) {
		params := map[string]string{
			"shop":      "demo.myshopify.com",
			"signature": "deadbeef",
		}
		if Verify(params, secret) {
			t.Fatal("expected short signature to fail")
		}
	})

	t.Run("empty parameter set with only a signature", func(t *testing.T) {
		params := map[string]string{
			"signature": digest("", secret),
		}
		if !Verify(params, secret) {
			t.Fatal("expected signature over empty message to verify")
		}
	})

	t.Run("uppercase hex is accepted", func(t *testing.T) {
		params := map[string]string{
			"shop": "demo.myshopify.com",
		}
		sig := digest("shop=demo.myshopify.com", secret)
		params["signature"] = toUpperHex(sig)

		if !Verify(params, secret) {
			t.Fatal("expected case-insensitive hex compare")
		}
	})
}

func TestSignRoundTrip(t *testing.T) {
	secret := []byte("another-secret")
	params := map[string]string{
		"shop":                  "demo.myshopify.com",
		"logged_in_customer_id": "7001",
		"path_prefix":           "/apps/cart-sync",
		"timestamp":             "1700000001",
	}
	params["signature"] = Sign(params, secret)

	if !Verify(params, secret) {
		t.Fatal("expected Sign output to Verify")
	}
}

func toUpperHex(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
