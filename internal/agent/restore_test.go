package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cartsync/internal/cart"
	"cartsync/internal/logger"
)

// fakeShop plays both roles the agent talks to: the storefront cart API
// and the proxied sync endpoints.
type fakeShop struct {
	mu sync.Mutex

	stored     []cart.RawLine
	restoreErr int // non-zero forces this status from /restore

	live []cart.RawLine

	cartReads int
	clears    int
	adds      []cart.RawLine
	saves     [][]cart.RawLine
	saved     chan struct{}

	failNextAdd bool

	srv *httptest.Server
}

func newFakeShop() *fakeShop {
	f := &fakeShop{saved: make(chan struct{}, 16)}

	mux := http.NewServeMux()
	mux.HandleFunc("/cart.js", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.cartReads++
		json.NewEncoder(w).Encode(map[string]any{"items": f.live})
	})
	mux.HandleFunc("/cart/clear.js", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.clears++
		f.live = nil
		fmt.Fprint(w, "{}")
	})
	mux.HandleFunc("/cart/add.js", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failNextAdd {
			f.failNextAdd = false
			http.Error(w, "backend hiccup", http.StatusBadGateway)
			return
		}
		var line cart.RawLine
		json.NewDecoder(r.Body).Decode(&line)
		f.adds = append(f.adds, line)
		f.live = append(f.live, line)
		fmt.Fprint(w, "{}")
	})
	mux.HandleFunc("/apps/cart-sync/restore", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.restoreErr != 0 {
			http.Error(w, "rejected", f.restoreErr)
			return
		}
		items := f.stored
		if items == nil {
			items = []cart.RawLine{}
		}
		json.NewEncoder(w).Encode(map[string]any{"cart": items})
	})
	mux.HandleFunc("/apps/cart-sync/save", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Cart []cart.RawLine `json:"cart"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.saves = append(f.saves, payload.Cart)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
		select {
		case f.saved <- struct{}{}:
		default:
		}
	})

	f.srv = httptest.NewServer(mux)
	return f
}

func (f *fakeShop) agent() *Agent {
	log := logger.New("error")
	a := &Agent{
		logger: log,
		saveCh: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	a.httpClient = &http.Client{
		Transport: NewTransport(http.DefaultTransport, a.ScheduleSave),
		Timeout:   5 * time.Second,
	}
	a.storefront = NewStorefrontClient(f.srv.URL, a.httpClient, log)
	a.sync = NewSyncClient(f.srv.URL, "/apps/cart-sync", "demo.myshopify.com", "42", log)
	return a
}

func TestRestoreSkipsWhenCartsAlreadyEqual(t *testing.T) {
	shop := newFakeShop()
	defer shop.srv.Close()

	shop.stored = []cart.RawLine{{VariantID: "V1", Quantity: 2}}
	shop.live = []cart.RawLine{{VariantID: "V1", Quantity: 2}}

	shop.agent().restore(context.Background())

	if shop.clears != 0 || len(shop.adds) != 0 {
		t.Fatalf("expected no mutations for equal carts, got %d clears %d adds", shop.clears, len(shop.adds))
	}
}

func TestRestoreReplacesDifferentCart(t *testing.T) {
	shop := newFakeShop()
	defer shop.srv.Close()

	shop.stored = []cart.RawLine{{VariantID: "V1", Quantity: 1}}
	shop.live = nil

	shop.agent().restore(context.Background())

	if shop.clears != 1 {
		t.Fatalf("expected exactly one clear, got %d", shop.clears)
	}
	if len(shop.adds) != 1 || shop.adds[0].VariantID != "V1" || shop.adds[0].Quantity != 1 {
		t.Fatalf("expected one add of V1 qty 1, got %+v", shop.adds)
	}
}

func TestRestoreDoesNothingWithoutStoredCart(t *testing.T) {
	shop := newFakeShop()
	defer shop.srv.Close()

	shop.live = []cart.RawLine{{VariantID: "V9", Quantity: 1}}

	shop.agent().restore(context.Background())

	if shop.cartReads != 0 || shop.clears != 0 || len(shop.adds) != 0 {
		t.Fatal("expected no storefront traffic when nothing is stored")
	}
}

func TestRestoreStaysSilentWhenNotAuthenticated(t *testing.T) {
	shop := newFakeShop()
	defer shop.srv.Close()

	shop.restoreErr = http.StatusUnauthorized
	shop.live = []cart.RawLine{{VariantID: "V9", Quantity: 1}}

	shop.agent().restore(context.Background())

	if shop.cartReads != 0 || shop.clears != 0 || len(shop.adds) != 0 {
		t.Fatal("expected no storefront traffic for a rejected restore")
	}
}

func TestRestoreRetriesFailedAddOnce(t *testing.T) {
	shop := newFakeShop()
	defer shop.srv.Close()

	shop.stored = []cart.RawLine{{VariantID: "V1", Quantity: 3}}
	shop.failNextAdd = true

	shop.agent().restore(context.Background())

	if shop.clears != 1 {
		t.Fatalf("expected one clear, got %d", shop.clears)
	}
	if len(shop.adds) != 1 || shop.adds[0].VariantID != "V1" {
		t.Fatalf("expected the retried add to land, got %+v", shop.adds)
	}
}

func TestMutationTriggersSaveRoundTrip(t *testing.T) {
	shop := newFakeShop()
	defer shop.srv.Close()

	a := shop.agent()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.wg.Add(1)
	go a.saveLoop(ctx)
	defer a.Close()

	// A theme-side mutation through the intercepted client.
	resp, err := a.Client().Post(shop.srv.URL+"/cart/add.js", "application/json",
		strings.NewReader(`{"id":"V5","quantity":1}`))
	if err != nil {
		t.Fatalf("mutation request failed: %v", err)
	}
	resp.Body.Close()

	select {
	case <-shop.saved:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a save to reach the sync endpoint")
	}

	shop.mu.Lock()
	defer shop.mu.Unlock()
	last := shop.saves[len(shop.saves)-1]
	if len(last) != 1 || last[0].VariantID != "V5" {
		t.Fatalf("expected the saved cart to hold V5, got %+v", last)
	}
}
