package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTMX_RequestDetection(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set("Hx-Request", "true")
	r.Header.Set("Hx-Boosted", "true")
	if !IsHTMX(r) {
		t.Fatal("expected IsHTMX true")
	}
	if !IsBoosted(r) {
		t.Fatal("expected IsBoosted true")
	}

	r2 := httptest.NewRequest(http.MethodGet, "/x", nil)
	if IsHTMX(r2) || IsBoosted(r2) {
		t.Fatal("expected defaults to false")
	}
}

func TestHTMX_HistoryRestore_WantsFullPage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set("Hx-Request", "true")
	if !WantsPartial(r) {
		t.Fatal("htmx request should want partial")
	}
	r.Header.Set("Hx-History-Restore-Request", "true")
	if WantsPartial(r) {
		t.Fatal("history restore should get the full page")
	}
}

func TestHTMX_TargetAndCurrentURL_Read(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	r.Header.Set("Hx-Target", "main")
	r.Header.Set("Hx-Current-Url", "http://shop.test/products/p1")
	if HXTarget(r) != "main" {
		t.Fatalf("HXTarget mismatch: %q", HXTarget(r))
	}
	if HXCurrentURL(r) != "http://shop.test/products/p1" {
		t.Fatalf("HXCurrentURL mismatch: %q", HXCurrentURL(r))
	}
}

func TestHTMX_ResponseHeaders_Setters(t *testing.T) {
	rr := httptest.NewRecorder()
	SetHXRedirect(rr, "/login")
	SetHXPushURL(rr, "/cart")
	SetHXTrigger(rr, "cartUpdated", map[string]any{"count": 2})
	res := rr.Result()
	t.Cleanup(func() { _ = res.Body.Close() })
	if got := res.Header.Get("Hx-Redirect"); got != "/login" {
		t.Fatalf("HX-Redirect: %q", got)
	}
	if got := res.Header.Get("Hx-Push-Url"); got != "/cart" {
		t.Fatalf("HX-Push-Url: %q", got)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(res.Header.Get("Hx-Trigger")), &payload); err != nil {
		t.Fatalf("unmarshal trigger: %v", err)
	}
	if _, ok := payload["cartUpdated"]; !ok {
		t.Fatalf("expected 'cartUpdated' key in HX-Trigger: %v", payload)
	}
}
