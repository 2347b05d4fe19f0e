package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaekwang-park/todolist/internal/middleware"
)

// helper: generate RSA key pair and return JWKS JSON + the private key
func generateTestJWKS(t *testing.T, kid string) ([]byte, *rsa.PrivateKey) {
	t.Helper()

	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}

	jwks := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": kid,
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(privKey.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(privKey.E)).Bytes()),
			},
		},
	}

	data, err := json.Marshal(jwks)
	if err != nil {
		t.Fatalf("failed to marshal JWKS: %v", err)
	}

	return data, privKey
}

func TestJWKSClient_FetchKey(t *testing.T) {
	jwksData, privKey := generateTestJWKS(t, "test-kid-1")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(jwksData)
	}))
	defer server.Close()

	client := middleware.NewJWKSClient(server.URL)

	pubKey, err := client.GetKey("test-kid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pubKey.N.Cmp(privKey.N) != 0 {
		t.Error("public key N does not match private key N")
	}
}

func TestJWKSClient_KeyNotFound(t *testing.T) {
	jwksData, _ := generateTestJWKS(t, "test-kid-1")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(jwksData)
	}))
	defer server.Close()

	client := middleware.NewJWKSClient(server.URL)

	_, err := client.GetKey("nonexistent-kid")
	if err == nil {
		t.Fatal("expected error for missing kid, got nil")
	}
}

func TestJWKSClient_CachesKeys(t *testing.T) {
	jwksData, _ := generateTestJWKS(t, "cached-kid")

	var callCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write(jwksData)
	}))
	defer server.Close()

	client := middleware.NewJWKSClient(server.URL)

	_, err := client.GetKey("cached-kid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = client.GetKey("cached-kid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if callCount.Load() != 1 {
		t.Errorf("expected 1 fetch call, got %d", callCount.Load())
	}
}

func TestJWKSClient_RateLimitRefreshOnMissingKid(t *testing.T) {
	jwksData, _ := generateTestJWKS(t, "kid-v1")

	var callCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write(jwksData)
	}))
	defer server.Close()

	client := middleware.NewJWKSClient(server.URL)

	_, _ = client.GetKey("kid-v1")

	_, err := client.GetKey("kid-v2")
	if err == nil {
		t.Fatal("expected error for missing kid")
	}

	if callCount.Load() != 1 {
		t.Errorf("expected 1 fetch call (rate limited), got %d", callCount.Load())
	}
}

func TestJWKSClient_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := middleware.NewJWKSClient(server.URL)

	_, err := client.GetKey("any-kid")
	if err == nil {
		t.Fatal("expected error on server error, got nil")
	}
}

func TestJWKSClient_RefreshesAfterInterval(t *testing.T) {
	oldData, _ := generateTestJWKS(t, "kid-v1")
	newData, _ := generateTestJWKS(t, "kid-v2")

	var callCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if callCount.Add(1) == 1 {
			w.Write(oldData)
			return
		}
		w.Write(newData)
	}))
	defer server.Close()

	client := middleware.NewJWKSClient(server.URL, middleware.WithJWKSRefreshInterval(time.Millisecond))

	if _, err := client.GetKey("kid-v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := client.GetKey("kid-v2"); err != nil {
		t.Fatalf("expected rotated key after refresh interval: %v", err)
	}
	if callCount.Load() != 2 {
		t.Errorf("expected 2 fetch calls, got %d", callCount.Load())
	}
}

func TestJWKSClient_SkipsNonRSAKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"keys":[{"kty":"EC","kid":"ec-1","crv":"P-256","x":"AA","y":"AA"}]}`))
	}))
	defer server.Close()

	client := middleware.NewJWKSClient(server.URL)
	if _, err := client.GetKey("ec-1"); err == nil {
		t.Fatal("expected EC key to be ignored")
	}
}
