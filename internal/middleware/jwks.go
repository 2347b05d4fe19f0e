package middleware

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"
)

const (
	defaultJWKSTimeout         = 10 * time.Second
	defaultJWKSRefreshInterval = 5 * time.Minute
)

type jsonWebKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jsonWebKeySet struct {
	Keys []jsonWebKey `json:"keys"`
}

// JWKSClient caches the RSA signing keys published by an identity provider.
// Unknown key ids trigger at most one refetch per refresh interval.
type JWKSClient struct {
	url             string
	httpClient      *http.Client
	refreshInterval time.Duration

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	lastFetch time.Time
}

type JWKSOption func(*JWKSClient)

func WithJWKSHTTPClient(c *http.Client) JWKSOption {
	return func(j *JWKSClient) { j.httpClient = c }
}

func WithJWKSRefreshInterval(d time.Duration) JWKSOption {
	return func(j *JWKSClient) { j.refreshInterval = d }
}

func NewJWKSClient(url string, opts ...JWKSOption) *JWKSClient {
	c := &JWKSClient{
		url:             url,
		httpClient:      &http.Client{Timeout: defaultJWKSTimeout},
		refreshInterval: defaultJWKSRefreshInterval,
		keys:            make(map[string]*rsa.PublicKey),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *JWKSClient) GetKey(kid string) (*rsa.PublicKey, error) {
	return c.GetKeyContext(context.Background(), kid)
}

func (c *JWKSClient) GetKeyContext(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	stale := time.Since(c.lastFetch) > c.refreshInterval
	c.mu.RUnlock()
	if ok {
		return key, nil
	}

	// Fabricated kid values must not turn into a fetch per request.
	if !stale {
		return nil, fmt.Errorf("key with kid %q not found in JWKS", kid)
	}

	if err := c.refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh JWKS: %w", err)
	}

	c.mu.RLock()
	key, ok = c.keys[kid]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("key with kid %q not found in JWKS", kid)
	}
	return key, nil
}

func (c *JWKSClient) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build JWKS request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var set jsonWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := k.rsaPublicKey()
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed JWKS key", "kid", k.Kid, "error", err)
			continue
		}
		keys[k.Kid] = pub
	}

	c.mu.Lock()
	c.keys = keys
	c.lastFetch = time.Now()
	c.mu.Unlock()
	return nil
}

func (k jsonWebKey) rsaPublicKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	exp := new(big.Int).SetBytes(e)
	if !exp.IsInt64() || exp.Int64() < 3 {
		return nil, fmt.Errorf("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exp.Int64())}, nil
}
