package stores

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"externalconfig/pkg/core"
	"externalconfig/pkg/observability/metrics"
)

const (
	// RequestTimeout bounds every HTTP store request.
	RequestTimeout = 5 * time.Second

	maxResponseBytes = 8 << 20
)

// ErrResponseTooLarge rejects bodies that would otherwise be truncated.
var ErrResponseTooLarge = fmt.Errorf("store response exceeds %d bytes", maxResponseBytes)

// HTTPStore fetches configuration with a GET request.
type HTTPStore struct {
	url         string
	headers     map[string]string
	queryParams map[string]string
	client      *http.Client
}

// NewHTTPStore returns a store for provider. The transport is instrumented so
// every fetch produces a client span.
func NewHTTPStore(provider core.HTTPProvider) *HTTPStore {
	return &HTTPStore{
		url:         provider.URL,
		headers:     provider.Headers,
		queryParams: provider.QueryParams,
		client: &http.Client{
			Timeout:   RequestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// GetConfig performs the request and maps non-success statuses onto
// HTTPStoreError kinds.
func (store *HTTPStore) GetConfig(ctx context.Context, queryParams, headers map[string]string) (string, error) {
	started := time.Now()
	body, err := store.fetch(ctx, queryParams, headers)
	metrics.RecordStoreFetch(ProviderHTTP, time.Since(started), err)
	return body, err
}

func (store *HTTPStore) fetch(ctx context.Context, queryParams, headers map[string]string) (string, error) {
	logger := log.FromContext(ctx).WithName("http-store")

	requestURL, err := store.requestURL(MergeParams(store.queryParams, queryParams))
	if err != nil {
		return "", &core.HTTPStoreError{Kind: core.HTTPStoreClientError, Body: err.Error(), Err: err}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", &core.HTTPStoreError{Kind: core.HTTPStoreClientError, Body: err.Error(), Err: err}
	}
	for name, value := range MergeParams(store.headers, headers) {
		request.Header.Set(name, value)
	}

	response, err := store.client.Do(request)
	if err != nil {
		return "", &core.HTTPStoreError{Kind: core.HTTPStoreTransportError, Err: err}
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes+1))
	if err != nil {
		return "", &core.HTTPStoreError{Kind: core.HTTPStoreTransportError, StatusCode: response.StatusCode, Err: err}
	}
	if len(payload) > maxResponseBytes {
		return "", &core.HTTPStoreError{Kind: core.HTTPStoreTransportError, StatusCode: response.StatusCode, Err: ErrResponseTooLarge}
	}
	text := string(payload)

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return text, nil
	}

	logger.V(1).Info("store responded with an error", "url", requestURL, "status", response.StatusCode, "body", text)

	kind := core.HTTPStoreServerError
	if response.StatusCode >= 400 && response.StatusCode < 500 {
		kind = core.HTTPStoreClientError
	}
	return "", &core.HTTPStoreError{Kind: kind, StatusCode: response.StatusCode, Body: text}
}

// requestURL resolves the configured URL, defaulting the scheme to http, and
// adds params on top of any query already present.
func (store *HTTPStore) requestURL(params map[string]string) (string, error) {
	raw := strings.TrimSpace(store.url)
	if raw == "" {
		return "", fmt.Errorf("empty store url")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse store url: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("store url %q has no host", store.url)
	}

	query := parsed.Query()
	for key, value := range params {
		query.Set(key, value)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
