package schema_registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/logger"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
)

//go:generate mockgen -source=client.go -destination=mock_registry.go -package=schema_registry

const contentType = "application/vnd.schemaregistry.v1+json"

// Registry provides an interface for interacting with a Confluent Schema Registry.
//
// This interface is implemented by the concrete *Client and *MockClient types.
// Implementations do not cache; callers that need caching (such as the serde
// gateway) own their caches.
type Registry interface {
	// GetSchemaByID retrieves a schema by its ID.
	GetSchemaByID(ctx context.Context, id int) (string, error)

	// GetLatestSchema retrieves the latest version of a schema for a subject.
	GetLatestSchema(ctx context.Context, subject string) (*Metadata, error)

	// RegisterSchema registers a schema under a subject and returns its ID.
	// Registering an already registered schema returns the existing ID.
	RegisterSchema(ctx context.Context, subject, schema, schemaType string) (int, error)

	// LookupSchemaID returns the ID of a schema already registered under a
	// subject, without registering it.
	LookupSchemaID(ctx context.Context, subject, schema, schemaType string) (int, error)

	// CheckCompatibility checks if a schema is compatible with the latest version.
	CheckCompatibility(ctx context.Context, subject, schema, schemaType string) (bool, error)
}

// Metadata contains metadata about a registered schema
type Metadata struct {
	ID      int    `json:"id"`
	Version int    `json:"version"`
	Schema  string `json:"schema"`
	Subject string `json:"subject"`
	Type    string `json:"schemaType,omitempty"`
}

// Client is the default implementation of Registry
// that communicates with Confluent Schema Registry over HTTP.
type Client struct {
	urls       []string
	httpClient *http.Client

	// Authentication
	username string
	password string

	maxRetries      int
	retryBackoff    time.Duration
	maxRetryBackoff time.Duration

	logger   Logger
	observer observability.Observer
}

var _ Registry = (*Client)(nil)

// New returns the Registry selected by config: the shared in-memory registry
// for "mock://<scope>" URLs, an HTTP *Client otherwise.
func New(config Config) (Registry, error) {
	if scope, ok := strings.CutPrefix(strings.TrimSpace(config.URL), MockURLPrefix); ok {
		return MockClientForScope(scope), nil
	}
	return NewClient(config)
}

// NewClient creates a new schema registry client
// Returns the concrete *Client type.
func NewClient(config Config) (*Client, error) {
	urls := splitURLs(config.URL)
	if len(urls) == 0 {
		return nil, ErrMissingURL
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = DefaultRetryBackoff
	}
	if config.MaxRetryBackoff == 0 {
		config.MaxRetryBackoff = DefaultMaxRetryBackoff
	}
	if config.Logger == nil {
		config.Logger = logger.NewNopLogger()
	}

	return &Client{
		urls: urls,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		username:        config.Username,
		password:        config.Password,
		maxRetries:      config.MaxRetries,
		retryBackoff:    config.RetryBackoff,
		maxRetryBackoff: config.MaxRetryBackoff,
		logger:          config.Logger,
	}, nil
}

// WithObserver attaches an observer that is notified of every registry call.
// It returns the client for chaining.
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// GetSchemaByID retrieves a schema from the registry by its ID
func (c *Client) GetSchemaByID(ctx context.Context, id int) (string, error) {
	start := time.Now()
	var result struct {
		Schema string `json:"schema"`
	}

	path := fmt.Sprintf("/schemas/ids/%d", id)
	err := c.do(ctx, requestSpec{method: http.MethodGet, path: path, idempotent: true}, &result)
	c.observeOperation("get_schema_by_id", "", fmt.Sprint(id), time.Since(start), err, int64(len(result.Schema)))
	if err != nil {
		return "", fmt.Errorf("failed to fetch schema %d: %w", id, err)
	}
	return result.Schema, nil
}

// GetLatestSchema retrieves the latest version of a schema for a subject
func (c *Client) GetLatestSchema(ctx context.Context, subject string) (*Metadata, error) {
	start := time.Now()
	var metadata Metadata

	path := fmt.Sprintf("/subjects/%s/versions/latest", url.PathEscape(subject))
	err := c.do(ctx, requestSpec{method: http.MethodGet, path: path, idempotent: true}, &metadata)
	c.observeOperation("get_latest_schema", subject, "", time.Since(start), err, int64(len(metadata.Schema)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest schema for subject %s: %w", subject, err)
	}

	metadata.Subject = subject
	return &metadata, nil
}

// RegisterSchema registers a new schema with the schema registry.
//
// Registration changes registry state, so it is only retried when the request
// never reached any server.
func (c *Client) RegisterSchema(ctx context.Context, subject, schema, schemaType string) (int, error) {
	start := time.Now()
	body, err := schemaPayload(schema, schemaType)
	if err != nil {
		return 0, err
	}

	var result struct {
		ID int `json:"id"`
	}
	path := fmt.Sprintf("/subjects/%s/versions", url.PathEscape(subject))
	err = c.do(ctx, requestSpec{method: http.MethodPost, path: path, body: body}, &result)
	c.observeOperation("register_schema", subject, "", time.Since(start), err, int64(len(schema)))
	if err != nil {
		return 0, fmt.Errorf("failed to register schema for subject %s: %w", subject, err)
	}
	return result.ID, nil
}

// LookupSchemaID returns the ID under which schema is registered for subject.
// A schema that was never registered yields a *RestError with status 404.
func (c *Client) LookupSchemaID(ctx context.Context, subject, schema, schemaType string) (int, error) {
	start := time.Now()
	body, err := schemaPayload(schema, schemaType)
	if err != nil {
		return 0, err
	}

	var result Metadata
	path := fmt.Sprintf("/subjects/%s", url.PathEscape(subject))
	err = c.do(ctx, requestSpec{method: http.MethodPost, path: path, body: body, idempotent: true}, &result)
	c.observeOperation("lookup_schema_id", subject, "", time.Since(start), err, int64(len(schema)))
	if err != nil {
		return 0, fmt.Errorf("failed to look up schema for subject %s: %w", subject, err)
	}
	return result.ID, nil
}

// CheckCompatibility checks if a schema is compatible with the existing schema for a subject
func (c *Client) CheckCompatibility(ctx context.Context, subject, schema, schemaType string) (bool, error) {
	start := time.Now()
	body, err := schemaPayload(schema, schemaType)
	if err != nil {
		return false, err
	}

	var result struct {
		IsCompatible bool `json:"is_compatible"`
	}
	path := fmt.Sprintf("/compatibility/subjects/%s/versions/latest", url.PathEscape(subject))
	err = c.do(ctx, requestSpec{method: http.MethodPost, path: path, body: body, idempotent: true}, &result)
	c.observeOperation("check_compatibility", subject, "", time.Since(start), err, int64(len(schema)))
	if err != nil {
		return false, fmt.Errorf("failed to check compatibility for subject %s: %w", subject, err)
	}
	return result.IsCompatible, nil
}

// requestSpec describes one logical registry call.
type requestSpec struct {
	method string
	path   string
	body   []byte

	// idempotent calls may be retried after any transient failure.
	idempotent bool
}

// roundTrip performs spec against a single endpoint and decodes a 200
// response into out.
func (c *Client) roundTrip(ctx context.Context, baseURL string, spec requestSpec, out interface{}) error {
	var body io.Reader
	if spec.body != nil {
		body = bytes.NewReader(spec.body)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, baseURL+spec.path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", contentType)
	if spec.body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseRestError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func parseRestError(resp *http.Response) error {
	respBody, _ := io.ReadAll(resp.Body)
	restErr := &RestError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(respBody, restErr); err != nil || restErr.Message == "" {
		restErr.Message = strings.TrimSpace(string(respBody))
	}
	if restErr.ErrorCode == 0 {
		restErr.ErrorCode = resp.StatusCode
	}
	return restErr
}

func schemaPayload(schema, schemaType string) ([]byte, error) {
	payload := map[string]interface{}{
		"schema": schema,
	}
	if schemaType != "" && schemaType != SchemaTypeAvro {
		payload["schemaType"] = schemaType
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return body, nil
}

func splitURLs(raw string) []string {
	var urls []string
	for _, u := range strings.Split(raw, ",") {
		u = strings.TrimRight(strings.TrimSpace(u), "/")
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
