package schema_registry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
)

// MockClient is an in-memory Registry for tests and local development.
//
// Like the real registry, an identical schema gets the same id across
// subjects and re-registering a schema under a subject is a no-op.
// MockClient is safe for concurrent use.
type MockClient struct {
	mu sync.RWMutex

	nextID     int
	schemas    map[int]mockSchema
	idBySchema map[string]int
	subjects   map[string][]int

	registerCalls int
	lookupCalls   int
	fetchCalls    int
}

type mockSchema struct {
	schema     string
	schemaType string
}

var _ Registry = (*MockClient)(nil)

var mockScopes = struct {
	sync.Mutex
	clients map[string]*MockClient
}{clients: make(map[string]*MockClient)}

// NewMockClient returns an empty, unscoped in-memory registry.
func NewMockClient() *MockClient {
	return &MockClient{
		nextID:     1,
		schemas:    make(map[int]mockSchema),
		idBySchema: make(map[string]int),
		subjects:   make(map[string][]int),
	}
}

// MockClientForScope returns the in-memory registry registered under scope,
// creating it on first use.
func MockClientForScope(scope string) *MockClient {
	mockScopes.Lock()
	defer mockScopes.Unlock()

	client, ok := mockScopes.clients[scope]
	if !ok {
		client = NewMockClient()
		mockScopes.clients[scope] = client
	}
	return client
}

// DropMockScope forgets the in-memory registry for scope.
func DropMockScope(scope string) {
	mockScopes.Lock()
	defer mockScopes.Unlock()
	delete(mockScopes.clients, scope)
}

// GetSchemaByID returns the schema registered under id.
func (m *MockClient) GetSchemaByID(_ context.Context, id int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls++

	s, ok := m.schemas[id]
	if !ok {
		return "", &RestError{StatusCode: http.StatusNotFound, ErrorCode: ErrorCodeSchemaNotFound, Message: "Schema not found"}
	}
	return s.schema, nil
}

// GetLatestSchema returns the most recently registered version for subject.
func (m *MockClient) GetLatestSchema(_ context.Context, subject string) (*Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	versions := m.subjects[subject]
	if len(versions) == 0 {
		return nil, &RestError{StatusCode: http.StatusNotFound, ErrorCode: ErrorCodeSubjectNotFound, Message: "Subject '" + subject + "' not found."}
	}
	id := versions[len(versions)-1]
	s := m.schemas[id]
	return &Metadata{ID: id, Version: len(versions), Schema: s.schema, Subject: subject, Type: s.schemaType}, nil
}

// RegisterSchema registers schema under subject and returns its id.
func (m *MockClient) RegisterSchema(_ context.Context, subject, schema, schemaType string) (int, error) {
	key, err := mockKey(schema, schemaType)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.registerCalls++

	id, known := m.idBySchema[key]
	if !known {
		id = m.nextID
		m.nextID++
		m.idBySchema[key] = id
		m.schemas[id] = mockSchema{schema: schema, schemaType: schemaType}
	}
	for _, existing := range m.subjects[subject] {
		if existing == id {
			return id, nil
		}
	}
	m.subjects[subject] = append(m.subjects[subject], id)
	return id, nil
}

// LookupSchemaID returns the id of schema if it is registered under subject.
func (m *MockClient) LookupSchemaID(_ context.Context, subject, schema, schemaType string) (int, error) {
	key, err := mockKey(schema, schemaType)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupCalls++

	versions, ok := m.subjects[subject]
	if !ok {
		return 0, &RestError{StatusCode: http.StatusNotFound, ErrorCode: ErrorCodeSubjectNotFound, Message: "Subject '" + subject + "' not found."}
	}
	if id, known := m.idBySchema[key]; known {
		for _, existing := range versions {
			if existing == id {
				return id, nil
			}
		}
	}
	return 0, &RestError{StatusCode: http.StatusNotFound, ErrorCode: ErrorCodeSchemaNotFound, Message: "Schema not found"}
}

// CheckCompatibility always accepts; the mock does not evaluate compatibility.
func (m *MockClient) CheckCompatibility(_ context.Context, _, schema, schemaType string) (bool, error) {
	if _, err := mockKey(schema, schemaType); err != nil {
		return false, err
	}
	return true, nil
}

// RegisterCalls returns how many times RegisterSchema was called.
func (m *MockClient) RegisterCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registerCalls
}

// LookupCalls returns how many times LookupSchemaID was called.
func (m *MockClient) LookupCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookupCalls
}

// FetchCalls returns how many times GetSchemaByID was called.
func (m *MockClient) FetchCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fetchCalls
}

// mockKey normalizes whitespace in JSON schemas so formatting differences do
// not produce distinct ids. Bare primitive names ("string") are not JSON
// documents and are kept as is.
func mockKey(schema, schemaType string) (string, error) {
	if schemaType == "" {
		schemaType = SchemaTypeAvro
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(schema)); err != nil {
		if json.Valid([]byte(`"` + schema + `"`)) {
			return schemaType + ":" + schema, nil
		}
		return "", &RestError{StatusCode: http.StatusUnprocessableEntity, ErrorCode: ErrorCodeInvalidSchema, Message: "Invalid schema: " + err.Error()}
	}
	return schemaType + ":" + buf.String(), nil
}
