package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewEvent(t *testing.T) {
	before := time.Now().Unix()
	event := NewEvent(ActionShorten, "user-123", "https://example.com").WithSlug("abc123")
	after := time.Now().Unix()

	assert.Equal(t, ActionShorten, event.Action)
	assert.Equal(t, "user-123", event.UserID)
	assert.Equal(t, "https://example.com", event.URL)
	assert.Equal(t, "abc123", event.Slug)
	assert.NotEmpty(t, event.ID)
	assert.GreaterOrEqual(t, event.Timestamp, before)
	assert.LessOrEqual(t, event.Timestamp, after)
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	a := NewEvent(ActionFollow, "", "https://a.com")
	b := NewEvent(ActionFollow, "", "https://a.com")

	assert.NotEqual(t, a.ID, b.ID)
}

func TestNewEvent_Reject(t *testing.T) {
	event := NewEvent(ActionReject, "", "javascript:alert(1)").WithReason("blocked_scheme")

	assert.Equal(t, ActionReject, event.Action)
	assert.Equal(t, "blocked_scheme", event.Reason)
	assert.Empty(t, event.Slug)
}

func TestPublisher_PublishMultipleObservers(t *testing.T) {
	pub := NewPublisher()
	mock1 := &mockObserver{}
	mock2 := &mockObserver{}
	pub.Subscribe(mock1)
	pub.Subscribe(mock2)

	event := NewEvent(ActionFollow, "user-2", "https://multi.com")
	pub.Publish(event)

	assert.Len(t, mock1.snapshot(), 1)
	assert.Len(t, mock2.snapshot(), 1)
	assert.Equal(t, event.ID, mock1.snapshot()[0].ID)
}

func TestPublisher_NilIsNoop(t *testing.T) {
	var pub *Publisher

	assert.NotPanics(t, func() { pub.Publish(NewEvent(ActionFollow, "", "https://x.com")) })
}

func TestPublisher_CloseReturnsFirstError(t *testing.T) {
	pub := NewPublisher()
	failing := &mockObserver{closeErr: errors.New("disk full")}
	ok := &mockObserver{}
	pub.Subscribe(failing)
	pub.Subscribe(ok)

	err := pub.Close()

	assert.EqualError(t, err, "disk full")
	assert.True(t, ok.closed, "остальные наблюдатели тоже закрываются")
}

// Mock observer для тестов
type mockObserver struct {
	mu       sync.Mutex
	events   []Event
	closed   bool
	closeErr error
}

func (m *mockObserver) Notify(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *mockObserver) snapshot() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func (m *mockObserver) Close() error {
	m.closed = true
	return m.closeErr
}

// === FileObserver tests ===

func TestFileObserver_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	obs, err := NewFileObserver(path, nil)
	require.NoError(t, err)

	obs.Notify(NewEvent(ActionShorten, "user-1", "https://one.com").WithSlug("one"))
	obs.Notify(NewEvent(ActionFollow, "", "https://two.com").WithSlug("two"))
	require.NoError(t, obs.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		events = append(events, e)
	}
	require.Len(t, events, 2)
	assert.Equal(t, "one", events[0].Slug)
	assert.Equal(t, ActionFollow, events[1].Action)
}

func TestFileObserver_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	obs, err := NewFileObserver(path, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			obs.Notify(NewEvent(ActionFollow, "", "https://race.com"))
		}()
	}
	wg.Wait()
	require.NoError(t, obs.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := 0
	for _, b := range content {
		if b == '\n' {
			lines++
		}
	}
	assert.Equal(t, 50, lines)
}

func TestFileObserver_InvalidPath(t *testing.T) {
	_, err := NewFileObserver("/nonexistent/path/audit.log", nil)
	assert.Error(t, err)
}

// === HTTPObserver tests ===

func TestHTTPObserver_Notify(t *testing.T) {
	var received Event
	var receivedContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	obs := NewHTTPObserver(server.URL, nil)
	event := NewEvent(ActionShorten, "user-http", "https://http-test.com").WithSlug("h1")
	obs.Notify(event)

	assert.Equal(t, "application/json", receivedContentType)
	assert.Equal(t, event.URL, received.URL)
	assert.Equal(t, event.Slug, received.Slug)
}

func TestHTTPObserver_ServerErrorIsLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	obs := NewHTTPObserver(server.URL, zap.New(core))
	obs.Notify(NewEvent(ActionFollow, "user", "https://test.com"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(http.StatusInternalServerError), logs.All()[0].ContextMap()["status"])
}

func TestHTTPObserver_ConnectionError(t *testing.T) {
	obs := NewHTTPObserver("http://localhost:99999", nil) // несуществующий порт
	// Не должно паниковать
	obs.Notify(NewEvent(ActionFollow, "user", "https://test.com"))
}

// === LogObserver ===

func TestLogObserver(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	obs := NewLogObserver(zap.New(core))

	obs.Notify(NewEvent(ActionReject, "", "http://10.0.0.1").WithReason("private_ip"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "reject", entry.Message)
	assert.Equal(t, "private_ip", entry.ContextMap()["reason"])
	assert.NoError(t, obs.Close())
}

// === Event JSON serialization ===

func TestEvent_JSONFormat(t *testing.T) {
	event := Event{
		ID:        "id-1",
		Timestamp: 1234567890,
		Action:    ActionShorten,
		UserID:    "user-json",
		URL:       "https://json.com",
		Slug:      "json",
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	expected := `{"id":"id-1","ts":1234567890,"action":"shorten","user_id":"user-json","url":"https://json.com","slug":"json"}`
	assert.JSONEq(t, expected, string(data))
}

func TestEvent_JSONOmitEmpty(t *testing.T) {
	event := Event{ID: "x", Timestamp: 1234567890, Action: ActionFollow, URL: "https://noid.com"}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "user_id")
	assert.NotContains(t, string(data), "reason")
}
