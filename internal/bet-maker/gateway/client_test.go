package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventsJSON = `[
	{"event_id":1,"coefficient":"1.20","deadline":1893456000,"status":"NEW"},
	{"event_id":2,"coefficient":"1.85","deadline":1893456000,"status":"FINISHED_WIN"}
]`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second)
}

func TestListEvents(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/events", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(eventsJSON))
	})

	evs, err := c.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, int64(1), evs[0].ID)
	assert.Equal(t, "1.20", evs[0].Coefficient.String())
}

func TestListEventsNon2xxIsSourceUnavailable(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.ListEvents(context.Background())
	var unavailable *SourceUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "line-provider", unavailable.Source)
}

func TestListEventsMalformedBodyIsSourceUnavailable(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"`))
	})

	_, err := c.ListEvents(context.Background())
	var unavailable *SourceUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestListEventsConnectionRefusedIsSourceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // derruba a fonte antes da chamada
	c := New(srv.URL, time.Second)

	_, err := c.ListEvents(context.Background())
	var unavailable *SourceUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestListEventsTimeoutIsSourceUnavailable(t *testing.T) {
	slow := make(chan struct{})
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-slow
	})
	t.Cleanup(func() { close(slow) })
	c.HTTP.Timeout = 50 * time.Millisecond

	_, err := c.ListEvents(context.Background())
	var unavailable *SourceUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestGetEvent(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/events/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"event_id":7,"coefficient":"2.50","deadline":1893456000,"status":"NEW"}`))
	})

	ev, err := c.GetEvent(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ev.ID)
}

func TestGetEvent404IsNotFoundNotUnavailable(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	_, err := c.GetEvent(context.Background(), 999)
	assert.ErrorIs(t, err, ErrEventNotFound)

	var unavailable *SourceUnavailableError
	assert.False(t, errors.As(err, &unavailable))
}

func TestExists(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/events/1" {
			_, _ = w.Write([]byte(`{"event_id":1,"coefficient":"1.20","deadline":1893456000,"status":"NEW"}`))
			return
		}
		http.Error(w, "nope", http.StatusNotFound)
	})

	ok, err := c.Exists(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	// 404 afirmativo vira false sem erro
	ok, err = c.Exists(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExistsDoesNotSwallowSourceUnavailable(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.Exists(context.Background(), 1)
	var unavailable *SourceUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}
