package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bmoreira/bet-ledger-poc/internal/domain/event"
	"github.com/bmoreira/bet-ledger-poc/internal/domain/money"
	"github.com/bmoreira/bet-ledger-poc/internal/line-provider/repo"
)

func newTestAPI(seed ...event.Event) *httptest.Server {
	api := &API{Log: zap.NewNop(), Repo: repo.NewMemory(seed...)}
	return httptest.NewServer(api.Router())
}

func futureDeadline() int64 {
	return time.Now().Add(time.Hour).Unix()
}

func putEvent(t *testing.T, baseURL, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, baseURL+"/api/v1/events", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestPutEventCreates(t *testing.T) {
	srv := newTestAPI()
	defer srv.Close()

	body := fmt.Sprintf(`{"event_id":1,"coefficient":"1.20","deadline":%d,"status":"NEW"}`, futureDeadline())
	resp := putEvent(t, srv.URL, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := http.Get(srv.URL + "/api/v1/events/1")
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)

	var ev event.Event
	require.NoError(t, json.NewDecoder(got.Body).Decode(&ev))
	assert.Equal(t, int64(1), ev.ID)
	assert.Equal(t, "1.20", ev.Coefficient.String())
	assert.Equal(t, event.StatusNew, ev.Status)
}

func TestPutEventRejectsBadCoefficient(t *testing.T) {
	srv := newTestAPI()
	defer srv.Close()

	// exatamente duas casas decimais; "1.5" não serve
	body := fmt.Sprintf(`{"event_id":1,"coefficient":"1.5","deadline":%d,"status":"NEW"}`, futureDeadline())
	resp := putEvent(t, srv.URL, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body = fmt.Sprintf(`{"event_id":1,"coefficient":"-1.20","deadline":%d,"status":"NEW"}`, futureDeadline())
	resp = putEvent(t, srv.URL, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPutEventRejectsUnknownStatus(t *testing.T) {
	srv := newTestAPI()
	defer srv.Close()

	body := fmt.Sprintf(`{"event_id":1,"coefficient":"1.20","deadline":%d,"status":"CANCELLED"}`, futureDeadline())
	resp := putEvent(t, srv.URL, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPutNewEventRejectsPastDeadline(t *testing.T) {
	srv := newTestAPI()
	defer srv.Close()

	body := fmt.Sprintf(`{"event_id":1,"coefficient":"1.20","deadline":%d,"status":"NEW"}`, time.Now().Add(-time.Hour).Unix())
	resp := putEvent(t, srv.URL, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPutExistingEventMayFinishAfterDeadline(t *testing.T) {
	// o resultado chega depois do prazo de apostas; o upsert precisa aceitar
	past := time.Now().Add(-time.Minute).Unix()
	srv := newTestAPI(event.Event{ID: 1, Coefficient: money.MustParse("1.20"), Deadline: past, Status: event.StatusNew})
	defer srv.Close()

	body := fmt.Sprintf(`{"event_id":1,"coefficient":"1.20","deadline":%d,"status":"FINISHED_WIN"}`, past)
	resp := putEvent(t, srv.URL, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPutEventIllegalTransitionIsConflict(t *testing.T) {
	srv := newTestAPI(event.Event{ID: 1, Coefficient: money.MustParse("1.20"), Deadline: futureDeadline(), Status: event.StatusFinishedLose})
	defer srv.Close()

	body := fmt.Sprintf(`{"event_id":1,"coefficient":"1.20","deadline":%d,"status":"NEW"}`, futureDeadline())
	resp := putEvent(t, srv.URL, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestListEventsIncludesFinished(t *testing.T) {
	srv := newTestAPI(
		event.Event{ID: 1, Coefficient: money.MustParse("1.20"), Deadline: futureDeadline(), Status: event.StatusNew},
		event.Event{ID: 2, Coefficient: money.MustParse("1.85"), Deadline: futureDeadline(), Status: event.StatusFinishedWin},
	)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var evs []event.Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&evs))
	require.Len(t, evs, 2)
	assert.Equal(t, event.StatusFinishedWin, evs[1].Status)
}

func TestGetEventNotFound(t *testing.T) {
	srv := newTestAPI()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/events/99")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetEventInvalidID(t *testing.T) {
	srv := newTestAPI()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/events/abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
