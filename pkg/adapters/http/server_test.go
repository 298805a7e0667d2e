package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/storefront/internal/runtime"
	"github.com/aretw0/storefront/internal/testutils"
	"github.com/aretw0/storefront/pkg/actions"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/cache"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler  http.Handler
	mocks    *testutils.Mocks
	store    *cache.Store
	fallback *memory.Store
	notices  *notify.Channel
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		mocks:    testutils.NewMocks(),
		store:    cache.New(),
		fallback: memory.NewStore(),
		notices:  notify.New(),
	}
	reg, err := actions.NewRegistry(actions.Deps{
		Services: ts.mocks.Services(),
		Store:    ts.store,
		Fallback: ts.fallback,
	})
	require.NoError(t, err)

	ts.handler = NewHandler(Config{
		Engine:   runtime.NewEngine(reg, ts.notices),
		Actions:  reg,
		Notices:  ts.notices,
		Entities: ts.store,
		Fallback: ts.fallback,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
	return w
}

func TestServer_CreateStreamFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.mocks.Streams.On("CreateStream", mock.Anything, "p1", domain.CreateStreamRequest{Name: "Summer"}).
		Return(domain.Stream{ID: "srv-1", Name: "Summer"}, nil).Once()

	w := ts.do(t, http.MethodPost, "/modal/open", domain.OpenRequest{
		ActionID: domain.ActionCreateStream,
		Title:    "New stream",
		Context:  map[string]any{"product_id": "p1"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var opened ModalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opened))
	assert.Equal(t, domain.ActionCreateStream, opened.Session.ActionID)
	require.NotNil(t, opened.View)
	_, ok := opened.View.Field("name")
	assert.True(t, ok)

	w = ts.do(t, http.MethodPatch, "/modal/form", map[string]any{"name": "Summer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/modal/submit?wait=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var submitted SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	assert.True(t, submitted.Dispatched)
	require.NotNil(t, submitted.Notice)
	assert.Equal(t, "Stream created!", submitted.Notice.Message)

	w = ts.do(t, http.MethodGet, "/streams", nil)
	var streams []domain.Stream
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &streams))
	require.Len(t, streams, 1)
	assert.Equal(t, "srv-1", streams[0].RemoteID)
}

func TestServer_ValidationError(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/modal/open", domain.OpenRequest{ActionID: domain.ActionDonate})
	ts.do(t, http.MethodPatch, "/modal/form", map[string]any{"fund": 999})

	w := ts.do(t, http.MethodPost, "/modal/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Amount is invalid")

	w = ts.do(t, http.MethodGet, "/notices", nil)
	assert.Contains(t, w.Body.String(), "Amount is invalid")
}

func TestServer_NoSession(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/modal/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPatch, "/modal/form", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodGet, "/modal", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"view"`)
}

func TestServer_UnknownFieldAndContact(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/modal/open", domain.OpenRequest{ActionID: domain.ActionContact})

	w := ts.do(t, http.MethodPatch, "/modal/form", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(t, http.MethodPost, "/modal/submit", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dispatched":false`)

	w = ts.do(t, http.MethodPost, "/modal/close", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestServer_EditFormIsAllOrNothing(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/modal/open", domain.OpenRequest{ActionID: domain.ActionCreateStream})

	w := ts.do(t, http.MethodPatch, "/modal/form", map[string]any{"name": "Summer", "zzz": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(t, http.MethodGet, "/modal", nil)
	var modal ModalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &modal))
	assert.NotContains(t, modal.Session.Form, "name", "a rejected batch writes nothing")
}

func TestServer_FallbackAndNotices(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.fallback.Append(context.Background(), domain.Attempt{
		ID: "a1", Kind: domain.AttemptComment, Payload: []byte(`{"rating":4}`),
	}))

	w := ts.do(t, http.MethodGet, "/fallback/comment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"a1"`)

	n := ts.notices.Info("hello")
	w = ts.do(t, http.MethodDelete, "/notices/"+n.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodDelete, "/notices/"+n.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/user", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents_Notices(t *testing.T) {
	ts := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ts.handler.ServeHTTP(wSub, reqSub)
	}()

	time.Sleep(100 * time.Millisecond) // Wait for subscription to register
	ts.notices.Success("Copied")

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.True(t, strings.Contains(output, "event: ping"), "Expected initial ping")
	assert.Contains(t, output, `"message":"Copied"`)
}
