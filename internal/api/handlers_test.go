package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevare.io/sitegen/internal/logger"
	"elevare.io/sitegen/internal/metrics"
	"elevare.io/sitegen/internal/session"
	"elevare.io/sitegen/internal/upstream"
)

type stubCollaborator struct {
	biz          *upstream.Business
	bizErr       error
	generation   *upstream.GenerationResult
	customizeRes *upstream.CustomizeResult
	customizeErr error
	quota        *upstream.QuotaStatus
	quotaErr     error
}

func (s *stubCollaborator) GetBusiness(_ context.Context, _ string) (*upstream.Business, error) {
	return s.biz, s.bizErr
}

func (s *stubCollaborator) GenerateWebsite(_ context.Context, _ string) (*upstream.GenerationResult, error) {
	return s.generation, nil
}

func (s *stubCollaborator) Customize(_ context.Context, _, _ string) (*upstream.CustomizeResult, error) {
	return s.customizeRes, s.customizeErr
}

func (s *stubCollaborator) RemainingMessages(_ context.Context, _ string) (*upstream.QuotaStatus, error) {
	return s.quota, s.quotaErr
}

func newTestServer(t *testing.T, c Collaborator) *httptest.Server {
	t.Helper()
	log := logger.NewTestLogger(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	sessions := session.NewManager(c, time.Millisecond, log)
	t.Cleanup(sessions.CloseAll)

	h := NewAPIHandler(c, sessions, m, log)
	srv := httptest.NewServer(NewRouter(h, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	t.Cleanup(srv.Close)
	return srv
}

func TestRenderHandler(t *testing.T) {
	c := &stubCollaborator{biz: &upstream.Business{
		ID:   "biz-1",
		Name: "Mario's Pizzeria",
		GeneratedSource: `import React from 'react';
export default function BusinessWebsite() {
  return <div>Welcome</div>;
}`,
	}}
	srv := newTestServer(t, c)

	resp, err := http.Get(srv.URL + "/render/biz-1")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	body := readBody(t, resp)
	assert.Contains(t, body, "<title>Mario&#39;s Pizzeria - Preview</title>")
	assert.Contains(t, body, "function BusinessWebsite()")
	assert.NotContains(t, body, "export default")
	assert.NotContains(t, body, "from 'react'")
	assert.Contains(t, body, "root.render(React.createElement(BusinessWebsite))")
}

func TestRenderHandlerArbitraryComponentName(t *testing.T) {
	c := &stubCollaborator{biz: &upstream.Business{
		ID:              "52",
		Name:            "Acme",
		GeneratedSource: "export default function X(){return <div>Hi</div>}",
	}}
	srv := newTestServer(t, c)

	resp, err := http.Get(srv.URL + "/render/52")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "Acme")
	assert.Contains(t, body, "function X(){return <div>Hi</div>}")
	assert.NotContains(t, body, "export default")
}

func TestRenderHandlerMissingBusiness(t *testing.T) {
	srv := newTestServer(t, &stubCollaborator{bizErr: upstream.ErrNotFound})

	resp, err := http.Get(srv.URL + "/render/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRenderHandlerEmptySourceIs404(t *testing.T) {
	c := &stubCollaborator{biz: &upstream.Business{ID: "biz-1", Name: "Acme", GeneratedSource: ""}}
	srv := newTestServer(t, c)

	resp, err := http.Get(srv.URL + "/render/biz-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRenderHandlerCollaboratorFailure(t *testing.T) {
	srv := newTestServer(t, &stubCollaborator{bizErr: errors.New("connection refused to 10.0.0.7")})

	resp, err := http.Get(srv.URL + "/render/biz-1")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := readBody(t, resp)
	assert.NotContains(t, body, "10.0.0.7", "internal detail must not leak")
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubCollaborator{})

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRemainingMessagesHandler(t *testing.T) {
	srv := newTestServer(t, &stubCollaborator{quota: &upstream.QuotaStatus{Remaining: 3, CanCustomize: true}})

	resp, err := http.Get(srv.URL + "/api/businesses/biz-1/customize/remaining")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var quota upstream.QuotaStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&quota))
	assert.Equal(t, 3, quota.Remaining)
	assert.True(t, quota.CanCustomize)
}

func TestCustomizeHandler(t *testing.T) {
	c := &stubCollaborator{customizeRes: &upstream.CustomizeResult{
		Success:           true,
		AssistantMessage:  "Done!",
		UpdatedSource:     "const App = () => null;",
		MessagesRemaining: 9,
	}}
	srv := newTestServer(t, c)

	resp, err := http.Post(srv.URL+"/api/businesses/biz-1/customize", "application/json",
		strings.NewReader(`{"message":"make the header blue"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res upstream.CustomizeResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.True(t, res.Success)
	assert.Equal(t, 9, res.MessagesRemaining)
}

func TestCustomizeHandlerEmptyMessage(t *testing.T) {
	srv := newTestServer(t, &stubCollaborator{})

	resp, err := http.Post(srv.URL+"/api/businesses/biz-1/customize", "application/json",
		strings.NewReader(`{"message":""}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateWebsiteHandler(t *testing.T) {
	c := &stubCollaborator{generation: &upstream.GenerationResult{
		Success:      false,
		ErrorMessage: "Website generation limit reached. Please upgrade your plan to continue.",
	}}
	srv := newTestServer(t, c)

	resp, err := http.Post(srv.URL+"/api/businesses/biz-1/generate-website", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res upstream.GenerationResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "limit reached")
}

func TestSessionFlow(t *testing.T) {
	c := &stubCollaborator{
		quota: &upstream.QuotaStatus{Remaining: 10, CanCustomize: true},
		customizeRes: &upstream.CustomizeResult{
			Success:           true,
			AssistantMessage:  "Done!",
			UpdatedSource:     "const App = () => null;",
			MessagesRemaining: 9,
		},
	}
	srv := newTestServer(t, c)

	// Opening the session seeds it with the current quota.
	resp, err := http.Get(srv.URL + "/api/businesses/biz-1/session")
	require.NoError(t, err)
	var view session.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	assert.Equal(t, session.StateIdle, view.State)
	assert.Equal(t, 10, view.Remaining)
	assert.Empty(t, view.Messages)

	// Sending a message returns the snapshot right away.
	resp, err = http.Post(srv.URL+"/api/businesses/biz-1/session/messages", "application/json",
		strings.NewReader(`{"message":"make the header blue"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	require.NotEmpty(t, view.Messages)
	assert.Equal(t, session.SenderUser, view.Messages[0].Sender)

	// The reveal finishes in the background; polling sees the refresh.
	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/api/businesses/biz-1/session")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var v session.View
		if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
			return false
		}
		return v.State == session.StateIdle && v.PreviewSeq == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionOpenFailure(t *testing.T) {
	srv := newTestServer(t, &stubCollaborator{quotaErr: upstream.ErrNotFound})

	resp, err := http.Get(srv.URL + "/api/businesses/missing/session")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
