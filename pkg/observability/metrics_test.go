package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnOpen(ctx, &domain.SessionEvent{ActionID: domain.ActionDonate})
	hooks.OnClose(ctx, &domain.SessionEvent{ActionID: domain.ActionDonate, Reason: domain.CloseSubmit})
	hooks.OnSettle(ctx, &domain.ActionEvent{ActionID: domain.ActionDonate, Outcome: domain.OutcomeSuccess, Duration: time.Second})
	hooks.OnSettle(ctx, &domain.ActionEvent{ActionID: domain.ActionDonate, Outcome: domain.OutcomeInvalid})

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	series := 0
	for _, f := range families {
		if f.GetName() == "storefront_actions_total" {
			series = len(f.GetMetric())
		}
	}
	assert.Equal(t, 2, series, "one series per outcome")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `storefront_actions_total{action="donate",outcome="success"} 1`)
	assert.Contains(t, body, "storefront_session_open 0")
	assert.Contains(t, body, `storefront_action_duration_seconds_count{action="donate"} 1`)
}

func TestMetrics_SupersededKeepsGauge(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnOpen(ctx, &domain.SessionEvent{ActionID: domain.ActionContact})
	hooks.OnClose(ctx, &domain.SessionEvent{ActionID: domain.ActionContact, Reason: domain.CloseSuperseded})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "storefront_session_open 1")
}

func TestAuditHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.AuditHooks(logging.NewWithFormat(&buf, slog.LevelInfo, logging.FormatJSON))

	hooks.OnSettle(context.Background(), &domain.ActionEvent{
		ActionID: domain.ActionCreateStream,
		Outcome:  domain.OutcomeError,
		Err:      errors.New("503"),
	})

	out := buf.String()
	assert.Contains(t, out, `"msg":"action_settle"`)
	assert.Contains(t, out, `"outcome":"error"`)
	assert.Contains(t, out, `"err":"503"`)
}
