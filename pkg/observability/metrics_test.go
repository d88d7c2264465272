package observability_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cthstore/storefront/internal/logging"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks(logging.NewNop())
	ctx := context.Background()

	hooks.OnTurn(ctx, &domain.TurnEvent{Scene: domain.SceneCatalog, Outcome: "ok", Duration: 20 * time.Millisecond})
	hooks.OnTurn(ctx, &domain.TurnEvent{Scene: domain.SceneCatalog, Outcome: "source_failure"})
	hooks.OnSceneEnter(ctx, &domain.SceneEvent{Scene: domain.SceneFAQ})
	hooks.OnSourceLoad(ctx, &domain.LoadEvent{NodeID: "faq", Count: 5})
	hooks.OnSourceLoad(ctx, &domain.LoadEvent{NodeID: "faq", Err: errors.New("timeout")})
	hooks.OnRender(ctx, &domain.RenderEvent{NodeID: "faq", Err: errors.New("blocked")})

	count, err := testutil.GatherAndCount(m.Registry(), "storefront_turns_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per outcome")

	count, err = testutil.GatherAndCount(m.Registry(), "storefront_source_load_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `storefront_turns_total{outcome="source_failure",scene="catalog"} 1`)
	assert.Contains(t, body, `storefront_scene_enters_total{scene="faq"} 1`)
	assert.Contains(t, body, `storefront_source_nodes_total 5`)
	assert.Contains(t, body, `storefront_renders_total{result="error"} 1`)
}
