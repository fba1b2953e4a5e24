package btreeapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/kvbtree/pkg/btree"
)

func newTestTree(t *testing.T) *btree.Tree {
	t.Helper()
	tree, err := btree.Create(btree.LongSet(), 4, btree.NewMemoryAccessor())
	require.NoError(t, err)
	for _, v := range []int64{1, 2, 3} {
		_, err := tree.Add(btree.EncodeInt64Key(v), nil)
		require.NoError(t, err)
	}
	return tree
}

func TestServerStatsEndpoint(t *testing.T) {
	s := NewServer(newTestTree(t))
	req := httptest.NewRequest(http.MethodGet, "/debug/stats", nil)
	rec := httptest.NewRecorder()

	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "long_set")
}

func TestServerFlattenEndpoint(t *testing.T) {
	s := NewServer(newTestTree(t))
	req := httptest.NewRequest(http.MethodGet, "/debug/flatten", nil)
	rec := httptest.NewRecorder()

	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["1","2","3"]`, rec.Body.String())
}

func TestServerCheckEndpoint(t *testing.T) {
	s := NewServer(newTestTree(t))
	req := httptest.NewRequest(http.MethodGet, "/debug/check", nil)
	rec := httptest.NewRecorder()

	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
}

func TestServerMetricsEndpointServed(t *testing.T) {
	s := NewServer(newTestTree(t))
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
