package hc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lendex/core"
	"lendex/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	store := memory.New()
	require.Nil(t, store.Commit(context.Background(), &core.Changeset{
		Cursor: &core.Cursor{Consumer: "indexer", BlockNumber: 42},
	}))

	w := httptest.NewRecorder()
	Handle("1.0.0", store, "indexer").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Version      string `json:"version"`
			IndexedBlock uint64 `json:"indexed_block"`
		} `json:"data"`
	}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "1.0.0", body.Data.Version)
	assert.Equal(t, uint64(42), body.Data.IndexedBlock)
}
