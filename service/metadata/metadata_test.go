package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lendex/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/api/deals", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("where[id][equals]") {
		case "0xabc":
			_, _ = w.Write([]byte(`{"docs":[{"id":"0xABC","name":"Almavest","category":"Multi-sector","description":"d","icon":"i"}]}`))
		case "":
			_, _ = w.Write([]byte(`{"docs":[{"id":"0xabc","name":"Almavest"},{"id":"0xdef","name":"Cauris"}]}`))
		default:
			_, _ = w.Write([]byte(`{"docs":[]}`))
		}
	}))
	defer server.Close()

	ctx := context.Background()
	s := New(core.CMS{Endpoint: server.URL + "/", CacheTTL: time.Minute})

	deal, err := s.Find(ctx, "0xABC")
	require.Nil(t, err)
	assert.Equal(t, "Almavest", deal.Name)
	assert.Equal(t, "0xabc", deal.ID)

	_, err = s.Find(ctx, "0xabc")
	require.Nil(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	_, err = s.Find(ctx, "0x999")
	assert.ErrorIs(t, err, core.ErrNotFound)

	deals, err := s.List(ctx)
	require.Nil(t, err)
	assert.Len(t, deals, 2)

	deal, err = s.Find(ctx, "0xdef")
	require.Nil(t, err)
	assert.Equal(t, "Cauris", deal.Name)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestMetadataFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(core.CMS{Endpoint: server.URL}).Find(context.Background(), "0xabc")
	assert.NotNil(t, err)
	assert.NotErrorIs(t, err, core.ErrNotFound)
}
