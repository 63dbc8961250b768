package dbclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/NyanCAD/Pyttoresque/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListByRangeUsesUFFF0EndkeySentinel(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"update_seq":"7","rows":[{"id":"top$top:r1","doc":{"_rev":"1-a","cell":"resistor"}}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	seq, docs, err := c.ListByRange(context.Background(), "top$top")
	require.NoError(t, err)

	assert.Equal(t, "7", seq)
	require.Contains(t, docs, "top$top:r1")
	assert.Equal(t, "1-a", docs["top$top:r1"].Rev)

	assert.Equal(t, `"top$top:"`, gotQuery.Get("startkey"))
	assert.Equal(t, "\"top$top:￰\"", gotQuery.Get("endkey"))
}

func TestListByRangeSkipsRowsWithoutDoc(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"update_seq":"1","rows":[{"id":"top$top:deleted"}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, docs, err := c.ListByRange(context.Background(), "top$top")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestPutDocReturnsNewRevision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "tran1")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"id":"tran1$result:2026-07-31T00:00:00.000Z","rev":"1-x"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	rev, err := c.PutDoc(context.Background(), "tran1$result:2026-07-31T00:00:00.000Z", []byte(`{"tran1":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "1-x", rev)
}

func TestPutDocNon2xxIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"conflict"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.PutDoc(context.Background(), "doc1", []byte(`{}`))
	require.Error(t, err)

	var se *telemetry.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.Code)
}
