package fineract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL, "default", NewBasicAuth("mifos", "password"),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 1, Multiplier: 1}))
}

func TestFetchIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/roles", r.URL.Path)
		w.Write([]byte(`[
			{"id": 7, "name": "Teller Role"},
			{"id": 9, "name": "Admin"},
			{"id": 11, "description": "no name field"}
		]`))
	}))
	defer srv.Close()

	ix := FetchIndex(context.Background(), testClient(srv), "roles", "name")
	require.Equal(t, 2, ix.Len())

	id, ok := ix.ID("Teller Role")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	_, ok = ix.ID("Missing")
	assert.False(t, ok)
}

func TestFetchIndexFailureDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ix := FetchIndex(context.Background(), testClient(srv), "roles", "name")
	assert.Equal(t, 0, ix.Len())
}

func TestFetchPagedIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"totalFilteredRecords": 2,
			"pageItems": [
				{"id": 1, "externalId": "cl-001"},
				{"id": 2, "externalId": "cl-002"},
				{"id": 3}
			]
		}`))
	}))
	defer srv.Close()

	ix := FetchPagedIndex(context.Background(), testClient(srv), "clients", "externalId")
	require.Equal(t, 2, ix.Len())

	id, ok := ix.ID("cl-002")
	assert.True(t, ok)
	assert.Equal(t, int64(2), id)
}

func TestFetchPagedIndexBadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rows": []}`))
	}))
	defer srv.Close()

	ix := FetchPagedIndex(context.Background(), testClient(srv), "clients", "externalId")
	assert.Equal(t, 0, ix.Len())
}

func TestFetchPermissionNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"code": "CREATE_CLIENT", "actionName": "CREATE", "entityName": "CLIENT"},
			{"actionName": "READ", "entityName": "LOAN"}
		]`))
	}))
	defer srv.Close()

	names := FetchPermissionNames(context.Background(), testClient(srv))

	assert.True(t, names["CREATE_CLIENT"])
	assert.True(t, names["CREATE_CLIENT_CHECKER"])
	assert.True(t, names["READ_LOAN"])
	assert.True(t, names["APPROVE_SAVINGS_CHECKER"])
	assert.False(t, names["DELETE_EVERYTHING"])
}

func TestFetchPermissionNamesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	names := FetchPermissionNames(context.Background(), testClient(srv))
	assert.True(t, names["CREATE_CLIENT"])
	assert.NotEmpty(t, names)
}
