package tablestore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"workspace-service/internal/model"
	"workspace-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestODataFilter(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	filter, empty, err := ODataFilter("tasks", []store.Filter{
		store.Equal("project_id", "p-1"),
		store.NotEqual("status", model.StatusDone),
		store.GreaterOrEqual("created_at", start),
		store.Contains("name", "ignored server side"),
	})
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t,
		"PartitionKey eq 'tasks' and project_id eq 'p-1' and status ne 'DONE' and created_at ge '2024-05-01T00:00:00.000000000Z'",
		filter)
}

func TestODataFilterIn(t *testing.T) {
	filter, empty, err := ODataFilter("workspaces", []store.Filter{store.In("id", []string{"a", "b"})})
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, "PartitionKey eq 'workspaces' and (id eq 'a' or id eq 'b')", filter)

	_, empty, err = ODataFilter("workspaces", []store.Filter{store.In("id", nil)})
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestLiteralEscapesQuotes(t *testing.T) {
	assert.Equal(t, "'O''Brien'", literal("O'Brien"))
	assert.Equal(t, "3000", literal(3000))
}

func TestTimeLayoutSortsLexically(t *testing.T) {
	early := propertyValue(time.Date(2024, 5, 1, 9, 0, 0, 5, time.UTC)).(string)
	late := propertyValue(time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))).(string)
	// 10:00 CET is 09:00 UTC, one nanosecond before early
	assert.Less(t, late, early)
}

func TestEncodeDecodeKeepsHiddenFields(t *testing.T) {
	c := &collection[model.User, *model.User]{partition: "users"}
	user := &model.User{ID: "u-1", Name: "Alice", Email: "alice@example.com", Password: "hash"}

	payload, err := c.encode(user)
	require.NoError(t, err)

	decoded, err := decode[model.User](payload)
	require.NoError(t, err)
	assert.Equal(t, "hash", decoded.Password)
	assert.Equal(t, "alice@example.com", decoded.Email)
}

func TestCreateIsNotRetried(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	connStr := "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;" +
		"AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;" +
		"TableEndpoint=" + srv.URL + "/devstoreaccount1;"
	b, err := New(connStr, "test")
	require.NoError(t, err)

	err = b.Stores().Users.Create(context.Background(), &model.User{ID: "u-1", Name: "Ann", Email: "ann@example.com"})
	require.Error(t, err)
	assert.Equal(t, int32(1), requests.Load())
}
