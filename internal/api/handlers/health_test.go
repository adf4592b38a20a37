package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hugh/recipe-api/internal/api/handlers"
	"github.com/hugh/recipe-api/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Health(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	t.Run("database only", func(t *testing.T) {
		h := handlers.NewHealthHandler(db, nil)
		rr := httptest.NewRecorder()
		h.Health(rr, httptest.NewRequest("GET", "/health", nil))

		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp handlers.HealthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "healthy", resp.Services["database"])
		assert.NotContains(t, resp.Services, "redis")
	})

	t.Run("with redis", func(t *testing.T) {
		s, err := miniredis.Run()
		require.NoError(t, err)

		client := redis.NewClient(&redis.Options{Addr: s.Addr()})
		defer client.Close()

		h := handlers.NewHealthHandler(db, client)
		rr := httptest.NewRecorder()
		h.Health(rr, httptest.NewRequest("GET", "/health", nil))

		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp handlers.HealthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "healthy", resp.Services["redis"])

		// redis goes away
		s.Close()

		resp = handlers.HealthResponse{}
		rr = httptest.NewRecorder()
		h.Health(rr, httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "unhealthy", resp.Services["redis"])
	})
}

func TestHealthHandler_Ready(t *testing.T) {
	h := handlers.NewHealthHandler(nil, nil)
	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest("GET", "/ready", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}
