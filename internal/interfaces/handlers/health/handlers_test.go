package health

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStatus_AllConnected(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := fiber.New()
	h := &Handlers{DB: db, Rdb: rdb}
	app.Get("/health", h.Status)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope struct {
		Data struct {
			Status       string            `json:"status"`
			Dependencies map[string]string `json:"dependencies"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Equal(t, "ok", envelope.Data.Status)
	assert.Equal(t, "connected", envelope.Data.Dependencies["database"])
	assert.Equal(t, "connected", envelope.Data.Dependencies["redis"])
}

func TestStatus_RedisDown(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	app := fiber.New()
	h := &Handlers{DB: db, Rdb: rdb}
	app.Get("/health", h.Status)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope struct {
		Data struct {
			Status       string            `json:"status"`
			Dependencies map[string]string `json:"dependencies"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Equal(t, "ok", envelope.Data.Status)
	assert.Equal(t, "disconnected", envelope.Data.Dependencies["redis"])
}
