package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog/internal/config"
	"catalog/internal/models"
)

// MockPublisher is a mock implementation of the event publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductEvent(action string, payload interface{}) error {
	args := m.Called(action, payload)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

var (
	app    *fiber.App
	mockMQ *MockPublisher
)

func TestMain(m *testing.M) {
	// Test configuration; no listener is started, requests go through
	// app.Test directly.
	cfg := &config.Config{
		AppPort:         ":8081",
		DatabaseDSN:     ":memory:",
		CORSAllowOrigin: "http://localhost:3000",
	}

	// Initialize Database (GORM, in-memory SQLite for tests)
	db, err := gorm.Open(sqlite.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open test database")
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate test database")
	}

	// Mock the event publisher
	mockMQ = new(MockPublisher)
	mockMQ.On("PublishProductEvent", mock.Anything, mock.Anything).Return(nil)
	mockMQ.On("Close").Return(nil)

	app = NewApp(cfg, db, mockMQ)

	code := m.Run()

	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Error during Fiber shutdown")
	}
	mockMQ.Close()

	os.Exit(code)
}

func jsonRequest(method, target string, body map[string]interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealthCheck(t *testing.T) {
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(bodyBytes), "\"status\":\"healthy\"", "Health check response body does not contain expected status")
}

func TestCORSPolicy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

// TestProductLifecycle walks a product through its whole life: create,
// read, partial update, delete, and the 404 afterwards.
func TestProductLifecycle(t *testing.T) {
	description := strings.Repeat("a quality portable speaker ", 2) // > 32 chars

	var created models.Product

	t.Run("Create", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/products", map[string]interface{}{
			"title":       "Speaker A",
			"description": description,
		}))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Speaker A", created.Title)
	})

	t.Run("Get", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var found models.Product
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&found))
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, created.Title, found.Title)
		assert.Equal(t, created.Description, found.Description)
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/api/v1/products/%d", created.ID), map[string]interface{}{
			"title": "Speaker B",
		}))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var updated models.Product
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
		assert.Equal(t, "Speaker B", updated.Title)
		assert.Equal(t, created.Description, updated.Description)
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	})

	t.Run("Delete", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", created.ID), nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var deleted models.Product
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&deleted))
		assert.Equal(t, created.ID, deleted.ID)
		assert.Equal(t, "Speaker B", deleted.Title)
	})

	t.Run("GoneAfterDelete", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestValidationScenario(t *testing.T) {
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/products", map[string]interface{}{
		"title":       "abc",
		"description": strings.Repeat("d", 40),
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(bodyBytes), "title")
	assert.Contains(t, string(bodyBytes), "too short (min 6)")
}

func TestPublishesLifecycleEvents(t *testing.T) {
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/products", map[string]interface{}{
		"title":       "Speaker event",
		"description": strings.Repeat("d", 40),
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	mockMQ.AssertCalled(t, "PublishProductEvent", "created", mock.Anything)
}
