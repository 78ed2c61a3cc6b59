package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestListParams(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		params, err := listParams(c)
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"limit": params.Limit, "offset": params.Offset, "filters": params.Filters})
	})

	tests := []struct {
		name   string
		url    string
		status int
		limit  float64
	}{
		{"default limit", "/", http.StatusOK, defaultPaginationLimit},
		{"zero uses default", "/?limit=0", http.StatusOK, defaultPaginationLimit},
		{"explicit limit", "/?limit=5", http.StatusOK, 5},
		{"capped", "/?limit=1000", http.StatusOK, maxPaginationLimit},
		{"negative", "/?limit=-1", http.StatusBadRequest, 0},
		{"garbage offset", "/?offset=x", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.url, nil), -1)
			require.NoError(t, err)
			require.Equal(t, tt.status, resp.StatusCode)
			if tt.status != http.StatusOK {
				return
			}
			var body struct {
				Limit float64 `json:"limit"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.limit, body.Limit)
		})
	}
}
