package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"folio/internal/config"
	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func actorApp(handler fiber.Handler) *fiber.App {
	InitMiddleware(&config.Config{JWTSecret: testSecret})
	app := fiber.New()
	app.Get("/test", handler, func(c *fiber.Ctx) error {
		actor := ActorFrom(c)
		return c.JSON(fiber.Map{"user_id": actor.UserID, "role": actor.Role})
	})
	return app
}

func signRaw(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestOptionalAuth(t *testing.T) {
	app := actorApp(OptionalAuth)

	librarian, err := SignActorToken(testSecret, models.Actor{UserID: 7, Role: models.RoleLibrarian}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
		expectedRole   string
	}{
		{
			name:           "No Header Is Anonymous",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Valid Token",
			authHeader:     "Bearer " + librarian,
			expectedStatus: http.StatusOK,
			expectedUserID: 7,
			expectedRole:   "librarian",
		},
		{
			name:           "Invalid Format",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed Token",
			authHeader:     "Bearer malformed.token.here",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Expired Token",
			authHeader: "Bearer " + signRaw(t, jwt.MapClaims{
				"sub":  "7",
				"role": "member",
				"exp":  time.Now().Add(-time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Unknown Role",
			authHeader: "Bearer " + signRaw(t, jwt.MapClaims{
				"sub":  "7",
				"role": "superuser",
				"exp":  time.Now().Add(time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Missing Subject",
			authHeader: "Bearer " + signRaw(t, jwt.MapClaims{
				"role": "member",
				"exp":  time.Now().Add(time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, float64(tt.expectedUserID), body["user_id"])
				assert.Equal(t, tt.expectedRole, body["role"])
			} else {
				assert.Equal(t, models.CodeUnauthorized, body["code"])
			}
		})
	}
}

func TestAuthRequired(t *testing.T) {
	app := actorApp(AuthRequired)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := SignActorToken(testSecret, models.Actor{UserID: 3, Role: models.RoleMember}, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp2, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestSignActorToken(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		actor := models.Actor{UserID: 42, Role: models.RoleAdmin}
		token, err := SignActorToken(testSecret, actor, time.Hour)
		require.NoError(t, err)

		parsed, err := ParseActorToken(testSecret, token)
		require.NoError(t, err)
		assert.Equal(t, actor, parsed)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := SignActorToken(testSecret, models.Actor{UserID: 1, Role: models.RoleMember}, time.Hour)
		require.NoError(t, err)
		_, err = ParseActorToken("another-secret", token)
		assert.Error(t, err)
	})

	t.Run("anonymous actor", func(t *testing.T) {
		_, err := SignActorToken(testSecret, models.Anonymous, time.Hour)
		assert.Error(t, err)
	})

	t.Run("empty secret", func(t *testing.T) {
		_, err := SignActorToken("", models.Actor{UserID: 1, Role: models.RoleMember}, time.Hour)
		assert.Error(t, err)
	})

	t.Run("subject is decimal user id", func(t *testing.T) {
		token, err := SignActorToken(testSecret, models.Actor{UserID: 1234, Role: models.RoleMember}, time.Hour)
		require.NoError(t, err)
		parsed, _ := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
		sub, err := parsed.Claims.GetSubject()
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(1234), sub)
	})
}
