package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiabytes/chatX/internal/handlers"
	"github.com/xiabytes/chatX/internal/middleware"
	"github.com/xiabytes/chatX/internal/repository"
	"github.com/xiabytes/chatX/internal/service"
	"github.com/xiabytes/chatX/internal/ws"
)

var testSecret = []byte("routes-test-secret")

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	log := zap.NewNop().Sugar()
	store := repository.NewMemoryStore()
	hub := ws.NewHub()
	validate := validator.New()

	userSvc := service.NewUserService(store, log)
	convSvc := service.NewConversationService(store, hub, log)
	msgSvc := service.NewMessageService(store, hub, log)

	app := fiber.New()
	Register(app, Deps{
		Users:         handlers.NewUserHandler(userSvc, validate),
		Conversations: handlers.NewConversationHandler(convSvc, validate),
		Messages:      handlers.NewMessageHandler(msgSvc, validate),
		Hub:           hub,
		JWT:           middleware.JWTAuth(middleware.NewHMACVerifier(testSecret)),
		Log:           log,
	})
	return app
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString(testSecret)
	require.NoError(t, err)
	return s
}

func doJSON(t *testing.T, app *fiber.App, method, path, userID string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func registerUser(t *testing.T, app *fiber.App, userID, email, name string) {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/users/", userID, fiber.Map{
		"email": email,
		"name":  name,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthIsPublic(t *testing.T) {
	app := newTestApp(t)
	resp := doJSON(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAPIRequiresToken(t *testing.T) {
	app := newTestApp(t)
	resp := doJSON(t, app, http.MethodGet, "/api/v1/conversations/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestUserRegistrationAndProfile(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "u1", "ada@example.com", "Ada")

	resp := doJSON(t, app, http.MethodGet, "/api/v1/users/me", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	user := body["user"].(map[string]any)
	assert.Equal(t, "u1", user["user_id"])
	assert.Equal(t, "Ada", user["name"])

	resp = doJSON(t, app, http.MethodPatch, "/api/v1/users/name", "u1", fiber.Map{"name": "Ada L"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode(t, resp)
	assert.Equal(t, "Ada L", body["user"].(map[string]any)["name"])
}

func TestUserCreateValidatesEmail(t *testing.T) {
	app := newTestApp(t)
	resp := doJSON(t, app, http.MethodPost, "/api/v1/users/", "u1", fiber.Map{
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSearchExcludesSelf(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "u1", "ada@example.com", "Ada")
	registerUser(t, app, "u2", "adam@example.com", "Adam")

	resp := doJSON(t, app, http.MethodGet, "/api/v1/users/search?term=ada", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	users := body["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "u2", users[0].(map[string]any)["user_id"])
}

func TestConversationFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "u1", "ada@example.com", "Ada")
	registerUser(t, app, "u2", "grace@example.com", "Grace")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/conversations/", "u1", fiber.Map{
		"participant_user_id": "u2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	convID := decode(t, resp)["conversation_id"].(string)
	require.NotEmpty(t, convID)

	for i, sender := range []string{"u1", "u2"} {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/messages/", sender, fiber.Map{
			"conversation_id": convID,
			"content":         fmt.Sprintf("message %d", i),
			"type":            "text",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp = doJSON(t, app, http.MethodGet, "/api/v1/messages/"+convID, "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	msgs := decode(t, resp)["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "u1", msgs[0].(map[string]any)["sender_user_id"])
	assert.Equal(t, "u2", msgs[1].(map[string]any)["sender_user_id"])

	resp = doJSON(t, app, http.MethodGet, "/api/v1/conversations/", "u2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	convs := decode(t, resp)["conversations"].([]any)
	require.Len(t, convs, 1)
	assert.Equal(t, "message 1", convs[0].(map[string]any)["last_message"])

	// an outsider cannot delete
	registerUser(t, app, "u3", "mallory@example.com", "Mallory")
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/conversations/"+convID, "u3", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/conversations/"+convID, "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode(t, resp)
	assert.Equal(t, true, res["success"])
	assert.Equal(t, float64(2), res["deleted_messages"])

	resp = doJSON(t, app, http.MethodGet, "/api/v1/messages/"+convID, "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode(t, resp)["messages"])
}

func TestDeleteUnknownConversationIs404(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "u1", "ada@example.com", "Ada")

	resp := doJSON(t, app, http.MethodDelete, "/api/v1/conversations/nope", "u1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
