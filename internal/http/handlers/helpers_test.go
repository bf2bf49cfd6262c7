package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/account-be/internal/auth"
	"github.com/hongminglow/account-be/internal/models"
	"github.com/hongminglow/account-be/internal/storage"
)

type testEnv struct {
	server *httptest.Server
	tokens *auth.TokenManager
}

func newTestEnv(t *testing.T, store storage.UserStore) *testEnv {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	tokens := auth.NewTokenManager("handler-secret", "account-test", time.Hour)
	svc := auth.NewService(store, tokens, logger, bcrypt.MinCost)

	mux := http.NewServeMux()
	NewAuthHandler(svc, logger).Register(mux, "")
	NewProtectedHandler(svc, logger).Register(mux, "")

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return &testEnv{server: ts, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		switch p := payload.(type) {
		case string:
			body.WriteString(p)
		default:
			require.NoError(t, json.NewEncoder(&body).Encode(p))
		}
	}
	req, err := http.NewRequest(method, e.server.URL+path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func (e *testEnv) register(t *testing.T, username, password string, isAdmin bool) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/register", "", map[string]any{
		"username": username,
		"password": password,
		"isAdmin":  isAdmin,
	})
	require.Equal(t, http.StatusCreated, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func expiredToken(t *testing.T, user models.User) string {
	t.Helper()
	token, err := auth.NewTokenManager("handler-secret", "account-test", -time.Minute).Generate(user)
	require.NoError(t, err)
	return token
}
