package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hongminglow/account-be/internal/auth"
	"github.com/hongminglow/account-be/internal/http/respond"
	"github.com/hongminglow/account-be/internal/middleware"
	"github.com/hongminglow/account-be/internal/models/dto"
)

// maxBodyBytes bounds register/login payloads.
const maxBodyBytes = 1 << 16

// AuthHandler owns the register, login and logout endpoints.
type AuthHandler struct {
	svc    *auth.Service
	logger *slog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Register attaches auth routes to the mux under basePath.
func (h *AuthHandler) Register(mux *http.ServeMux, basePath string) {
	mux.HandleFunc(basePath+"/register", h.handleRegister)
	mux.HandleFunc(basePath+"/login", h.handleLogin)
	mux.HandleFunc(basePath+"/logout", h.handleLogout)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req dto.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid user data")
		return
	}

	session, err := h.svc.Register(r.Context(), req.Username, req.Password, req.IsAdmin)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateUser):
			respond.Error(w, http.StatusBadRequest, "User already exists")
		case errors.Is(err, auth.ErrInvalidInput):
			respond.Error(w, http.StatusBadRequest, "Invalid user data")
		default:
			h.logger.ErrorContext(r.Context(), "register failed", "error", err)
			respond.Error(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	respond.JSON(w, http.StatusCreated, authResponse(session))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req dto.LoginRequest
	if err := decode(w, r, &req); err != nil {
		respond.JSON(w, http.StatusBadRequest, dto.LoginFailure{Message: "Invalid request payload"})
		return
	}

	session, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			respond.JSON(w, http.StatusUnauthorized, dto.LoginFailure{Message: "Invalid username or password"})
		case errors.Is(err, auth.ErrInvalidInput):
			respond.JSON(w, http.StatusBadRequest, dto.LoginFailure{Message: "Username and password are required"})
		default:
			h.logger.ErrorContext(r.Context(), "login failed", "error", err, "username", req.Username)
			respond.JSON(w, http.StatusInternalServerError, dto.LoginFailure{Message: "Server error"})
		}
		return
	}

	respond.JSON(w, http.StatusOK, authResponse(session))
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	token, err := middleware.BearerToken(r.Header.Get("Authorization"))
	if err == nil {
		err = h.svc.Logout(r.Context(), token)
	}
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			respond.JSON(w, http.StatusUnauthorized, dto.LogoutResponse{Message: "No token provided"})
		case errors.Is(err, auth.ErrInvalidToken):
			respond.JSON(w, http.StatusUnauthorized, dto.LogoutResponse{Message: "Invalid token"})
		case errors.Is(err, auth.ErrUserNotFound):
			respond.JSON(w, http.StatusNotFound, dto.LogoutResponse{Message: "User not found"})
		default:
			h.logger.ErrorContext(r.Context(), "logout failed", "error", err)
			respond.JSON(w, http.StatusInternalServerError, dto.LogoutResponse{Message: "Server error"})
		}
		return
	}

	respond.JSON(w, http.StatusOK, dto.LogoutResponse{IsLoggedOut: true})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

func authResponse(s auth.Session) dto.AuthResponse {
	return dto.AuthResponse{
		ID:       s.User.ID,
		Username: s.User.Username,
		Token:    s.Token,
		IsAdmin:  s.User.IsAdmin,
		HasFound: true,
	}
}
