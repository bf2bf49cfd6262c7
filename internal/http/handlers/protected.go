package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hongminglow/account-be/internal/http/respond"
	"github.com/hongminglow/account-be/internal/middleware"
)

// ProtectedHandler serves the example routes behind the access middleware.
type ProtectedHandler struct {
	authenticate func(http.Handler) http.Handler
}

// NewProtectedHandler gates its routes with the given Authenticator.
func NewProtectedHandler(authenticator middleware.Authenticator, logger *slog.Logger) *ProtectedHandler {
	return &ProtectedHandler{authenticate: middleware.Authenticate(authenticator, logger)}
}

// Register wires /protected and /admin into the mux under basePath.
func (h *ProtectedHandler) Register(mux *http.ServeMux, basePath string) {
	mux.Handle(basePath+"/protected", onlyGet(h.authenticate(http.HandlerFunc(h.handleProtected))))
	mux.Handle(basePath+"/admin", onlyGet(h.authenticate(middleware.AuthorizeAdmin(http.HandlerFunc(h.handleAdmin)))))
}

func (h *ProtectedHandler) handleProtected(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, respond.Message{Message: "This is a protected route, and you are authorized!"})
}

func (h *ProtectedHandler) handleAdmin(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, respond.Message{Message: "Welcome to the admin-only route!"})
}

func onlyGet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}
