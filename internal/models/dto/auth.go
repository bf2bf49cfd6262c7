package dto

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
	IsAdmin  bool   `json:"isAdmin"`
	HasFound bool   `json:"hasFound"`
}

type LoginFailure struct {
	Message  string `json:"message"`
	HasFound bool   `json:"hasFound"`
}

type LogoutResponse struct {
	Message     string `json:"message,omitempty"`
	IsLoggedOut bool   `json:"isLoggedOut"`
}
