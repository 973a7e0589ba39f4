package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/whodunit-live/whodunit/internal/auth"
	"github.com/whodunit-live/whodunit/internal/database"
	"github.com/whodunit-live/whodunit/internal/models"
)

// EnsureUser resolves the connection's identity. A valid token yields its
// embedded identity; anything else mints a guest, sets the token cookie, and
// lets the player in. Party games should not stop at a login wall.
func EnsureUser(w http.ResponseWriter, r *http.Request) (models.Identity, error) {
	cookieHeader := r.Header.Get("Cookie")
	if strings.Contains(cookieHeader, "auth_token=") {
		token := extractCookieToken(cookieHeader, "auth_token")
		idStr, name, err := auth.VerifyJWT(token)
		if err == nil {
			id, parseErr := uuid.Parse(idStr)
			if parseErr != nil {
				return models.Identity{}, fmt.Errorf("invalid user id in token: %w", parseErr)
			}
			if name == "" {
				name = lookupDisplayName(r.Context(), id)
			}
			return models.Identity{ID: id, DisplayName: name}, nil
		}
		// Invalid or expired token: fall through and mint a guest.
	}
	return mintGuest(w, r)
}

func lookupDisplayName(ctx context.Context, id uuid.UUID) string {
	if database.Available() {
		if u, err := database.GetUserByID(ctx, id); err == nil {
			return u.DisplayName
		}
	}
	return "Guest_" + id.String()[:4]
}

func mintGuest(w http.ResponseWriter, r *http.Request) (models.Identity, error) {
	guest := models.User{
		ID:          uuid.New(),
		DisplayName: "",
		IsGuest:     true,
	}
	guest.DisplayName = "Guest_" + guest.ID.String()[:4]

	if database.Available() {
		if err := database.CreateUser(r.Context(), &guest); err != nil {
			return models.Identity{}, fmt.Errorf("failed to create guest user: %w", err)
		}
	}

	token, err := auth.CreateJWT(guest.ID.String(), guest.DisplayName)
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to create guest token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	return guest.Identity(), nil
}

// CreateUserHandler registers a permanent account.
func CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	if !database.Available() {
		http.Error(w, "account store not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	user := models.User{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		IsGuest:     false,
	}

	if err := database.CreateUser(r.Context(), &user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			http.Error(w, "email already exists", http.StatusConflict)
			return
		}
		http.Error(w, "error creating user", http.StatusInternalServerError)
		return
	}

	user.Password = ""
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler checks credentials and returns a token, also set as the
// auth_token cookie.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !database.Available() {
		http.Error(w, "account store not configured", http.StatusServiceUnavailable)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	token, err := database.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   auth.TokenExpireSec,
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(loginResponse{Token: token}); err != nil {
		http.Error(w, "failed to write response", http.StatusInternalServerError)
	}
}
