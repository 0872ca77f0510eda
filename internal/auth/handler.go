package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/grocify/backend/internal/models"
	"github.com/grocify/backend/internal/store"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, hashedPw string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateDietaryRestrictions(ctx context.Context, username string, restrictions []string) error
}

// RefreshTokens defines the interface for refresh-credential storage.
type RefreshTokens interface {
	Create(ctx context.Context, username string) (string, error)
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users   UserStore
	refresh RefreshTokens
	tokens  *TokenService
}

func NewHandler(users UserStore, refresh RefreshTokens, tokens *TokenService) *Handler {
	return &Handler{users: users, refresh: refresh, tokens: tokens}
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, `{"error":"missing username or password"}`, http.StatusBadRequest)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	if _, err := h.users.CreateUser(r.Context(), req.Username, string(hashed)); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			http.Error(w, `{"error":"username already exists"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "user registered successfully"})
}

// Login verifies credentials and issues an access and a refresh token.
// Unknown user and wrong password are deliberately indistinguishable.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, `{"error":"missing username or password"}`, http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), req.Username)
	if err != nil || user == nil {
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	access, err := h.tokens.Issue(user.Username)
	if err != nil {
		http.Error(w, `{"error":"token issue failed"}`, http.StatusInternalServerError)
		return
	}
	refresh, err := h.refresh.Create(r.Context(), user.Username)
	if err != nil {
		http.Error(w, `{"error":"token issue failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.TokenResponse{AccessToken: access, RefreshToken: refresh})
}

// Refresh exchanges a valid refresh credential, sent as a bearer token, for
// a new access token. The password is never re-checked here.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)
	if token == "" {
		http.Error(w, `{"error":"missing refresh token"}`, http.StatusUnauthorized)
		return
	}

	username, err := h.refresh.Get(r.Context(), token)
	if err != nil || username == "" {
		http.Error(w, `{"error":"invalid or expired refresh token"}`, http.StatusUnauthorized)
		return
	}

	access, err := h.tokens.Issue(username)
	if err != nil {
		http.Error(w, `{"error":"token issue failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.TokenResponse{AccessToken: access})
}

// Logout revokes the refresh credential named in the body, if any. Access
// tokens are stateless and simply expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		h.refresh.Delete(r.Context(), req.RefreshToken)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message":"logged out"}`))
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	username := r.Context().Value("username").(string)

	user, err := h.users.GetUserByUsername(r.Context(), username)
	if err != nil || user == nil {
		http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.UserInfoResponse{
		Username:            user.Username,
		DietaryRestrictions: user.DietaryRestrictions,
	})
}

// UpdateMe replaces the user's dietary restrictions.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	username := r.Context().Value("username").(string)

	var req models.UpdateUserInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.DietaryRestrictions == nil {
		http.Error(w, `{"error":"dietary_restrictions is required"}`, http.StatusBadRequest)
		return
	}

	if err := h.users.UpdateDietaryRestrictions(r.Context(), username, *req.DietaryRestrictions); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message":"user info updated"}`))
}
