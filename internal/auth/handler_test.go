package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/grocify/backend/internal/models"
	"github.com/grocify/backend/internal/store"
)

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, username, hashedPw string) (*models.User, error) {
	if _, ok := f.users[username]; ok {
		return nil, store.ErrDuplicateUser
	}
	u := &models.User{ID: username, Username: username, Password: hashedPw}
	f.users[username] = u
	return u, nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) UpdateDietaryRestrictions(_ context.Context, username string, restrictions []string) error {
	u, ok := f.users[username]
	if !ok {
		return store.ErrNotFound
	}
	u.DietaryRestrictions = restrictions
	return nil
}

type fakeRefreshStore struct {
	tokens map[string]string
}

func newFakeRefreshStore() *fakeRefreshStore {
	return &fakeRefreshStore{tokens: map[string]string{}}
}

func (f *fakeRefreshStore) Create(_ context.Context, username string) (string, error) {
	token := "refresh-" + username
	f.tokens[token] = username
	return token, nil
}

func (f *fakeRefreshStore) Get(_ context.Context, token string) (string, error) {
	return f.tokens[token], nil
}

func (f *fakeRefreshStore) Delete(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func newTestHandler() (*Handler, *fakeUserStore, *fakeRefreshStore) {
	users := newFakeUserStore()
	refresh := newFakeRefreshStore()
	return NewHandler(users, refresh, NewTokenService("test-secret", time.Hour)), users, refresh
}

func registerUser(t *testing.T, users *fakeUserStore, username, password string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := users.CreateUser(context.Background(), username, string(hashed)); err != nil {
		t.Fatal(err)
	}
}

func TestRegister(t *testing.T) {
	h, users, _ := newTestHandler()

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"username":"alice","password":"pw1"}`)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201", rec.Code)
	}
	u, ok := users.users["alice"]
	if !ok {
		t.Fatal("user was not stored")
	}
	if u.Password == "pw1" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("pw1")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	h, users, _ := newTestHandler()

	for _, body := range []string{`{}`, `{"username":"alice"}`, `{"password":"pw1"}`, `not json`} {
		rec := httptest.NewRecorder()
		h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: got status %d, want 400", body, rec.Code)
		}
	}
	if len(users.users) != 0 {
		t.Error("invalid request mutated the store")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	h, _, _ := newTestHandler()

	for i, want := range []int{http.StatusCreated, http.StatusBadRequest} {
		rec := httptest.NewRecorder()
		h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/register",
			strings.NewReader(`{"username":"alice","password":"pw1"}`)))
		if rec.Code != want {
			t.Errorf("attempt %d: got status %d, want %d", i+1, rec.Code, want)
		}
	}
}

func TestLogin(t *testing.T) {
	h, users, _ := newTestHandler()
	registerUser(t, users, "alice", "pw1")

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"alice","password":"pw1"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body)
	}
	var resp models.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both access and refresh tokens")
	}

	// The issued access token identifies the user on protected routes.
	username, err := h.tokens.Verify(resp.AccessToken)
	if err != nil || username != "alice" {
		t.Errorf("Verify(access) = %q, %v; want alice, nil", username, err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, users, _ := newTestHandler()
	registerUser(t, users, "alice", "pw1")

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"alice","password":"wrong"}`)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "token") {
		t.Error("response must not carry a token")
	}
}

func TestLoginUnknownUser(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"ghost","password":"pw1"}`)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}
}

func TestRefresh(t *testing.T) {
	h, users, refresh := newTestHandler()
	registerUser(t, users, "alice", "pw1")
	token, _ := refresh.Create(context.Background(), "alice")

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body)
	}
	var resp models.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if username, err := h.tokens.Verify(resp.AccessToken); err != nil || username != "alice" {
		t.Errorf("refreshed token verifies as %q, %v; want alice, nil", username, err)
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	h, _, refresh := newTestHandler()
	token, _ := refresh.Create(context.Background(), "alice")

	req := httptest.NewRequest(http.MethodPost, "/api/logout",
		strings.NewReader(`{"refresh_token":"`+token+`"}`))
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if _, ok := refresh.tokens[token]; ok {
		t.Error("refresh token was not revoked")
	}
}

func asUser(r *http.Request, username string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "username", username))
}

func TestMe(t *testing.T) {
	h, users, _ := newTestHandler()
	registerUser(t, users, "alice", "pw1")
	users.users["alice"].DietaryRestrictions = []string{"vegan"}

	rec := httptest.NewRecorder()
	h.Me(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/user-info", nil), "alice"))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	var resp models.UserInfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Username != "alice" || len(resp.DietaryRestrictions) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestMeUnknownUser(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := httptest.NewRecorder()
	h.Me(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/user-info", nil), "ghost"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
}

func TestUpdateMe(t *testing.T) {
	h, users, _ := newTestHandler()
	registerUser(t, users, "alice", "pw1")

	rec := httptest.NewRecorder()
	h.UpdateMe(rec, asUser(httptest.NewRequest(http.MethodPut, "/api/user-info",
		strings.NewReader(`{"dietary_restrictions":["vegan","gluten-free"]}`)), "alice"))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if got := users.users["alice"].DietaryRestrictions; len(got) != 2 {
		t.Errorf("restrictions not stored: %v", got)
	}
}

func TestUpdateMeMissingField(t *testing.T) {
	h, users, _ := newTestHandler()
	registerUser(t, users, "alice", "pw1")

	rec := httptest.NewRecorder()
	h.UpdateMe(rec, asUser(httptest.NewRequest(http.MethodPut, "/api/user-info",
		strings.NewReader(`{}`)), "alice"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}
