package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Miro-wq/phonebook-api/internal/auth"
	"github.com/Miro-wq/phonebook-api/internal/avatar"
	"github.com/Miro-wq/phonebook-api/internal/middleware"
	"github.com/Miro-wq/phonebook-api/internal/model"
	"github.com/Miro-wq/phonebook-api/internal/payload"
	"github.com/Miro-wq/phonebook-api/internal/usecase"
	"github.com/Miro-wq/phonebook-api/internal/validation"
)

// memUserRepo is an in-memory UserRepository for handler tests.
type memUserRepo struct {
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (r *memUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, mongo.CommandError{Code: 11000, Message: "duplicate key"}
		}
	}

	user.ID = bson.NewObjectID()
	cp := *user
	r.users[user.ID.Hex()] = &cp

	return user, nil
}

func (r *memUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}

	return nil, mongo.ErrNoDocuments
}

func (r *memUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *memUserRepo) GetUserByVerificationToken(_ context.Context, token string) (*model.User, error) {
	for _, u := range r.users {
		if u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *memUserRepo) update(id string, mutate func(*model.User)) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	mutate(u)
	cp := *u

	return &cp, nil
}

func (r *memUserRepo) UpdateSubscription(_ context.Context, id, subscription string) (*model.User, error) {
	return r.update(id, func(u *model.User) { u.Subscription = subscription })
}

func (r *memUserRepo) UpdateAvatarURL(_ context.Context, id, avatarURL string) (*model.User, error) {
	return r.update(id, func(u *model.User) { u.AvatarURL = avatarURL })
}

func (r *memUserRepo) UpdateSessionToken(_ context.Context, id, sessionToken string) (*model.User, error) {
	return r.update(id, func(u *model.User) { u.SessionToken = sessionToken })
}

func (r *memUserRepo) MarkVerified(_ context.Context, id string) (*model.User, error) {
	return r.update(id, func(u *model.User) {
		u.Verified = true
		u.VerificationToken = ""
	})
}

type noopMailer struct{}

func (noopMailer) SendVerificationEmail(string, string) error { return nil }

func newUserRouter(t *testing.T) (http.Handler, *memUserRepo) {
	t.Helper()

	repo := newMemUserRepo()
	logger := zerolog.Nop()
	jwtAuth := auth.NewJWTAuthenticator("test-secret", time.Hour)

	store, err := avatar.NewStore(t.TempDir())
	require.NoError(t, err)

	validate, err := validation.New()
	require.NoError(t, err)

	authUC := usecase.NewAuthUsecase(repo, jwtAuth, noopMailer{}, &logger, "http://localhost:8080")
	userUC := usecase.NewUserUsecase(repo, store)

	h := NewUserHandler(authUC, userUC, validate, &logger, t.TempDir())

	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		h.RegisterRoutes(r, middleware.Authenticate(jwtAuth, repo))
	})

	return r, repo
}

func signUp(t *testing.T, router http.Handler, email, password string) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/users/signup", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func login(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/users/login", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp payload.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	return resp.Token
}

func doAuthed(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestUsers_SignUp(t *testing.T) {
	t.Parallel()

	router, _ := newUserRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/users/signup", map[string]any{
		"email":    "a@b.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp payload.SignUpResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a@b.com", resp.User.Email)
	assert.Equal(t, "starter", resp.User.Subscription)

	// Same email again conflicts.
	rec = doJSON(t, router, http.MethodPost, "/users/signup", map[string]any{
		"email":    "a@b.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email in use")
}

func TestUsers_SignUpValidation(t *testing.T) {
	t.Parallel()

	router, _ := newUserRouter(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "bad email", body: map[string]any{"email": "nope", "password": "secret1"}},
		{name: "short password", body: map[string]any{"email": "a@b.com", "password": "five5"}},
		{name: "missing password", body: map[string]any{"email": "a@b.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/users/signup", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUsers_LoginFlow(t *testing.T) {
	t.Parallel()

	router, _ := newUserRouter(t)

	signUp(t, router, "a@b.com", "secret1")
	token := login(t, router, "a@b.com", "secret1")

	rec := doAuthed(t, router, http.MethodGet, "/users/current", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var current payload.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, "a@b.com", current.Email)
	assert.Equal(t, "starter", current.Subscription)
}

func TestUsers_LoginFailureIsUniform(t *testing.T) {
	t.Parallel()

	router, _ := newUserRouter(t)

	signUp(t, router, "a@b.com", "secret1")

	unknown := doJSON(t, router, http.MethodPost, "/users/login", map[string]any{
		"email":    "nobody@b.com",
		"password": "secret1",
	})
	wrongPass := doJSON(t, router, http.MethodPost, "/users/login", map[string]any{
		"email":    "a@b.com",
		"password": "wrong-pass",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, unknown.Body.String(), wrongPass.Body.String())
}

func TestUsers_SecondLoginStalesFirstToken(t *testing.T) {
	t.Parallel()

	router, _ := newUserRouter(t)

	signUp(t, router, "a@b.com", "secret1")
	first := login(t, router, "a@b.com", "secret1")

	// Issued-at granularity is one second; force a distinct token.
	time.Sleep(1100 * time.Millisecond)
	second := login(t, router, "a@b.com", "secret1")
	require.NotEqual(t, first, second)

	rec := doAuthed(t, router, http.MethodGet, "/users/current", first, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doAuthed(t, router, http.MethodGet, "/users/current", second, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUsers_LogoutStalesToken(t *testing.T) {
	t.Parallel()

	router, _ := newUserRouter(t)

	signUp(t, router, "a@b.com", "secret1")
	token := login(t, router, "a@b.com", "secret1")

	rec := doAuthed(t, router, http.MethodPost, "/users/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doAuthed(t, router, http.MethodGet, "/users/current", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doAuthed(t, router, http.MethodPost, "/users/logout", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_Verification(t *testing.T) {
	t.Parallel()

	router, repo := newUserRouter(t)

	signUp(t, router, "a@b.com", "secret1")

	user, err := repo.GetUserByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.False(t, user.Verified)
	require.NotEmpty(t, user.VerificationToken)

	rec := doJSON(t, router, http.MethodGet, "/users/verify/unknown-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/users/verify/"+user.VerificationToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Verification successful")

	verified, err := repo.GetUserByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assert.Empty(t, verified.VerificationToken)

	// Resend after verification is a 400.
	rec = doJSON(t, router, http.MethodPost, "/users/verify", map[string]any{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already been passed")

	rec = doJSON(t, router, http.MethodPost, "/users/verify", map[string]any{"email": "nobody@b.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsers_UpdateSubscription(t *testing.T) {
	t.Parallel()

	router, _ := newUserRouter(t)

	signUp(t, router, "a@b.com", "secret1")
	token := login(t, router, "a@b.com", "secret1")

	rec := doAuthed(t, router, http.MethodPatch, "/users", token, map[string]any{"subscription": "business"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp payload.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "business", resp.Subscription)

	rec = doAuthed(t, router, http.MethodPatch, "/users", token, map[string]any{"subscription": "platinum"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/users", map[string]any{"subscription": "pro"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_UpdateAvatar(t *testing.T) {
	t.Parallel()

	router, repo := newUserRouter(t)

	signUp(t, router, "a@b.com", "secret1")
	token := login(t, router, "a@b.com", "secret1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/users/avatars", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp payload.AvatarResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.AvatarURL, "/avatars/")

	user, err := repo.GetUserByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, resp.AvatarURL, user.AvatarURL)
}

func TestUsers_UpdateAvatar_MissingFile(t *testing.T) {
	t.Parallel()

	router, _ := newUserRouter(t)

	signUp(t, router, "a@b.com", "secret1")
	token := login(t, router, "a@b.com", "secret1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("unrelated", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/users/avatars", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
