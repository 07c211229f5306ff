package web

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmadden/clubhouse/internal/domain"
	"github.com/jmadden/clubhouse/internal/security"
	"github.com/jmadden/clubhouse/internal/service"
	"github.com/jmadden/clubhouse/internal/session"
	"github.com/jmadden/clubhouse/internal/store"
)

const testMembershipSecret = "open sesame"

// In-memory storage backing the full HTTP stack under test.

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[int64]domain.User)}
}

func (m *memUsers) Add(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	m.byID[user.ID] = *user
	return nil
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := u
	return &out, nil
}

type memMessages struct {
	mu     sync.Mutex
	nextID int64
	msgs   []domain.Message
	users  *memUsers
}

func (m *memMessages) Post(ctx context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg.ID = m.nextID
	msg.CreatedAt = time.Now()
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memMessages) ListWithAuthor(ctx context.Context) ([]domain.MessageWithAuthor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.MessageWithAuthor, 0, len(m.msgs))
	for _, msg := range m.msgs {
		mwa := domain.MessageWithAuthor{
			ID:        msg.ID,
			Title:     msg.Title,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		}
		if u, err := m.users.GetByID(ctx, msg.AuthorID); err == nil {
			name := u.FullName
			mwa.Author = &name
		}
		out = append(out, mwa)
	}
	return out, nil
}

func (m *memMessages) DeleteByID(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, msg := range m.msgs {
		if msg.ID == id {
			m.msgs = append(m.msgs[:i], m.msgs[i+1:]...)
			return nil
		}
	}
	return nil
}

func newTestApp(t *testing.T) http.Handler {
	t.Helper()

	hasher := security.NewBcryptHasher(4)
	memberHash, err := hasher.Hash(testMembershipSecret)
	require.NoError(t, err)

	users := newMemUsers()
	st := store.Storage{Users: users, Messages: &memMessages{users: users}}

	auth := service.NewAuthService(st, session.NewMemoryStore(), hasher, memberHash, time.Hour)
	msgs := service.NewMessageService(st)

	render, err := NewTemplateRenderer()
	require.NoError(t, err)

	h := NewHandlers(auth, msgs, render, nil, time.Hour)
	return NewRouter(RouterDeps{Handlers: h, Auth: auth})
}

func doRequest(h http.Handler, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.MaxAge >= 0 && c.Value != "" {
			return c
		}
	}
	return nil
}

func registerForm(fullName, username, password string) url.Values {
	return url.Values{
		"fullName":    {fullName},
		"username":    {username},
		"password":    {password},
		"adminStatus": {"false"},
	}
}

// registerAndLogin creates an account and returns its session cookie.
func registerAndLogin(t *testing.T, h http.Handler, username string, extra url.Values) *http.Cookie {
	t.Helper()

	form := registerForm("Jane Doe", username, "Abc123!@")
	for key, vals := range extra {
		form[key] = vals
	}
	rec := doRequest(h, http.MethodPost, "/users/register", form)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	rec = doRequest(h, http.MethodPost, "/login", url.Values{
		"username": {username},
		"password": {"Abc123!@"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	c := cookieByName(rec, SessionCookieName)
	require.NotNil(t, c, "expected session cookie on successful login")
	return c
}

func TestHomePage_Anonymous(t *testing.T) {
	h := newTestApp(t)

	rec := doRequest(h, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Club House")
	assert.Contains(t, rec.Body.String(), "Register or log in")
}

func TestHomePage_LoggedIn(t *testing.T) {
	h := newTestApp(t)
	sess := registerAndLogin(t, h, "jane@example.com", nil)

	rec := doRequest(h, http.MethodGet, "/", nil, sess)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome back, Jane Doe")
}

func TestRegister_ValidationFailure_EchoesRawInput(t *testing.T) {
	h := newTestApp(t)

	form := registerForm("  Jane Doe  ", "not-an-email", "weak")
	rec := doRequest(h, http.MethodPost, "/users/register", form)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Username must be an email following the pattern: handle@domain.com.")
	assert.Contains(t, body, "Password must be at least 8 characters long")
	// Raw pre-trim echo, exactly as typed.
	assert.Contains(t, body, "  Jane Doe  ")
}

func TestRegister_CheckboxLastValueWins(t *testing.T) {
	h := newTestApp(t)

	form := registerForm("Jane Doe", "jane@example.com", "Abc123!@")
	form["adminStatus"] = []string{"false", "true"}
	rec := doRequest(h, http.MethodPost, "/users/register", form)
	require.Equal(t, http.StatusFound, rec.Code)

	// The checkbox value (last) wins, so this account can delete.
	rec = doRequest(h, http.MethodPost, "/login", url.Values{
		"username": {"jane@example.com"},
		"password": {"Abc123!@"},
	})
	sess := cookieByName(rec, SessionCookieName)
	require.NotNil(t, sess)

	rec = doRequest(h, http.MethodDelete, "/messages/1", nil, sess)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestRegister_WrongMembershipSecret(t *testing.T) {
	h := newTestApp(t)

	form := registerForm("Jane Doe", "jane@example.com", "Abc123!@")
	form.Set("membershipSecret", "wrong guess")
	rec := doRequest(h, http.MethodPost, "/users/register", form)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid membership password.")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	h := newTestApp(t)
	registerAndLogin(t, h, "jane@example.com", nil)

	rec := doRequest(h, http.MethodPost, "/users/register",
		registerForm("Jane Doe", "jane@example.com", "Abc123!@"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "A user with that username already exists.")
}

func TestRegisterForm_LoggedInRedirectsToDashboard(t *testing.T) {
	h := newTestApp(t)
	sess := registerAndLogin(t, h, "jane@example.com", nil)

	rec := doRequest(h, http.MethodGet, "/users/register", nil, sess)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = doRequest(h, http.MethodGet, "/login", nil, sess)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestLogin_WrongPassword_FlashesGenericMessage(t *testing.T) {
	h := newTestApp(t)
	registerAndLogin(t, h, "jane@example.com", nil)

	rec := doRequest(h, http.MethodPost, "/login", url.Values{
		"username": {"jane@example.com"},
		"password": {"Wrong123!@"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Nil(t, cookieByName(rec, SessionCookieName))

	flash := cookieByName(rec, flashCookieName)
	require.NotNil(t, flash, "expected flash cookie")

	// The flash renders once on the login page, then clears.
	rec = doRequest(h, http.MethodGet, "/login", nil, flash)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incorrect username or password.")
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookieName {
			assert.Less(t, c.MaxAge, 0, "flash cookie should be expired after render")
		}
	}
}

func TestLogin_UnknownUsername_SameMessage(t *testing.T) {
	h := newTestApp(t)

	rec := doRequest(h, http.MethodPost, "/login", url.Values{
		"username": {"nobody@example.com"},
		"password": {"Abc123!@"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
	assert.NotNil(t, cookieByName(rec, flashCookieName))
}

func TestLogin_EmptyFields(t *testing.T) {
	h := newTestApp(t)

	rec := doRequest(h, http.MethodPost, "/login", url.Values{
		"username": {""},
		"password": {""},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username cannot be empty.")
	assert.Contains(t, rec.Body.String(), "Password cannot be empty.")
}

func TestDashboard_RequiresLogin(t *testing.T) {
	h := newTestApp(t)

	for _, target := range []string{"/dashboard", "/messages/new", "/logout"} {
		rec := doRequest(h, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/login", rec.Header().Get("Location"), target)
	}
}

func TestPostMessage_ShowsOnDashboard(t *testing.T) {
	h := newTestApp(t)
	sess := registerAndLogin(t, h, "jane@example.com", nil)

	rec := doRequest(h, http.MethodPost, "/messages/new", url.Values{
		"messageTitle":   {"Hello"},
		"messageContent": {"First post on the board."},
	}, sess)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = doRequest(h, http.MethodGet, "/dashboard", nil, sess)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello")
	assert.Contains(t, rec.Body.String(), "First post on the board.")
}

func TestPostMessage_ValidationFailure(t *testing.T) {
	h := newTestApp(t)
	sess := registerAndLogin(t, h, "jane@example.com", nil)

	rec := doRequest(h, http.MethodPost, "/messages/new", url.Values{
		"messageTitle":   {""},
		"messageContent": {"x"},
	}, sess)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Message title cannot be empty.")
	assert.Contains(t, body, "Message content must be between 2 and 5000 characters long.")
}

func TestDeleteMessage_NonAdminForbidden(t *testing.T) {
	h := newTestApp(t)
	sess := registerAndLogin(t, h, "jane@example.com", nil)

	rec := doRequest(h, http.MethodDelete, "/messages/1", nil, sess)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Forbidden")

	// Anonymous callers get the same 403, not a login redirect.
	rec = doRequest(h, http.MethodDelete, "/messages/1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteMessage_AdminRemovesMessage(t *testing.T) {
	h := newTestApp(t)
	author := registerAndLogin(t, h, "jane@example.com", nil)

	rec := doRequest(h, http.MethodPost, "/messages/new", url.Values{
		"messageTitle":   {"Doomed"},
		"messageContent": {"soon to be moderated away"},
	}, author)
	require.Equal(t, http.StatusFound, rec.Code)

	admin := registerAndLogin(t, h, "admin@example.com", url.Values{
		"adminStatus": {"false", "true"},
	})

	rec = doRequest(h, http.MethodDelete, "/messages/1", nil, admin)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = doRequest(h, http.MethodGet, "/dashboard", nil, author)
	assert.NotContains(t, rec.Body.String(), "Doomed")
}

func TestLogout_InvalidatesSession(t *testing.T) {
	h := newTestApp(t)
	sess := registerAndLogin(t, h, "jane@example.com", nil)

	rec := doRequest(h, http.MethodGet, "/logout", nil, sess)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	// The old token no longer grants access.
	rec = doRequest(h, http.MethodGet, "/dashboard", nil, sess)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGarbageSessionCookie_TreatedAsAnonymous(t *testing.T) {
	h := newTestApp(t)

	rec := doRequest(h, http.MethodGet, "/dashboard", nil, &http.Cookie{
		Name:  SessionCookieName,
		Value: "not-a-real-token",
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestHealthz(t *testing.T) {
	h := newTestApp(t)

	rec := doRequest(h, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
