package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/alx-polly/polly/caching"
	"github.com/alx-polly/polly/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupEngine(t *testing.T) (*gin.Engine, func()) {
	t.Helper()
	dbPath := "test.db"
	os.Remove(dbPath)
	assert.NoError(t, database.InitDB(dbPath))

	s := NewServer()
	s.cache = caching.NewCache()
	assert.NoError(t, s.cache.Init())

	engine, err := s.initRouter()
	assert.NoError(t, err)

	return engine, func() {
		s.cache.Flush()
		db, _ := database.GetDB().DB()
		db.Close()
		os.Remove(dbPath)
	}
}

// sessionCookie returns the freshest session cookie from a response, the way
// a browser would keep only the latest one.
func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	var latest *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "polly" {
			latest = cookie
		}
	}
	return latest
}

func doGet(engine *gin.Engine, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	engine.ServeHTTP(w, req)
	return w
}

func doPostForm(engine *gin.Engine, path string, form url.Values, cookie *http.Cookie, ajax bool) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if ajax {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	engine.ServeHTTP(w, req)
	return w
}

// loginAdmin signs in the seeded admin account and returns its session.
func loginAdmin(t *testing.T, engine *gin.Engine) *http.Cookie {
	t.Helper()
	w := doPostForm(engine, "/auth/login", url.Values{
		"email":    {"admin@localhost"},
		"password": {"admin"},
	}, nil, false)
	assert.Equal(t, http.StatusFound, w.Code)
	location, err := url.Parse(w.Header().Get("Location"))
	assert.NoError(t, err)
	assert.Equal(t, "/polls", location.Path)
	assert.Equal(t, "success", location.Query().Get("toast"))
	assert.Equal(t, "Successfully signed in", location.Query().Get("message"))
	cookie := sessionCookie(w)
	assert.NotNil(t, cookie)
	return cookie
}

func TestRootRedirectsToPolls(t *testing.T) {
	engine, cleanup := setupEngine(t)
	defer cleanup()

	w := doGet(engine, "/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/polls", w.Header().Get("Location"))
}

func TestBrowsePollsAnonymously(t *testing.T) {
	engine, cleanup := setupEngine(t)
	defer cleanup()

	w := doGet(engine, "/polls", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Polls")
}

func TestBrowseMyPollsRendersFully(t *testing.T) {
	engine, cleanup := setupEngine(t)
	defer cleanup()

	cookie := loginAdmin(t, engine)
	w := doPostForm(engine, "/polls/create", url.Values{
		"question": {"Mine?"},
		"options":  {"A", "B"},
	}, cookie, false)
	assert.Equal(t, http.StatusFound, w.Code)

	// The whole page must render, down to the footer past the poll list
	w = doGet(engine, "/polls?mine=1", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "My polls")
	assert.Contains(t, body, "Mine?")
	assert.Contains(t, body, "<footer>")
	assert.Contains(t, body, "</html>")
}

func TestUnknownRouteIs404(t *testing.T) {
	engine, cleanup := setupEngine(t)
	defer cleanup()

	w := doGet(engine, "/definitely-not-a-page", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterFlow(t *testing.T) {
	engine, cleanup := setupEngine(t)
	defer cleanup()

	w := doPostForm(engine, "/auth/register", url.Values{
		"name":            {"Alice"},
		"email":           {"alice@example.com"},
		"password":        {"secret1"},
		"confirmPassword": {"different"},
	}, nil, false)
	assert.Equal(t, http.StatusFound, w.Code)
	location, _ := url.Parse(w.Header().Get("Location"))
	assert.Equal(t, "/auth/register", location.Path)
	assert.Equal(t, "Passwords do not match", location.Query().Get("error"))

	w = doPostForm(engine, "/auth/register", url.Values{
		"name":            {"Alice"},
		"email":           {"alice@example.com"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
	}, nil, false)
	assert.Equal(t, http.StatusFound, w.Code)
	location, _ = url.Parse(w.Header().Get("Location"))
	assert.Equal(t, "/auth/login", location.Path)
	assert.Equal(t,
		"Account created successfully. Please check your email to verify your account.",
		location.Query().Get("success"))

	w = doPostForm(engine, "/auth/register", url.Values{
		"name":            {"Alice Again"},
		"email":           {"alice@example.com"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
	}, nil, false)
	location, _ = url.Parse(w.Header().Get("Location"))
	assert.Equal(t,
		"An account with this email already exists. Please sign in instead.",
		location.Query().Get("error"))
}

func TestLoginFlow(t *testing.T) {
	engine, cleanup := setupEngine(t)
	defer cleanup()

	w := doPostForm(engine, "/auth/login", url.Values{}, nil, false)
	location, _ := url.Parse(w.Header().Get("Location"))
	assert.Equal(t, "Email and password are required", location.Query().Get("error"))

	w = doPostForm(engine, "/auth/login", url.Values{
		"email":    {"admin@localhost"},
		"password": {"wrong"},
	}, nil, false)
	location, _ = url.Parse(w.Header().Get("Location"))
	assert.Equal(t, "/auth/login", location.Path)
	assert.Equal(t, "Invalid email or password. Please try again.", location.Query().Get("error"))

	cookie := loginAdmin(t, engine)

	// Authenticated users can open the create page
	w = doGet(engine, "/polls/create", cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	// Anonymous users can not
	w = doGet(engine, "/polls/create", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))

	// Logout drops the session
	w = doGet(engine, "/auth/logout", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))
}

func TestPollLifecycleOverHTTP(t *testing.T) {
	engine, cleanup := setupEngine(t)
	defer cleanup()

	cookie := loginAdmin(t, engine)

	// Create
	w := doPostForm(engine, "/polls/create", url.Values{
		"question": {"Lunch?"},
		"options":  {"Pizza", "Sushi"},
		"isPublic": {"true"},
	}, cookie, false)
	assert.Equal(t, http.StatusFound, w.Code)
	location, _ := url.Parse(w.Header().Get("Location"))
	assert.Equal(t, "Poll created", location.Query().Get("success"))
	pollPath := location.Path
	assert.True(t, strings.HasPrefix(pollPath, "/polls/"))

	// Detail page shows the question
	w = doGet(engine, pollPath, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lunch?")
	assert.Contains(t, w.Body.String(), "Pizza")

	// Vote over AJAX
	w = doPostForm(engine, pollPath+"/vote", url.Values{
		"optionId": {"1"},
	}, cookie, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), "Vote recorded")

	// Change the vote without AJAX, flash toast style
	w = doPostForm(engine, pollPath+"/vote", url.Values{
		"optionId": {"2"},
	}, cookie, false)
	assert.Equal(t, http.StatusFound, w.Code)
	location, _ = url.Parse(w.Header().Get("Location"))
	assert.Equal(t, pollPath, location.Path)
	assert.Equal(t, "Vote recorded", location.Query().Get("message"))

	// Voting without a choice is rejected
	w = doPostForm(engine, pollPath+"/vote", url.Values{}, cookie, false)
	location, _ = url.Parse(w.Header().Get("Location"))
	assert.Equal(t, "Please choose an option", location.Query().Get("error"))

	// Share QR
	w = doGet(engine, pollPath+"/qr", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	// Delete
	w = doPostForm(engine, pollPath+"/delete", url.Values{}, cookie, false)
	assert.Equal(t, http.StatusFound, w.Code)
	location, _ = url.Parse(w.Header().Get("Location"))
	assert.Equal(t, "/polls", location.Path)
	assert.Equal(t, "Poll deleted", location.Query().Get("success"))

	// The deleted poll is gone
	w = doGet(engine, pollPath, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	location, _ = url.Parse(w.Header().Get("Location"))
	assert.Equal(t, "Poll not found", location.Query().Get("error"))
}

func TestPrivatePollHiddenFromOthers(t *testing.T) {
	engine, cleanup := setupEngine(t)
	defer cleanup()

	cookie := loginAdmin(t, engine)
	w := doPostForm(engine, "/polls/create", url.Values{
		"question": {"Secret?"},
		"options":  {"Yes", "No"},
	}, cookie, false)
	location, _ := url.Parse(w.Header().Get("Location"))
	pollPath := location.Path

	// The creator sees it
	w = doGet(engine, pollPath, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	// Anonymous visitors see a not-found flash, not a hint that it exists
	w = doGet(engine, pollPath, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	location, _ = url.Parse(w.Header().Get("Location"))
	assert.Equal(t, "/polls", location.Path)
	assert.Equal(t, "Poll not found", location.Query().Get("error"))
}

func TestAdminPagesOverHTTP(t *testing.T) {
	engine, cleanup := setupEngine(t)
	defer cleanup()

	// Anonymous callers are sent to the login page
	w := doGet(engine, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))

	cookie := loginAdmin(t, engine)

	w = doGet(engine, "/admin", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	for _, path := range []string{"/admin/dashboard", "/admin/moderation", "/admin/users", "/admin/audit", "/admin/logs"} {
		w = doGet(engine, path, cookie)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	// Admins can not touch their own account
	w = doPostForm(engine, "/admin/users/1/demote", url.Values{}, cookie, false)
	location, _ := url.Parse(w.Header().Get("Location"))
	assert.Equal(t, "You cannot change your own role", location.Query().Get("error"))

	w = doPostForm(engine, "/admin/users/1/delete", url.Values{}, cookie, false)
	location, _ = url.Parse(w.Header().Get("Location"))
	assert.Equal(t, "You cannot delete your own account", location.Query().Get("error"))
}
