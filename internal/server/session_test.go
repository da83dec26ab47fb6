package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCreateAndValidate(t *testing.T) {
	sm := NewSessionManager()

	token := sm.Create()
	require.NotEmpty(t, token)

	assert.True(t, sm.Validate(token))
	assert.False(t, sm.Validate("bogus"))
	assert.False(t, sm.Validate(""))
}

func TestSessionDelete(t *testing.T) {
	sm := NewSessionManager()
	token := sm.Create()

	sm.Delete(token)
	assert.False(t, sm.Validate(token))
}

func TestLogin(t *testing.T) {
	sm := NewSessionManager()

	tests := []struct {
		name     string
		user     string
		pass     string
		expectOK bool
	}{
		{"valid credentials", "admin", "secret", true},
		{"wrong password", "admin", "wrong", false},
		{"wrong username", "nobody", "secret", false},
		{"empty credentials", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/login", nil)

			ok := sm.Login(w, r, tt.user, tt.pass, "admin", "secret")
			assert.Equal(t, tt.expectOK, ok)

			cookies := w.Result().Cookies()
			if tt.expectOK {
				require.Len(t, cookies, 1)
				assert.Equal(t, "avatar_session", cookies[0].Name)
				assert.True(t, cookies[0].HttpOnly)
				assert.True(t, sm.Validate(cookies[0].Value))
			} else {
				assert.Empty(t, cookies)
			}
		})
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	sm := NewSessionManager()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.True(t, sm.Login(w, r, "admin", "secret", "admin", "secret"))
	token := w.Result().Cookies()[0].Value

	r2 := httptest.NewRequest(http.MethodGet, "/logout", nil)
	r2.AddCookie(&http.Cookie{Name: "avatar_session", Value: token})
	sm.Logout(httptest.NewRecorder(), r2)

	assert.False(t, sm.Validate(token))
}

func TestAuthMiddleware(t *testing.T) {
	sm := NewSessionManager()
	token := sm.Create()

	handler := sm.AuthMiddleware()(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Valid session passes through.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "avatar_session", Value: token})
	handler(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	// Missing cookie redirects to login.
	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// Invalid token redirects as well.
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "avatar_session", Value: "bogus"})
	handler(w, r)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestCSRFTokenSingleUse(t *testing.T) {
	sm := NewSessionManager()

	token := sm.CreateCSRFToken()
	require.NotEmpty(t, token)

	assert.True(t, sm.ValidateCSRFToken(token))
	assert.False(t, sm.ValidateCSRFToken(token), "CSRF token is consumed on first use")
	assert.False(t, sm.ValidateCSRFToken(""))
	assert.False(t, sm.ValidateCSRFToken("unknown"))
}
