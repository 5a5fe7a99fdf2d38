package controllers_test

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"pricely/models"
	"pricely/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, s *testServer, username, email string) (int, envelope) {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/users/registration/", map[string]string{
		"username":   username,
		"email":      email,
		"password":   "secret-pass-1",
		"first_name": "Ann",
	}, "")
	return w.Code, env
}

func TestRegisterCreatesUserAndSendsVerification(t *testing.T) {
	s := newTestServer(t)

	code, env := register(t, s, "Ann Lee", "Ann@Example.com")
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, env.Result["token"])
	user := object(t, env.Result["user"])
	assert.Equal(t, "ann-lee", user["slug"])
	assert.Equal(t, "ann@example.com", user["email"])
	assert.Equal(t, false, user["is_verified"])
	assert.NotContains(t, user, "password")

	mail, ok := s.mailer.Last()
	require.True(t, ok)
	assert.Equal(t, "ann@example.com", mail.To)
	assert.Contains(t, mail.Text, "http://testserver/users/verify/ann@example.com/")

	code, _ = register(t, s, "ann lee", "other@example.com")
	assert.Equal(t, http.StatusConflict, code)
	code, _ = register(t, s, "someone", "ann@example.com")
	assert.Equal(t, http.StatusConflict, code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodPost, "/users/registration/", map[string]string{
		"username": "ab", "email": "not-an-email", "password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestRegisterSlugCollision(t *testing.T) {
	s := newTestServer(t)
	code, env := register(t, s, "ann lee", "a@example.com")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "ann-lee", object(t, env.Result["user"])["slug"])
	code, env = register(t, s, "ann_lee!", "b@example.com")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "ann_lee", object(t, env.Result["user"])["slug"])
	code, env = register(t, s, "Ann  Lee", "c@example.com")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "ann-lee-2", object(t, env.Result["user"])["slug"])
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "alice")

	w, env := s.do(t, http.MethodPost, "/users/login/", map[string]string{"login": "alice", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, env.Result["token"])

	w, _ = s.do(t, http.MethodPost, "/users/login/", map[string]string{"login": "ALICE@example.com", "password": "password123"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, "/users/login/", map[string]string{"login": "alice", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(t, http.MethodPost, "/users/login/", map[string]string{"login": "nobody", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "alice")
	bad := map[string]string{"login": "alice", "password": "wrong"}
	for i := 0; i < 10; i++ {
		w, _ := s.do(t, http.MethodPost, "/users/login/", bad, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, _ := s.do(t, http.MethodPost, "/users/login/", map[string]string{"login": "alice", "password": "password123"}, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	s.mr.FastForward(16 * time.Minute)
	w, _ = s.do(t, http.MethodPost, "/users/login/", map[string]string{"login": "alice", "password": "password123"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "alice")
	token := testutil.Token(t, user)

	w, _ := s.get(t, "/users/alice/", token)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, "/users/logout/", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := s.get(t, "/users/alice/", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has been revoked", env.Error)
}

func TestProfileAccess(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.db, "alice")
	testutil.CreateUser(t, s.db, "bob")
	token := testutil.Token(t, alice)

	w, env := s.get(t, "/users/alice/", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", object(t, env.Result["object"])["username"])

	w, _ = s.get(t, "/users/bob/", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.get(t, "/users/nobody/", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.get(t, "/users/alice/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(t, http.MethodPut, "/users/alice/", map[string]string{"first_name": "Alice", "last_name": "Smith"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice Smith", env.Result["full_name"])
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.db, "alice")
	token := testutil.Token(t, alice)

	w, _ := s.do(t, http.MethodPost, "/users/alice/password", map[string]string{"old_password": "nope", "new_password": "brand-new-pass"}, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/users/alice/password", map[string]string{"old_password": "password123", "new_password": "brand-new-pass"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, "/users/login/", map[string]string{"login": "alice", "password": "brand-new-pass"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

// verificationPath extracts the path of the confirmation link from a mail body.
func verificationPath(t *testing.T, body string) string {
	t.Helper()
	for _, field := range strings.Fields(body) {
		if strings.HasPrefix(field, "http://testserver/users/verify/") {
			u, err := url.Parse(field)
			require.NoError(t, err)
			return u.Path
		}
	}
	t.Fatalf("no verification link in %q", body)
	return ""
}

func TestChangeEmailAndVerify(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.db, "alice")
	testutil.CreateUser(t, s.db, "bob")
	require.NoError(t, s.db.Model(&alice).Update("is_verified", true).Error)
	token := testutil.Token(t, alice)

	w, _ := s.do(t, http.MethodPost, "/users/alice/email", map[string]string{"email": "bob@example.com", "password": "password123"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = s.do(t, http.MethodPost, "/users/alice/email", map[string]string{"email": "new@example.com", "password": "bad"}, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(t, http.MethodPost, "/users/alice/email", map[string]string{"email": "new@example.com", "password": "password123"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new@example.com", env.Result["email"])
	assert.Equal(t, false, env.Result["is_verified"])

	mail, ok := s.mailer.Last()
	require.True(t, ok)
	assert.Equal(t, "new@example.com", mail.To)
	path := verificationPath(t, mail.Text)

	w, env = s.get(t, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, object(t, env.Result["user"])["is_verified"])

	var reloaded models.User
	require.NoError(t, s.db.First(&reloaded, alice.ID).Error)
	assert.True(t, reloaded.IsVerified)

	// codes are single use
	w, _ = s.get(t, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyEmailRejectsBadLinks(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.db, "alice")
	expired := models.EmailVerification{
		UserID:    alice.ID,
		Email:     alice.Email,
		Code:      uuid.New(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, s.db.Omit("User").Create(&expired).Error)

	w, _ := s.get(t, "/users/verify/"+alice.Email+"/"+expired.Code.String()+"/", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.get(t, "/users/verify/"+alice.Email+"/not-a-uuid/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.get(t, "/users/verify/"+alice.Email+"/"+uuid.NewString()+"/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendVerificationEmail(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.db, "alice")
	token := testutil.Token(t, alice)

	w, _ := s.do(t, http.MethodPost, "/users/verification/send/bob@example.com/", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPost, "/users/verification/send/alice@example.com/", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.mailer.Sent, 1)

	w, _ = s.do(t, http.MethodPost, "/users/verification/send/alice@example.com/", nil, token)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	s.mr.FastForward(61 * time.Second)
	s.mailer.Err = errors.New("smtp down")
	w, _ = s.do(t, http.MethodPost, "/users/verification/send/alice@example.com/", nil, token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGoogleLoginState(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.get(t, "/users/google/", "")
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	assert.True(t, s.mr.Exists("google:state:"+state))

	w, _ = s.get(t, "/users/google/callback/?state=forged&code=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// a valid state without a code is rejected and the state is consumed
	w, _ = s.get(t, "/users/google/callback/?state="+state, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, s.mr.Exists("google:state:"+state))
}
