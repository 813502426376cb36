package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestVerifierRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", testSecret, time.Hour)
	require.NoError(t, err)

	userID, err := NewVerifier(testSecret)(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestVerifierRejects(t *testing.T) {
	verify := NewVerifier(testSecret)

	other, err := GenerateToken("user-1", "other-secret", time.Hour)
	require.NoError(t, err)
	_, err = verify(other)
	assert.Error(t, err, "wrong signature")

	unbounded, err := GenerateToken("user-1", testSecret, -time.Hour)
	require.NoError(t, err)
	userID, err := verify(unbounded)
	require.NoError(t, err, "non-positive duration means no expiry")
	assert.Equal(t, "user-1", userID)

	anonymous, err := GenerateToken("", testSecret, time.Hour)
	require.NoError(t, err)
	_, err = verify(anonymous)
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = verify("garbage")
	assert.Error(t, err)
}

func TestTokenFromHeader(t *testing.T) {
	tcases := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def", "abc.def"},
		{"bearer   abc.def", "abc.def"},
		{"abc.def", "abc.def"},
		{"", ""},
	}

	for _, tc := range tcases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		assert.Equal(t, tc.want, TokenFromHeader(r), "header %q", tc.header)
	}
}

func TestRequireIdentity(t *testing.T) {
	token, err := GenerateToken("user-9", testSecret, time.Hour)
	require.NoError(t, err)

	var seen string
	h := IdentityExtractorMiddleware(NewVerifier(testSecret))(RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r)
	})))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-9", seen)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
