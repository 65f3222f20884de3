package site

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

const (
	// CSRFCookieName holds the signed token.
	CSRFCookieName = "csrftoken"
	// CSRFFieldName is the hidden input echoing the cookie.
	CSRFFieldName = "csrfmiddlewaretoken"
	// CSRFHeaderName is accepted instead of the form field for scripted clients.
	CSRFHeaderName = "X-CSRFToken"

	csrfNonceBytes = 18
)

var (
	ErrCSRFMissing  = errors.New("site: CSRF cookie not set")
	ErrCSRFInvalid  = errors.New("site: CSRF token signature invalid")
	ErrCSRFMismatch = errors.New("site: CSRF token missing or incorrect")
)

// CSRF implements signed double-submit tokens: a random nonce plus its
// HMAC-SHA256 under the secret key, stored in a cookie and echoed in the form.
type CSRF struct {
	secret []byte
	secure bool
}

// NewCSRF builds the token issuer. secure marks the cookie Secure.
func NewCSRF(secret string, secure bool) (*CSRF, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("site: CSRF secret is required")
	}
	return &CSRF{secret: []byte(secret), secure: secure}, nil
}

func (c *CSRF) sign(nonce string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (c *CSRF) issue() (string, error) {
	buf := make([]byte, csrfNonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	nonce := base64.RawURLEncoding.EncodeToString(buf)
	return nonce + "." + c.sign(nonce), nil
}

func (c *CSRF) valid(token string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(c.sign(nonce)))
}

// Token returns the request's token, reusing a valid cookie and otherwise
// issuing a new one and setting the cookie on w.
func (c *CSRF) Token(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil && c.valid(cookie.Value) {
		return cookie.Value, nil
	}
	token, err := c.issue()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Verify checks that the cookie carries a valid signature and that the form
// field (or header) repeats it. The request form must already be parsed.
func (c *CSRF) Verify(r *http.Request) error {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return ErrCSRFMissing
	}
	if !c.valid(cookie.Value) {
		return ErrCSRFInvalid
	}
	submitted := r.PostFormValue(CSRFFieldName)
	if submitted == "" {
		submitted = r.Header.Get(CSRFHeaderName)
	}
	if !hmac.Equal([]byte(submitted), []byte(cookie.Value)) {
		return ErrCSRFMismatch
	}
	return nil
}
