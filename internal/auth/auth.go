// Package auth implements the digest token scheme the scoring API accepts.
//
// Regular accounts present sha512(account + login + salt). The admin login
// presents sha512(<current hour, YYYYMMDDHH> + admin salt), which makes
// admin tokens expire hourly.
package auth

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

const (
	// AdminLogin is the login that triggers the admin token scheme and
	// the admin scoring short-circuit.
	AdminLogin = "admin"

	salt      = "Otus"
	adminSalt = "42"
)

// Authenticator validates digest tokens. The clock is injectable so tests
// can pin the admin token window.
type Authenticator struct {
	now func() time.Time
}

// New creates an Authenticator using the system clock.
func New() *Authenticator {
	return &Authenticator{now: time.Now}
}

// NewWithClock creates an Authenticator with a fixed clock source.
func NewWithClock(now func() time.Time) *Authenticator {
	return &Authenticator{now: now}
}

// Verify reports whether token is valid for the given account and login.
func (a *Authenticator) Verify(account, login, token string) bool {
	var expected string
	if login == AdminLogin {
		expected = digest(a.now().Format("2006010215") + adminSalt)
	} else {
		expected = digest(account + login + salt)
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

// AdminToken returns the token currently valid for the admin login. Exposed
// for tests and operator tooling.
func (a *Authenticator) AdminToken() string {
	return digest(a.now().Format("2006010215") + adminSalt)
}

// UserToken returns the token valid for a regular account/login pair.
func UserToken(account, login string) string {
	return digest(account + login + salt)
}

func digest(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
