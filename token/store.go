package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Token lifetimes mirror the backend's issuing policy: access tokens live a
// day, refresh tokens a week.
const (
	AccessTokenLifetime  = 24 * time.Hour
	RefreshTokenLifetime = 7 * 24 * time.Hour
)

// Pair is the persisted credential pair. The access token authorizes
// individual API calls; the refresh token is used solely to mint new access
// tokens. Secure and SameSiteStrict are transmission attributes: a Secure
// pair must only travel over encrypted transport, and a SameSiteStrict pair
// only to the configured backend host. They are enforced by the request
// pipeline, not here.
type Pair struct {
	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token"`
	AccessExpiry   time.Time `json:"access_expiry"`
	RefreshExpiry  time.Time `json:"refresh_expiry"`
	Secure         bool      `json:"secure"`
	SameSiteStrict bool      `json:"same_site_strict"`
}

// Store persists the token pair. Implementations must never fail loudly:
// storage being unavailable degrades to "no persisted session" and is not an
// error the rest of the application needs to handle.
type Store interface {
	// Set persists the pair, stamping expiries and transmission attributes.
	Set(pair Pair)
	// Get returns the stored pair. An expired access token is dropped from
	// the returned pair; an expired refresh token makes the whole pair absent.
	Get() (Pair, bool)
	// Clear removes both tokens unconditionally. Idempotent.
	Clear()
}

// accessExpiryFrom derives the access token's expiry from its JWT exp claim.
// Opaque (non-JWT) tokens fall back to the fixed access lifetime.
func accessExpiryFrom(raw string, now time.Time) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return now.Add(AccessTokenLifetime)
}
