package dto

import "time"

// TokenPair is the result of a successful login or refresh. RefreshExpiresAt
// is the exp claim of RefreshToken; the transport layer uses it for the
// cookie lifetime and the session registry mirrors it for replay detection.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}
