package domain

// AccountProfile is the authenticated user identity for one session. It is
// created once after the auth handshake succeeds and never mutated; a failed
// handshake leaves the session without a profile rather than with a partial
// one.
type AccountProfile struct {
	UserID    string `json:"user_id"`
	FID       int64  `json:"fid"`
	AvatarURL string `json:"profile_image"`
	Wallet    string `json:"address"`
	Token     string `json:"-"`
}
