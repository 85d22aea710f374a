package entity

import "time"

// LivenessSession is one server-issued face-liveness verification attempt.
type LivenessSession struct {
	Token     string
	ExpiresAt time.Time
}

func (s LivenessSession) Expired(now time.Time) bool {
	if s.Token == "" {
		return true
	}
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

type LivenessResult struct {
	IsLive         bool   `json:"is_live"`
	RedirectURL    string `json:"redirect_url,omitempty"`
	RemainingTries int    `json:"remaining_tries"`
}
