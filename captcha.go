package kaveri

import "context"

// CaptchaChallenge is one challenge image issued by the portal. Challenge
// IDs are single-use on the remote side: a failed solve is retried with a
// fresh challenge, never by resubmitting an old ID.
type CaptchaChallenge struct {
	ID    string `json:"id"`
	Image []byte `json:"image"`
}

// CaptchaSolution is the solved text for one challenge.
type CaptchaSolution struct {
	ChallengeID string  `json:"challengeId"`
	Text        string  `json:"text"`
	Cost        float64 `json:"cost"`
}

// ChallengeClient obtains fresh captcha challenges from the portal.
type ChallengeClient interface {
	NewChallenge(ctx context.Context) (*CaptchaChallenge, error)
}

// CaptchaResolver turns a challenge image into solved text. Backends are
// interchangeable: a human prompt that blocks without a timeout, or a
// third-party solving service that polls under a hard deadline and returns
// ETIMEOUT or EUNAVAILABLE on failure. A resolver never retries a single
// challenge past its own error taxonomy; retrying with a fresh challenge
// is the caller's decision.
type CaptchaResolver interface {
	Solve(ctx context.Context, challenge *CaptchaChallenge) (*CaptchaSolution, error)
}
