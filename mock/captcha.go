package mock

import (
	"context"

	"github.com/fwojciec/kaveri"
)

var _ kaveri.ChallengeClient = (*ChallengeClient)(nil)

// ChallengeClient is a mock implementation of kaveri.ChallengeClient.
type ChallengeClient struct {
	NewChallengeFn func(ctx context.Context) (*kaveri.CaptchaChallenge, error)
}

func (c *ChallengeClient) NewChallenge(ctx context.Context) (*kaveri.CaptchaChallenge, error) {
	return c.NewChallengeFn(ctx)
}

var _ kaveri.CaptchaResolver = (*CaptchaResolver)(nil)

// CaptchaResolver is a mock implementation of kaveri.CaptchaResolver.
type CaptchaResolver struct {
	SolveFn func(ctx context.Context, challenge *kaveri.CaptchaChallenge) (*kaveri.CaptchaSolution, error)
}

func (r *CaptchaResolver) Solve(ctx context.Context, challenge *kaveri.CaptchaChallenge) (*kaveri.CaptchaSolution, error) {
	return r.SolveFn(ctx, challenge)
}
