package http

import (
	"context"
	"io"
	"net/http"

	"github.com/fwojciec/kaveri"
)

// Ensure Client implements kaveri.ChallengeClient at compile time.
var _ kaveri.ChallengeClient = (*Client)(nil)

// NewChallenge requests a fresh captcha image. The portal returns the
// challenge ID in the "i" response header and the PNG in the body.
func (c *Client) NewChallenge(ctx context.Context) (*kaveri.CaptchaChallenge, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/Generate", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, kaveri.Errorf(kaveri.EUNAVAILABLE, "captcha request failed: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, kaveri.Errorf(kaveri.EUNAVAILABLE, "captcha endpoint returned HTTP %d", resp.StatusCode)
	}

	id := resp.Header.Get("i")
	if id == "" {
		return nil, kaveri.Errorf(kaveri.EINTERNAL, "captcha response is missing the challenge ID header")
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, kaveri.Errorf(kaveri.EUNAVAILABLE, "reading captcha image: %s", err)
	}
	if len(image) == 0 {
		return nil, kaveri.Errorf(kaveri.EINTERNAL, "captcha response has an empty image")
	}

	return &kaveri.CaptchaChallenge{ID: id, Image: image}, nil
}
