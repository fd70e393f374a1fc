// Package twocaptcha provides a kaveri.CaptchaResolver backed by the
// 2Captcha solving service.
package twocaptcha

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/kaveri"
)

// DefaultBaseURL is the production 2Captcha API address.
const DefaultBaseURL = "http://2captcha.com"

// DefaultPollInterval is how often the service is asked for a solution.
const DefaultPollInterval = 5 * time.Second

// DefaultSolveTimeout is the hard deadline for one solve, submission
// included. The service usually answers in 10-30 seconds.
const DefaultSolveTimeout = 120 * time.Second

// notReady is the service's poll answer while a worker is still typing.
const notReady = "CAPCHA_NOT_READY"

// Ensure Client implements kaveri.CaptchaResolver at compile time.
var _ kaveri.CaptchaResolver = (*Client)(nil)

// Client solves image captchas through the 2Captcha HTTP API.
type Client struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	solveTimeout time.Duration
	httpClient   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the service address. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithPollInterval sets the delay between result polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithSolveTimeout sets the hard deadline for one solve.
func WithSolveTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.solveTimeout = d
	}
}

// NewClient creates a 2Captcha client with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      DefaultBaseURL,
		pollInterval: DefaultPollInterval,
		solveTimeout: DefaultSolveTimeout,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the shape of every 2Captcha answer in json=1 mode.
// Request carries the task ID, the solved text, or an error code
// depending on Status.
type apiResponse struct {
	Status  int    `json:"status"`
	Request string `json:"request"`
}

// Solve submits the challenge image and polls until the service answers.
// Returns ETIMEOUT when the deadline passes and EUNAVAILABLE when the
// service reports an error.
func (c *Client) Solve(ctx context.Context, challenge *kaveri.CaptchaChallenge) (*kaveri.CaptchaSolution, error) {
	ctx, cancel := context.WithTimeout(ctx, c.solveTimeout)
	defer cancel()

	taskID, err := c.submit(ctx, challenge.Image)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, kaveri.Errorf(kaveri.ETIMEOUT, "captcha solving timed out after %s", c.solveTimeout)
		case <-ticker.C:
		}

		text, done, err := c.poll(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if done {
			return &kaveri.CaptchaSolution{ChallengeID: challenge.ID, Text: text}, nil
		}
	}
}

func (c *Client) submit(ctx context.Context, image []byte) (string, error) {
	form := url.Values{
		"key":    {c.apiKey},
		"method": {"base64"},
		"body":   {base64.StdEncoding.EncodeToString(image)},
		"json":   {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/in.php", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result apiResponse
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	if result.Status != 1 {
		return "", kaveri.Errorf(kaveri.EUNAVAILABLE, "captcha submit rejected: %s", result.Request)
	}
	return result.Request, nil
}

// poll asks for the solution once. done is false while the service is
// still working on the task.
func (c *Client) poll(ctx context.Context, taskID string) (text string, done bool, err error) {
	query := url.Values{
		"key":    {c.apiKey},
		"action": {"get"},
		"id":     {taskID},
		"json":   {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/res.php?"+query.Encode(), nil)
	if err != nil {
		return "", false, err
	}

	var result apiResponse
	if err := c.do(req, &result); err != nil {
		return "", false, err
	}

	switch {
	case result.Status == 1:
		return result.Request, true, nil
	case result.Request == notReady:
		return "", false, nil
	default:
		return "", false, kaveri.Errorf(kaveri.EUNAVAILABLE, "captcha service error: %s", result.Request)
	}
}

func (c *Client) do(req *http.Request, out *apiResponse) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return kaveri.Errorf(kaveri.ETIMEOUT, "captcha solving timed out after %s", c.solveTimeout)
		}
		return kaveri.Errorf(kaveri.EUNAVAILABLE, "captcha service unreachable: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return kaveri.Errorf(kaveri.EUNAVAILABLE, "captcha service returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return kaveri.Errorf(kaveri.EUNAVAILABLE, "captcha service response is not valid JSON: %s", err)
	}
	return nil
}
