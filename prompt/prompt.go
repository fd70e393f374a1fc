// Package prompt provides a kaveri.CaptchaResolver that asks a human: the
// challenge image is written to a file and the solution is read from the
// terminal.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/kaveri"
)

// Ensure Resolver implements kaveri.CaptchaResolver at compile time.
var _ kaveri.CaptchaResolver = (*Resolver)(nil)

// Resolver solves captchas by prompting the operator. It blocks without a
// timeout; interactive waits are bounded by the operator, not the clock.
type Resolver struct {
	// In is where the solution is read from, one line per challenge.
	In io.Reader
	// Out is where the prompt is written.
	Out io.Writer
	// Dir is where challenge images are written. Empty means the OS temp
	// directory.
	Dir string
}

// NewResolver creates a Resolver reading from stdin and writing to stdout.
func NewResolver() *Resolver {
	return &Resolver{In: os.Stdin, Out: os.Stdout}
}

// Solve writes the image to a file, prints its path, and waits for the
// operator to type the text.
func (r *Resolver) Solve(ctx context.Context, challenge *kaveri.CaptchaChallenge) (*kaveri.CaptchaSolution, error) {
	dir := r.Dir
	if dir == "" {
		dir = os.TempDir()
	}

	path := filepath.Join(dir, "captcha_"+challenge.ID+".png")
	if err := os.WriteFile(path, challenge.Image, 0o644); err != nil {
		return nil, kaveri.Errorf(kaveri.EINTERNAL, "writing captcha image: %s", err)
	}
	defer os.Remove(path)

	fmt.Fprintf(r.Out, "Captcha image saved to %s\n", path)
	fmt.Fprint(r.Out, "Enter the captcha text: ")

	line, err := readLine(ctx, r.In)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(line)
	if text == "" {
		return nil, kaveri.Errorf(kaveri.EINVALID, "empty captcha text")
	}

	return &kaveri.CaptchaSolution{ChallengeID: challenge.ID, Text: text}, nil
}

// readLine reads one line, honoring cancellation while the operator types.
func readLine(ctx context.Context, in io.Reader) (string, error) {
	type result struct {
		line string
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			ch <- result{err: err}
			return
		}
		ch <- result{line: line}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}
