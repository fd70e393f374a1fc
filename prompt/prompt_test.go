package prompt_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/kaveri"
	"github.com/fwojciec/kaveri/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Solve(t *testing.T) {
	t.Parallel()

	t.Run("prompts with the image path and returns the typed text", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		r := &prompt.Resolver{
			In:  strings.NewReader("X7K9Q\n"),
			Out: &out,
			Dir: t.TempDir(),
		}

		solution, err := r.Solve(context.Background(), &kaveri.CaptchaChallenge{ID: "cid-1", Image: []byte{0x1}})

		require.NoError(t, err)
		assert.Equal(t, "cid-1", solution.ChallengeID)
		assert.Equal(t, "X7K9Q", solution.Text)
		assert.Contains(t, out.String(), "captcha_cid-1.png")
	})

	t.Run("trims whitespace around the answer", func(t *testing.T) {
		t.Parallel()

		r := &prompt.Resolver{
			In:  strings.NewReader("  x7k9q  \n"),
			Out: &bytes.Buffer{},
			Dir: t.TempDir(),
		}

		solution, err := r.Solve(context.Background(), &kaveri.CaptchaChallenge{ID: "cid-2", Image: []byte{0x1}})

		require.NoError(t, err)
		assert.Equal(t, "x7k9q", solution.Text)
	})

	t.Run("rejects an empty answer", func(t *testing.T) {
		t.Parallel()

		r := &prompt.Resolver{
			In:  strings.NewReader("\n"),
			Out: &bytes.Buffer{},
			Dir: t.TempDir(),
		}

		_, err := r.Solve(context.Background(), &kaveri.CaptchaChallenge{ID: "cid-3", Image: []byte{0x1}})
		assert.Equal(t, kaveri.EINVALID, kaveri.ErrorCode(err))
	})

	t.Run("cancellation interrupts the wait", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		// A reader that never delivers a line simulates an idle operator.
		r := &prompt.Resolver{
			In:  blockedReader{},
			Out: &bytes.Buffer{},
			Dir: t.TempDir(),
		}

		_, err := r.Solve(ctx, &kaveri.CaptchaChallenge{ID: "cid-4", Image: []byte{0x1}})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

type blockedReader struct{}

func (blockedReader) Read([]byte) (int, error) {
	select {}
}
