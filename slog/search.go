package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/kaveri"
)

// Ensure LoggingSearchClient implements kaveri.SearchClient.
var _ kaveri.SearchClient = (*LoggingSearchClient)(nil)

// LoggingSearchClient wraps a SearchClient with per-call logging. The
// captcha text is never logged.
type LoggingSearchClient struct {
	next   kaveri.SearchClient
	logger *slog.Logger
}

// NewLoggingSearchClient creates a new LoggingSearchClient.
func NewLoggingSearchClient(next kaveri.SearchClient, logger *slog.Logger) *LoggingSearchClient {
	return &LoggingSearchClient{next: next, logger: logger}
}

// Search delegates to the wrapped client and logs the operation.
func (c *LoggingSearchClient) Search(ctx context.Context, req kaveri.SearchRequest) (resp *kaveri.SearchResponse, err error) {
	defer func(begin time.Time) {
		rows := 0
		status := ""
		if resp != nil {
			rows = len(resp.Rows)
			status = searchStatusLabel(resp.Status)
		}
		c.logger.Info("ec search",
			"village", req.VillageCode,
			"party", req.Params.PartyName,
			"status", status,
			"rows", rows,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Search(ctx, req)
}

func searchStatusLabel(s kaveri.SearchStatus) string {
	switch s {
	case kaveri.SearchOK:
		return "ok"
	case kaveri.SearchUnauthorized:
		return "unauthorized"
	case kaveri.SearchInvalidCaptcha:
		return "invalid_captcha"
	default:
		return "error"
	}
}
