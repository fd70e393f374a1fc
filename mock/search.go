package mock

import (
	"context"

	"github.com/fwojciec/kaveri"
)

var _ kaveri.SearchClient = (*SearchClient)(nil)

// SearchClient is a mock implementation of kaveri.SearchClient.
type SearchClient struct {
	SearchFn func(ctx context.Context, req kaveri.SearchRequest) (*kaveri.SearchResponse, error)
}

func (c *SearchClient) Search(ctx context.Context, req kaveri.SearchRequest) (*kaveri.SearchResponse, error) {
	return c.SearchFn(ctx, req)
}

var _ kaveri.ResultService = (*ResultService)(nil)

// ResultService is a mock implementation of kaveri.ResultService.
type ResultService struct {
	AppendResultsFn func(ctx context.Context, results []*kaveri.SearchResult) error
	FindResultsFn   func(ctx context.Context, filter kaveri.ResultFilter) ([]*kaveri.SearchResult, error)
}

func (s *ResultService) AppendResults(ctx context.Context, results []*kaveri.SearchResult) error {
	return s.AppendResultsFn(ctx, results)
}

func (s *ResultService) FindResults(ctx context.Context, filter kaveri.ResultFilter) ([]*kaveri.SearchResult, error) {
	return s.FindResultsFn(ctx, filter)
}
