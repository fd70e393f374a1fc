// Package slog provides logging decorators for the portal-facing clients.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/kaveri"
)

// Ensure LoggingHierarchyClient implements kaveri.HierarchyClient.
var _ kaveri.HierarchyClient = (*LoggingHierarchyClient)(nil)

// LoggingHierarchyClient wraps a HierarchyClient with per-call logging.
type LoggingHierarchyClient struct {
	next   kaveri.HierarchyClient
	logger *slog.Logger
}

// NewLoggingHierarchyClient creates a new LoggingHierarchyClient.
func NewLoggingHierarchyClient(next kaveri.HierarchyClient, logger *slog.Logger) *LoggingHierarchyClient {
	return &LoggingHierarchyClient{next: next, logger: logger}
}

// FetchDistricts delegates to the wrapped client and logs the operation.
func (c *LoggingHierarchyClient) FetchDistricts(ctx context.Context) (districts []*kaveri.District, err error) {
	defer func(begin time.Time) {
		c.logger.Info("fetch districts",
			"count", len(districts),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.FetchDistricts(ctx)
}

// FetchTalukas delegates to the wrapped client and logs the operation.
func (c *LoggingHierarchyClient) FetchTalukas(ctx context.Context, districtCode int) (talukas []*kaveri.Taluka, err error) {
	defer func(begin time.Time) {
		c.logger.Info("fetch talukas",
			"district", districtCode,
			"count", len(talukas),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.FetchTalukas(ctx, districtCode)
}

// FetchHoblis delegates to the wrapped client and logs the operation.
func (c *LoggingHierarchyClient) FetchHoblis(ctx context.Context, talukCode int) (hoblis []*kaveri.Hobli, err error) {
	defer func(begin time.Time) {
		c.logger.Info("fetch hoblis",
			"taluka", talukCode,
			"count", len(hoblis),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.FetchHoblis(ctx, talukCode)
}

// FetchVillages delegates to the wrapped client and logs the operation.
func (c *LoggingHierarchyClient) FetchVillages(ctx context.Context, hobliCode int) (villages []*kaveri.Village, err error) {
	defer func(begin time.Time) {
		c.logger.Info("fetch villages",
			"hobli", hobliCode,
			"count", len(villages),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.FetchVillages(ctx, hobliCode)
}
