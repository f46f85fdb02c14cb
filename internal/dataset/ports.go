package dataset

import (
	"context"
	"errors"

	"ecomdash/internal/core"
)

// Ports for inbound data sources.
type (
	// OrderSource reads the combined orders dataset.
	OrderSource interface {
		LoadOrders(ctx context.Context) ([]core.OrderRecord, error)
	}

	// GeoSource reads the customer geolocation dataset.
	GeoSource interface {
		LoadGeolocation(ctx context.Context) ([]core.GeoPoint, error)
	}
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyFile     = errors.New("empty file")
)
