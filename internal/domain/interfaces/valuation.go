package interfaces

import (
	"context"

	"bondcalc/internal/domain/entity/bond"
)

type ParametersValidator interface {
	Validate(raw map[string]any) (bond.Parameters, error)
}

type Pricer interface {
	Price(params bond.Parameters) (bond.Money, error)
	// CacheTag distinguishes results that depend on pricer settings.
	CacheTag() string
}

type ValueCache interface {
	Get(ctx context.Context, key string) (bond.Money, bool, error)
	Set(ctx context.Context, key string, value bond.Money) error
}
