package valuation

import (
	"context"
	"errors"
	"fmt"

	"bondcalc/internal/domain/entity/bond"
	"bondcalc/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

var ErrBatchTooLarge = errors.New("batch exceeds the maximum number of bonds")

// Outcome is the result of one batch item: either Value or Err is set.
type Outcome struct {
	Value bond.Money
	Err   error
}

type Service struct {
	validator interfaces.ParametersValidator
	pricer    interfaces.Pricer
	cache     interfaces.ValueCache
	logger    logrus.FieldLogger
	workers   int
	maxBatch  int
}

type Option func(*Service)

// WithCache enables result caching. Cache faults never fail a valuation.
func WithCache(c interfaces.ValueCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.logger = l }
}

// WithBatchLimits bounds batch size and parallelism. Non-positive values keep the defaults.
func WithBatchLimits(maxItems, workers int) Option {
	return func(s *Service) {
		if maxItems > 0 {
			s.maxBatch = maxItems
		}
		if workers > 0 {
			s.workers = workers
		}
	}
}

func NewService(v interfaces.ParametersValidator, p interfaces.Pricer, opts ...Option) *Service {
	s := &Service{
		validator: v,
		pricer:    p,
		workers:   defaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		s.logger = l
	}
	return s
}

// Value validates raw and prices the resulting bond.
func (s *Service) Value(ctx context.Context, raw map[string]any) (bond.Money, error) {
	params, err := s.validator.Validate(raw)
	if err != nil {
		return bond.Money{}, err
	}

	key := s.pricer.CacheTag() + ":" + params.Key()
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("bond value cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	value, err := s.pricer.Price(params)
	if err != nil {
		return bond.Money{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, value); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("bond value cache write failed")
		}
	}
	return value, nil
}

// ValueBatch values every item in parallel and keeps input order. Domain
// failures stay in the item's Outcome; any other failure aborts the batch.
func (s *Service) ValueBatch(ctx context.Context, raws []map[string]any) ([]Outcome, error) {
	if s.maxBatch > 0 && len(raws) > s.maxBatch {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrBatchTooLarge, len(raws), s.maxBatch)
	}

	outcomes := make([]Outcome, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, raw := range raws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			value, err := s.Value(gctx, raw)
			if err != nil && !IsDomainError(err) {
				return fmt.Errorf("bond %d: %w", i, err)
			}
			outcomes[i] = Outcome{Value: value, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// IsDomainError reports whether err stems from the caller's input.
func IsDomainError(err error) bool {
	return errors.Is(err, bond.ErrValidation) || errors.Is(err, bond.ErrCalculation)
}
