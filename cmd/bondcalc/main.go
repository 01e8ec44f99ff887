package main

import (
	"fmt"
	"io"
	"os"

	"bondcalc/internal/application/service/pricing"
	"bondcalc/internal/application/service/validation"
	"bondcalc/internal/application/service/valuation"
	"bondcalc/internal/config"
	"bondcalc/internal/domain/entity/bond"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	flagFaceValue      = "face-value"
	flagCouponRate     = "coupon-rate"
	flagYears          = "years"
	flagMarketRate     = "market-rate"
	flagFrequency      = "frequency"
	flagZeroRatePolicy = "zero-rate-policy"
)

// flagFields maps CLI flags to request fields. Values stay strings so the
// CLI goes through the same validation as HTTP requests.
var flagFields = map[string]string{
	flagFaceValue:  bond.FieldFaceValue,
	flagCouponRate: bond.FieldAnnualCouponRate,
	flagYears:      bond.FieldYearsToMaturity,
	flagMarketRate: bond.FieldAnnualMarketRate,
	flagFrequency:  bond.FieldPaymentFrequency,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.New().Fatalf("config error: %v", err)
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	os.Exit(run(os.Args, cfg, logger, os.Stdout, os.Stderr))
}

func run(args []string, cfg *config.Config, logger logrus.FieldLogger, stdout, stderr io.Writer) int {
	app := newApp(cfg, logger)
	app.Writer = stdout
	app.ErrWriter = stderr
	if err := app.Run(args); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func newApp(cfg *config.Config, logger logrus.FieldLogger) *cli.App {
	return &cli.App{
		Name:  "bondcalc",
		Usage: "present value of fixed-coupon bonds",
		Commands: []*cli.Command{
			{
				Name:  "value",
				Usage: "value one bond",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagFaceValue, Usage: "principal repaid at maturity"},
					&cli.StringFlag{Name: flagCouponRate, Usage: "annual coupon rate, percent"},
					&cli.StringFlag{Name: flagYears, Usage: "years to maturity"},
					&cli.StringFlag{Name: flagMarketRate, Usage: "annual market rate, percent"},
					&cli.StringFlag{Name: flagFrequency, Usage: "coupon payments per year"},
					&cli.StringFlag{
						Name:  flagZeroRatePolicy,
						Usage: "limit or reject",
						Value: cfg.Pricing.ZeroRatePolicy,
					},
				},
				Action: func(c *cli.Context) error {
					return valueAction(c, cfg, logger)
				},
			},
		},
	}
}

func valueAction(c *cli.Context, cfg *config.Config, logger logrus.FieldLogger) error {
	policy, err := pricing.ParseZeroRatePolicy(c.String(flagZeroRatePolicy))
	if err != nil {
		return err
	}
	validator, err := validation.NewValidator(cfg.Limits.Bond())
	if err != nil {
		return fmt.Errorf("init validator: %w", err)
	}
	service := valuation.NewService(validator, pricing.NewEngine(policy), valuation.WithLogger(logger))

	raw := make(map[string]any, len(flagFields))
	for flag, field := range flagFields {
		if c.IsSet(flag) {
			raw[field] = c.String(flag)
		}
	}

	value, err := service.Value(c.Context, raw)
	if err != nil {
		if !valuation.IsDomainError(err) {
			logger.WithError(err).Error("valuation failed")
		}
		return err
	}
	logger.WithFields(logrus.Fields{
		"params":           raw,
		"zero_rate_policy": policy,
	}).Debug("bond valued")
	fmt.Fprintln(c.App.Writer, value.String())
	return nil
}
