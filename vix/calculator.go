package vix

import (
	"fmt"
	"io"

	"github.com/bcdannyboy/indiavix/chain"
	"github.com/bcdannyboy/indiavix/models"
	"github.com/sirupsen/logrus"
)

// Expiry is one option strip with its expiry inputs.
type Expiry struct {
	Strip   chain.Strip
	Context models.ExpiryContext
}

// Input holds the near and next month expiries bracketing 30 days.
type Input struct {
	Near Expiry
	Next Expiry
}

// Calculator computes the index from two expiries. It holds only immutable
// configuration and is safe for concurrent use.
type Calculator struct {
	policy models.Policy
	log    *logrus.Entry
}

type Option func(*Calculator)

func WithPolicy(p models.Policy) Option {
	return func(c *Calculator) {
		c.policy = p
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(c *Calculator) {
		c.log = log
	}
}

func New(opts ...Option) *Calculator {
	silent := logrus.New()
	silent.SetOutput(io.Discard)

	c := &Calculator{
		policy: models.DefaultPolicy(),
		log:    logrus.NewEntry(silent),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) Policy() models.Policy {
	return c.policy
}

// Calculate estimates the variance of each expiry on its own copy of the
// strip and blends the two to a 30 day index.
func (c *Calculator) Calculate(in Input) (Result, error) {
	near, err := c.estimate("near", in.Near)
	if err != nil {
		return Result{}, err
	}
	next, err := c.estimate("next", in.Next)
	if err != nil {
		return Result{}, err
	}

	mte1, mte2 := near.Expiry.MinutesToExpiry, next.Expiry.MinutesToExpiry
	w1, w2, err := Weights(mte1, mte2)
	if err != nil {
		return Result{}, err
	}

	index, err := Blend(near.Variance, mte1, next.Variance, mte2)
	if err != nil {
		return Result{}, err
	}

	c.log.WithFields(logrus.Fields{
		"index":       index,
		"near_weight": w1,
		"next_weight": w2,
	}).Debug("blended expiries")

	return Result{
		Index:      index,
		Near:       near,
		Next:       next,
		NearWeight: w1,
		NextWeight: w2,
	}, nil
}

func (c *Calculator) estimate(name string, e Expiry) (models.VarianceEstimate, error) {
	est, err := models.EstimateVariance(e.Strip.Clone(), e.Context, c.policy)
	if err != nil {
		c.log.WithError(err).WithField("expiry", name).Warn("variance estimate failed")
		return models.VarianceEstimate{}, fmt.Errorf("%s expiry: %w", name, err)
	}

	fields := logrus.Fields{
		"expiry":     name,
		"atm":        est.ATMStrike,
		"strikes":    est.Strikes,
		"call_knots": est.CallKnots,
		"put_knots":  est.PutKnots,
		"variance":   est.Variance,
	}
	if len(est.Unpriced) > 0 {
		c.log.WithFields(fields).WithField("unpriced", est.Unpriced).
			Warnf("%d strikes outside the clean quote range handled by %s", len(est.Unpriced), c.policy.Missing)
	} else {
		c.log.WithFields(fields).Debug("estimated variance")
	}
	return est, nil
}

// Calculate runs the default calculator.
func Calculate(in Input) (float64, error) {
	res, err := New().Calculate(in)
	if err != nil {
		return 0, err
	}
	return res.Index, nil
}
