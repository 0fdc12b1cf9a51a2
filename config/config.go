// Package config reads the command's settings from the environment, optionally
// seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/bcdannyboy/indiavix/models"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	EnvNearChain      = "VIX_NEAR_CHAIN"
	EnvNextChain      = "VIX_NEXT_CHAIN"
	EnvNearMTE        = "VIX_NEAR_MTE"
	EnvNextMTE        = "VIX_NEXT_MTE"
	EnvNearFutures    = "VIX_NEAR_FUTURES"
	EnvNextFutures    = "VIX_NEXT_FUTURES"
	EnvNearRate       = "VIX_NEAR_RATE"
	EnvNextRate       = "VIX_NEXT_RATE"
	EnvMaxSpreadRatio = "VIX_MAX_SPREAD_RATIO"
	EnvMinKnots       = "VIX_MIN_KNOTS"
	EnvMissingQuotes  = "VIX_MISSING_QUOTES"
	EnvLogLevel       = "VIX_LOG_LEVEL"
	EnvOutput         = "VIX_OUTPUT"
)

var ErrMissing = errors.New("missing required setting")

// Expiry is where one expiry's strip lives and the inputs that go with it.
type Expiry struct {
	ChainPath string
	Context   models.ExpiryContext
}

type Config struct {
	Near     Expiry
	Next     Expiry
	Policy   models.Policy
	LogLevel logrus.Level
	Output   string
}

// Load reads files (".env" when none are given) into the environment, without
// overriding variables that are already set, and parses the settings. Files
// that do not exist are skipped.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv parses the settings from the current environment.
func FromEnv() (Config, error) {
	var (
		cfg Config
		err error
	)

	if cfg.Near, err = expiry(EnvNearChain, EnvNearMTE, EnvNearFutures, EnvNearRate); err != nil {
		return Config{}, err
	}
	if cfg.Next, err = expiry(EnvNextChain, EnvNextMTE, EnvNextFutures, EnvNextRate); err != nil {
		return Config{}, err
	}

	cfg.Policy = models.DefaultPolicy()
	if v, ok := lookup(EnvMaxSpreadRatio); ok {
		if cfg.Policy.MaxSpreadRatio, err = strconv.ParseFloat(v, 64); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvMaxSpreadRatio, err)
		}
	}
	if v, ok := lookup(EnvMinKnots); ok {
		if cfg.Policy.MinKnots, err = strconv.Atoi(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvMinKnots, err)
		}
	}
	if cfg.Policy.Missing, err = models.ParseMissingQuotes(os.Getenv(EnvMissingQuotes)); err != nil {
		return Config{}, fmt.Errorf("%s: %w", EnvMissingQuotes, err)
	}
	if err := cfg.Policy.Validate(); err != nil {
		return Config{}, err
	}

	cfg.LogLevel = logrus.InfoLevel
	if v, ok := lookup(EnvLogLevel); ok {
		if cfg.LogLevel, err = logrus.ParseLevel(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}

	cfg.Output, _ = lookup(EnvOutput)
	return cfg, nil
}

func expiry(chainKey, mteKey, futuresKey, rateKey string) (Expiry, error) {
	var (
		e   Expiry
		err error
	)

	if e.ChainPath, err = required(chainKey); err != nil {
		return Expiry{}, err
	}

	v, err := required(mteKey)
	if err != nil {
		return Expiry{}, err
	}
	if e.Context.MinutesToExpiry, err = strconv.Atoi(v); err != nil {
		return Expiry{}, fmt.Errorf("%s: %w", mteKey, err)
	}

	if v, err = required(futuresKey); err != nil {
		return Expiry{}, err
	}
	if e.Context.FuturesPrice, err = strconv.ParseFloat(v, 64); err != nil {
		return Expiry{}, fmt.Errorf("%s: %w", futuresKey, err)
	}

	if v, err = required(rateKey); err != nil {
		return Expiry{}, err
	}
	if e.Context.RiskFreeRate, err = strconv.ParseFloat(v, 64); err != nil {
		return Expiry{}, fmt.Errorf("%s: %w", rateKey, err)
	}

	if err := e.Context.Validate(); err != nil {
		return Expiry{}, fmt.Errorf("%s, %s, %s: %w", mteKey, futuresKey, rateKey, err)
	}
	return e, nil
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func required(key string) (string, error) {
	v, ok := lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissing, key)
	}
	return v, nil
}
