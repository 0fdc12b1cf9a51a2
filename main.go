package main

import (
	"fmt"
	"os"

	"github.com/bcdannyboy/indiavix/chain"
	"github.com/bcdannyboy/indiavix/config"
	"github.com/bcdannyboy/indiavix/vix"
	"github.com/sirupsen/logrus"
	"github.com/xhhuango/json"
)

type report struct {
	VIX string `json:"vix"`
	vix.Result
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Error loading config: %v", err)
	}

	log := logrus.New()
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	rep, err := run(cfg, logrus.NewEntry(log))
	if err != nil {
		log.Fatal(err)
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling result: %v", err)
	}
	fmt.Println(string(out))

	if cfg.Output != "" {
		if err := os.WriteFile(cfg.Output, out, 0644); err != nil {
			log.Fatalf("Error writing %s: %v", cfg.Output, err)
		}
		log.Infof("Result written to %s", cfg.Output)
	}
}

// run loads both option chains named by cfg and calculates the index.
func run(cfg config.Config, log *logrus.Entry) (report, error) {
	in := vix.Input{
		Near: vix.Expiry{Context: cfg.Near.Context},
		Next: vix.Expiry{Context: cfg.Next.Context},
	}

	var err error
	if in.Near.Strip, err = chain.LoadCSV(cfg.Near.ChainPath); err != nil {
		return report{}, fmt.Errorf("loading near month chain: %w", err)
	}
	if in.Next.Strip, err = chain.LoadCSV(cfg.Next.ChainPath); err != nil {
		return report{}, fmt.Errorf("loading next month chain: %w", err)
	}
	log.WithFields(logrus.Fields{
		"near_strikes": len(in.Near.Strip),
		"next_strikes": len(in.Next.Strip),
		"policy":       cfg.Policy.Missing,
	}).Info("loaded option chains")

	res, err := vix.New(vix.WithPolicy(cfg.Policy), vix.WithLogger(log)).Calculate(in)
	if err != nil {
		return report{}, fmt.Errorf("calculating index: %w", err)
	}

	return report{VIX: res.Rounded(2).StringFixed(2), Result: res}, nil
}
