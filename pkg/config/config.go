// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/spf13/viper"
)

type Config struct {
	Logger  log.Logger `yaml:"-" json:"-"`
	Logging Logging

	Admin Admin

	// Seed drives the IBAN and card number generator. Two runs with the
	// same seed over the same batch produce identical identifiers.
	Seed int64

	Ledger   Ledger
	Exchange Exchange
	Business Business
	Stream   Stream
}

type Logging struct {
	Format string
	Level  string
}

type Admin struct {
	BindAddress string
	Disabled    bool
}

type Ledger struct {
	// Backend picks the storage strategy: indexed, derived or sqlite.
	Backend string

	// SQLitePath overrides the in-memory DSN of the sqlite backend.
	SQLitePath string
}

func (cfg Ledger) Validate() error {
	switch strings.ToLower(cfg.Backend) {
	case "", "indexed", "derived", "sqlite":
		return nil
	}
	return fmt.Errorf("unknown ledger backend %q", cfg.Backend)
}

type Exchange struct {
	// Recompute selects when composed rates refresh after an incremental
	// registration: "lazy" re-resolves on the next lookup, "eager"
	// re-resolves immediately after the declaration load only.
	Recompute string
}

func (cfg Exchange) Validate() error {
	switch strings.ToLower(cfg.Recompute) {
	case "", "lazy", "eager":
		return nil
	}
	return fmt.Errorf("unknown exchange recompute policy %q", cfg.Recompute)
}

type Business struct {
	// DefaultLimitRON is the spending and deposit limit, in RON, applied
	// to fresh business accounts after conversion into their currency.
	DefaultLimitRON float64
}

func (cfg Business) Validate() error {
	if cfg.DefaultLimitRON < 0 {
		return errors.New("negative business limit")
	}
	return nil
}

type Stream struct {
	// TransactionsURL is a gocloud.dev pubsub URL receiving every
	// committed transaction, e.g. mem://banksim-transactions. Empty
	// disables publishing.
	TransactionsURL string

	// KafkaBrokers publishes the same feed to a Kafka topic instead of a
	// pubsub URL. Set either TransactionsURL or KafkaBrokers, not both.
	KafkaBrokers []string
	KafkaTopic   string
}

func (cfg Stream) Validate() error {
	if cfg.TransactionsURL != "" && len(cfg.KafkaBrokers) > 0 {
		return errors.New("both transactionsURL and kafkaBrokers are set")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return errors.New("kafkaBrokers set without a kafkaTopic")
	}
	return nil
}

func Empty() *Config {
	return &Config{
		Logger: log.NewNopLogger(),
		Admin: Admin{
			BindAddress: ":9094",
		},
		Seed: 1,
		Ledger: Ledger{
			Backend: "indexed",
		},
		Exchange: Exchange{
			Recompute: "lazy",
		},
		Business: Business{
			DefaultLimitRON: 500.0,
		},
	}
}

func FromFile(path string) (*Config, error) {
	cfg := Empty()
	if path != "" {
		bs, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %v", path, err)
		}
		return Read(bs)
	}
	cfg = setupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Read(data []byte) (*Config, error) {
	vip := viper.New()
	vip.SetConfigType("yaml")
	if err := vip.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("problem reading config: %v", err)
	}

	cfg := Empty()
	if err := vip.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("problem unmarshaling config: %v", err)
	}

	cfg = setupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(cfg *Config) *Config {
	if strings.EqualFold(cfg.Logging.Format, "json") {
		cfg.Logger = log.NewJSONLogger(os.Stderr)
	} else {
		cfg.Logger = log.NewLogfmtLogger(os.Stderr)
	}

	cfg.Logger = log.With(cfg.Logger, "ts", log.DefaultTimestampUTC)
	cfg.Logger = log.With(cfg.Logger, "caller", log.DefaultCaller)

	return cfg
}

// Validate checks a Config fields and performs various confirmations
// their values conform to expectations.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.New("missing Config")
	}

	if err := cfg.Ledger.Validate(); err != nil {
		return fmt.Errorf("ledger: %v", err)
	}
	if err := cfg.Exchange.Validate(); err != nil {
		return fmt.Errorf("exchange: %v", err)
	}
	if err := cfg.Business.Validate(); err != nil {
		return fmt.Errorf("business: %v", err)
	}
	if err := cfg.Stream.Validate(); err != nil {
		return fmt.Errorf("stream: %v", err)
	}

	return nil
}
