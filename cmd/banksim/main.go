// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/moov-io/banksim"
	"github.com/moov-io/banksim/pkg/config"
	"github.com/moov-io/banksim/pkg/database"
	"github.com/moov-io/banksim/pkg/dispatch"
	"github.com/moov-io/banksim/pkg/exchange"
	"github.com/moov-io/banksim/pkg/input"
	"github.com/moov-io/banksim/pkg/ledger"
	"github.com/moov-io/banksim/pkg/stream"

	"github.com/moov-io/base/admin"
)

var (
	flagConfigFile = flag.String("config", "", "Filepath for config file to load")
	flagInput      = flag.String("input", "", "Filepath of the batch document (defaults to stdin)")
	flagOutput     = flag.String("output", "", "Filepath for result records (defaults to stdout)")
	flagLogFormat  = flag.String("log.format", "", "Format for log lines (Options: json, plain)")
	flagAdminAddr  = flag.String("admin.addr", "", "Admin HTTP listen address")
)

func main() {
	flag.Parse()

	path := *flagConfigFile
	if v := os.Getenv("CONFIG_FILE"); v != "" {
		path = v
	}
	cfg, err := config.FromFile(path)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	if *flagLogFormat != "" {
		cfg.Logging.Format = *flagLogFormat
	}
	if *flagAdminAddr != "" {
		cfg.Admin.BindAddress = *flagAdminAddr
	}
	cfg.Logger.Log("startup", fmt.Sprintf("Starting banksim version %s", banksim.Version))

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	// Admin server for liveness, version and metrics. A batch run is
	// short-lived, but scrapers and health checks still get a window.
	if !cfg.Admin.Disabled {
		adminServer := admin.NewServer(cfg.Admin.BindAddress)
		adminServer.AddVersionHandler(banksim.Version)
		go func() {
			cfg.Logger.Log("admin", fmt.Sprintf("listening on %s", adminServer.BindAddr()))
			if err := adminServer.Listen(); err != nil {
				cfg.Logger.Log("admin", fmt.Errorf("problem starting admin http: %v", err))
			}
		}()
		defer adminServer.Shutdown()
	}

	var db *sql.DB
	if strings.EqualFold(cfg.Ledger.Backend, "sqlite") {
		db, err = database.New(ctx, cfg.Logger, cfg.Ledger.SQLitePath)
		if err != nil {
			panic(fmt.Sprintf("error creating database: %v", err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				cfg.Logger.Log("exit", err)
			}
		}()
	}

	repo, err := ledger.New(cfg.Logger, cfg.Ledger.Backend, db)
	if err != nil {
		panic(fmt.Sprintf("error creating ledger: %v", err))
	}

	var publisher *stream.Publisher
	if len(cfg.Stream.KafkaBrokers) > 0 {
		publisher, err = stream.NewKafkaPublisher(cfg.Stream.KafkaBrokers, cfg.Stream.KafkaTopic)
	} else {
		publisher, err = stream.NewPublisher(ctx, cfg.Stream.TransactionsURL)
	}
	if err != nil {
		panic(fmt.Sprintf("error creating publisher: %v", err))
	}
	defer func() {
		if err := publisher.Shutdown(ctx); err != nil {
			cfg.Logger.Log("exit", err)
		}
	}()

	in := os.Stdin
	if *flagInput != "" {
		f, err := os.Open(*flagInput)
		if err != nil {
			panic(fmt.Sprintf("error opening input: %v", err))
		}
		defer f.Close()
		in = f
	}
	batch, err := input.Parse(cfg.Logger, in)
	if err != nil {
		panic(fmt.Sprintf("error reading batch: %v", err))
	}

	graph := exchange.NewGraph(cfg.Logger)
	graph.SetEagerOnly(strings.EqualFold(cfg.Exchange.Recompute, "eager"))
	for i := range batch.Rates {
		r := batch.Rates[i]
		if err := graph.RegisterRate(r.From, r.To, r.Rate); err != nil {
			panic(fmt.Sprintf("error registering rate %s/%s: %v", r.From, r.To, err))
		}
	}
	if err := graph.Resolve(); err != nil {
		panic(fmt.Sprintf("error resolving exchange rates: %v", err))
	}

	for i := range batch.Users {
		if err := repo.RegisterUser(batch.Users[i]); err != nil {
			panic(fmt.Sprintf("error registering user: %v", err))
		}
	}
	for i := range batch.Commerciants {
		if err := repo.RegisterCommerciant(batch.Commerciants[i]); err != nil {
			panic(fmt.Sprintf("error registering commerciant: %v", err))
		}
	}
	cfg.Logger.Log("startup", fmt.Sprintf("loaded %d users, %d commerciants, %d commands", len(batch.Users), len(batch.Commerciants), len(batch.Commands)))

	env := dispatch.NewEnvironment(cfg, repo, graph, publisher)
	dispatcher := dispatch.New(cfg.Logger, env)
	dispatcher.Run(batch.Commands)

	out := os.Stdout
	if *flagOutput != "" {
		f, err := os.Create(*flagOutput)
		if err != nil {
			panic(fmt.Sprintf("error opening output: %v", err))
		}
		defer f.Close()
		out = f
	}
	if err := env.Results.WriteTo(out); err != nil {
		panic(fmt.Sprintf("error writing results: %v", err))
	}
	cfg.Logger.Log("exit", fmt.Sprintf("wrote %d result records", len(env.Results.Records())))
}
