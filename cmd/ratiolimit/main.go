// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// ratiolimit replays a sample file through a limiter registry.
//
// The input is a CSV of (timestamp_ns, scope, value) rows, ordered by
// timestamp within each scope. Every scope is guarded by a change limiter
// built from the window flags, plus a static limiter when --upper-limit is
// set. Replaying the same file with the same flags yields identical output.
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"

	"github.com/ava-labs/ratiolimit/database"
	"github.com/ava-labs/ratiolimit/database/leveldb"
	"github.com/ava-labs/ratiolimit/database/memdb"
	"github.com/ava-labs/ratiolimit/database/prefixdb"
	"github.com/ava-labs/ratiolimit/decimal"
	"github.com/ava-labs/ratiolimit/limiter"
	"github.com/ava-labs/ratiolimit/limiter/limiterstate"
	"github.com/ava-labs/ratiolimit/utils/logging"
)

const (
	logLevelKey       = "log-level"
	dbDirKey          = "db-dir"
	windowSizeKey     = "window-size"
	divisionCountKey  = "division-count"
	boundaryOffsetKey = "boundary-offset"
	upperLimitKey     = "upper-limit"
)

var limiterDBPrefix = []byte("limiter")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("ratiolimit", pflag.ContinueOnError)
	fs.String(logLevelKey, "info", "log level: off, fatal, error, warn, info, debug, trace")
	fs.String(dbDirKey, "", "directory for the persistent database; empty keeps state in memory")
	fs.Uint64(windowSizeKey, 3_600_000_000_000, "moving average window in nanoseconds")
	fs.Uint64(divisionCountKey, 12, "number of divisions the window is compressed into")
	fs.String(boundaryOffsetKey, "0.1", "allowed drift above the moving average")
	fs.String(upperLimitKey, "", "fixed ceiling in (0, 1]; empty disables the static limiter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: ratiolimit [flags] <samples.csv>")
	}

	v := viper.New()
	v.SetEnvPrefix("ratiolimit")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	level, err := logging.ToLevel(v.GetString(logLevelKey))
	if err != nil {
		return err
	}
	log := logging.NewLogger("ratiolimit", level, os.Stderr)

	db, err := openDB(v.GetString(dbDirKey))
	if err != nil {
		return err
	}
	defer db.Close()

	window := limiter.WindowConfig{
		WindowSize:    v.GetUint64(windowSizeKey),
		DivisionCount: v.GetUint64(divisionCountKey),
	}
	if err := window.Verify(); err != nil {
		return err
	}
	boundaryOffset, err := decimal.Parse(v.GetString(boundaryOffsetKey))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", boundaryOffsetKey, err)
	}
	var upperLimit decimal.Dec
	hasUpperLimit := v.GetString(upperLimitKey) != ""
	if hasUpperLimit {
		if upperLimit, err = decimal.Parse(v.GetString(upperLimitKey)); err != nil {
			return fmt.Errorf("invalid %s: %w", upperLimitKey, err)
		}
	}

	registry, err := limiter.NewRegistry(limiter.RegistryConfig{
		Log:   log,
		State: limiterstate.New(prefixdb.New(limiterDBPrefix, db)),
	})
	if err != nil {
		return err
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	summaries, err := replay(replayConfig{
		log:            log,
		registry:       registry,
		window:         window,
		boundaryOffset: boundaryOffset,
		upperLimit:     upperLimit,
		hasUpperLimit:  hasUpperLimit,
	}, f)
	if err != nil {
		return err
	}
	printSummaries(os.Stdout, summaries)
	return nil
}

func openDB(dir string) (database.Database, error) {
	if dir == "" {
		return memdb.New(), nil
	}
	return leveldb.New(dir)
}

type replayConfig struct {
	log            logging.Logger
	registry       *limiter.Registry
	window         limiter.WindowConfig
	boundaryOffset decimal.Dec
	upperLimit     decimal.Dec
	hasUpperLimit  bool
}

type summary struct {
	accepted uint64
	rejected uint64
}

// replay feeds every row through the registry, registering limiters the
// first time a scope appears. A violation rejects the row but never aborts
// the replay.
func replay(config replayConfig, r io.Reader) (map[string]*summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	summaries := make(map[string]*summary)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return summaries, nil
		}
		if err != nil {
			return nil, err
		}

		blockTime, err := strconv.ParseUint(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid timestamp: %w", line, err)
		}
		scope := strings.TrimSpace(record[1])
		value, err := decimal.Parse(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid value: %w", line, err)
		}

		s, ok := summaries[scope]
		if !ok {
			if err := register(config, scope); err != nil {
				return nil, err
			}
			s = &summary{}
			summaries[scope] = s
		}

		if err := config.registry.CheckAndUpdateAll(scope, blockTime, value); err != nil {
			if !errors.Is(err, limiter.ErrUpperLimitExceeded) {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			s.rejected++
			continue
		}
		s.accepted++
	}
}

// register guards [scope], tolerating limiters already loaded from a
// previous run's database.
func register(config replayConfig, scope string) error {
	config.log.Debug("registering limiters",
		zap.String("scope", scope),
	)
	err := config.registry.RegisterChangeLimiter(scope, "change", config.window, config.boundaryOffset)
	if err != nil && !errors.Is(err, limiter.ErrLimiterExists) {
		return err
	}
	if !config.hasUpperLimit {
		return nil
	}
	err = config.registry.RegisterStaticLimiter(scope, "static", config.upperLimit)
	if err != nil && !errors.Is(err, limiter.ErrLimiterExists) {
		return err
	}
	return nil
}

func printSummaries(w io.Writer, summaries map[string]*summary) {
	scopes := maps.Keys(summaries)
	slices.Sort(scopes)
	for _, scope := range scopes {
		s := summaries[scope]
		fmt.Fprintf(w, "%s: accepted=%d rejected=%d\n", scope, s.accepted, s.rejected)
	}
}
