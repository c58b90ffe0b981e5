// Command aggregate runs one aggregation and prints the result as JSON, or
// imports curated items into the local store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/geekfeed/internal/aggregator"
	"github.com/samvad-hq/geekfeed/internal/app"
	"github.com/samvad-hq/geekfeed/internal/config"
	"github.com/samvad-hq/geekfeed/internal/domain"
	"github.com/samvad-hq/geekfeed/internal/logger"
	"github.com/spf13/pflag"
)

type options struct {
	sources    []string
	limit      int
	importFile string
	collection string
	pretty     bool
	listOnly   bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "aggregate failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("aggregate", pflag.ContinueOnError)
	var opts options
	flags.StringSliceVar(&opts.sources, "source", nil, "source ids to aggregate (comma separated); default all enabled")
	flags.IntVar(&opts.limit, "limit", 0, "items per source; default from config")
	flags.StringVar(&opts.importFile, "import", "", "import a JSON array of items into the local store instead of aggregating")
	flags.StringVar(&opts.collection, "collection", "local", "local collection used with --import")
	flags.BoolVar(&opts.pretty, "pretty", true, "indent JSON output")
	flags.BoolVar(&opts.listOnly, "list", false, "print the source catalog and exit")

	// config keys, bound over env and defaults
	flags.String("providers-file", "", "catalog file (yaml or json)")
	flags.String("storage-type", "", "local store backend: none or bbolt")
	flags.String("bbolt-path", "", "bbolt database path")
	flags.String("log-level", "", "log level")
	flags.Int64("http-timeout-ms", 0, "per-request timeout in milliseconds")
	flags.Int64("aggregate-timeout-ms", 0, "whole-aggregation timeout in milliseconds")
	flags.Float64("http-rate-limit", 0, "outbound requests per second, 0 disables pacing")

	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadWithFlags(changedOnly(flags))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	rt, err := app.NewRuntime(cfg, log)
	if err != nil {
		return fmt.Errorf("init runtime: %w", err)
	}
	defer rt.Close()

	switch {
	case opts.listOnly:
		refs := make([]domain.SourceRef, 0)
		for _, p := range rt.Catalog().All() {
			refs = append(refs, p.Ref())
		}
		return writeJSON(out, refs, opts.pretty)
	case opts.importFile != "":
		items, err := readItems(opts.importFile)
		if err != nil {
			return err
		}
		if err := rt.ImportItems(opts.collection, items); err != nil {
			return err
		}
		fmt.Fprintf(out, "imported %d items into %q\n", len(items), opts.collection)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result := rt.Aggregate(ctx, aggregator.Request{
		LimitPerSource: opts.limit,
		SourceIDs:      opts.sources,
	})
	if err := writeJSON(out, result, opts.pretty); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("no source succeeded")
	}
	return nil
}

// changedOnly returns a flag set holding only the flags given on the command
// line, so unset flags never shadow env or defaults.
func changedOnly(flags *pflag.FlagSet) *pflag.FlagSet {
	set := pflag.NewFlagSet("config", pflag.ContinueOnError)
	flags.Visit(func(f *pflag.Flag) {
		set.AddFlag(f)
	})
	return set
}

func readItems(path string) ([]domain.RawItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	var items []domain.RawItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode import file %s: %w", path, err)
	}
	return items, nil
}

func writeJSON(out io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
