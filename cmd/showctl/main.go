package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"showpro/internal/config"
	"showpro/internal/csvio"
	"showpro/internal/infra"
	"showpro/internal/logger"
)

const usage = `usage: showctl <command> [flags]

commands:
  migrate                                  apply database migrations
  import  -table T -file F [-map H=c,...]  import a CSV file into table T
  preview -table T -file F                 show headers, suggested mapping and first rows
  export  -table T [-out F]                export table T as CSV (stdout by default)
  tables                                   list importable tables
  reindex                                  rebuild the search index from the database
`

var errUsage = errors.New("invalid arguments")

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		slog.Error("showctl failed", "error", err)
		os.Exit(1)
	}
}

// tableArgs - общие флаги import/preview/export
type tableArgs struct {
	table   string
	file    string
	out     string
	mapping csvio.Mapping
}

func parseTableArgs(cmd string, args []string) (*tableArgs, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var a tableArgs
	var mapping string
	fs.StringVar(&a.table, "table", "", "target table")
	fs.StringVar(&a.file, "file", "", "CSV file to read")
	fs.StringVar(&a.out, "out", "", "file to write, stdout when empty")
	fs.StringVar(&mapping, "map", "", "header=column overrides, comma separated")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	if a.table == "" {
		return nil, fmt.Errorf("%w: -table is required", errUsage)
	}
	if cmd != "export" && a.file == "" {
		return nil, fmt.Errorf("%w: -file is required", errUsage)
	}
	m, err := csvio.ParseMapping(mapping)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	a.mapping = m
	return &a, nil
}

func run(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "migrate", "import", "preview", "export", "tables", "reindex":
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	var targs *tableArgs
	if cmd == "import" || cmd == "preview" || cmd == "export" {
		var err error
		if targs, err = parseTableArgs(cmd, rest); err != nil {
			return err
		}
	}

	conns, err := infra.ConnectDB(cfg)
	if err != nil {
		return err
	}
	defer conns.Close()

	if cmd == "migrate" {
		return conns.DB.RunMigrations()
	}
	if cmd == "reindex" {
		conns.ConnectSearch()
		if conns.ES == nil {
			return errors.New("elasticsearch is not enabled or not reachable")
		}
	}

	services, err := conns.Services(cfg)
	if err != nil {
		return err
	}

	switch cmd {
	case "tables":
		for _, t := range services.Data.Tables() {
			fmt.Fprintln(stdout, t)
		}
		return nil

	case "reindex":
		n, err := services.Directory.Reindex(ctx)
		if err != nil {
			return err
		}
		slog.Info("Search index rebuilt", "documents", n)
		return nil

	case "export":
		if err := services.Data.CheckExportable(targs.table); err != nil {
			return err
		}
		w := stdout
		if targs.out != "" {
			f, err := os.Create(targs.out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", targs.out, err)
			}
			defer f.Close()
			w = f
		}
		if err := services.Data.Export(ctx, targs.table, w); err != nil {
			return err
		}
		slog.Info("Export finished", "table", targs.table, "out", targs.out)
		return nil
	}

	f, err := os.Open(targs.file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", targs.file, err)
	}
	defer f.Close()

	var result any
	if cmd == "preview" {
		result, err = services.Data.Preview(ctx, targs.table, f)
	} else {
		result, err = services.Data.Import(ctx, targs.table, f, targs.mapping)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
