// Command createsubdb creates a subset store from the entries of a source store listed
// in an order file.
//
//	createsubdb [options] <orderFile> <sourceDB> <destDB>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	flags "github.com/jessevdk/go-flags"

	"github.com/hupe1980/subdb"
	"github.com/hupe1980/subdb/internal/config"
)

type options struct {
	SubsetMode string `long:"subdb-mode" description:"hard copies entries, soft links the source data" choice:"hard" choice:"soft"`
	IDMode     string `long:"id-mode" description:"resolve order file keys as numbers or accessions" choice:"numeric" choice:"lookup"`
	LogLevel   string `long:"log-level" description:"minimum log level (debug, info, warn, error)"`
	LogFormat  string `long:"log-format" description:"log output format" choice:"text" choice:"json"`
	Config     string `long:"config" description:"YAML config file"`

	Args struct {
		OrderFile string `positional-arg-name:"orderFile" description:"keys to select, one per line"`
		SourceDB  string `positional-arg-name:"sourceDB" description:"store to read"`
		DestDB    string `positional-arg-name:"destDB" description:"store to create"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	var opts options
	parser := flags.NewParser(&opts, flags.Default&^flags.PrintErrors)
	parser.Name = "createsubdb"

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stderr, err)
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 1
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	override(cfg, &opts)

	mode, idMode, err := cfg.Modes()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	_, err = subdb.Create(ctx, subdb.Config{
		OrderFile: opts.Args.OrderFile,
		Source:    opts.Args.SourceDB,
		Dest:      opts.Args.DestDB,
		Mode:      mode,
		IDMode:    idMode,
	}, subdb.WithLogger(logger))
	if err != nil {
		// Create has already logged the failure.
		return 1
	}
	return 0
}

// override applies flags given on the command line over file settings.
func override(cfg *config.Config, opts *options) {
	if opts.SubsetMode != "" {
		cfg.Subset.Mode = opts.SubsetMode
	}
	if opts.IDMode != "" {
		cfg.Subset.IDMode = opts.IDMode
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
}
