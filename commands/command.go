package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/budgetops/budget-sheets/auth"
	"github.com/budgetops/budget-sheets/config"
	"github.com/budgetops/budget-sheets/export"
	"github.com/budgetops/budget-sheets/internal/logger"
)

const APP = "budget-sheets"

// Options holds the global flags and the shared state passed to every command.
type Options struct {
	Config      string
	Credentials string
	Spreadsheet string
	Debug       bool

	Out io.Writer
	Log *zerolog.Logger

	// Connect replaces auth.Acquire when set.
	Connect func(ctx context.Context, cfg *config.Config) (*auth.Handle, error)

	// S3 replaces the default S3 client when set.
	S3 func(ctx context.Context) (export.API, error)
}

// Command is implemented by every budget-sheets CLI command.
type Command interface {
	Command(options *Options) *cobra.Command
}

// All returns a new instance of every budget-sheets command.
func All() []Command {
	return []Command{
		&Authorise{},
		&Get{},
		&List{},
		&Copy{},
		&Create{},
		&Rename{},
		&Clear{},
		&Delete{},
		&Rollover{},
		&Version{},
	}
}

// NewRoot creates the budget-sheets command tree.
func NewRoot(options *Options, commands ...Command) *cobra.Command {
	root := &cobra.Command{
		Use:           APP,
		Short:         "Manages a personal budget kept in a Google Sheets spreadsheet",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if options.Log == nil {
				log := logger.New(options.Debug)
				options.Log = &log
			}

			if options.Out == nil {
				options.Out = cmd.OutOrStdout()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&options.Config, "config", options.Config, "YAML configuration and rollover plan file")
	flags.StringVar(&options.Credentials, "credentials", options.Credentials, "Directory holding 'client_secret.json' and 'token.json'")
	flags.StringVar(&options.Spreadsheet, "spreadsheet", options.Spreadsheet, "Spreadsheet ID or URL")
	flags.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")

	for _, c := range commands {
		root.AddCommand(c.Command(options))
	}

	return root
}

// load reads the configuration file (if any) and applies the command line
// overrides. The default plan file is used if --config is not given and the
// file exists.
func (o *Options) load(validate bool) (*config.Config, error) {
	path := o.Config
	if path == "" {
		if _, err := os.Stat(config.DEFAULT_PLAN); err == nil {
			path = config.DEFAULT_PLAN
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(o.Credentials); v != "" {
		cfg.Credentials = v
	}

	if v := strings.TrimSpace(o.Spreadsheet); v != "" {
		if cfg.Spreadsheet, err = config.SpreadsheetID(v); err != nil {
			return nil, err
		}
	}

	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	o.debugf("spreadsheet:%s  credentials:%s", cfg.Spreadsheet, cfg.Credentials)

	return cfg, nil
}

func (o *Options) connect(ctx context.Context, cfg *config.Config, opts ...auth.Option) (*auth.Handle, error) {
	if o.Connect != nil {
		return o.Connect(ctx, cfg)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{auth.SHEETS}
	}

	opts = append(opts, auth.WithLogger(o.logger()))

	return auth.Acquire(ctx, cfg.Credentials, scopes, opts...)
}

func (o *Options) s3(ctx context.Context) (export.API, error) {
	if o.S3 != nil {
		return o.S3(ctx)
	}

	client, err := export.NewClient(ctx, export.ConfigFromEnv())
	if err != nil {
		return nil, err
	}

	return client, nil
}

func (o *Options) logger() zerolog.Logger {
	if o.Log == nil {
		return zerolog.Nop()
	}

	return *o.Log
}

func (o *Options) printf(format string, args ...any) {
	out := o.Out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintf(out, format, args...)
}

func (o *Options) debugf(format string, args ...any) {
	log := o.logger()
	log.Debug().Msgf(format, args...)
}

func (o *Options) infof(format string, args ...any) {
	log := o.logger()
	log.Info().Msgf(format, args...)
}

func (o *Options) warnf(format string, args ...any) {
	log := o.logger()
	log.Warn().Msgf(format, args...)
}

// span parses an 'a:b' index pair, where either side may be omitted.
func span(v string) (int64, int64, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(v), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid range '%s' - expected <start>:<end>", v)
	}

	var from, to int64
	var err error

	if start != "" {
		if from, err = strconv.ParseInt(start, 10, 64); err != nil || from < 0 {
			return 0, 0, fmt.Errorf("invalid range start '%s'", start)
		}
	}

	if end != "" {
		if to, err = strconv.ParseInt(end, 10, 64); err != nil || to <= from {
			return 0, 0, fmt.Errorf("invalid range end '%s'", end)
		}
	}

	return from, to, nil
}
