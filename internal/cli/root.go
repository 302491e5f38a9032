// Package cli implements pebblectl, an operator tool that talks to the vendor
// and the local file store without going through the HTTP service.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pebblely/internal/processing"
	"pebblely/internal/providers/pebblely"
	"pebblely/internal/storage"
)

type options struct {
	storagePath string
	apiKey      string
	baseURL     string
	timeout     time.Duration
	verbose     bool

	out    io.Writer
	logger zerolog.Logger
}

// Execute runs pebblectl with args. Errors are logged to errOut and returned.
func Execute(args []string, out, errOut io.Writer) error {
	root := newRootCmd(out, errOut)
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	o := &options{out: out}

	root := &cobra.Command{
		Use:           "pebblectl",
		Short:         "Inspect and process product photos through the Pebblely API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if o.verbose {
				level = zerolog.DebugLevel
			}
			o.logger = zerolog.New(zerolog.ConsoleWriter{Out: errOut, NoColor: true}).Level(level).With().Timestamp().Logger()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&o.storagePath, "storage", envOr("STORAGE_PATH", "files"), "root directory of the file store")
	flags.StringVar(&o.apiKey, "api-key", os.Getenv("PEBBLELY_API_KEY"), "Pebblely access token")
	flags.StringVar(&o.baseURL, "base-url", envOr("PEBBLELY_BASE_URL", pebblely.DefaultBaseURL), "Pebblely API base URL")
	flags.DurationVar(&o.timeout, "timeout", 0, "per-call vendor timeout (0 disables)")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log vendor calls")

	root.AddCommand(
		newCreditsCmd(o),
		newListCmd(o),
		newUpscaleCmd(o),
		newRemoveBackgroundCmd(o),
	)

	wrapErrors(root, o)
	return root
}

// wrapErrors logs a failing command once through the CLI logger.
func wrapErrors(root *cobra.Command, o *options) {
	for _, c := range root.Commands() {
		run := c.RunE
		if run == nil {
			continue
		}
		c.RunE = func(cmd *cobra.Command, args []string) error {
			if err := run(cmd, args); err != nil {
				o.logger.Error().Err(err).Str("command", cmd.Name()).Msg("pebblectl: command failed")
				return err
			}
			return nil
		}
	}
}

func (o *options) client() (*pebblely.Client, error) {
	c := pebblely.NewClient(pebblely.Options{
		APIKey:         o.apiKey,
		BaseURL:        o.baseURL,
		RequestTimeout: o.timeout,
		Logger:         &o.logger,
	})
	if !c.HasCredentials() {
		return nil, fmt.Errorf("%w: pass --api-key or set PEBBLELY_API_KEY", pebblely.ErrMissingAPIKey)
	}
	return c, nil
}

func (o *options) store() (*storage.FileStore, error) {
	return storage.NewFileStore(o.storagePath)
}

func (o *options) processor() (*processing.Processor, error) {
	store, err := o.store()
	if err != nil {
		return nil, err
	}
	client, err := o.client()
	if err != nil {
		return nil, err
	}
	return processing.NewProcessor(store, client, &o.logger), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
