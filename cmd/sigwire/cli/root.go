// Package cli implements the sigwire command-line interface using Cobra.
// Every command is a thin pass-through to the signing core: it prints the
// raw (or normalized) response body and leaves interpretation to the caller.
package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/plexarc/sigwire/internal/config"
	"github.com/plexarc/sigwire/internal/creds"
	"github.com/plexarc/sigwire/internal/log"
	"github.com/plexarc/sigwire/internal/wire"
)

var (
	verbose  bool
	jsonLogs bool
	profile  string
	region   string
	override string

	// client is the shared wire client, built in PersistentPreRunE.
	client   *wire.Client
	resolver *creds.Resolver
)

var rootCmd = &cobra.Command{
	Use:   "sigwire",
	Short: "Signed raw requests against AWS control-plane APIs",
	Long: `sigwire signs and sends raw requests to AWS control-plane APIs
without the vendor SDK: a credential chain (env, shared files, instance
metadata), a SigV4 signer, and one adapter per wire dialect (query, JSON
target, REST-JSON, REST-XML). Responses are printed as received, or
normalized to JSON with --decode where the dialect answers in XML.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadDefault()
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("json") && !isatty.IsTerminal(os.Stderr.Fd()) {
			jsonLogs = true
		}
		if err := log.Init(log.Options{
			Verbose:       verbose,
			JSONFormat:    jsonLogs,
			LogDir:        cfg.Debug.Dir,
			RetentionDays: cfg.Debug.RetentionDays,
		}); err != nil {
			cmd.PrintErrf("Warning: failed to initialize trace logging: %v\n", err)
		}

		resolver = creds.NewResolver()

		// Flag > environment > config file.
		if profile == "" {
			profile = os.Getenv("AWS_PROFILE")
		}
		if profile == "" {
			profile = cfg.Profile
		}
		if profile == "" {
			profile = "default"
		}
		if region == "" {
			region = resolver.ProfileRegion(profile)
		}
		if region == "" {
			region = cfg.Region
		}
		if override == "" {
			override = os.Getenv("AWS_ENDPOINT_URL")
		}
		if override == "" {
			override = cfg.Endpoint
		}

		timeout, err := cfg.RequestTimeout()
		if err != nil {
			return err
		}

		client = wire.New(wire.Options{
			Profile:     profile,
			Region:      region,
			Endpoint:    override,
			HTTPClient:  &http.Client{Timeout: timeout},
			Credentials: resolver,
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Close()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "JSON log format on stderr")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "credential profile (env: AWS_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&region, "region", "", "target region (env: AWS_REGION)")
	rootCmd.PersistentFlags().StringVar(&override, "endpoint", "", "endpoint override URL (env: AWS_ENDPOINT_URL)")
}

// printBody writes a response body to stdout with a trailing newline.
func printBody(body string) {
	fmt.Println(body)
}
