package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/plexarc/sigwire/internal/wire"
	"github.com/plexarc/sigwire/internal/xmlval"
)

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Bucket-addressed storage operations",
}

var bucketRegionCmd = &cobra.Command{
	Use:   "region <bucket>",
	Short: "Resolve a bucket's region",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		region, err := client.GetBucketRegion(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printBody(region)
		return nil
	},
}

var bucketInfoCmd = &cobra.Command{
	Use:   "info <bucket>",
	Short: "Show a bucket's region, versioning and encryption",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket := args[0]
		ctx := cmd.Context()

		region, err := client.GetBucketRegion(ctx, bucket)
		if err != nil {
			return err
		}

		info := map[string]any{
			"BucketName": bucket,
			"Region":     region,
		}

		// The two attribute reads are independent; fetch them together.
		var versioning, encryption string
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			body, err := client.RestXMLBucketRequest(gctx, "GET", bucket, "?versioning", nil, region)
			if err != nil {
				return err
			}
			versioning = body
			return nil
		})
		g.Go(func() error {
			body, err := client.RestXMLBucketRequest(gctx, "GET", bucket, "?encryption", nil, region)
			if err != nil {
				// Buckets without a configuration answer 404 here; that is
				// an answer, not a failure.
				var statusErr *wire.StatusError
				if errors.As(err, &statusErr) {
					return nil
				}
				return err
			}
			encryption = body
			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}

		if tree, err := xmlval.Parse([]byte(versioning)); err == nil {
			status := xmlval.String(tree, "/VersioningConfiguration/Status")
			if status == "" {
				status = "Disabled"
			}
			info["Versioning"] = status
		}
		info["Encryption"] = "None"
		if encryption != "" {
			if tree, err := xmlval.Parse([]byte(encryption)); err == nil {
				if rules, ok := xmlval.Pointer(tree, "/ServerSideEncryptionConfiguration/Rule"); ok {
					info["Encryption"] = rules
				}
			}
		}

		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		printBody(string(out))
		return nil
	},
}

func init() {
	bucketCmd.AddCommand(bucketRegionCmd, bucketInfoCmd)
	rootCmd.AddCommand(bucketCmd)
}
