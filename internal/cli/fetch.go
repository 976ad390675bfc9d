package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkessler/runlab/internal/objstore"
)

var (
	fetchBucket string
	fetchRegion string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <key> <dest>",
	Short: "Download an S3 object if the local copy is stale",
	Long: `Fetch an object from S3 into a local path. The download is skipped
when the local file is newer than the remote object, so repeated
invocations are cheap.

Examples:
  runlab fetch datasets/cifar10.tar.gz ./data/cifar10.tar.gz
  runlab fetch --bucket my-lab-artifacts checkpoints/best.pt ./best.pt`,
	Args: cobra.ExactArgs(2),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchBucket, "bucket", "", "S3 bucket (defaults to config)")
	fetchCmd.Flags().StringVar(&fetchRegion, "region", "", "AWS region (defaults to config)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	key, dest := args[0], args[1]

	cfg := loadConfig()
	log := newLogger(cfg)

	bucket := cfg.S3.Bucket
	if fetchBucket != "" {
		bucket = fetchBucket
	}
	if bucket == "" {
		return fmt.Errorf("no bucket given: set s3.bucket in config or pass --bucket")
	}

	region := cfg.S3.Region
	if fetchRegion != "" {
		region = fetchRegion
	}

	client, err := objstore.New(cmd.Context(), objstore.Options{
		Region:    region,
		Anonymous: cfg.S3.Anonymous,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}

	downloaded, err := client.DownloadIfNewer(cmd.Context(), bucket, key, dest)
	if err != nil {
		return fmt.Errorf("failed to fetch s3://%s/%s: %w", bucket, key, err)
	}

	if downloaded {
		fmt.Printf("Downloaded s3://%s/%s -> %s\n", bucket, key, dest)
	} else {
		fmt.Printf("Up to date: %s\n", dest)
	}

	return nil
}
