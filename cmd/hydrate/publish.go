package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gcs "cloud.google.com/go/storage"
	"github.com/spf13/cobra"

	"github.com/lordwhitefire/new-portfolio/internal/publish"
	"github.com/lordwhitefire/new-portfolio/internal/site"
)

var publishCmd = &cobra.Command{
	Use:   "publish [dir]",
	Short: "Upload a built site to Cloud Storage",
	Long: `Uploads every file of a build directory (default dist) to
gs://$SITE_PUBLISH_BUCKET/$SITE_PUBLISH_PREFIX/. Flags override the
configured bucket and prefix.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().String("bucket", "", "destination bucket")
	publishCmd.Flags().String("prefix", "", "object name prefix")
	publishCmd.Flags().Int("concurrency", 8, "parallel uploads")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx, a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	defer func() { _ = a.Logger.Sync() }()

	dir := "dist"
	if len(args) == 1 {
		dir = args[0]
	}
	if _, err := os.Stat(filepath.Join(dir, site.ReportFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s has no %s\nRun `hydrate build` first", dir, site.ReportFile)
		}
		return err
	}

	bucket := a.Config.Publish.Bucket
	if flag, _ := cmd.Flags().GetString("bucket"); flag != "" {
		bucket = flag
	}
	prefix := a.Config.Publish.Prefix
	if cmd.Flags().Changed("prefix") {
		prefix, _ = cmd.Flags().GetString("prefix")
	}
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("storage client: %w", err)
	}
	defer client.Close()

	writer, err := publish.NewBucketWriter(client, bucket)
	if err != nil {
		return err
	}
	summary, err := publish.New(writer, publish.WithPrefix(prefix), publish.WithConcurrency(concurrency)).Publish(ctx, os.DirFS(dir))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Published %d objects (%d bytes) to gs://%s/%s\n", len(summary.Objects), summary.Bytes, bucket, prefix)
	return nil
}
