package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Hydrate every page of the manifest into a directory",
	Long: `Renders each manifest page once, copies the static files matched by the
manifest and writes build.json describing the run. Pages whose hydration
fails are written as their untouched template.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringP("out", "o", "dist", "output directory")
	buildCmd.Flags().Bool("strict", false, "exit non-zero when any page failed to hydrate")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx, a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	defer func() { _ = a.Logger.Sync() }()

	outDir, _ := cmd.Flags().GetString("out")
	report, err := a.Renderer.Build(ctx, outDir, os.DirFS(a.Config.Site.PublicDir))
	if err != nil {
		return fmt.Errorf("building site: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Build %s: %d pages (%d failed), %d assets in %s\n",
		report.ID, len(report.Pages), report.Failed(), len(report.Assets), outDir)

	if strict, _ := cmd.Flags().GetBool("strict"); strict && report.Failed() > 0 {
		return fmt.Errorf("%d pages failed to hydrate", report.Failed())
	}
	return nil
}
