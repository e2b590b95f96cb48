package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestQueryList(t *testing.T) {
	out, err := execute(t, "query", "--list")
	require.NoError(t, err)
	lines := strings.Fields(out)
	require.Contains(t, lines, "settings")
	require.Contains(t, lines, "project-grid")
	_ = queryCmd.Flags().Set("list", "false")
}

func TestQueryRequiresInput(t *testing.T) {
	_, err := execute(t, "query")
	require.ErrorContains(t, err, "required")
}

func TestPublishRequiresBuild(t *testing.T) {
	t.Setenv("SITE_CMS_PROJECT_ID", "proj")
	dir := t.TempDir()
	manifest := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("pages:\n  - {path: /, template: home.html, controller: home}\n"), 0o644))
	t.Setenv("SITE_MANIFEST", manifest)
	t.Setenv("SITE_DEV_MODE", "true")

	_, err := execute(t, "publish", "--env-file", "", dir)
	require.ErrorContains(t, err, "hydrate build")
}
