package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"scrape", "analyze", "batch", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "review-intel", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.PersistentPreRunE)
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "log-level", "log-format"} {
		flag := rootCmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "root command should have --%s flag", name)
		assert.Empty(t, flag.DefValue)
	}
}

func TestLoadConfig_ExplicitFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review-intel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scrape:\n  max_reviews: 12\nlog:\n  level: warn\n"), 0o644))

	c, err := loadConfig(path, "debug", "console")
	require.NoError(t, err)
	assert.Equal(t, 12, c.Scrape.MaxReviews)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
}

func TestLoadConfig_KeepsFileLogSettingsWithoutOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review-intel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644))

	c, err := loadConfig(path, "", "")
	require.NoError(t, err)
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestScrapeCommand_Flags(t *testing.T) {
	flag := scrapeCmd.Flags().Lookup("max")
	require.NotNil(t, flag, "scrape command should have --max flag")
	assert.Equal(t, "0", flag.DefValue)

	assert.Error(t, scrapeCmd.Args(scrapeCmd, []string{"acme"}))
	assert.NoError(t, scrapeCmd.Args(scrapeCmd, []string{"acme", "https://example.com"}))
}

func TestAnalyzeCommand_Flags(t *testing.T) {
	flag := analyzeCmd.Flags().Lookup("format")
	require.NotNil(t, flag, "analyze command should have --format flag")
	assert.Equal(t, "json", flag.DefValue)

	assert.Error(t, analyzeCmd.Args(analyzeCmd, nil))
}

func TestBatchCommand_Flags(t *testing.T) {
	flag := batchCmd.Flags().Lookup("file")
	require.NotNil(t, flag, "batch command should have --file flag")
	assert.Equal(t, "competitors.yaml", flag.DefValue)

	flag = batchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "batch command should have --limit flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
