package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	appContainer "github.com/felixgeelhaar/lingua/internal/app"
	"github.com/felixgeelhaar/lingua/internal/app/apptest"
	translationApp "github.com/felixgeelhaar/lingua/internal/translation/application"
	translationDomain "github.com/felixgeelhaar/lingua/internal/translation/domain"
	"github.com/felixgeelhaar/lingua/pkg/observability"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *appContainer.Container {
	t.Helper()
	c := apptest.NewContainer(t, apptest.NewCloud(t))

	cliApp := NewApp(c.Translation, c.LicenseManager, c.History)
	cliApp.SetWaitForSync(c.WaitForBackgroundSync)
	SetApp(cliApp)
	t.Cleanup(func() { SetApp(nil) })

	resetTranslateFlags()
	outputJSON = false
	return c
}

func resetTranslateFlags() {
	translateProvider = "openai"
	translateFrom = "auto"
	translateTo = ""
	translateTone = "neutral"
	translateAPIKey = ""
	translateModel = ""
}

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func TestRequireApp(t *testing.T) {
	SetApp(nil)
	_, err := RequireApp()
	assert.ErrorIs(t, err, errAppNotInitialized)

	for _, cmd := range []*cobra.Command{translateCmd, featuresCmd, healthCmd, serveCmd} {
		_, err := run(t, cmd, "")
		assert.ErrorIs(t, err, errAppNotInitialized, cmd.Name())
	}
}

func TestTranslateCmd(t *testing.T) {
	c := setupTestApp(t)
	translateTo = "de"

	out, err := run(t, translateCmd, "", "Good", "morning")
	require.NoError(t, err)
	assert.Equal(t, "[de] Good morning\n", out)

	items, err := c.History.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "openai", items[0].Engine)
}

func TestTranslateCmd_Stdin(t *testing.T) {
	setupTestApp(t)
	translateTo = "fr"
	translateProvider = "deepseek"

	out, err := run(t, translateCmd, "  Hello from stdin\n")
	require.NoError(t, err)
	assert.Equal(t, "[fr] Hello from stdin\n", out)
}

func TestTranslateCmd_JSON(t *testing.T) {
	setupTestApp(t)
	translateTo = "es"
	outputJSON = true
	defer func() { outputJSON = false }()

	out, err := run(t, translateCmd, "", "Thanks")
	require.NoError(t, err)

	var result translationApp.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "[es] Thanks", result.Translation)
	assert.Equal(t, "neutral", result.Tone)
	require.NotNil(t, result.HistoryItem)
}

func TestTranslateCmd_PremiumDenied(t *testing.T) {
	setupTestApp(t)
	translateTo = "de"
	translateProvider = "groq"

	_, err := run(t, translateCmd, "", "Hi")
	require.ErrorIs(t, err, translationDomain.ErrAccessDenied)
	assert.Contains(t, err.Error(), "lingua upgrade")
}

func TestTranslateCmd_PremiumAllowed(t *testing.T) {
	c := setupTestApp(t)
	_, _, err := c.LicenseManager.Activate(context.Background(), apptest.ValidKey)
	require.NoError(t, err)
	translateTo = "it"
	translateProvider = "groq"
	translateTone = "creative"

	out, err := run(t, translateCmd, "", "Hi")
	require.NoError(t, err)
	assert.Equal(t, "[it] Hi\n", out)
}

func TestFeaturesCmd(t *testing.T) {
	setupTestApp(t)

	out, err := run(t, featuresCmd, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan: Free")
	assert.Contains(t, out, "✓ openai")
	assert.Contains(t, out, "✗ claude")
	assert.Contains(t, out, "History: last 5 translations")
}

func TestFeaturesCmd_Premium(t *testing.T) {
	c := setupTestApp(t)
	_, _, err := c.LicenseManager.Activate(context.Background(), apptest.ValidKey)
	require.NoError(t, err)

	out, err := run(t, featuresCmd, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan: Premium")
	assert.NotContains(t, out, "✗")
	assert.Contains(t, out, "History: unlimited")
}

func TestHealthCmd(t *testing.T) {
	setupTestApp(t)
	GetApp().Health.Register("store", observability.PingChecker("store", true, func(context.Context) error { return nil }))

	out, err := run(t, healthCmd, "")
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")
	assert.Contains(t, out, "store")

	GetApp().Health.Register("broker", observability.PingChecker("broker", true, func(context.Context) error { return assert.AnError }))
	_, err = run(t, healthCmd, "")
	assert.Error(t, err)
}

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range RootCmd().Commands() {
		names[cmd.Name()] = true
	}
	for _, name := range []string{"translate", "features", "health", "serve", "version"} {
		assert.True(t, names[name], name)
	}
}

func TestVersionCmd(t *testing.T) {
	outputJSON = false
	out, err := run(t, versionCmd, "")
	require.NoError(t, err)
	assert.Contains(t, out, "lingua "+Version)

	outputJSON = true
	defer func() { outputJSON = false }()

	out, err = run(t, versionCmd, "")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, Commit, info.Commit)
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintJSON(&out, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", out.String())
}
