package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	translationApp "github.com/felixgeelhaar/lingua/internal/translation/application"
	translationDomain "github.com/felixgeelhaar/lingua/internal/translation/domain"
	"github.com/spf13/cobra"
)

var (
	translateProvider string
	translateFrom     string
	translateTo       string
	translateTone     string
	translateAPIKey   string
	translateModel    string
)

var translateCmd = &cobra.Command{
	Use:   "translate [text...]",
	Short: "Translate text",
	Long: `Translate text with the selected provider and tone.

The text is read from the arguments, or from stdin when no arguments are
given. The result is saved to your history.

Examples:
  lingua translate --to de "Good morning"
  lingua translate --to ja --provider claude --tone formal "Thank you"
  echo "Hello" | lingua translate --to fr`,
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVarP(&translateProvider, "provider", "p", "openai", "translation provider")
	translateCmd.Flags().StringVarP(&translateFrom, "from", "f", "auto", "source language")
	translateCmd.Flags().StringVarP(&translateTo, "to", "t", "", "target language (required)")
	translateCmd.Flags().StringVar(&translateTone, "tone", "neutral", "translation tone")
	translateCmd.Flags().StringVar(&translateAPIKey, "api-key", "", "provider API key (overrides configuration)")
	translateCmd.Flags().StringVar(&translateModel, "model", "", "provider model (overrides configuration)")
	_ = translateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	app, err := RequireApp()
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if text == "" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(raw)
	}

	result, err := app.Translation.Translate(cmd.Context(), translationApp.TranslateRequest{
		Provider:   translateProvider,
		Text:       text,
		SourceLang: translateFrom,
		TargetLang: translateTo,
		Tone:       translateTone,
		APIKey:     translateAPIKey,
		Model:      translateModel,
	})
	app.WaitForSync()
	if err != nil {
		if errors.Is(err, translationDomain.ErrAccessDenied) {
			return fmt.Errorf("%w\nUpgrade with: lingua upgrade", err)
		}
		return err
	}

	if JSONOutput() {
		return PrintJSON(cmd.OutOrStdout(), result)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Translation)
	return nil
}
