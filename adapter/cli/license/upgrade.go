package license

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
)

// CheckoutURL is opened by `lingua upgrade`.
var CheckoutURL = "https://lingua.app/pricing"

// UpgradeCmd is exposed at the root level as `lingua upgrade`.
var UpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade to Lingua Premium",
	Long: `Open the Lingua Premium checkout page in your browser.

After purchase, you'll receive a license key via email.
Activate it with: lingua license activate <license-key>`,
	RunE: runUpgrade,
}

var noBrowser bool

func init() {
	UpgradeCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the checkout URL without opening a browser")
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Upgrade to Lingua Premium")
	fmt.Fprintln(out, "=========================")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  - Every provider   Gemini, Claude and Groq alongside OpenAI and DeepSeek")
	fmt.Fprintln(out, "  - Every tone       Casual, academic, business and creative")
	fmt.Fprintln(out, "  - Full history     Unlimited history synced across devices")
	fmt.Fprintln(out)

	if !noBrowser && openBrowser(CheckoutURL) {
		fmt.Fprintln(out, "Opening checkout in your browser...")
	} else {
		fmt.Fprintln(out, "Please visit:")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", CheckoutURL)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "After purchase, activate with:")
	fmt.Fprintln(out, "  lingua license activate <license-key>")
	return nil
}

// openBrowser attempts to open a URL in the default browser.
func openBrowser(url string) bool {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return false
	}

	return cmd.Start() == nil
}
