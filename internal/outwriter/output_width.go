package outwriter

import (
	"os"

	"github.com/solarlab/pvcompare/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableIDWidth calculates the maximum width for series ids in table output
// based on terminal width and the width taken by the numeric columns.
func GetMaxTableIDWidth(cfg *contract.Config, numericColumns int) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Conservative default for narrow terminals and CI
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Each numeric column plus borders and padding
	baseWidth := numericColumns*(cfg.Precision+10) + 10

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 48 {
		return 48
	}
	return available
}

// truncateID shortens id to maxWidth runes, marking the cut with "...".
func truncateID(id string, maxWidth int) string {
	runes := []rune(id)
	if len(runes) <= maxWidth {
		return id
	}
	if maxWidth <= 3 {
		return string(runes[:maxWidth])
	}
	return string(runes[:maxWidth-3]) + "..."
}
