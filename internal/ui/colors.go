// Package ui holds ANSI styling for terminal output.
package ui

const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
)

func Bold(s string) string {
	return ColorBold + s + ColorReset
}

// Success styles end-of-run confirmations.
func Success(s string) string {
	return ColorGreen + s + ColorReset
}

// Info styles neutral notices, e.g. the interrupted-run message.
func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

// Error styles failure summaries printed alongside normal output.
func Error(s string) string {
	return ColorRed + s + ColorReset
}
