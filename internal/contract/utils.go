package contract

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Spread label constants.
const (
	WideValue     = "Wide"     // Wide value
	ModerateValue = "Moderate" // Moderate value
	NarrowValue   = "Narrow"   // Narrow value
	FlatValue     = "Flat"     // Flat value
)

// Color variables for console output.
var (
	WideColor     = color.New(color.FgRed, color.Bold) // wideColor flags volatile metrics.
	ModerateColor = color.New(color.FgYellow)          // moderateColor represents standard caution.
	NarrowColor   = color.New(color.FgCyan)            // narrowColor represents a tight range.
	FlatColor     = color.New(color.FgGreen)           // flatColor represents a constant metric.
)

// GetPlainLabel returns a plain text label describing how wide a metric's
// min/max range is relative to its magnitude. This is the core logic used
// for CSV, JSON, and table printing.
func GetPlainLabel(spread float64) string {
	switch {
	case spread >= 0.5:
		return WideValue
	case spread >= 0.2:
		return ModerateValue
	case spread > 0.01:
		return NarrowValue
	default:
		return FlatValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the
// appropriate color.
func GetColorLabel(spread float64) string {
	text := GetPlainLabel(spread)

	switch text {
	case WideValue:
		return WideColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	case NarrowValue:
		return NarrowColor.Sprint(text)
	default: // "Flat"
		return FlatColor.Sprint(text)
	}
}

// SpreadRatio computes (max-min) relative to the larger bound magnitude.
// Returns 0 for incomplete stats.
func SpreadRatio(min, max *float64) float64 {
	if min == nil || max == nil {
		return 0
	}
	span := *max - *min
	if span <= 0 {
		return 0
	}
	scale := *max
	if scale < 0 {
		scale = -scale
	}
	if m := *min; -m > scale {
		scale = -m
	}
	if scale < 1 {
		scale = 1
	}
	return span / scale
}

// SelectOutputFile returns the file to write output to.
// If filePath is empty, it returns os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncatePath shortens a path from the left so its tail stays visible.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}
