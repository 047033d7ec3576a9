package utils

import "strings"

const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorDim   = "\033[2m"

	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// NoColor disables escape codes. The CLI sets it when NO_COLOR is set or
// stdout is not a terminal.
var NoColor = false

func Colorize(text string, codes ...string) string {
	if NoColor || len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "") + text + colorReset
}

func Green(text string) string  { return Colorize(text, colorGreen) }
func Yellow(text string) string { return Colorize(text, colorYellow) }
func Bold(text string) string   { return Colorize(text, colorBold) }
func Dim(text string) string    { return Colorize(text, colorDim) }
