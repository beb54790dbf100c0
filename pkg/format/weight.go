// Package format provides text helpers for recommendation output.
package format

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Weight returns a weight with two decimals and thousands separators (e.g.
// "1,234.50"). A nil weight is "-".
func Weight(weight *float64) string {
	if weight == nil {
		return "-"
	}
	return printer.Sprintf("%.2f", *weight)
}

// NumericWeight returns a weight with two decimals and no separators, or an
// empty string for a nil weight.
func NumericWeight(weight *float64) string {
	if weight == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *weight)
}

// Slot names a recommendation slot within its set: "main" for a standard or
// drop set, "activation" for a myo-rep activation and "backoff N" (1-based)
// for a myo-rep backoff.
func Slot(kind string, myoRepPosition *int) string {
	if myoRepPosition != nil {
		return fmt.Sprintf("backoff %d", *myoRepPosition+1)
	}
	if kind == "myorep" {
		return "activation"
	}
	return "main"
}
