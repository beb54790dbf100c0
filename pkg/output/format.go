// Package output provides utilities for formatting and displaying
// recommendation results.
package output

import (
	"fmt"
	"strings"

	"github.com/iwvelando/lift-progression/internal/recommendation"
	"github.com/iwvelando/lift-progression/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []recommendation.Recommendation) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		fmt.Printf("--- Recommendations for lift %s (%s) ---\n", result.Name, result.Scheme)
		if result.Deload {
			fmt.Printf("Deload week\n")
		}
		fmt.Printf("Set | Slot       | Kind     | Weight\n")
		fmt.Printf("___ | __________ | ________ | ______\n")
		for _, set := range result.Sets {
			_, _ = p.Printf("%-3d | %-10s | %-8s | %s\n",
				set.Position, format.Slot(set.Kind, set.MyoRepPosition), set.Kind, format.Weight(set.Weight))
		}
		if i < len(results)-1 {
			fmt.Printf("\n")
		}
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []recommendation.Recommendation) {
	fmt.Print(CsvString(results))
}

// CsvString renders the results as CSV, one row per recommendation slot.
// Slots without a recommendation have an empty weight.
func CsvString(results []recommendation.Recommendation) string {
	var b strings.Builder
	b.WriteString(`"lift","scheme","position","myoRepPosition","kind","weight"`)
	b.WriteString("\n")
	for _, result := range results {
		for _, set := range result.Sets {
			myoRep := ""
			if set.MyoRepPosition != nil {
				myoRep = fmt.Sprintf("%d", *set.MyoRepPosition)
			}
			fmt.Fprintf(&b, `"%s","%s","%d","%s","%s","%s"`,
				csvEscape(result.Name), result.Scheme, set.Position, myoRep, set.Kind, format.NumericWeight(set.Weight))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func csvEscape(value string) string {
	return strings.ReplaceAll(value, `"`, `""`)
}
