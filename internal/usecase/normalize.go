package usecase

import (
	"math"
	"strings"
)

// CompactStrings drops nil and blank entries and trims the rest. The result
// is never nil.
func CompactStrings(in []*string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == nil {
			continue
		}
		if v := strings.TrimSpace(*s); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func trimmed(s string) string { return strings.TrimSpace(s) }

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// optionalString maps "" to nil so update params leave the column alone.
func optionalString(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
