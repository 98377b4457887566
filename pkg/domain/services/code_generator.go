package services

import (
	"fmt"
	"strconv"
	"strings"
)

// Code prefixes for human-readable record codes
const (
	ProductCodePrefix       = "PROD-"
	MaterialCodePrefix      = "MAT-"
	PurchaseOrderCodePrefix = "ORD-IN-"

	DefaultCodeWidth = 3
)

// NextCode returns prefix followed by one more than the highest numeric
// suffix among existing codes with that prefix, zero padded to width.
// Codes with another prefix or a non-numeric suffix are ignored.
func NextCode(prefix string, existing []string, width int) string {
	if width <= 0 {
		width = DefaultCodeWidth
	}

	highest := 0
	for _, code := range existing {
		suffix, ok := strings.CutPrefix(code, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 {
			continue
		}
		if n > highest {
			highest = n
		}
	}

	return fmt.Sprintf("%s%0*d", prefix, width, highest+1)
}
