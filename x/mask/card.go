// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package mask

import (
	"strings"
)

// CardNumber hides all but the last four digits of a card number.
// Example: "1234567812345678" becomes "************5678".
func CardNumber(s string) string {
	runes := []rune(s)
	if len(runes) < 5 {
		return "****" // too short, we can't mask anything
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
