// Package registry holds the fixed, ordered set of opcodes the harness
// targets by default. The set grows only when the emulator gains an
// instruction, so it is compiled in rather than configured.
//
// Identifiers are two lowercase hex digits ("a9"). Normalize accepts any
// casing and surrounding whitespace; it does not require membership in the
// registry. Running an unknown opcode is allowed and simply skips when no
// vector file exists for it.
package registry

import (
	"fmt"
	"strings"
)

// implemented lists every opcode with emulator support, in the order the
// suite grew. Sequential runs execute in exactly this order.
var implemented = []string{
	"00", "08", "09", "0a", "0d", "10", "18", "19", "1d", "28", "29", "2a", "30", "38", "40", "48",
	"49", "4a", "4d", "50", "58", "59", "5d", "60", "68", "6a", "70", "78", "88", "8a", "8c", "8d",
	"8e", "90", "98", "99", "9a", "9d", "a0", "a2", "a8", "a9", "aa", "ac", "ad", "ae", "b0", "b8",
	"b9", "ba", "bc", "bd", "be", "c0", "c5", "c8", "c9", "ca", "cc", "cd", "d0", "d5", "d8", "d9",
	"dd", "e0", "e8", "ea", "ec", "f0", "f8", "e4", "c4", "45", "55", "a5", "b5", "a6", "b6", "a4",
	"b4", "85", "95", "86", "96", "84", "94", "15", "e6", "f6", "ee", "c6", "d6", "ce", "24", "2c",
	"06", "16", "0e", "46", "56", "4e", "26", "36", "2e", "66", "76", "6e", "25", "35", "2d", "20",
	"4c", "6c", "39", "3d", "1e", "3e", "5e", "7e", "fe", "de", "05", "21", "c1", "41",
	"a1", "81", "01", "11", "31", "51", "91", "b1", "d1",
	// ADC
	"69", "65", "75", "6d", "7d", "79", "61", "71",
	// SBC
	"e9", "e5", "f5", "ed", "fd", "f9", "e1", "f1",
}

var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(implemented))
	for _, op := range implemented {
		m[op] = struct{}{}
	}
	return m
}()

// All returns the registered opcodes in registry order. The returned slice
// is a copy; callers may reorder or trim it freely.
func All() []string {
	out := make([]string, len(implemented))
	copy(out, implemented)
	return out
}

// Count returns the number of registered opcodes.
func Count() int {
	return len(implemented)
}

// Contains reports whether id (already normalized) is a registered opcode.
func Contains(id string) bool {
	_, ok := known[id]
	return ok
}

// Normalize converts raw user input to the canonical opcode form: trimmed,
// lowercased, exactly two hex digits. Membership in the registry is not
// checked.
func Normalize(raw string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(raw))
	if len(id) != 2 {
		return "", fmt.Errorf("invalid opcode %q: want two hex digits", raw)
	}
	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("invalid opcode %q: want two hex digits", raw)
		}
	}
	return id, nil
}
