package classify

import (
	"strings"
	"unicode"
)

// Role is the semantic tag assigned to a topology node from its name.
type Role string

const (
	Server Role = "server"
	Router Role = "router"
	Switch Role = "switch"
	PC     Role = "pc"
	Other  Role = "other"
)

// Roles lists every role in classification priority order.
var Roles = []Role{Server, Router, Switch, PC, Other}

// Classify maps a device name to a Role. Rules are tried in order and the
// first match wins; names matching nothing are Other.
func Classify(name string) Role {
	name = strings.ToLower(name)

	switch {
	case strings.Contains(name, "server"):
		return Server
	case (strings.Contains(name, "r") && digitsFrom(name, 1)) || strings.Contains(name, "router"):
		// R1, R23, ...
		return Router
	case (strings.Contains(name, "sw") && digitsFrom(name, 2)) || strings.Contains(name, "switch"):
		// SW1, SW12, ...
		return Switch
	case strings.Contains(name, "pc"):
		return PC
	default:
		return Other
	}
}

// digitsFrom reports whether every rune from index i onward is a decimal
// digit. A suffix that is out of range or empty never counts as digits.
func digitsFrom(s string, i int) bool {
	runes := []rune(s)
	if i >= len(runes) {
		return false
	}
	for _, r := range runes[i:] {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
