package formatter

import (
	"encoding/json"
)

// ToJSON converts a value to its indented JSON representation.
func ToJSON(v interface{}) (string, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}
