package render

import (
	"fmt"
	"os"

	"netgraphx/internal/classify"
)

// IconSet maps a device role to an image file drawn in place of the node
// shape. It always has an entry for classify.Other.
type IconSet map[classify.Role]string

// DefaultIcons returns the icon files shipped next to the binary.
func DefaultIcons() IconSet {
	return IconSet{
		classify.Server: "icons/file-server.png",
		classify.Router: "icons/router.png",
		classify.PC:     "icons/pc.png",
		classify.Switch: "icons/switch.png",
		classify.Other:  "icons/cloud.png",
	}
}

// NewIconSet builds an IconSet from role names. The "other" entry is
// mandatory because every unmatched role falls back to it.
func NewIconSet(paths map[string]string) (IconSet, error) {
	icons := make(IconSet, len(paths))
	for name, path := range paths {
		role := classify.Role(name)
		if !knownRole(role) {
			return nil, fmt.Errorf("unknown device role %q in icon set", name)
		}
		icons[role] = path
	}
	if _, ok := icons[classify.Other]; !ok {
		return nil, fmt.Errorf("icon set must define an entry for %q", classify.Other)
	}
	return icons, nil
}

// Lookup returns the icon for role, or the fallback icon.
func (s IconSet) Lookup(role classify.Role) string {
	if path, ok := s[role]; ok {
		return path
	}
	return s[classify.Other]
}

// Available returns a copy without entries whose files cannot be read, so
// the renderer can fall back to plain shapes. The fallback key is kept even
// when empty.
func (s IconSet) Available() IconSet {
	out := make(IconSet, len(s))
	for role, path := range s {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			out[role] = path
		}
	}
	if _, ok := out[classify.Other]; !ok {
		out[classify.Other] = ""
	}
	return out
}

func knownRole(role classify.Role) bool {
	for _, r := range classify.Roles {
		if r == role {
			return true
		}
	}
	return false
}
