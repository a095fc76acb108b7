// Package profile holds the named color ranges the cone finder can search for.
//
// A profile is a fixed HSV range in the 8-bit scale documented in package
// imaging. Only the bundled presets exist; an unknown name is a configuration
// error and the session must stop before any frame is read.
package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/cone-finder/internal/imaging"
)

// ErrUnknownProfile is returned by Lookup for names that match no preset.
var ErrUnknownProfile = errors.New("unknown color profile")

// Profile is a named, inclusive HSV range.
type Profile struct {
	Name string      `json:"name"`
	Min  imaging.HSV `json:"min"`
	Max  imaging.HSV `json:"max"`
}

// Range returns the (min, max) bound pair.
func (p Profile) Range() (imaging.HSV, imaging.HSV) {
	return p.Min, p.Max
}

// String returns "name [min-max]".
func (p Profile) String() string {
	return fmt.Sprintf("%s [%v-%v]", p.Name, p.Min, p.Max)
}

var presets = []Profile{
	{Name: "orange", Min: imaging.HSV{H: 0, S: 83, V: 255}, Max: imaging.HSV{H: 178, S: 230, V: 255}},
	{Name: "yellow", Min: imaging.HSV{H: 17, S: 40, V: 185}, Max: imaging.HSV{H: 74, S: 120, V: 255}},
	{Name: "green", Min: imaging.HSV{H: 67, S: 60, V: 164}, Max: imaging.HSV{H: 180, S: 255, V: 243}},
	{Name: "steve", Min: imaging.HSV{H: 0, S: 77, V: 84}, Max: imaging.HSV{H: 15, S: 183, V: 212}},
}

// Lookup returns the preset called name. Matching ignores case and
// surrounding whitespace.
func Lookup(name string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range presets {
		if p.Name == key {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownProfile, name, strings.Join(Names(), ", "))
}

// Names lists the preset names in their canonical order.
func Names() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// All returns a copy of every preset.
func All() []Profile {
	out := make([]Profile, len(presets))
	copy(out, presets)
	return out
}
