package theme

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Preference is the persisted theme flag: 0 is light, 1 is dark.
type Preference int

const (
	PreferenceLight Preference = 0
	PreferenceDark  Preference = 1
)

// Role names a semantic palette slot.
type Role string

const (
	RoleBackground Role = "background"
	RoleText       Role = "text"
	RoleCard       Role = "card"
	RoleHeader     Role = "header"
	RoleLogout     Role = "logout"
	RolePrimary    Role = "primary"
)

// Roles lists every palette slot in display order.
var Roles = [...]Role{RoleBackground, RoleText, RoleCard, RoleHeader, RoleLogout, RolePrimary}

// Palette maps each semantic role to a color value (hex or rgb()).
type Palette struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Card       string `json:"card"`
	Header     string `json:"header"`
	Logout     string `json:"logout"`
	Primary    string `json:"primary"`
}

var (
	lightPalette = Palette{
		Background: "#fff",
		Text:       "#000",
		Card:       "#f2f2f2",
		Header:     "#4CAF50",
		Logout:     "#F44336",
		Primary:    "#4C4C9D",
	}
	darkPalette = Palette{
		Background: "rgb(53, 50, 49)",
		Text:       "#fff",
		Card:       "rgb(84, 82, 80)",
		Header:     "#81C784",
		Logout:     "#E57373",
		Primary:    "#fff",
	}
)

const envThemeOverride = "TASKMATE_THEME"

// Resolve returns the dark palette for PreferenceDark and the light palette
// for every other value.
func Resolve(p Preference) Palette {
	if p == PreferenceDark {
		return darkPalette
	}
	return lightPalette
}

// ResolveFlag resolves a flag that may be absent; nil yields light.
func ResolveFlag(flag *int) Palette {
	if flag == nil {
		return lightPalette
	}
	return Resolve(Preference(*flag))
}

// ResolveFromEnv resolves p unless TASKMATE_THEME forces light or dark.
// Unrecognized override values are ignored.
func ResolveFromEnv(p Preference) Palette {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envThemeOverride))) {
	case "dark":
		return darkPalette
	case "light":
		return lightPalette
	}
	return Resolve(p)
}

// Light returns the light palette.
func Light() Palette { return lightPalette }

// Dark returns the dark palette.
func Dark() Palette { return darkPalette }

// IsDark reports whether the preference selects the dark palette.
func (p Preference) IsDark() bool { return p == PreferenceDark }

// Toggle flips between light and dark. Unknown values count as light.
func (p Preference) Toggle() Preference {
	if p.IsDark() {
		return PreferenceLight
	}
	return PreferenceDark
}

func (p Preference) String() string {
	if p.IsDark() {
		return "dark"
	}
	return "light"
}

// UnmarshalJSON accepts numbers, numeric strings, booleans and null. Anything
// else decodes as light rather than failing the surrounding record.
func (p *Preference) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch raw {
	case "null", "":
		*p = PreferenceLight
		return nil
	case "true":
		*p = PreferenceDark
		return nil
	case "false":
		*p = PreferenceLight
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		raw = strings.TrimSpace(s)
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || n != float64(PreferenceDark) {
		*p = PreferenceLight
		return nil
	}
	*p = PreferenceDark
	return nil
}

// Color returns the raw value stored for role.
func (p Palette) Color(role Role) string {
	switch role {
	case RoleBackground:
		return p.Background
	case RoleText:
		return p.Text
	case RoleCard:
		return p.Card
	case RoleHeader:
		return p.Header
	case RoleLogout:
		return p.Logout
	case RolePrimary:
		return p.Primary
	}
	return ""
}

// Hex returns the role color as #rrggbb. Values that cannot be parsed are
// returned unchanged.
func (p Palette) Hex(role Role) string {
	raw := p.Color(role)
	c, err := parseColor(raw)
	if err != nil {
		return raw
	}
	return c.Hex()
}

func parseColor(raw string) (colorful.Color, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")") {
		var r, g, b int
		if _, err := fmt.Sscanf(v, "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
			if _, err := fmt.Sscanf(strings.ReplaceAll(v, " ", ""), "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
				return colorful.Color{}, fmt.Errorf("parse %q: %w", raw, err)
			}
		}
		if !inByteRange(r) || !inByteRange(g) || !inByteRange(b) {
			return colorful.Color{}, fmt.Errorf("parse %q: channel out of range", raw)
		}
		return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, nil
	}
	return colorful.Hex(v)
}

func inByteRange(v int) bool { return v >= 0 && v <= 255 }
