package domain

import "strings"

// namedColors is the subset of CSS color names vendors use for labels.
var namedColors = map[string]string{
	"aqua":    "#00ffff",
	"black":   "#000000",
	"blue":    "#0000ff",
	"brown":   "#a52a2a",
	"cyan":    "#00ffff",
	"gold":    "#ffd700",
	"gray":    "#808080",
	"green":   "#008000",
	"grey":    "#808080",
	"lime":    "#00ff00",
	"magenta": "#ff00ff",
	"maroon":  "#800000",
	"navy":    "#000080",
	"olive":   "#808000",
	"orange":  "#ffa500",
	"pink":    "#ffc0cb",
	"purple":  "#800080",
	"red":     "#ff0000",
	"silver":  "#c0c0c0",
	"teal":    "#008080",
	"violet":  "#ee82ee",
	"white":   "#ffffff",
	"yellow":  "#ffff00",
}

// epicColors maps Jira agile label classes to hex colors.
var epicColors = map[string]string{
	"ghx-label-0": "#ffffff",
	"ghx-label-1": "#815b3a",
	"ghx-label-2": "#f79232",
	"ghx-label-3": "#d39c3f",
	"ghx-label-4": "#3b7fc4",
	"ghx-label-5": "#4a6785",
	"ghx-label-6": "#8eb021",
	"ghx-label-7": "#ac707a",
	"ghx-label-8": "#654982",
	"ghx-label-9": "#f15c75",
}

const DefaultEpicColor = "#999999"

// TagColor normalizes a vendor label color to hex. Unknown names and values
// that are already hex codes are returned unchanged.
func TagColor(color string) string {
	if hex, ok := namedColors[strings.ToLower(strings.TrimSpace(color))]; ok {
		return hex
	}
	if color != "" && !strings.HasPrefix(color, "#") && isHex(color) {
		return "#" + strings.ToLower(color)
	}
	return color
}

// EpicColor resolves a Jira epic label class. ok is false for unknown classes.
func EpicColor(class string) (string, bool) {
	hex, ok := epicColors[class]
	return hex, ok
}

func isHex(s string) bool {
	if len(s) != 6 && len(s) != 3 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
