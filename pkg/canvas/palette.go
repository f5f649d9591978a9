package canvas

import (
	"fmt"
	"strconv"
)

// Palette is the fixed 16-color r/place palette, indexed by Pixel.Color.
var Palette = [PaletteSize]string{
	"#FFFFFF", // 0 - White
	"#E4E4E4", // 1 - Light Gray
	"#888888", // 2 - Gray
	"#222222", // 3 - Black
	"#FFA7D1", // 4 - Pink
	"#E50000", // 5 - Red
	"#E59500", // 6 - Orange
	"#A06A42", // 7 - Brown
	"#E5D900", // 8 - Yellow
	"#94E044", // 9 - Light Green
	"#02BE01", // 10 - Green
	"#00D3DD", // 11 - Cyan
	"#0083C7", // 12 - Blue
	"#0000EA", // 13 - Dark Blue
	"#CF6EE4", // 14 - Purple
	"#820080", // 15 - Dark Purple
}

// Hex returns the "#RRGGBB" value of a palette index.
func Hex(color uint32) (string, error) {
	if err := ValidateColor(color); err != nil {
		return "", err
	}
	return Palette[color], nil
}

// RGB returns the red, green and blue components of a palette index.
func RGB(color uint32) (r, g, b int, err error) {
	hex, err := Hex(color)
	if err != nil {
		return 0, 0, 0, err
	}

	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("malformed palette entry %q: %w", hex, err)
	}

	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), nil
}
