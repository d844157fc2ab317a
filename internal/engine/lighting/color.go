package lighting

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// namedColors covers the CSS names used in configuration files.
var namedColors = map[string]uint32{
	"black":     0x000000,
	"white":     0xffffff,
	"gray":      0x808080,
	"lightgray": 0xd3d3d3,
	"lightblue": 0xadd8e6,
	"skyblue":   0x87ceeb,
	"darkgray":  0xa9a9a9,
}

// ColorFromHex converts 0xRRGGBB to RGB components in [0, 1].
func ColorFromHex(hex uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}

// ParseColor accepts "#rrggbb", "0xrrggbb", "rrggbb" or a known CSS name.
func ParseColor(s string) (mgl32.Vec3, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		return ColorFromHex(hex), nil
	}

	digits := strings.TrimPrefix(strings.TrimPrefix(s, "#"), "0x")
	if len(digits) != 6 {
		return mgl32.Vec3{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return ColorFromHex(uint32(v)), nil
}
