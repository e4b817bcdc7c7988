package chart

import "image/color"

// tab20 is matplotlib's 20-colour qualitative map.
var tab20 = [...]color.RGBA{
	{0x1f, 0x77, 0xb4, 0xff}, {0xae, 0xc7, 0xe8, 0xff},
	{0xff, 0x7f, 0x0e, 0xff}, {0xff, 0xbb, 0x78, 0xff},
	{0x2c, 0xa0, 0x2c, 0xff}, {0x98, 0xdf, 0x8a, 0xff},
	{0xd6, 0x27, 0x28, 0xff}, {0xff, 0x98, 0x96, 0xff},
	{0x94, 0x67, 0xbd, 0xff}, {0xc5, 0xb0, 0xd5, 0xff},
	{0x8c, 0x56, 0x4b, 0xff}, {0xc4, 0x9c, 0x94, 0xff},
	{0xe3, 0x77, 0xc2, 0xff}, {0xf7, 0xb6, 0xd2, 0xff},
	{0x7f, 0x7f, 0x7f, 0xff}, {0xc7, 0xc7, 0xc7, 0xff},
	{0xbc, 0xbd, 0x22, 0xff}, {0xdb, 0xdb, 0x8d, 0xff},
	{0x17, 0xbe, 0xcf, 0xff}, {0x9e, 0xda, 0xe5, 0xff},
}

// SunColor is the colour of the Sun track.
var SunColor color.Color = color.Black

// Palette returns the colour for the target at index i of the config.
func Palette(i int) color.Color {
	if i < 0 {
		i = -i
	}
	return tab20[i%len(tab20)]
}
