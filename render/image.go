package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/muesli/termenv"
	"github.com/nfnt/resize"
)

// HalfBlocks draws img with "▀" cells, each cell showing two pixels: the
// upper one as foreground and the lower one as background. The picture is
// scaled to fit maxWidth columns and maxHeight rows keeping its aspect ratio.
func HalfBlocks(img image.Image, maxWidth, maxHeight int, profile termenv.Profile) string {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || maxWidth <= 0 || maxHeight <= 0 {
		return ""
	}

	cols := maxWidth
	rows := cols * b.Dy() / b.Dx() / 2
	if rows > maxHeight {
		rows = maxHeight
		cols = rows * 2 * b.Dx() / b.Dy()
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	scaled := resize.Resize(uint(cols), uint(rows*2), img, resize.Bilinear)
	sb := scaled.Bounds()

	var out strings.Builder
	for y := 0; y < rows; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			top := hexColor(scaled.At(sb.Min.X+x, sb.Min.Y+2*y))
			bottom := hexColor(scaled.At(sb.Min.X+x, sb.Min.Y+2*y+1))
			out.WriteString(profile.String("▀").
				Foreground(profile.Color(top)).
				Background(profile.Color(bottom)).
				String())
		}
	}
	return out.String()
}

func hexColor(c interface{ RGBA() (r, g, b, a uint32) }) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
