package ui

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// renderQR draws the scan URL as a half-block QR code, two modules per
// terminal row. Light modules are drawn with block runes and dark modules
// with the terminal background, which keeps the contrast a phone camera
// needs on the usual dark terminal.
func renderQR(url string) (string, error) {
	qr, err := qrcode.New(url, qrcode.Low)
	if err != nil {
		return "", err
	}
	bitmap := qr.Bitmap() // true = dark module, quiet zone included

	var b strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		for x := 0; x < len(bitmap[y]); x++ {
			top := bitmap[y][x]
			bottom := false // rows past the edge read as quiet zone
			if y+1 < len(bitmap) {
				bottom = bitmap[y+1][x]
			}
			switch {
			case !top && !bottom:
				b.WriteRune('█')
			case !top && bottom:
				b.WriteRune('▀')
			case top && !bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
