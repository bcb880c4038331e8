package eraconsole

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled capture of the current frame. At the end of
// Draw the frame is written to ScreenshotDir as <stamp>_<label>.png, next to
// a <stamp>_<label>.txt holding the plain text of the visible entries and the
// scroll status, so scripted runs can be checked without comparing pixels.
func (g *Game) Screenshot(label string) {
	g.screenshotQueue = append(g.screenshotQueue, label)
}

func (g *Game) flushScreenshots(screen *ebiten.Image) {
	if len(g.screenshotQueue) == 0 {
		return
	}
	defer func() { g.screenshotQueue = g.screenshotQueue[:0] }()
	log := Named("screenshot")

	if err := os.MkdirAll(g.ScreenshotDir, 0o755); err != nil {
		log.WithError(err).Errorf("mkdir %s", g.ScreenshotDir)
		return
	}

	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, w, h)
	dump := screenText(g.Console)
	stamp := time.Now().Format("20060102_150405")

	for _, label := range g.screenshotQueue {
		base := filepath.Join(g.ScreenshotDir, stamp+"_"+sanitizeLabel(label))
		if err := writeCapture(base, img, dump); err != nil {
			log.WithError(err).WithField("label", label).Error("write failed")
			continue
		}
		log.WithField("path", base+".png").Info("saved")
	}
}

// screenText renders what the console currently shows as plain text: one
// line per visible entry followed by the status line.
func screenText(c *Console) string {
	var b strings.Builder
	for _, e := range c.VisibleSlice() {
		b.WriteString(e.PlainText())
		b.WriteByte('\n')
	}
	b.WriteString("-- ")
	b.WriteString(statusText(c.ScrollInfo()))
	b.WriteByte('\n')
	return b.String()
}

func writeCapture(base string, img image.Image, dump string) error {
	if err := writePNG(base+".png", img); err != nil {
		return err
	}
	if err := os.WriteFile(base+".txt", []byte(dump), 0o644); err != nil {
		return fmt.Errorf("%w: write %s.txt: %v", ErrIO, base, err)
	}
	return nil
}

// unpremultiply converts premultiplied RGBA pixels to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("%w: encode %s: %v", ErrIO, path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
