// Package bigchar renders Tibetan glyphs as large block art using half-block characters.
package bigchar

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontPaths are the locations searched for a font with Tibetan coverage.
var FontPaths = []string{
	// macOS
	"/System/Library/Fonts/Kailasa.ttc",
	"/Library/Fonts/Kailasa.ttc",
	"/System/Library/Fonts/Supplemental/Kailasa.ttc",
	// Linux
	"/usr/share/fonts/truetype/noto/NotoSerifTibetan-Regular.ttf",
	"/usr/share/fonts/opentype/noto/NotoSerifTibetan-Regular.ttf",
	"/usr/share/fonts/noto/NotoSerifTibetan-Regular.ttf",
	"/usr/share/fonts/truetype/tibetan-machine/TibetanMachineUni.ttf",
	"/usr/share/fonts/truetype/ttf-tibetan-machine-unicode/TibMachUni-1.901b.ttf",
	"/usr/share/fonts/truetype/jomolhari/Jomolhari-alpha3c-0605331.ttf",
	// Windows
	"C:\\Windows\\Fonts\\himalaya.ttf",
}

// ErrNoFont is returned when none of the candidate fonts could be loaded.
var ErrNoFont = errors.New("no font with Tibetan glyphs found")

// Threshold is the gray level above which a pixel counts as ink.
const Threshold = 40

// Renderer draws glyphs with one font face and caches the results.
type Renderer struct {
	face font.Face

	mu    sync.Mutex
	cache map[string]string
}

// New loads the first usable font from paths, or from FontPaths when
// paths is empty.
func New(paths ...string) (*Renderer, error) {
	if len(paths) == 0 {
		paths = FontPaths
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		face, err := parseFace(data)
		if err != nil {
			continue
		}
		return NewWithFace(face), nil
	}
	return nil, ErrNoFont
}

// NewWithFace wraps an already loaded face.
func NewWithFace(face font.Face) *Renderer {
	return &Renderer{face: face, cache: make(map[string]string)}
}

func parseFace(data []byte) (font.Face, error) {
	opts := &opentype.FaceOptions{Size: 64, DPI: 72}

	if coll, err := opentype.ParseCollection(data); err == nil && coll.NumFonts() > 0 {
		fnt, err := coll.Font(0)
		if err != nil {
			return nil, err
		}
		return opentype.NewFace(fnt, opts)
	}

	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return opentype.NewFace(fnt, opts)
}

// Render draws text into cols x rows terminal cells. Stacked vowel
// signs are drawn on top of their base letter. A nil Renderer renders
// nothing.
func (r *Renderer) Render(text string, cols, rows int) string {
	if r == nil || text == "" || cols <= 0 || rows <= 0 {
		return ""
	}

	key := fmt.Sprintf("%s/%dx%d", text, cols, rows)
	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	out := imageToHalfBlocks(scaleDown(r.rasterize(text), cols, rows*2), cols, rows)
	r.cache[key] = out
	return out
}

func (r *Renderer) rasterize(text string) *image.Gray {
	// Tsheg marks only add width.
	text = strings.TrimRight(text, "་")

	bounds, _ := font.BoundString(r.face, text)
	glyphWidth := (bounds.Max.X - bounds.Min.X).Ceil()
	glyphHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()

	padding := 4
	srcWidth := max(glyphWidth+padding*2, 64)
	srcHeight := max(glyphHeight+padding*2, 64)

	img := image.NewGray(image.Rect(0, 0, srcWidth, srcHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)

	x := (srcWidth-glyphWidth)/2 - bounds.Min.X.Floor()
	y := (srcHeight-glyphHeight)/2 - bounds.Min.Y.Floor()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
	return img
}

// scaleDown scales a grayscale image using area averaging.
func scaleDown(src *image.Gray, dstWidth, dstHeight int) *image.Gray {
	srcWidth := src.Bounds().Dx()
	srcHeight := src.Bounds().Dy()
	dst := image.NewGray(image.Rect(0, 0, dstWidth, dstHeight))

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for dy := 0; dy < dstHeight; dy++ {
		sy1 := int(float64(dy) * yRatio)
		sy2 := min(max(int(float64(dy+1)*yRatio), sy1+1), srcHeight)
		for dx := 0; dx < dstWidth; dx++ {
			sx1 := int(float64(dx) * xRatio)
			sx2 := min(max(int(float64(dx+1)*xRatio), sx1+1), srcWidth)

			var sum, count int
			for sy := sy1; sy < sy2; sy++ {
				for sx := sx1; sx < sx2; sx++ {
					sum += int(src.GrayAt(sx, sy).Y)
					count++
				}
			}
			if count > 0 {
				dst.SetGray(dx, dy, color.Gray{Y: uint8(sum / count)})
			}
		}
	}
	return dst
}

// imageToHalfBlocks maps each pair of vertical pixels to one cell.
func imageToHalfBlocks(img *image.Gray, cols, rows int) string {
	var sb strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := brightness(img, col, row*2) > Threshold
			bottom := brightness(img, col, row*2+1) > Threshold
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		if row < rows-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

func brightness(img *image.Gray, x, y int) uint8 {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return 0
	}
	return img.GrayAt(x, y).Y
}
