// Package display uploads the machine's RGB framebuffer to a presentation
// surface.
package display

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"chip8console/pkg/arena"
	"chip8console/pkg/grid"
)

const (
	Width  = 64
	Height = 32

	rgbSize  = Width * Height * 3
	rgbaSize = Width * Height * 4
)

var ErrViewSize = errors.New("display: view is not a 64x32 RGB buffer")

// Surface is the presentation target. *ebiten.Image satisfies it.
type Surface interface {
	WritePixels(pix []byte)
}

// Convention is the row order a surface expects.
type Convention int

const (
	// TopLeft surfaces take row 0 first, the same order the machine stores.
	TopLeft Convention = iota
	// BottomLeft surfaces take the bottom row first, as OpenGL textures do.
	BottomLeft
)

// FramebufferView uploads a borrowed display view to a surface, at most once
// per SetDirtyFlag.
type FramebufferView struct {
	view       arena.View
	surface    Surface
	convention Convention

	rgba    []byte
	dirty   bool
	uploads int
}

func New(view arena.View, surface Surface, convention Convention) *FramebufferView {
	return &FramebufferView{
		view:       view,
		surface:    surface,
		convention: convention,
		rgba:       make([]byte, rgbaSize),
	}
}

// SetDirtyFlag marks the surface as out of date.
func (f *FramebufferView) SetDirtyFlag() {
	f.dirty = true
}

func (f *FramebufferView) Dirty() bool {
	return f.dirty
}

// Uploads is the number of times pixels were written to the surface.
func (f *FramebufferView) Uploads() int {
	return f.uploads
}

// Rebind replaces the borrowed view, typically after the machine reallocated
// its storage, and marks the surface dirty.
func (f *FramebufferView) Rebind(view arena.View) {
	f.view = view
	f.dirty = true
}

// Render uploads the framebuffer if it is dirty. A clean view is left alone.
// On error the dirty flag is kept so the next render retries.
func (f *FramebufferView) Render() error {
	if !f.dirty {
		return nil
	}
	rgb, err := f.view.Bytes()
	if err != nil {
		return err
	}
	if err := ToRGBA(f.rgba, rgb, f.convention); err != nil {
		return err
	}
	f.surface.WritePixels(f.rgba)
	f.dirty = false
	f.uploads++
	return nil
}

// ToRGBA converts a row-major RGB framebuffer into RGBA with opaque alpha,
// reordering rows for the surface convention.
func ToRGBA(dst, rgb []byte, convention Convention) error {
	if len(rgb) != rgbSize || len(dst) < rgbaSize {
		return fmt.Errorf("%w: got %d bytes", ErrViewSize, len(rgb))
	}
	for i := range Width * Height {
		x, y := grid.GetGridCoords(i, Width)
		if convention == BottomLeft {
			y = grid.FlipRow(y, Height)
		}
		o := grid.GetIndex(x, y, Width) * 4
		dst[o+0] = rgb[i*3+0]
		dst[o+1] = rgb[i*3+1]
		dst[o+2] = rgb[i*3+2]
		dst[o+3] = 0xFF
	}
	return nil
}

// Image returns the framebuffer as an image scaled by an integer factor.
func Image(view arena.View, scale int) (*image.RGBA, error) {
	rgb, err := view.Bytes()
	if err != nil {
		return nil, err
	}
	src := image.NewRGBA(image.Rect(0, 0, Width, Height))
	if err := ToRGBA(src.Pix, rgb, TopLeft); err != nil {
		return nil, err
	}
	if scale <= 1 {
		return src, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, Width*scale, Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// SaveScreenshot encodes the framebuffer as a PNG and writes it to filename.
func SaveScreenshot(filename string, view arena.View, scale int) error {
	img, err := Image(view, scale)
	if err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
