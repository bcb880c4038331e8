package eraconsole

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"

	_ "golang.org/x/image/bmp" // register decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

// LoadFunc decodes the image stored at path.
type LoadFunc func(path string) (image.Image, error)

// LoadImageFile opens and decodes an image file. PNG, JPEG, GIF, BMP and WebP
// are supported. Failures wrap ErrIO.
func LoadImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrIO, path, err)
	}
	return img, nil
}

type renderKey struct {
	key    string
	path   string
	region image.Rectangle
	target Size
}

// Resolver turns assets into cropped, scaled RGBA images. Decoded sources
// are cached by path and rendered results by (key, path, crop, target).
// Returned images are shared with the cache and MUST NOT be mutated.
type Resolver struct {
	load     LoadFunc
	sources  map[string]image.Image
	rendered map[renderKey]*image.RGBA
}

// NewResolver creates a resolver. A nil load uses LoadImageFile.
func NewResolver(load LoadFunc) *Resolver {
	if load == nil {
		load = LoadImageFile
	}
	return &Resolver{
		load:     load,
		sources:  make(map[string]image.Image),
		rendered: make(map[renderKey]*image.RGBA),
	}
}

// Reset drops every cached source and rendered image.
func (r *Resolver) Reset() {
	clear(r.sources)
	clear(r.rendered)
}

// CacheLen returns the number of cached rendered images.
func (r *Resolver) CacheLen() int {
	return len(r.rendered)
}

func (r *Resolver) source(path string) (image.Image, error) {
	if img, ok := r.sources[path]; ok {
		return img, nil
	}
	img, err := r.load(path)
	if err != nil {
		if !errors.Is(err, ErrIO) {
			err = fmt.Errorf("%w: %v", ErrIO, err)
		}
		return nil, err
	}
	r.sources[path] = img
	return img, nil
}

// cropRegion applies the crop rule: the asset's defined region, moved to the
// crop origin when one is given, clamped to the source bounds. An asset
// without a defined region uses the whole source. A region that differs from
// the source bounds in origin or size is always cropped, even at origin 0.
func cropRegion(a Asset, crop *image.Point, bounds image.Rectangle) (image.Rectangle, error) {
	region := a.Region
	if region.Empty() {
		region = bounds.Sub(bounds.Min)
	}
	if crop != nil {
		region = region.Sub(region.Min).Add(*crop)
	}
	region = region.Add(bounds.Min).Intersect(bounds)
	if region.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: %s region %v outside %v", ErrInvalidCrop, a.Key, region, bounds)
	}
	return region, nil
}

// RenderSingle loads the asset, applies the crop rule and scales to target
// when it is non-nil and differs from the cropped size.
func (r *Resolver) RenderSingle(a Asset, crop *image.Point, target *Size) (*image.RGBA, error) {
	src, err := r.source(a.Path)
	if err != nil {
		return nil, fmt.Errorf("eraconsole: render %s: %w", a.Key, err)
	}
	region, err := cropRegion(a, crop, src.Bounds())
	if err != nil {
		return nil, err
	}
	size := Size{W: region.Dx(), H: region.Dy()}
	if target != nil {
		if target.W <= 0 || target.H <= 0 {
			return nil, fmt.Errorf("%w: %s target %dx%d", ErrInvalidCrop, a.Key, target.W, target.H)
		}
		size = *target
	}

	k := renderKey{key: a.Key, path: a.Path, region: region, target: size}
	if img, ok := r.rendered[k]; ok {
		return img, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, size.W, size.H))
	if size.W == region.Dx() && size.H == region.Dy() {
		xdraw.Draw(dst, dst.Bounds(), src, region.Min, xdraw.Src)
	} else {
		xdraw.BiLinear.Scale(dst, dst.Bounds(), src, region, xdraw.Src, nil)
	}
	r.rendered[k] = dst
	return dst, nil
}

// MeasureAsset returns the size RenderSingle would produce. A target size is
// returned as is without loading the source; otherwise the source is loaded
// (and kept in the source cache) so the region is clamped exactly as
// RenderSingle clamps it.
func (r *Resolver) MeasureAsset(a Asset, crop *image.Point, target *Size) (Size, error) {
	if target != nil {
		if target.W <= 0 || target.H <= 0 {
			return Size{}, fmt.Errorf("%w: %s target %dx%d", ErrInvalidCrop, a.Key, target.W, target.H)
		}
		return *target, nil
	}
	src, err := r.source(a.Path)
	if err != nil {
		return Size{}, fmt.Errorf("eraconsole: measure %s: %w", a.Key, err)
	}
	region, err := cropRegion(a, crop, src.Bounds())
	if err != nil {
		return Size{}, err
	}
	return Size{W: region.Dx(), H: region.Dy()}, nil
}

// RenderComposite flattens layers onto a transparent canvas of template size
// in list order. Offsets may be negative; anything outside the canvas is
// clipped. A layer that fails to render is skipped and its error joined into
// the returned error; the canvas is still returned.
func (r *Resolver) RenderComposite(layers []ResolvedLayer, template Size) (*image.RGBA, error) {
	if template.W <= 0 || template.H <= 0 {
		return nil, fmt.Errorf("%w: composite template %dx%d", ErrInvalidCrop, template.W, template.H)
	}
	canvas := image.NewRGBA(image.Rect(0, 0, template.W, template.H))
	var errs []error
	for _, l := range layers {
		img, err := r.RenderSingle(l.Asset, l.Crop, l.Size)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		dr := img.Bounds().Sub(img.Bounds().Min).Add(l.Offset)
		xdraw.Draw(canvas, dr, img, img.Bounds().Min, xdraw.Over)
	}
	return canvas, errors.Join(errs...)
}
