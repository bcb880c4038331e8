package eraconsole

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// ImageRequest asks the console for one asset drawn as its own entry.
type ImageRequest struct {
	Key     string
	Chara   string       // character context for key resolution
	Variant string       // variant context for key resolution
	Crop    *image.Point // overrides the origin of the asset's defined region
	Size    *Size        // target size; nil keeps the cropped size
	Click   string
}

// CompositeLayer is one asset of a composite, drawn at Offset on the canvas.
type CompositeLayer struct {
	Key     string
	Chara   string
	Variant string
	Crop    *image.Point
	Size    *Size
	Offset  image.Point // may be negative
	Click   string
}

// CompositeRequest asks for several assets flattened onto one canvas. Zero
// Template dimensions are derived: the width from the viewport, the height
// from the tallest layer.
type CompositeRequest struct {
	Layers   []CompositeLayer
	Click    string
	Template Size
}

// Mark is the parsed form of a textual image mark. Exactly one field is set.
type Mark struct {
	Image     *ImageRequest
	Composite *CompositeRequest
}

const (
	imagePrefix = "[IMG:"
	stackPrefix = "[IMG_STACK:"
)

// IsMark reports whether s looks like an image mark.
func IsMark(s string) bool {
	s = strings.TrimSpace(s)
	return (strings.HasPrefix(s, imagePrefix) || strings.HasPrefix(s, stackPrefix)) &&
		strings.HasSuffix(s, "]")
}

// ParseMark parses [IMG:key|k=v|...] and [IMG_STACK:key{k:v;...}|key{...}]
// marks. Recognized keys are clip, size, offset, click, chara and type;
// unknown keys are ignored. Errors wrap ErrMalformedMark.
func ParseMark(s string) (Mark, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "]") {
		return Mark{}, fmt.Errorf("%w: missing closing bracket", ErrMalformedMark)
	}
	switch {
	case strings.HasPrefix(s, stackPrefix):
		req, err := parseStack(s[len(stackPrefix) : len(s)-1])
		if err != nil {
			return Mark{}, err
		}
		return Mark{Composite: req}, nil
	case strings.HasPrefix(s, imagePrefix):
		req, err := parseImage(s[len(imagePrefix) : len(s)-1])
		if err != nil {
			return Mark{}, err
		}
		return Mark{Image: req}, nil
	default:
		return Mark{}, fmt.Errorf("%w: unknown prefix in %q", ErrMalformedMark, s)
	}
}

func parseImage(body string) (*ImageRequest, error) {
	parts := strings.Split(body, "|")
	key := strings.TrimSpace(parts[0])
	if key == "" {
		return nil, fmt.Errorf("%w: empty image key", ErrMalformedMark)
	}
	req := &ImageRequest{Key: key}
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		var l CompositeLayer
		if err := applyParam(&l, strings.TrimSpace(k), strings.TrimSpace(v)); err != nil {
			return nil, err
		}
		mergeLayerParams(req, l, strings.TrimSpace(k))
	}
	return req, nil
}

// mergeLayerParams copies the one parameter just parsed into req.
func mergeLayerParams(req *ImageRequest, l CompositeLayer, key string) {
	switch key {
	case "clip":
		req.Crop = l.Crop
	case "size":
		req.Size = l.Size
	case "click":
		req.Click = l.Click
	case "chara":
		req.Chara = l.Chara
	case "type":
		req.Variant = l.Variant
	}
}

func parseStack(body string) (*CompositeRequest, error) {
	elements, err := splitTopLevel(body)
	if err != nil {
		return nil, err
	}
	req := &CompositeRequest{}
	for _, el := range elements {
		el = strings.TrimSpace(el)
		if el == "" {
			continue
		}
		name, params := el, ""
		if i := strings.IndexByte(el, '{'); i >= 0 {
			if !strings.HasSuffix(el, "}") {
				return nil, fmt.Errorf("%w: unterminated parameter block in %q", ErrMalformedMark, el)
			}
			name, params = el[:i], el[i+1:len(el)-1]
		}
		layer := CompositeLayer{Key: strings.TrimSpace(name)}
		if layer.Key == "" {
			return nil, fmt.Errorf("%w: empty layer key", ErrMalformedMark)
		}
		for _, pair := range strings.Split(params, ";") {
			k, v, ok := strings.Cut(pair, ":")
			if !ok {
				continue
			}
			if err := applyParam(&layer, strings.TrimSpace(k), strings.TrimSpace(v)); err != nil {
				return nil, err
			}
		}
		if req.Click == "" {
			req.Click = layer.Click
		}
		req.Layers = append(req.Layers, layer)
	}
	if len(req.Layers) == 0 {
		return nil, fmt.Errorf("%w: image stack has no layers", ErrMalformedMark)
	}
	return req, nil
}

// splitTopLevel splits on '|' outside of {...} blocks.
func splitTopLevel(s string) ([]string, error) {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced braces", ErrMalformedMark)
			}
		case '|':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced braces", ErrMalformedMark)
	}
	return append(out, s[start:]), nil
}

func applyParam(l *CompositeLayer, key, value string) error {
	switch key {
	case "clip":
		p, err := parsePair(key, value)
		if err != nil {
			return err
		}
		l.Crop = &p
	case "size":
		p, err := parsePair(key, value)
		if err != nil {
			return err
		}
		if p.X <= 0 || p.Y <= 0 {
			return fmt.Errorf("%w: size must be positive, got %q", ErrMalformedMark, value)
		}
		l.Size = &Size{W: p.X, H: p.Y}
	case "offset":
		p, err := parsePair(key, value)
		if err != nil {
			return err
		}
		l.Offset = p
	case "click":
		l.Click = value
	case "chara":
		l.Chara = value
	case "type":
		l.Variant = value
	}
	return nil
}

// parsePair parses "x,y" or "(x,y)".
func parsePair(key, value string) (image.Point, error) {
	v := strings.TrimSpace(value)
	v = strings.TrimPrefix(v, "(")
	v = strings.TrimSuffix(v, ")")
	xs, ys, ok := strings.Cut(v, ",")
	if !ok {
		return image.Point{}, fmt.Errorf("%w: %s wants x,y, got %q", ErrMalformedMark, key, value)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil {
		return image.Point{}, fmt.Errorf("%w: %s wants integers, got %q", ErrMalformedMark, key, value)
	}
	return image.Pt(x, y), nil
}

// String formats the request as an [IMG:...] mark.
func (r ImageRequest) String() string {
	var b strings.Builder
	b.WriteString(imagePrefix)
	b.WriteString(r.Key)
	if r.Crop != nil {
		fmt.Fprintf(&b, "|clip=%d,%d", r.Crop.X, r.Crop.Y)
	}
	if r.Size != nil {
		fmt.Fprintf(&b, "|size=%d,%d", r.Size.W, r.Size.H)
	}
	if r.Click != "" {
		b.WriteString("|click=" + r.Click)
	}
	if r.Chara != "" {
		b.WriteString("|chara=" + r.Chara)
	}
	if r.Variant != "" {
		b.WriteString("|type=" + r.Variant)
	}
	b.WriteByte(']')
	return b.String()
}

// String formats the request as an [IMG_STACK:...] mark. A request-level
// click value is carried on the first layer without one.
func (r CompositeRequest) String() string {
	var b strings.Builder
	b.WriteString(stackPrefix)
	clickPlaced := r.Click == ""
	for i, l := range r.Layers {
		if i > 0 {
			b.WriteByte('|')
		}
		if !clickPlaced && l.Click == "" && i == 0 {
			l.Click = r.Click
			clickPlaced = true
		}
		b.WriteString(l.Key)
		var params []string
		if l.Crop != nil {
			params = append(params, fmt.Sprintf("clip:(%d,%d)", l.Crop.X, l.Crop.Y))
		}
		if l.Size != nil {
			params = append(params, fmt.Sprintf("size:(%d,%d)", l.Size.W, l.Size.H))
		}
		if l.Offset != (image.Point{}) {
			params = append(params, fmt.Sprintf("offset:(%d,%d)", l.Offset.X, l.Offset.Y))
		}
		if l.Click != "" {
			params = append(params, "click:"+l.Click)
		}
		if l.Chara != "" {
			params = append(params, "chara:"+l.Chara)
		}
		if l.Variant != "" {
			params = append(params, "type:"+l.Variant)
		}
		if len(params) > 0 {
			b.WriteString("{" + strings.Join(params, ";") + "}")
		}
	}
	b.WriteByte(']')
	return b.String()
}
