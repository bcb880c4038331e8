package eraconsole

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// --- TexturePacker JSON ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame   jsonRect `json:"frame"`
	Rotated bool     `json:"rotated"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

type jsonMeta struct {
	Image string `json:"image"`
}

// LoadAtlasFile registers every frame of a TexturePacker JSON atlas as an
// asset. Both the hash format (single "frames" object plus meta.image) and
// the array format ("textures" with per-page frame lists) are accepted.
// Frames are keyed by their name without extension; page images resolve
// relative to the JSON file. Rotated frames cannot be cropped and are
// skipped with an error.
func LoadAtlasFile(reg *AssetRegistry, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("eraconsole: read atlas: %w", err)
	}
	return loadAtlas(reg, data, filepath.Dir(path))
}

func loadAtlas(reg *AssetRegistry, data []byte, baseDir string) (int, error) {
	// Probe top-level keys to detect format.
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
		Meta     jsonMeta        `json:"meta"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("eraconsole: parse atlas: %w", err)
	}

	var pages []jsonTexturePage
	switch {
	case probe.Textures != nil:
		if err := json.Unmarshal(probe.Textures, &pages); err != nil {
			return 0, fmt.Errorf("eraconsole: parse atlas textures: %w", err)
		}
	case probe.Frames != nil:
		page := jsonTexturePage{Image: probe.Meta.Image}
		if err := json.Unmarshal(probe.Frames, &page.Frames); err != nil {
			return 0, fmt.Errorf("eraconsole: parse atlas frames: %w", err)
		}
		pages = append(pages, page)
	default:
		return 0, errors.New(`eraconsole: atlas has neither "frames" nor "textures"`)
	}

	var count int
	var errs []error
	for i, p := range pages {
		if p.Image == "" {
			errs = append(errs, fmt.Errorf("eraconsole: atlas page %d has no image", i))
			continue
		}
		// Sorted so a name present on several pages resolves the same way
		// on every load.
		names := make([]string, 0, len(p.Frames))
		for name := range p.Frames {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			f := p.Frames[name]
			if f.Rotated {
				errs = append(errs, fmt.Errorf("eraconsole: atlas frame %q is rotated", name))
				continue
			}
			key := strings.TrimSuffix(name, filepath.Ext(name))
			reg.Register(Asset{
				Key:          key,
				Path:         filepath.Join(baseDir, p.Image),
				Region:       image.Rect(f.Frame.X, f.Frame.Y, f.Frame.X+f.Frame.W, f.Frame.Y+f.Frame.H),
				OriginalName: key,
			})
			count++
		}
	}
	return count, errors.Join(errs...)
}
