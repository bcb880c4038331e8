package eraconsole

import (
	"encoding/csv"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Asset describes a registered image source: a file plus the region of it
// that the data source defines as the sprite.
type Asset struct {
	Key          string          // registry key, unique per session
	Path         string          // source image file
	Region       image.Rectangle // defined crop region in source pixels
	OriginalName string          // bare name as authored in the source data
	Chara        string          // character id tag, may be empty
	Variant      string          // variant (drawing type) tag, may be empty
}

// Width returns the width of the defined region.
func (a Asset) Width() int { return a.Region.Dx() }

// Height returns the height of the defined region.
func (a Asset) Height() int { return a.Region.Dy() }

// AssetRegistry maps asset keys to assets. Registration order is kept so
// the original-name fallback is deterministic.
type AssetRegistry struct {
	assets map[string]Asset
	order  []string
}

// NewAssetRegistry creates an empty registry.
func NewAssetRegistry() *AssetRegistry {
	return &AssetRegistry{assets: make(map[string]Asset)}
}

// Register inserts or overwrites the asset under a.Key.
func (r *AssetRegistry) Register(a Asset) {
	if _, ok := r.assets[a.Key]; !ok {
		r.order = append(r.order, a.Key)
	}
	r.assets[a.Key] = a
}

// Len returns the number of registered assets.
func (r *AssetRegistry) Len() int {
	return len(r.assets)
}

// Lookup returns the asset registered under exactly key.
func (r *AssetRegistry) Lookup(key string) (Asset, bool) {
	a, ok := r.assets[key]
	return a, ok
}

// Resolve finds an asset for key. Exact key match wins; with a character
// context the prefixed forms chara_variant_key and chara_key are tried next;
// finally the first registered asset whose OriginalName equals key is used.
func (r *AssetRegistry) Resolve(key, chara, variant string) (Asset, error) {
	if a, ok := r.assets[key]; ok {
		return a, nil
	}
	if chara != "" {
		if variant != "" {
			if a, ok := r.assets[chara+"_"+variant+"_"+key]; ok {
				return a, nil
			}
		}
		if a, ok := r.assets[chara+"_"+key]; ok {
			return a, nil
		}
	}
	for _, k := range r.order {
		if a := r.assets[k]; a.OriginalName == key {
			return a, nil
		}
	}
	return Asset{}, fmt.Errorf("%w: %q", ErrMissingAsset, key)
}

// defaultAssetRegion is used for index rows without an explicit region.
var defaultAssetRegion = image.Rect(0, 0, PlaceholderSize, PlaceholderSize)

// LoadAssetIndex walks dir/<chara>/<variant>/<chara>.csv index files and
// registers every row under the key chara_variant_name. Rows have the form
// name,filename[,x,y,w,h]; lines starting with ';' are comments. Files are
// resolved relative to the variant directory. JSON files directly inside dir
// are loaded as TexturePacker atlases with LoadAtlasFile. It returns the
// number of registered assets; per-file failures are collected and returned
// joined.
func LoadAssetIndex(reg *AssetRegistry, dir string) (int, error) {
	charas, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("eraconsole: read asset dir: %w", err)
	}
	var count int
	var errs []error
	for _, c := range charas {
		if !c.IsDir() {
			if strings.EqualFold(filepath.Ext(c.Name()), ".json") {
				n, err := LoadAtlasFile(reg, filepath.Join(dir, c.Name()))
				count += n
				if err != nil {
					errs = append(errs, err)
				}
			}
			continue
		}
		chara := c.Name()
		variants, err := os.ReadDir(filepath.Join(dir, chara))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, v := range variants {
			if !v.IsDir() {
				continue
			}
			variantDir := filepath.Join(dir, chara, v.Name())
			indexPath := filepath.Join(variantDir, chara+".csv")
			f, err := os.Open(indexPath)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					errs = append(errs, err)
				}
				continue
			}
			n, err := readAssetIndex(reg, f, variantDir, chara, v.Name())
			f.Close()
			count += n
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", indexPath, err))
			}
		}
	}
	return count, errors.Join(errs...)
}

// readAssetIndex registers the rows of one index file.
func readAssetIndex(reg *AssetRegistry, r io.Reader, baseDir, chara, variant string) (int, error) {
	cr := csv.NewReader(r)
	cr.Comment = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var count int
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		if len(rec) < 2 {
			continue
		}
		name := strings.TrimPrefix(strings.TrimSpace(rec[0]), "\ufeff")
		if name == "" {
			continue
		}
		region := defaultAssetRegion
		if len(rec) >= 6 {
			if rr, ok := parseRegion(rec[2:6]); ok {
				region = rr
			}
		}
		reg.Register(Asset{
			Key:          chara + "_" + variant + "_" + name,
			Path:         filepath.Join(baseDir, strings.TrimSpace(rec[1])),
			Region:       region,
			OriginalName: name,
			Chara:        chara,
			Variant:      variant,
		})
		count++
	}
}

func parseRegion(fields []string) (image.Rectangle, bool) {
	var v [4]int
	for i, s := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return image.Rectangle{}, false
		}
		v[i] = n
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), true
}
