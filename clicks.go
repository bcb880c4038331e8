package eraconsole

// ClickRegion maps a screen rectangle to the click value of a visible
// fragment, image or composite. Regions are derived data: they are rebuilt
// from the visible slice on every layout pass and never patched.
type ClickRegion struct {
	Rect     Rect
	Value    string
	Entry    *Entry
	Fragment int // fragment index, -1 for image and composite entries
}

// resolveClick scans regions in layout order and returns the value of the
// first one containing (x, y).
func resolveClick(regions []ClickRegion, x, y float64) (string, bool) {
	for i := range regions {
		if regions[i].Rect.Contains(x, y) {
			return regions[i].Value, true
		}
	}
	return "", false
}
