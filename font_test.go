package eraconsole

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// --- BMFont test fixture ---

// Minimal BMFont .fnt text data with ASCII glyphs for "ABCDEFGHIJ" + space.
const testFntData = `info face="TestFont" size=32 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=0,0
common lineHeight=40 base=30 scaleW=256 scaleH=256 pages=1 packed=0
page id=0 file="test.png"
chars count=11
char id=32  x=0   y=0   width=0   height=0   xoffset=0   yoffset=0   xadvance=10  page=0
char id=65  x=0   y=0   width=20  height=30  xoffset=1   yoffset=2   xadvance=22  page=0
char id=66  x=20  y=0   width=18  height=30  xoffset=1   yoffset=2   xadvance=20  page=0
char id=67  x=38  y=0   width=19  height=30  xoffset=1   yoffset=2   xadvance=21  page=0
char id=68  x=57  y=0   width=20  height=30  xoffset=1   yoffset=2   xadvance=22  page=0
char id=69  x=77  y=0   width=16  height=30  xoffset=1   yoffset=2   xadvance=18  page=0
char id=70  x=93  y=0   width=15  height=30  xoffset=1   yoffset=2   xadvance=17  page=0
char id=71  x=108 y=0   width=20  height=30  xoffset=1   yoffset=2   xadvance=22  page=0
char id=72  x=128 y=0   width=20  height=30  xoffset=1   yoffset=2   xadvance=22  page=0
char id=73  x=148 y=0   width=8   height=30  xoffset=1   yoffset=2   xadvance=10  page=0
char id=74  x=156 y=0   width=12  height=30  xoffset=0   yoffset=2   xadvance=14  page=0
kernings count=2
kerning first=65 second=66 amount=-2
kerning first=65 second=67 amount=-1
`

// testFntDataNoLineHeight is malformed .fnt data missing lineHeight.
const testFntDataNoLineHeight = `info face="Bad" size=32
page id=0 file="test.png"
chars count=1
char id=65 x=0 y=0 width=10 height=10 xoffset=0 yoffset=0 xadvance=12 page=0
`

// testFntDataNoChars is .fnt data with no char definitions.
const testFntDataNoChars = `info face="Bad" size=32
common lineHeight=40 base=30 scaleW=256 scaleH=256 pages=1 packed=0
page id=0 file="test.png"
`

func loadTestFont(t *testing.T) *BitmapFont {
	t.Helper()
	f, err := LoadBitmapFont([]byte(testFntData), nil)
	if err != nil {
		t.Fatalf("LoadBitmapFont: %v", err)
	}
	return f
}

// --- LoadBitmapFont tests ---

func TestLoadBitmapFont_GlyphCount(t *testing.T) {
	f := loadTestFont(t)

	// Count populated ASCII glyphs
	count := 0
	for i := range f.asciiSet {
		if f.asciiSet[i] {
			count++
		}
	}
	if count != 11 {
		t.Errorf("glyph count = %d, want 11", count)
	}
}

func TestLoadBitmapFont_LineHeight(t *testing.T) {
	f := loadTestFont(t)
	if f.lineHeight != 40 {
		t.Errorf("lineHeight = %f, want 40", f.lineHeight)
	}
}

func TestLoadBitmapFont_InvalidData(t *testing.T) {
	_, err := LoadBitmapFont([]byte("not valid fnt data at all"), nil)
	if err == nil {
		t.Error("expected error for invalid data, got nil")
	}
}

func TestLoadBitmapFont_MissingLineHeight(t *testing.T) {
	_, err := LoadBitmapFont([]byte(testFntDataNoLineHeight), nil)
	if err == nil {
		t.Error("expected error for missing lineHeight, got nil")
	}
}

func TestLoadBitmapFont_NoChars(t *testing.T) {
	_, err := LoadBitmapFont([]byte(testFntDataNoChars), nil)
	if err == nil {
		t.Error("expected error for no char definitions, got nil")
	}
}

// --- LoadTTFFont ---

func TestLoadTTFFont_InvalidData(t *testing.T) {
	_, err := LoadTTFFont([]byte("not a TTF file"), 16)
	if err == nil {
		t.Error("expected error for invalid TTF data, got nil")
	}
}

// --- Font interface: MeasureString ---

func TestBitmapFont_MeasureString_SingleLine(t *testing.T) {
	f := loadTestFont(t)
	// "AB" = A(xadvance=22) + kern(A,B)=-2 + B(xadvance=20) = 40
	w, h := f.MeasureString("AB")
	if w != 40 {
		t.Errorf("MeasureString(\"AB\") width = %f, want 40", w)
	}
	if h != 40 {
		t.Errorf("MeasureString(\"AB\") height = %f, want 40", h)
	}
}

func TestBitmapFont_MeasureString_MultiLine(t *testing.T) {
	f := loadTestFont(t)
	// "A\nB" = two lines
	w, h := f.MeasureString("A\nB")
	if w != 22 { // max of A(22) and B(20)
		t.Errorf("width = %f, want 22", w)
	}
	if h != 80 { // 2 lines * 40 lineHeight
		t.Errorf("height = %f, want 80", h)
	}
}

func TestBitmapFont_MeasureString_Empty(t *testing.T) {
	f := loadTestFont(t)
	w, h := f.MeasureString("")
	if w != 0 || h != 40 { // 1 line * lineHeight even for empty
		t.Errorf("MeasureString(\"\") = (%f, %f), want (0, 40)", w, h)
	}
}

// --- Font interface: LineHeight ---

func TestBitmapFont_LineHeight(t *testing.T) {
	f := loadTestFont(t)
	var font Font = f
	if font.LineHeight() != 40 {
		t.Errorf("LineHeight() = %f, want 40", font.LineHeight())
	}
}

// --- Kerning ---

func TestBitmapFont_Kerning(t *testing.T) {
	f := loadTestFont(t)

	// "AB" with kerning -2 vs "AC" with kerning -1
	wAB, _ := f.MeasureString("AB")
	wAC, _ := f.MeasureString("AC")

	// AB = 22 + (-2) + 20 = 40
	// AC = 22 + (-1) + 21 = 42
	if wAB != 40 {
		t.Errorf("AB width = %f, want 40", wAB)
	}
	if wAC != 42 {
		t.Errorf("AC width = %f, want 42", wAC)
	}
}

func TestBitmapFont_NoKerning(t *testing.T) {
	f := loadTestFont(t)

	// "CD" has no kerning entry
	wCD, _ := f.MeasureString("CD")
	// C(21) + D(22) = 43
	if wCD != 43 {
		t.Errorf("CD width = %f, want 43", wCD)
	}
}

func TestBitmapFont_PageNilForMeasurement(t *testing.T) {
	f := loadTestFont(t)
	if f.Page() != nil {
		t.Error("Page() should be nil when loaded without a page image")
	}
}

func TestBitmapFont_UnknownRuneSkipped(t *testing.T) {
	f := loadTestFont(t)
	w, _ := f.MeasureString("A?B")
	// '?' has no glyph and breaks the kerning pair: 22 + 20
	if w != 42 {
		t.Errorf("width = %f, want 42", w)
	}
}

// --- CellFont ---

func TestCellFont_MeasureString(t *testing.T) {
	f := CellFont{CellWidth: 10, CellHeight: 30}
	tests := []struct {
		in   string
		w, h float64
	}{
		{"", 0, 30},
		{"abc", 30, 30},
		{"漢字", 40, 30},
		{"ab\nabcd", 40, 60},
		{"é", 10, 30}, // combining mark has zero width
	}
	for _, tt := range tests {
		w, h := f.MeasureString(tt.in)
		if w != tt.w || h != tt.h {
			t.Errorf("MeasureString(%q) = (%v, %v), want (%v, %v)", tt.in, w, h, tt.w, tt.h)
		}
	}
}

func TestDebugCellFont_LineHeight(t *testing.T) {
	if DebugCellFont.LineHeight() != 16 {
		t.Errorf("LineHeight() = %v, want 16", DebugCellFont.LineHeight())
	}
}

func TestLoadFontFile_Missing(t *testing.T) {
	_, err := LoadFontFile(filepath.Join(t.TempDir(), "nope.ttf"), 24)
	if !errors.Is(err, ErrFontUnavailable) {
		t.Errorf("err = %v, want ErrFontUnavailable", err)
	}
}

func TestLoadFontFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ttf")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFontFile(path, 24)
	if !errors.Is(err, ErrFontUnavailable) {
		t.Errorf("err = %v, want ErrFontUnavailable", err)
	}
}
