package eraconsole

import "strings"

// normalizeText folds CRLF line endings and expands tabs before wrapping.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", TabWidth))
}

// wrapLines splits s on literal newlines and greedily wraps every segment to
// maxWidth using a rune-by-rune width probe. Wrapping is by character, not by
// word. A rune that alone is wider than maxWidth still gets a line of its
// own. An empty segment yields one empty line, so the result is never empty.
func wrapLines(f Font, s string, maxWidth float64) []string {
	segments := strings.Split(normalizeText(s), "\n")
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = wrapSegment(lines, f, seg, maxWidth)
	}
	return lines
}

func wrapSegment(lines []string, f Font, seg string, maxWidth float64) []string {
	if seg == "" {
		return append(lines, "")
	}
	var cur strings.Builder
	for _, r := range seg {
		probe := cur.String() + string(r)
		w, _ := f.MeasureString(probe)
		if w > maxWidth && cur.Len() > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		cur.WriteRune(r)
	}
	return append(lines, cur.String())
}
