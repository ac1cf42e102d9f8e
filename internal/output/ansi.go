package output

import "strings"

const esc = '\x1b'

// VisibleLen counts the code points of s that remain after CSI sequences
// (ESC '[' params letter) are removed.
func VisibleLen(s string) int {
	n := 0
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if end, ok := csiEnd(runes, i); ok {
			i = end
			continue
		}
		n++
	}
	return n
}

// TruncateANSI keeps at most maxVisible visible code points of s. CSI
// sequences are copied whole and never count against the budget, including
// those after the cut, so trailing style resets survive.
func TruncateANSI(s string, maxVisible int) string {
	var b strings.Builder
	b.Grow(len(s))
	visible := 0
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if end, ok := csiEnd(runes, i); ok {
			b.WriteString(string(runes[i : end+1]))
			i = end
			continue
		}
		if visible >= maxVisible {
			continue
		}
		b.WriteRune(runes[i])
		visible++
	}
	return b.String()
}

// csiEnd reports whether a CSI sequence starts at runes[i] and returns the
// index of its final letter. An unterminated sequence runs to the end of s.
func csiEnd(runes []rune, i int) (int, bool) {
	if runes[i] != esc || i+1 >= len(runes) || runes[i+1] != '[' {
		return 0, false
	}
	for j := i + 2; j < len(runes); j++ {
		r := runes[j]
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return j, true
		}
	}
	return len(runes) - 1, true
}
