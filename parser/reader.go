package parser

import "strings"

// SourceLine is one normalized line of the expanded source.
type SourceLine struct {
	Num     int
	Text    string
	TooLong bool
}

// SplitLines breaks source text into normalized lines the way the passes
// consume them: each whitespace character becomes a plain space, leading
// blanks and non-printable characters are dropped. Lines longer than
// MaxLineLen are flagged rather than truncated so pass 1 can report them.
func SplitLines(src string) []SourceLine {
	rawLines := strings.Split(src, "\n")
	lines := make([]SourceLine, 0, len(rawLines))
	for i, raw := range rawLines {
		raw = strings.TrimSuffix(raw, "\r")
		lines = append(lines, SourceLine{
			Num:     i + 1,
			Text:    normalizeLine(raw),
			TooLong: len(raw) > MaxLineLen,
		})
	}
	return lines
}

// normalizeLine maps each whitespace character to a plain space, drops
// leading whitespace and keeps only printable characters.
func normalizeLine(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == ' ' || c == '\t' || c == '\f' || c == '\v':
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}
