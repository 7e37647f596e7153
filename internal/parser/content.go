package parser

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// pdfStringPat matches a PDF string literal. Escaped parens and one level
// of balanced nesting stay inside the capture, which matters for negative
// amounts shown as ((1,234)).
const pdfStringPat = `\(((?:\\.|\((?:\\.|[^\\()])*\)|[^\\()])*)\)`

var (
	pdfStringRe = regexp.MustCompile(pdfStringPat)

	// tjPieceRe matches the elements of a TJ array: string literals and
	// kern adjustments.
	tjPieceRe = regexp.MustCompile(pdfStringPat + `|(-?\d+(?:\.\d+)?)`)
)

// spaceKern is the TJ adjustment (thousandths of an em, negative widens)
// beyond which a gap reads as a word space rather than letter kerning.
const spaceKern = -150

// linesFromContentStream parses content-stream text operators into visual
// lines. Tj/TJ/'/" show text; ', ", T* and a downward Td/TD start a new
// line, a horizontal Td/TD separates cells on the same line. Hex strings
// (CID encoded text) are not recoverable without font maps and are skipped.
func linesFromContentStream(data []byte) []string {
	var (
		lines   []string
		current strings.Builder
	)

	flush := func() {
		if s := cleanLine(current.String()); s != "" {
			lines = append(lines, s)
		}
		current.Reset()
	}

	// appendShow handles single-string shows (Tj, ', ").
	appendShow := func(line []byte) {
		for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
			current.WriteString(decodePDFString(m[1]))
		}
	}

	// appendTJ walks a TJ array, turning space-sized kern gaps between
	// string elements into word spaces.
	appendTJ := func(line []byte) {
		pendingSpace := false
		for _, idx := range tjPieceRe.FindAllSubmatchIndex(line, -1) {
			if idx[2] >= 0 {
				if pendingSpace {
					current.WriteByte(' ')
					pendingSpace = false
				}
				current.WriteString(decodePDFString(line[idx[2]:idx[3]]))
				continue
			}
			kern, err := strconv.ParseFloat(string(line[idx[4]:idx[5]]), 64)
			if err == nil && kern <= spaceKern {
				pendingSpace = true
			}
		}
	}

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		// Tj operator: (text) Tj
		case bytes.HasSuffix(line, []byte("Tj")):
			appendShow(line)

		// TJ operator: [(text) -250 (more text)] TJ
		case bytes.HasSuffix(line, []byte("TJ")):
			appendTJ(line)

		// ' and " operators: move to the next line, then show text.
		case bytes.HasSuffix(line, []byte("'")) || bytes.HasSuffix(line, []byte(`"`)):
			if bytes.Contains(line, []byte("(")) {
				flush()
				appendShow(line)
			}

		// Td/TD operator: downward movement is a new line, horizontal
		// movement separates cells of the same row.
		case bytes.HasSuffix(line, []byte("Td")) || bytes.HasSuffix(line, []byte("TD")):
			if movesDown(line) {
				flush()
			} else if current.Len() > 0 {
				current.WriteByte(' ')
			}

		// T* operator: move to the start of the next line.
		case bytes.Equal(line, []byte("T*")):
			flush()

		// ET ends a text block.
		case bytes.Equal(line, []byte("ET")):
			flush()
		}
	}
	flush()

	return lines
}

// movesDown reports whether a Td/TD operator line carries a negative ty
// operand. Unparseable operands count as horizontal movement.
func movesDown(line []byte) bool {
	fields := strings.Fields(string(line))
	if len(fields) < 3 {
		return false
	}
	ty, err := strconv.ParseFloat(fields[len(fields)-2], 64)
	if err != nil {
		return false
	}
	return ty < 0
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
				// backspace/formfeed carry no text
			case '\\':
				sb.WriteByte('\\')
			case '(':
				sb.WriteByte('(')
			case ')':
				sb.WriteByte(')')
			default:
				// Octal escape (e.g. \040 for space).
				if raw[i] >= '0' && raw[i] <= '7' {
					val := int(raw[i] - '0')
					for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
						i++
						val = val*8 + int(raw[i]-'0')
					}
					if val > 0 && val < 256 {
						sb.WriteByte(byte(val))
					}
				} else {
					sb.WriteByte(raw[i])
				}
			}
			continue
		}
		sb.WriteByte(raw[i])
	}
	return sb.String()
}

// cleanLine collapses whitespace runs and strips non-printable runes.
func cleanLine(s string) string {
	var sb strings.Builder
	lastSpace := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				sb.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		if !unicode.IsPrint(r) {
			continue
		}
		sb.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(sb.String())
}
