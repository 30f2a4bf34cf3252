package plantdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// DefaultArrayName is the declaration the stock data file exports.
const DefaultArrayName = "plantsData"

// Load reads the data file and extracts the named plant array.
func Load(path, arrayName string) ([]Plant, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plant data: %w", err)
	}
	return Parse(string(src), arrayName)
}

// Parse extracts `const <arrayName> = [ ... ];` from the source text,
// relaxes the loosely-JSON literal into strict JSON and decodes it into
// validated Plant records. Any failure makes the whole dataset unavailable;
// no partial result is ever returned.
func Parse(src, arrayName string) ([]Plant, error) {
	literal, err := extractArray(src, arrayName)
	if err != nil {
		return nil, err
	}

	relaxed := dropTrailingCommas(quoteBareKeys(stripComments(literal)))

	root := gjson.Parse(relaxed)
	if !gjson.Valid(relaxed) {
		return nil, &FormatError{Construct: syntaxContext(relaxed), Err: fmt.Errorf("invalid JSON after relaxing")}
	}
	if !root.IsArray() {
		return nil, &ShapeError{Got: root.Type.String()}
	}

	rows := root.Array()
	plants := make([]Plant, 0, len(rows))
	seen := make(map[string]int)
	for i, row := range rows {
		if !row.IsObject() {
			return nil, &FormatError{Construct: fmt.Sprintf("row %d (%s)", i, row.Type)}
		}
		var p Plant
		if err := json.Unmarshal([]byte(row.Raw), &p); err != nil {
			return nil, &FormatError{Construct: fmt.Sprintf("row %d", i), Err: err}
		}
		if err := validate(&p); err != nil {
			return nil, &FormatError{Construct: fmt.Sprintf("row %d (id=%q)", i, p.ID), Err: err}
		}
		if prev, dup := seen[p.ID]; dup {
			return nil, &FormatError{Construct: fmt.Sprintf("row %d", i), Err: fmt.Errorf("duplicate id %q (also row %d)", p.ID, prev)}
		}
		seen[p.ID] = i
		plants = append(plants, p)
	}
	return plants, nil
}

func validate(p *Plant) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("missing id")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("missing name")
	}
	if p.WaterFreq < 0 {
		return fmt.Errorf("negative waterFreq %d", p.WaterFreq)
	}
	for _, m := range p.FeedMonths {
		if m < 0 || m > 11 {
			return fmt.Errorf("feed month %d out of range", m)
		}
	}
	return nil
}

// extractArray locates `const <name> = [` and scans to the matching
// top-level closing bracket followed by a semicolon. The scan counts
// bracket depth and is aware of strings, so nested arrays and objects
// inside the literal cannot truncate it.
func extractArray(src, name string) (string, error) {
	decl := "const " + name
	idx := -1
	for from := 0; ; {
		i := strings.Index(src[from:], decl)
		if i < 0 {
			break
		}
		at := from + i
		end := at + len(decl)
		// reject a longer identifier that merely shares the prefix
		if end >= len(src) || !isIdentPart(src[end]) {
			idx = at
			break
		}
		from = end
	}
	if idx < 0 {
		return "", ErrDataNotFound
	}
	rest := src[idx+len(decl):]

	eq := strings.IndexByte(rest, '=')
	if eq < 0 {
		return "", ErrDataNotFound
	}
	rest = rest[eq+1:]

	// balance whatever bracket the declaration opens with; a non-array
	// value still extracts cleanly and fails the shape check instead
	start := strings.IndexAny(rest, "[{")
	if start < 0 {
		return "", ErrDataNotFound
	}
	rest = rest[start:]

	depth := 0
	var inStr bool
	var quote byte
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if inStr {
			switch c {
			case '\\':
				i++ // skip escaped char
			case quote:
				inStr = false
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			inStr = true
			quote = c
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				// must be followed by a statement terminator
				tail := strings.TrimLeftFunc(rest[i+1:], unicode.IsSpace)
				if !strings.HasPrefix(tail, ";") {
					return "", ErrDataNotFound
				}
				return rest[:i+1], nil
			}
		}
	}
	return "", ErrDataNotFound
}

// stripComments removes /* */ and // comments outside string literals.
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var inStr bool
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			b.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
			case quote:
				inStr = false
			}
			continue
		}
		switch {
		case c == '"' || c == '\'' || c == '`':
			inStr = true
			quote = c
			b.WriteByte(c)
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += 2 + end + 1
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			nl := strings.IndexByte(s[i:], '\n')
			if nl < 0 {
				return b.String()
			}
			i += nl - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// quoteBareKeys wraps unquoted identifier keys (immediately followed by a
// colon) in double quotes.
func quoteBareKeys(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var inStr bool
	var quote byte
	prev := byte('{') // treat start as a key position
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			b.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
			case quote:
				inStr = false
			}
			continue
		}
		switch {
		case c == '"' || c == '\'' || c == '`':
			inStr = true
			quote = c
			b.WriteByte(c)
			prev = c
		case isIdentStart(c) && (prev == '{' || prev == ','):
			j := i
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			k := j
			for k < len(s) && (s[k] == ' ' || s[k] == '\t' || s[k] == '\n' || s[k] == '\r') {
				k++
			}
			if k < len(s) && s[k] == ':' {
				b.WriteByte('"')
				b.WriteString(s[i:j])
				b.WriteByte('"')
			} else {
				b.WriteString(s[i:j])
			}
			i = j - 1
			prev = s[j-1]
		default:
			b.WriteByte(c)
			if !isSpace(c) {
				prev = c
			}
		}
	}
	return b.String()
}

// dropTrailingCommas removes a comma that directly precedes a closing
// bracket or brace.
func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var inStr bool
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			b.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
			case quote:
				inStr = false
			}
			continue
		}
		switch {
		case c == '"' || c == '\'' || c == '`':
			inStr = true
			quote = c
			b.WriteByte(c)
		case c == ',':
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == ']' || s[j] == '}') {
				continue // swallow the comma, keep the whitespace
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// syntaxContext pinpoints the first construct the strict parser chokes on.
func syntaxContext(s string) string {
	var syn *json.SyntaxError
	var v any
	err := json.Unmarshal([]byte(s), &v)
	if err == nil {
		return "unknown construct"
	}
	if errors.As(err, &syn) {
		off := int(syn.Offset)
		lo := off - 20
		if lo < 0 {
			lo = 0
		}
		hi := off + 20
		if hi > len(s) {
			hi = len(s)
		}
		return strings.TrimSpace(s[lo:hi])
	}
	return err.Error()
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
