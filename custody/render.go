package custody

import (
	"sort"
	"strings"
)

// Document is a convenient in-memory representation for producing canonical
// custody seals. Rendered bytes are always canonical (section order, key
// order, spacing, and blank lines).
type Document struct {
	Meta    map[string]string
	Subject map[string]string
	Crypto  map[string]string
}

// Render produces canonical seal bytes from a Document.
func Render(doc Document) ([]byte, error) {
	sections := []struct {
		name  string
		pairs map[string]string
	}{
		{name: "META", pairs: doc.Meta},
		{name: "SUBJECT", pairs: doc.Subject},
		{name: "CRYPTO", pairs: doc.Crypto},
	}

	var sb strings.Builder
	sb.WriteString(Preamble)
	sb.WriteString("\n")

	for i, sec := range sections {
		sb.WriteString(sec.name)
		sb.WriteString("\n")

		keys := make([]string, 0, len(sec.pairs))
		for k := range sec.pairs {
			if k == "" {
				return nil, newError(KindRender, "RVL-SEAL-201", "empty key")
			}
			if !isASCII(k) {
				return nil, newError(KindRender, "RVL-SEAL-202", "non-ASCII key")
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := sec.pairs[k]
			if v == "" {
				return nil, newError(KindRender, "RVL-SEAL-203", "empty value")
			}
			if strings.HasPrefix(v, " ") {
				return nil, newError(KindRender, "RVL-SEAL-204", "value must not start with a space")
			}
			if strings.Contains(v, "\n") || strings.Contains(v, "\r") {
				return nil, newError(KindRender, "RVL-SEAL-205", "value must not contain newlines")
			}
			if strings.HasSuffix(v, " ") || strings.HasSuffix(v, "\t") {
				return nil, newError(KindRender, "RVL-SEAL-206", "trailing whitespace forbidden")
			}
			sb.WriteString(k)
			sb.WriteString(": ")
			sb.WriteString(v)
			sb.WriteString("\n")
		}

		if i != len(sections)-1 {
			sb.WriteString("\n")
		}
	}

	sb.WriteString(Postamble)
	return []byte(sb.String()), nil
}
