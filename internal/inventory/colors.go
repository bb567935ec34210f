package inventory

import "strings"

// wubrg is the canonical color order.
const wubrg = "WUBRG"

// CombineColorIdentities unions per-card color identity strings into a
// single identity in canonical WUBRG order. Unknown characters are ignored,
// so "C" (colorless) and stray whitespace contribute nothing.
func CombineColorIdentities(identities []string) string {
	var seen [5]bool
	for _, identity := range identities {
		for _, r := range strings.ToUpper(identity) {
			if i := strings.IndexRune(wubrg, r); i >= 0 {
				seen[i] = true
			}
		}
	}

	var b strings.Builder
	for i, ok := range seen {
		if ok {
			b.WriteByte(wubrg[i])
		}
	}
	return b.String()
}
