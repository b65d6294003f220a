package sanitizer

import (
	"strings"

	"github.com/kolkov/scsan/ir"
)

// ShadowLink is a shadow-array link (§3): Shadow is the sibling 64-bit
// slot-owner-token array backing Original.
type ShadowLink struct {
	Original *ir.GlobalVariable
	Shadow   *ir.GlobalVariable
}

// synthesizeShadowArrays implements C4: find every module-scope global that
// qualifies as a work-group-local array buffer and materialize (or reuse) a
// sibling shadow array of 64-bit tokens with the same element count.
//
// A variable qualifies when all of (§4.4):
//
//	(a) resident in the work-group-local address space
//	(b) not constant
//	(c) not externally initialized
//	(d) its type is a statically sized array
//
// Anonymous originals (empty name) are skipped: LLVM can synthesize an
// anonymous shadow and still reference it by value, but nothing in this IR
// model can look up an unnamed global by position, so there is no way to
// link back to it later — recorded as an Open Question decision in
// DESIGN.md.
func synthesizeShadowArrays(m *ir.Module, diag *Diagnostics) []ShadowLink {
	var links []ShadowLink

	for _, g := range m.Globals {
		if g.AddrSpace != ir.AddressSpaceLocal {
			continue
		}
		// A global named after another global's shadow sibling is never an
		// original itself, so a re-run does not shadow its own shadows.
		if base, ok := strings.CutSuffix(g.Name, ".shadow"); ok {
			if _, hasOriginal := m.FindGlobal(base); hasOriginal {
				continue
			}
		}
		if g.Constant {
			diag.Skip("global %q is constant, not a race-check candidate", g.Name)
			continue
		}
		if g.ExternInit {
			diag.Skip("global %q is externally initialized, not a race-check candidate", g.Name)
			continue
		}
		at, isArray := g.ElemType.(ir.ArrayType)
		if !isArray {
			diag.Skip("global %q is not an array type, not a race-check candidate", g.Name)
			continue
		}
		if g.Name == "" {
			diag.Skip("anonymous local array cannot be linked to a shadow, skipping")
			continue
		}

		shadowName := g.Name + ".shadow"
		if existing, ok := m.FindGlobal(shadowName); ok {
			if !isShadowCompatible(existing, at.Count) {
				diag.Skip("shadow clash: %q already exists with an incompatible type, leaving it and not instrumenting %q", shadowName, g.Name)
				continue
			}
			links = append(links, ShadowLink{Original: g, Shadow: existing})
			continue
		}

		shadow := &ir.GlobalVariable{
			Name:      shadowName,
			ElemType:  ir.ArrayType{Elem: ir.I64, Count: at.Count},
			AddrSpace: ir.AddressSpaceLocal,
			Linkage:   ir.LinkageInternal,
			Align:     8,
		}
		m.AddGlobal(shadow)
		links = append(links, ShadowLink{Original: g, Shadow: shadow})
	}

	return links
}

func isShadowCompatible(g *ir.GlobalVariable, count int) bool {
	at, ok := g.ElemType.(ir.ArrayType)
	if !ok {
		return false
	}
	return at.Elem == ir.I64 && at.Count == count && g.AddrSpace == ir.AddressSpaceLocal
}

// findShadowByOriginal returns the link whose Original matches g, if any.
func findShadowByOriginal(links []ShadowLink, g *ir.GlobalVariable) (ShadowLink, bool) {
	for _, l := range links {
		if l.Original == g {
			return l, true
		}
	}
	return ShadowLink{}, false
}
