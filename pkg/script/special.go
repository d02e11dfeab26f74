package script

// SpecialKind enumerates the built-in behaviors reachable through special(...).
type SpecialKind int

const (
	ShopBuy SpecialKind = iota
	ShopSell
)

// specialNames is the complete symbol table for special(...). Adding a kind
// means adding a row here.
var specialNames = []struct {
	kind SpecialKind
	name string
}{
	{ShopBuy, "shop_buy"},
	{ShopSell, "shop_sell"},
}

// ParseSpecialKind converts a source symbol to its kind. The match is exact.
func ParseSpecialKind(s string) (SpecialKind, bool) {
	for _, e := range specialNames {
		if e.name == s {
			return e.kind, true
		}
	}
	return 0, false
}

// String returns the source symbol of the kind.
func (k SpecialKind) String() string {
	for _, e := range specialNames {
		if e.kind == k {
			return e.name
		}
	}
	return "unknown"
}

// SpecialKinds returns every kind in declaration order.
func SpecialKinds() []SpecialKind {
	kinds := make([]SpecialKind, len(specialNames))
	for i, e := range specialNames {
		kinds[i] = e.kind
	}
	return kinds
}
