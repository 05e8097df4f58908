package cart

import "github.com/barbearia-premium/engine/internal/catalog"

// MaxQuantity caps a single cart line. The engine re-validates it at
// finalize time, so a bypassed cart cannot smuggle a larger order in.
const MaxQuantity = 100

type Item struct {
	Kind     catalog.Kind `json:"kind"`
	ID       int64        `json:"id"`
	Quantity int          `json:"quantity"`
}

type Cart []Item

func (c Cart) Count() int {
	n := 0
	for _, it := range c {
		n += it.Quantity
	}
	return n
}

func (c Cart) find(kind catalog.Kind, id int64) int {
	for i, it := range c {
		if it.Kind == kind && it.ID == id {
			return i
		}
	}
	return -1
}

// Merge folds add into base: matching kind+id lines sum their quantities,
// new lines append in order of first appearance. Pure; neither input is
// modified. This is the merge-on-login rule for a device-local cart.
func Merge(base, add Cart) Cart {
	out := make(Cart, len(base))
	copy(out, base)
	for _, it := range add {
		if i := out.find(it.Kind, it.ID); i >= 0 {
			out[i].Quantity += it.Quantity
			continue
		}
		out = append(out, it)
	}
	return out
}
