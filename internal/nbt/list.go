package nbt

import "reflect"

// List is an explicit TAG_List: an element tag type plus homogeneous
// items. Used for any list of Compounds, strings, or other element type
// that has no dedicated numeric-array tag.
type List struct {
	ElemTag byte
	Items   []interface{}
}

func valuesEqual(a, b interface{}) bool {
	ac, aok := a.(*Compound)
	bc, bok := b.(*Compound)
	if aok || bok {
		if !aok || !bok {
			return false
		}
		return ac.Equal(bc)
	}

	al, aok := a.(List)
	bl, bok := b.(List)
	if aok || bok {
		if !aok || !bok || len(al.Items) != len(bl.Items) {
			return false
		}
		for i := range al.Items {
			if !valuesEqual(al.Items[i], bl.Items[i]) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}
