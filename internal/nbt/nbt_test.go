package nbt

import (
	"bytes"
	"testing"
)

func buildSample() *Compound {
	inner := NewCompound().
		Put("Y", int8(-128)).
		Put("Name", "minecraft:air")

	root := NewCompound().
		Put("DataVersion", int32(3955)).
		Put("xPos", int32(-3)).
		Put("zPos", int32(7)).
		Put("LongField", int64(-123456789012)).
		Put("FloatField", float32(1.5)).
		Put("DoubleField", float64(2.25)).
		Put("Bytes", []byte{1, 2, 3, 255}).
		Put("Longs", LongArray{1, 2, 3, -1}).
		Put("Ints", IntArray{10, 20, 30}).
		Put("Nested", inner).
		Put("List", List{ElemTag: TagCompound, Items: []interface{}{inner, inner}})
	return root
}

// Property 7: every emitted chunk NBT round-trips to the same logical tree.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	root := buildSample()

	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(root); err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := NewDecoder(&buf).Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !root.Equal(decoded) {
		t.Fatalf("round-tripped compound does not match original")
	}
}

// Property 2 support: two encodes of the same tree produce identical bytes.
func TestEncodeIsDeterministic(t *testing.T) {
	root := buildSample()
	var a, b bytes.Buffer
	if err := NewEncoder(&a).Encode(root); err != nil {
		t.Fatal(err)
	}
	if err := NewEncoder(&b).Encode(root); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("encoding is not deterministic")
	}
}
