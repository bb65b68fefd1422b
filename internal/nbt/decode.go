package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Decoder reads a document written by Encoder, or a real Anvil chunk
// payload, back into a *Compound tree of canonical Go types (int8, int16,
// int32, int64, float32, float64, []byte, string, IntArray, LongArray,
// List, *Compound). It exists so the test suite can verify property 7
// (NBT round-trips to the same logical tree) without depending on a
// third-party NBT library.
type Decoder struct {
	r io.Reader
}

func NewDecoder(r io.Reader) *Decoder { return &Decoder{r: r} }

// Decode reads the nameless root TAG_Compound.
func (d *Decoder) Decode() (*Compound, error) {
	tag, _, err := d.readTagHeader()
	if err != nil {
		return nil, err
	}
	if tag != TagCompound {
		return nil, fmt.Errorf("nbt: expected root TAG_Compound, got tag %d", tag)
	}
	return d.readCompoundBody()
}

func (d *Decoder) readTagHeader() (tag byte, name string, err error) {
	var tb [1]byte
	if _, err = io.ReadFull(d.r, tb[:]); err != nil {
		return
	}
	tag = tb[0]
	if tag == TagEnd {
		return
	}
	name, err = d.readName()
	return
}

func (d *Decoder) readName() (string, error) {
	n, err := d.readInt16()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *Decoder) readCompoundBody() (*Compound, error) {
	c := NewCompound()
	for {
		tag, name, err := d.readTagHeader()
		if err != nil {
			return nil, err
		}
		if tag == TagEnd {
			return c, nil
		}
		v, err := d.readValueBody(tag)
		if err != nil {
			return nil, fmt.Errorf("nbt: field %q: %w", name, err)
		}
		c.Put(name, v)
	}
}

func (d *Decoder) readValueBody(tag byte) (interface{}, error) {
	switch tag {
	case TagByte:
		var b [1]byte
		if _, err := io.ReadFull(d.r, b[:]); err != nil {
			return nil, err
		}
		return int8(b[0]), nil
	case TagShort:
		n, err := d.readInt16()
		return n, err
	case TagInt:
		n, err := d.readInt32()
		return n, err
	case TagLong:
		n, err := d.readInt64()
		return n, err
	case TagFloat:
		n, err := d.readInt32()
		if err != nil {
			return nil, err
		}
		return float32frombits(uint32(n)), nil
	case TagDouble:
		n, err := d.readInt64()
		if err != nil {
			return nil, err
		}
		return float64frombits(uint64(n)), nil
	case TagByteArray:
		n, err := d.readInt32()
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(d.r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	case TagString:
		n, err := d.readInt16()
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(d.r, buf); err != nil {
			return nil, err
		}
		return string(buf), nil
	case TagList:
		return d.readListBody()
	case TagCompound:
		return d.readCompoundBody()
	case TagIntArray:
		n, err := d.readInt32()
		if err != nil {
			return nil, err
		}
		arr := make(IntArray, n)
		for i := range arr {
			v, err := d.readInt32()
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case TagLongArray:
		n, err := d.readInt32()
		if err != nil {
			return nil, err
		}
		arr := make(LongArray, n)
		for i := range arr {
			v, err := d.readInt64()
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("nbt: unknown tag %d", tag)
	}
}

func (d *Decoder) readListBody() (List, error) {
	var elemTagBuf [1]byte
	if _, err := io.ReadFull(d.r, elemTagBuf[:]); err != nil {
		return List{}, err
	}
	elemTag := elemTagBuf[0]
	n, err := d.readInt32()
	if err != nil {
		return List{}, err
	}
	items := make([]interface{}, 0, n)
	for i := int32(0); i < n; i++ {
		if elemTag == TagEnd {
			break
		}
		v, err := d.readValueBody(elemTag)
		if err != nil {
			return List{}, err
		}
		items = append(items, v)
	}
	return List{ElemTag: elemTag, Items: items}, nil
}

func (d *Decoder) readInt16() (int16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(buf[:])), nil
}

func (d *Decoder) readInt32() (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func (d *Decoder) readInt64() (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}
