package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Encoder writes a root compound as an anonymous, unnamed TAG_Compound,
// matching how Anvil chunk/level NBT roots are stored (a nameless root
// tag, unlike the named compounds nested under it).
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

// Encode writes root as the document's single nameless root tag.
func (e *Encoder) Encode(root *Compound) error {
	if _, err := e.w.Write([]byte{TagCompound, 0, 0}); err != nil {
		return err
	}
	return e.writeCompoundBody(root)
}

func (e *Encoder) writeCompoundBody(c *Compound) error {
	for _, entry := range c.entries {
		if err := e.writeNamedValue(entry.name, entry.value); err != nil {
			return fmt.Errorf("nbt: field %q: %w", entry.name, err)
		}
	}
	_, err := e.w.Write([]byte{TagEnd})
	return err
}

func (e *Encoder) writeNamedValue(name string, v interface{}) error {
	tag, err := e.tagFor(v)
	if err != nil {
		return err
	}
	if err := e.writeTagHeader(tag, name); err != nil {
		return err
	}
	return e.writeValueBody(tag, v)
}

func (e *Encoder) tagFor(v interface{}) (byte, error) {
	switch v.(type) {
	case int8, uint8:
		return TagByte, nil
	case int16, uint16:
		return TagShort, nil
	case int32, uint32:
		return TagInt, nil
	case int64, uint64:
		return TagLong, nil
	case int:
		return TagInt, nil
	case float32:
		return TagFloat, nil
	case float64:
		return TagDouble, nil
	case []byte:
		return TagByteArray, nil
	case string:
		return TagString, nil
	case IntArray:
		return TagIntArray, nil
	case LongArray:
		return TagLongArray, nil
	case *Compound:
		return TagCompound, nil
	case List:
		return TagList, nil
	default:
		return 0, fmt.Errorf("nbt: unsupported type %T", v)
	}
}

func (e *Encoder) writeValueBody(tag byte, v interface{}) error {
	switch tag {
	case TagByte:
		b := toInt64(v)
		_, err := e.w.Write([]byte{byte(b)})
		return err
	case TagShort:
		return e.writeInt16(int16(toInt64(v)))
	case TagInt:
		return e.writeInt32(int32(toInt64(v)))
	case TagLong:
		return e.writeInt64(toInt64(v))
	case TagFloat:
		return e.writeInt32(int32(float32bits(v.(float32))))
	case TagDouble:
		return e.writeInt64(int64(float64bits(v.(float64))))
	case TagByteArray:
		b := v.([]byte)
		if err := e.writeInt32(int32(len(b))); err != nil {
			return err
		}
		_, err := e.w.Write(b)
		return err
	case TagString:
		s := v.(string)
		if err := e.writeInt16(int16(len(s))); err != nil {
			return err
		}
		_, err := e.w.Write([]byte(s))
		return err
	case TagIntArray:
		arr := v.(IntArray)
		if err := e.writeInt32(int32(len(arr))); err != nil {
			return err
		}
		for _, n := range arr {
			if err := e.writeInt32(n); err != nil {
				return err
			}
		}
		return nil
	case TagLongArray:
		arr := v.(LongArray)
		if err := e.writeInt32(int32(len(arr))); err != nil {
			return err
		}
		for _, n := range arr {
			if err := e.writeInt64(n); err != nil {
				return err
			}
		}
		return nil
	case TagCompound:
		return e.writeCompoundBody(v.(*Compound))
	case TagList:
		l := v.(List)
		if _, err := e.w.Write([]byte{l.ElemTag}); err != nil {
			return err
		}
		if err := e.writeInt32(int32(len(l.Items))); err != nil {
			return err
		}
		for _, item := range l.Items {
			if err := e.writeValueBody(l.ElemTag, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("nbt: unknown tag %d", tag)
	}
}

func (e *Encoder) writeTagHeader(tag byte, name string) error {
	if _, err := e.w.Write([]byte{tag}); err != nil {
		return err
	}
	return e.writeNameField(name)
}

func (e *Encoder) writeNameField(name string) error {
	if err := e.writeInt16(int16(len(name))); err != nil {
		return err
	}
	_, err := e.w.Write([]byte(name))
	return err
}

func (e *Encoder) writeInt16(n int16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(n))
	_, err := e.w.Write(buf[:])
	return err
}

func (e *Encoder) writeInt32(n int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(n))
	_, err := e.w.Write(buf[:])
	return err
}

func (e *Encoder) writeInt64(n int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	_, err := e.w.Write(buf[:])
	return err
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int8:
		return int64(n)
	case uint8:
		return int64(n)
	case int16:
		return int64(n)
	case uint16:
		return int64(n)
	case int32:
		return int64(n)
	case uint32:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	case uint64:
		return int64(n)
	default:
		return 0
	}
}
