package meta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Wire format: "BPT1" magic, dependency table, object table. All integers are
// little-endian. Strings are u16 length-prefixed UTF-8. Values are one tag
// byte followed by a tag-specific payload.
const codecMagic = "BPT1"

const (
	tagString             = 0x01
	tagU32                = 0x02
	tagF32                = 0x03
	tagBool               = 0x04
	tagContainer          = 0x05
	tagUnorderedContainer = 0x06
	tagStruct             = 0x07
	tagEmbedded           = 0x08
	tagOptional           = 0x09
	tagMap                = 0x0a
)

// maxCount caps table and container lengths so a corrupt header cannot force
// a multi-gigabyte allocation.
const maxCount = 1 << 20

var (
	// ErrBadMagic reports data that is not a property-tree document at all.
	ErrBadMagic = errors.New("meta: bad magic, not a property-tree document")
	// ErrTruncated reports data that ends mid-structure.
	ErrTruncated = errors.New("meta: truncated document")
)

// Parse decodes a property-tree document from its binary form.
func Parse(data []byte) (*Document, error) {
	r := &reader{data: data}

	magic, err := r.bytes(len(codecMagic))
	if err != nil {
		return nil, err
	}
	if string(magic) != codecMagic {
		return nil, ErrBadMagic
	}

	doc := &Document{}

	depCount, err := r.count()
	if err != nil {
		return nil, fmt.Errorf("meta: dependency table: %w", err)
	}
	for i := uint32(0); i < depCount; i++ {
		dep, err := r.string()
		if err != nil {
			return nil, fmt.Errorf("meta: dependency %d: %w", i, err)
		}
		doc.Dependencies = append(doc.Dependencies, dep)
	}

	objCount, err := r.count()
	if err != nil {
		return nil, fmt.Errorf("meta: object table: %w", err)
	}
	for i := uint32(0); i < objCount; i++ {
		obj, err := r.object()
		if err != nil {
			return nil, fmt.Errorf("meta: object %d: %w", i, err)
		}
		doc.Objects = append(doc.Objects, obj)
	}

	if r.pos != len(r.data) {
		return nil, fmt.Errorf("meta: %d trailing bytes after document", len(r.data)-r.pos)
	}
	return doc, nil
}

// Serialize encodes a document back to its binary form.
func Serialize(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(codecMagic)

	writeU32(&buf, uint32(len(doc.Dependencies)))
	for _, dep := range doc.Dependencies {
		if err := writeString(&buf, dep); err != nil {
			return nil, err
		}
	}

	writeU32(&buf, uint32(len(doc.Objects)))
	for i := range doc.Objects {
		if err := writeObject(&buf, &doc.Objects[i]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

type reader struct {
	data []byte
	pos  int
}

func (r *reader) bytes(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, ErrTruncated
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (byte, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) count() (uint32, error) {
	n, err := r.u32()
	if err != nil {
		return 0, err
	}
	if n > maxCount {
		return 0, fmt.Errorf("count %d exceeds limit", n)
	}
	return n, nil
}

func (r *reader) string() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) object() (Object, error) {
	name, err := r.string()
	if err != nil {
		return Object{}, err
	}
	props, err := r.properties()
	if err != nil {
		return Object{}, fmt.Errorf("object %q: %w", name, err)
	}
	return Object{Name: name, Properties: props}, nil
}

func (r *reader) properties() ([]Property, error) {
	n, err := r.count()
	if err != nil {
		return nil, err
	}
	props := make([]Property, 0, n)
	for i := uint32(0); i < n; i++ {
		name, err := r.string()
		if err != nil {
			return nil, err
		}
		val, err := r.value()
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		props = append(props, Property{Name: name, Value: val})
	}
	return props, nil
}

func (r *reader) value() (PropertyValue, error) {
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagString:
		s, err := r.string()
		if err != nil {
			return nil, err
		}
		return &String{Value: s}, nil
	case tagU32:
		v, err := r.u32()
		if err != nil {
			return nil, err
		}
		return &U32{Value: v}, nil
	case tagF32:
		v, err := r.u32()
		if err != nil {
			return nil, err
		}
		return &F32{Value: math.Float32frombits(v)}, nil
	case tagBool:
		v, err := r.u8()
		if err != nil {
			return nil, err
		}
		return &Bool{Value: v != 0}, nil
	case tagContainer, tagUnorderedContainer:
		n, err := r.count()
		if err != nil {
			return nil, err
		}
		items := make([]PropertyValue, 0, n)
		for i := uint32(0); i < n; i++ {
			item, err := r.value()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if tag == tagContainer {
			return &Container{Items: items}, nil
		}
		return &UnorderedContainer{Items: items}, nil
	case tagStruct, tagEmbedded:
		name, err := r.string()
		if err != nil {
			return nil, err
		}
		props, err := r.properties()
		if err != nil {
			return nil, err
		}
		if tag == tagStruct {
			return &Struct{Name: name, Properties: props}, nil
		}
		return &Embedded{Name: name, Properties: props}, nil
	case tagOptional:
		present, err := r.u8()
		if err != nil {
			return nil, err
		}
		if present == 0 {
			return &Optional{}, nil
		}
		inner, err := r.value()
		if err != nil {
			return nil, err
		}
		return &Optional{Value: inner}, nil
	case tagMap:
		n, err := r.count()
		if err != nil {
			return nil, err
		}
		entries := make([]MapEntry, 0, n)
		for i := uint32(0); i < n; i++ {
			key, err := r.value()
			if err != nil {
				return nil, err
			}
			val, err := r.value()
			if err != nil {
				return nil, err
			}
			entries = append(entries, MapEntry{Key: key, Value: val})
		}
		return &Map{Entries: entries}, nil
	default:
		return nil, fmt.Errorf("unknown value tag 0x%02x", tag)
	}
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("meta: string of %d bytes exceeds wire limit", len(s))
	}
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(len(s)))
	buf.Write(b[:])
	buf.WriteString(s)
	return nil
}

func writeObject(buf *bytes.Buffer, obj *Object) error {
	if err := writeString(buf, obj.Name); err != nil {
		return err
	}
	return writeProperties(buf, obj.Properties)
}

func writeProperties(buf *bytes.Buffer, props []Property) error {
	writeU32(buf, uint32(len(props)))
	for i := range props {
		if err := writeString(buf, props[i].Name); err != nil {
			return err
		}
		if err := writeValue(buf, props[i].Value); err != nil {
			return fmt.Errorf("property %q: %w", props[i].Name, err)
		}
	}
	return nil
}

func writeValue(buf *bytes.Buffer, v PropertyValue) error {
	switch val := v.(type) {
	case *String:
		buf.WriteByte(tagString)
		return writeString(buf, val.Value)
	case *U32:
		buf.WriteByte(tagU32)
		writeU32(buf, val.Value)
	case *F32:
		buf.WriteByte(tagF32)
		writeU32(buf, math.Float32bits(val.Value))
	case *Bool:
		buf.WriteByte(tagBool)
		if val.Value {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case *Container:
		buf.WriteByte(tagContainer)
		writeU32(buf, uint32(len(val.Items)))
		for _, item := range val.Items {
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
	case *UnorderedContainer:
		buf.WriteByte(tagUnorderedContainer)
		writeU32(buf, uint32(len(val.Items)))
		for _, item := range val.Items {
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
	case *Struct:
		buf.WriteByte(tagStruct)
		if err := writeString(buf, val.Name); err != nil {
			return err
		}
		return writeProperties(buf, val.Properties)
	case *Embedded:
		buf.WriteByte(tagEmbedded)
		if err := writeString(buf, val.Name); err != nil {
			return err
		}
		return writeProperties(buf, val.Properties)
	case *Optional:
		buf.WriteByte(tagOptional)
		if val.Value == nil {
			buf.WriteByte(0)
			return nil
		}
		buf.WriteByte(1)
		return writeValue(buf, val.Value)
	case *Map:
		buf.WriteByte(tagMap)
		writeU32(buf, uint32(len(val.Entries)))
		for i := range val.Entries {
			if err := writeValue(buf, val.Entries[i].Key); err != nil {
				return err
			}
			if err := writeValue(buf, val.Entries[i].Value); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("meta: cannot serialize value of type %T", v)
	}
	return nil
}
