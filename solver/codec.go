package solver

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers, see solver.proto.
const (
	wrapperType       protowire.Number = 1
	wrapperStart      protowire.Number = 2
	wrapperAnnotation protowire.Number = 3
	wrapperStop       protowire.Number = 4

	fieldUUID        protowire.Number = 1
	fieldID          protowire.Number = 2
	fieldMin         protowire.Number = 3
	fieldMax         protowire.Number = 4
	fieldContained   protowire.Number = 5
	fieldNeighboring protowire.Number = 6
	fieldRemoved     protowire.Number = 7
	fieldData        protowire.Number = 5
)

func appendPacked(b []byte, num protowire.Number, values []uint64) []byte {
	if len(values) == 0 {
		return b
	}
	var packed []byte
	for _, v := range values {
		packed = protowire.AppendVarint(packed, v)
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func appendCoords(b []byte, num protowire.Number, coords [3]int64) []byte {
	return appendPacked(b, num, []uint64{uint64(coords[0]), uint64(coords[1]), uint64(coords[2])})
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func encodeStart(m *Start) []byte {
	var b []byte
	b = appendString(b, fieldUUID, m.CorrelationID)
	b = appendUint(b, fieldID, m.Label)
	b = appendCoords(b, fieldMin, m.Min)
	b = appendCoords(b, fieldMax, m.Max)
	b = appendPacked(b, fieldContained, m.Contained)
	b = appendPacked(b, fieldNeighboring, m.Neighboring)
	b = appendPacked(b, fieldRemoved, m.Overpainted)
	return b
}

func encodeAnnotation(m *Annotation) []byte {
	var b []byte
	b = appendString(b, fieldUUID, m.CorrelationID)
	b = appendUint(b, fieldID, m.Label)
	b = appendCoords(b, fieldMin, m.Min)
	b = appendCoords(b, fieldMax, m.Max)
	if len(m.Data) != 0 {
		b = protowire.AppendTag(b, fieldData, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Data)
	}
	return b
}

func encodeStop(m *Stop) []byte {
	return appendString(nil, fieldUUID, m.CorrelationID)
}

// Encode serializes a message inside its Wrapper.
func Encode(msg Message) ([]byte, error) {
	var num protowire.Number
	var body []byte
	switch m := msg.(type) {
	case *Start:
		num, body = wrapperStart, encodeStart(m)
	case *Annotation:
		num, body = wrapperAnnotation, encodeAnnotation(m)
	case *Stop:
		num, body = wrapperStop, encodeStop(m)
	default:
		return nil, fmt.Errorf("cannot encode solver message of type %T", msg)
	}
	b := appendUint(nil, wrapperType, uint64(msg.Type()))
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body), nil
}

// field is one decoded protobuf field.
type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

func consumeFields(b []byte, f func(field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		fld := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			fld.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			fld.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if err := f(fld); err != nil {
			return err
		}
	}
	return nil
}

// repeated appends the values of a repeated varint field given either packed or
// unpacked.
func repeated(values []uint64, fld field) ([]uint64, error) {
	switch fld.typ {
	case protowire.VarintType:
		return append(values, fld.varint), nil
	case protowire.BytesType:
		b := fld.bytes
		for len(b) > 0 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			values = append(values, v)
			b = b[n:]
		}
		return values, nil
	default:
		return nil, fmt.Errorf("field %d has wire type %d, expected varint", fld.num, fld.typ)
	}
}

func coords(values []uint64, name string) ([3]int64, error) {
	var c [3]int64
	if len(values) != 3 {
		return c, fmt.Errorf("%s has %d coordinates, expected 3", name, len(values))
	}
	for i, v := range values {
		c[i] = int64(v)
	}
	return c, nil
}

// box holds the fields shared by Start and Annotation.
type box struct {
	uuid     string
	label    uint64
	min, max []uint64
}

func (bx *box) consume(fld field) (bool, error) {
	var err error
	switch fld.num {
	case fieldUUID:
		bx.uuid = string(fld.bytes)
	case fieldID:
		bx.label = fld.varint
	case fieldMin:
		bx.min, err = repeated(bx.min, fld)
	case fieldMax:
		bx.max, err = repeated(bx.max, fld)
	default:
		return false, nil
	}
	return true, err
}

func decodeStart(b []byte) (*Start, error) {
	var bx box
	m := new(Start)
	err := consumeFields(b, func(fld field) error {
		if handled, err := bx.consume(fld); handled || err != nil {
			return err
		}
		var err error
		switch fld.num {
		case fieldContained:
			m.Contained, err = repeated(m.Contained, fld)
		case fieldNeighboring:
			m.Neighboring, err = repeated(m.Neighboring, fld)
		case fieldRemoved:
			m.Overpainted, err = repeated(m.Overpainted, fld)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	m.CorrelationID, m.Label = bx.uuid, bx.label
	if m.Min, err = coords(bx.min, "start min"); err != nil {
		return nil, err
	}
	if m.Max, err = coords(bx.max, "start max"); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeAnnotation(b []byte) (*Annotation, error) {
	var bx box
	m := new(Annotation)
	err := consumeFields(b, func(fld field) error {
		if handled, err := bx.consume(fld); handled || err != nil {
			return err
		}
		if fld.num == fieldData && fld.typ == protowire.BytesType {
			m.Data = append([]byte(nil), fld.bytes...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.CorrelationID, m.Label = bx.uuid, bx.label
	if m.Min, err = coords(bx.min, "annotation min"); err != nil {
		return nil, err
	}
	if m.Max, err = coords(bx.max, "annotation max"); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeStop(b []byte) (*Stop, error) {
	m := new(Stop)
	err := consumeFields(b, func(fld field) error {
		if fld.num == fieldUUID && fld.typ == protowire.BytesType {
			m.CorrelationID = string(fld.bytes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Decode parses a Wrapper produced by Encode or by any protobuf implementation
// of solver.proto.
func Decode(b []byte) (Message, error) {
	var typ Type
	var body []byte
	var bodyNum protowire.Number
	err := consumeFields(b, func(fld field) error {
		switch fld.num {
		case wrapperType:
			if fld.typ != protowire.VarintType {
				return fmt.Errorf("wrapper type has wire type %d", fld.typ)
			}
			typ = Type(fld.varint)
		case wrapperStart, wrapperAnnotation, wrapperStop:
			if fld.typ != protowire.BytesType {
				return fmt.Errorf("wrapper field %d has wire type %d", fld.num, fld.typ)
			}
			bodyNum, body = fld.num, fld.bytes
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bad solver wrapper: %v", err)
	}
	switch typ {
	case StartType:
		if bodyNum != wrapperStart {
			return nil, fmt.Errorf("start wrapper without start message")
		}
		return decodeStart(body)
	case AnnotationType:
		if bodyNum != wrapperAnnotation {
			return nil, fmt.Errorf("annotation wrapper without annotation message")
		}
		return decodeAnnotation(body)
	case StopType:
		if bodyNum != wrapperStop {
			return nil, fmt.Errorf("stop wrapper without stop message")
		}
		return decodeStop(body)
	default:
		return nil, fmt.Errorf("unknown solver message type %d", typ)
	}
}
