package compositekey

import (
	"bytes"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"xdao.co/ledgertrust/keys"
)

// Binary form, in protobuf wire format with a fixed field order:
//
//	message Key   { string leaf = 1; uint32 threshold = 2; repeated Child children = 3; }
//	message Child { uint32 weight = 1; Key key = 2; }
//
// A leaf sets only field 1; a node sets field 2 followed by one field 3 per
// child, in order. The decoder accepts nothing but this exact layout.
const (
	fieldLeaf      protowire.Number = 1
	fieldThreshold protowire.Number = 2
	fieldChild     protowire.Number = 3

	fieldChildWeight protowire.Number = 1
	fieldChildKey    protowire.Number = 2
)

// MarshalBinary implements encoding.BinaryMarshaler.
func (k *Key) MarshalBinary() ([]byte, error) {
	if k == nil || k.canonical == "" {
		return nil, encodingError("CK-ENC-001", "empty composite key")
	}
	return k.appendBinary(nil), nil
}

func (k *Key) appendBinary(b []byte) []byte {
	if k.children == nil {
		b = protowire.AppendTag(b, fieldLeaf, protowire.BytesType)
		return protowire.AppendString(b, k.canonical)
	}
	b = protowire.AppendTag(b, fieldThreshold, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(k.threshold))
	for _, c := range k.children {
		var child []byte
		child = protowire.AppendTag(child, fieldChildWeight, protowire.VarintType)
		child = protowire.AppendVarint(child, uint64(c.Weight))
		child = protowire.AppendTag(child, fieldChildKey, protowire.BytesType)
		child = protowire.AppendBytes(child, c.Key.appendBinary(nil))

		b = protowire.AppendTag(b, fieldChild, protowire.BytesType)
		b = protowire.AppendBytes(b, child)
	}
	return b
}

// UnmarshalBinaryKey decodes the binary form produced by MarshalBinary.
func UnmarshalBinaryKey(data []byte) (*Key, error) {
	if len(data) == 0 {
		return nil, encodingError("CK-ENC-001", "empty composite key")
	}
	k, err := decodeBinary(data, 1)
	if err != nil {
		return nil, err
	}
	// Varints admit padded encodings; re-encoding pins the one canonical form.
	if !bytes.Equal(k.appendBinary(nil), data) {
		return nil, encodingError("CK-ENC-007", "composite key is not in canonical binary form")
	}
	return k, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Like UnmarshalText
// it only decodes into a zero Key. Prefer UnmarshalBinaryKey.
func (k *Key) UnmarshalBinary(data []byte) error {
	if err := k.checkDecodeTarget(); err != nil {
		return err
	}
	parsed, err := UnmarshalBinaryKey(data)
	if err != nil {
		return err
	}
	*k = *parsed
	return nil
}

func decodeBinary(data []byte, depth int) (*Key, error) {
	if depth > MaxDepth {
		return nil, encodingError("CK-ENC-006", fmt.Sprintf("nesting exceeds depth %d", MaxDepth))
	}
	num, typ, n := protowire.ConsumeTag(data)
	if n < 0 {
		return nil, wrapEncodingError("CK-ENC-010", "malformed tag", protowire.ParseError(n))
	}
	data = data[n:]

	switch {
	case num == fieldLeaf && typ == protowire.BytesType:
		v, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, wrapEncodingError("CK-ENC-010", "malformed leaf", protowire.ParseError(n))
		}
		if n != len(data) {
			return nil, encodingError("CK-ENC-004", "trailing data after leaf")
		}
		pk, err := keys.ParsePublicKey(string(v))
		if err != nil {
			return nil, wrapEncodingError("CK-ENC-005", "invalid leaf key", err)
		}
		return newLeaf(pk, pk.String()), nil

	case num == fieldThreshold && typ == protowire.VarintType:
		t, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return nil, wrapEncodingError("CK-ENC-010", "malformed threshold", protowire.ParseError(n))
		}
		if t > MaxTotalWeight {
			return nil, encodingError("CK-ENC-002", "threshold out of range")
		}
		data = data[n:]

		var children []Weighted
		for len(data) > 0 {
			num, typ, n := protowire.ConsumeTag(data)
			if n < 0 {
				return nil, wrapEncodingError("CK-ENC-010", "malformed tag", protowire.ParseError(n))
			}
			if num != fieldChild || typ != protowire.BytesType {
				return nil, encodingError("CK-ENC-011", fmt.Sprintf("unexpected field %d in composite node", num))
			}
			data = data[n:]
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, wrapEncodingError("CK-ENC-010", "malformed child", protowire.ParseError(n))
			}
			data = data[n:]
			child, err := decodeChild(v, depth)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		k, err := New(children, int(t))
		if err != nil {
			return nil, wrapEncodingError("CK-ENC-008", "decoded tree violates structure", err)
		}
		return k, nil

	default:
		return nil, encodingError("CK-ENC-011", fmt.Sprintf("unexpected field %d", num))
	}
}

func decodeChild(data []byte, depth int) (Weighted, error) {
	num, typ, n := protowire.ConsumeTag(data)
	if n < 0 {
		return Weighted{}, wrapEncodingError("CK-ENC-010", "malformed tag", protowire.ParseError(n))
	}
	if num != fieldChildWeight || typ != protowire.VarintType {
		return Weighted{}, encodingError("CK-ENC-011", "child must start with weight")
	}
	data = data[n:]
	w, n := protowire.ConsumeVarint(data)
	if n < 0 {
		return Weighted{}, wrapEncodingError("CK-ENC-010", "malformed weight", protowire.ParseError(n))
	}
	if w > MaxTotalWeight {
		return Weighted{}, encodingError("CK-ENC-002", "weight out of range")
	}
	data = data[n:]

	num, typ, n = protowire.ConsumeTag(data)
	if n < 0 {
		return Weighted{}, wrapEncodingError("CK-ENC-010", "malformed tag", protowire.ParseError(n))
	}
	if num != fieldChildKey || typ != protowire.BytesType {
		return Weighted{}, encodingError("CK-ENC-011", "child key must follow weight")
	}
	data = data[n:]
	v, n := protowire.ConsumeBytes(data)
	if n < 0 {
		return Weighted{}, wrapEncodingError("CK-ENC-010", "malformed child key", protowire.ParseError(n))
	}
	if n != len(data) {
		return Weighted{}, encodingError("CK-ENC-004", "trailing data after child key")
	}
	if len(v) == 0 {
		return Weighted{}, encodingError("CK-ENC-001", "empty child key")
	}
	k, err := decodeBinary(v, depth+1)
	if err != nil {
		return Weighted{}, err
	}
	return Weighted{Key: k, Weight: int(w)}, nil
}
