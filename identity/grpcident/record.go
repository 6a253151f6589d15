package grpcident

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"xdao.co/ledgertrust/compositekey"
	"xdao.co/ledgertrust/party"
)

// Party record carried in BytesValue replies:
//
//	message Party { string name = 1; bytes owning_key = 2; }
//
// owning_key is the composite key's binary form.
const (
	fieldName      protowire.Number = 1
	fieldOwningKey protowire.Number = 2
)

func encodeParty(p party.Full) ([]byte, error) {
	kb, err := p.OwningKey().MarshalBinary()
	if err != nil {
		return nil, err
	}
	b := protowire.AppendTag(nil, fieldName, protowire.BytesType)
	b = protowire.AppendString(b, p.Name())
	b = protowire.AppendTag(b, fieldOwningKey, protowire.BytesType)
	return protowire.AppendBytes(b, kb), nil
}

func decodeParty(b []byte) (party.Full, error) {
	var (
		name    string
		keyData []byte
		seen    int
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return party.Full{}, fmt.Errorf("grpcident: malformed party record: %w", protowire.ParseError(n))
		}
		b = b[n:]
		if typ != protowire.BytesType {
			return party.Full{}, fmt.Errorf("grpcident: unexpected wire type %d for field %d", typ, num)
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return party.Full{}, fmt.Errorf("grpcident: malformed party record: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case fieldName:
			name = string(v)
			seen |= 1
		case fieldOwningKey:
			keyData = v
			seen |= 2
		default:
			// Unknown fields are skipped for forward compatibility.
		}
	}
	if seen != 3 {
		return party.Full{}, fmt.Errorf("grpcident: incomplete party record")
	}
	key, err := compositekey.UnmarshalBinaryKey(keyData)
	if err != nil {
		return party.Full{}, err
	}
	return party.NewFull(name, key)
}
