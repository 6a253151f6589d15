package compositekey

import (
	"fmt"
	"strconv"

	"xdao.co/ledgertrust/keys"
)

// Parse decodes the canonical text form produced by Key.String.
//
// Grammar (no whitespace, numbers in base 10 without sign or leading zeros):
//
//	key   := leaf | node
//	leaf  := <alg> ":" <padded std base64>
//	node  := threshold "(" child ("," child)* ")"
//	child := weight "*" key
//
// Decoded trees are checked against the same invariants as New, and the
// input must be byte-for-byte canonical: Parse(s).String() == s.
func Parse(s string) (*Key, error) {
	if s == "" {
		return nil, encodingError("CK-ENC-001", "empty composite key")
	}
	p := &textParser{s: s}
	k, err := p.parseKey(1)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, encodingError("CK-ENC-004", fmt.Sprintf("trailing data at offset %d", p.pos))
	}
	if k.canonical != s {
		return nil, encodingError("CK-ENC-007", "composite key is not in canonical form")
	}
	return k, nil
}

// MustParse is Parse for static inputs. It panics on error.
func MustParse(s string) *Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// MarshalText implements encoding.TextMarshaler.
func (k *Key) MarshalText() ([]byte, error) {
	if k == nil || k.canonical == "" {
		return nil, encodingError("CK-ENC-001", "empty composite key")
	}
	return []byte(k.canonical), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The receiver must be
// a zero Key: a Key that already holds a tree may be shared, so decoding
// into it fails with CK-ENC-030. Prefer Parse.
func (k *Key) UnmarshalText(b []byte) error {
	if err := k.checkDecodeTarget(); err != nil {
		return err
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*k = *parsed
	return nil
}

func (k *Key) checkDecodeTarget() error {
	if k == nil {
		return encodingError("CK-ENC-030", "decode into nil *Key")
	}
	if k.canonical != "" {
		return encodingError("CK-ENC-030", "decode target already holds a key")
	}
	return nil
}

type textParser struct {
	s   string
	pos int
}

func (p *textParser) parseKey(depth int) (*Key, error) {
	if depth > MaxDepth {
		return nil, encodingError("CK-ENC-006", fmt.Sprintf("nesting exceeds depth %d", MaxDepth))
	}
	if p.pos >= len(p.s) {
		return nil, encodingError("CK-ENC-003", "unexpected end of input")
	}
	if isDigit(p.s[p.pos]) {
		return p.parseNode(depth)
	}
	return p.parseLeaf()
}

func (p *textParser) parseNode(depth int) (*Key, error) {
	threshold, err := p.parseNumber()
	if err != nil {
		return nil, err
	}
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var children []Weighted
	for {
		weight, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		if err := p.expect('*'); err != nil {
			return nil, err
		}
		child, err := p.parseKey(depth + 1)
		if err != nil {
			return nil, err
		}
		children = append(children, Weighted{Key: child, Weight: weight})

		if p.pos >= len(p.s) {
			return nil, encodingError("CK-ENC-003", "unterminated composite node")
		}
		c := p.s[p.pos]
		p.pos++
		if c == ',' {
			continue
		}
		if c == ')' {
			break
		}
		return nil, encodingError("CK-ENC-003", fmt.Sprintf("unexpected %q at offset %d", c, p.pos-1))
	}
	k, err := New(children, threshold)
	if err != nil {
		return nil, wrapEncodingError("CK-ENC-008", "decoded tree violates structure", err)
	}
	return k, nil
}

func (p *textParser) parseLeaf() (*Key, error) {
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != ',' && p.s[p.pos] != ')' {
		p.pos++
	}
	token := p.s[start:p.pos]
	pk, err := keys.ParsePublicKey(token)
	if err != nil {
		return nil, wrapEncodingError("CK-ENC-005", fmt.Sprintf("invalid leaf key at offset %d", start), err)
	}
	return newLeaf(pk, pk.String()), nil
}

func (p *textParser) parseNumber() (int, error) {
	start := p.pos
	for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
		p.pos++
	}
	digits := p.s[start:p.pos]
	if digits == "" {
		return 0, encodingError("CK-ENC-002", fmt.Sprintf("expected number at offset %d", start))
	}
	if len(digits) > 1 && digits[0] == '0' {
		return 0, encodingError("CK-ENC-002", fmt.Sprintf("leading zero at offset %d", start))
	}
	n, err := strconv.ParseInt(digits, 10, 32)
	if err != nil {
		return 0, wrapEncodingError("CK-ENC-002", fmt.Sprintf("number out of range at offset %d", start), err)
	}
	return int(n), nil
}

func (p *textParser) expect(c byte) error {
	if p.pos >= len(p.s) || p.s[p.pos] != c {
		return encodingError("CK-ENC-003", fmt.Sprintf("expected %q at offset %d", c, p.pos))
	}
	p.pos++
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
