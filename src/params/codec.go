package params

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	json "github.com/alpkeskin/gotoon"
)

// Wire format. Each value is framed as:
//
//	1 byte  type tag
//	4 bytes big-endian payload length
//	payload
//
// Scalar payloads: string = UTF-8 bytes, address = 20 bytes, bool = 1
// byte, int = 8-byte big-endian two's complement, uint = 8-byte
// big-endian. Array payloads: 4-byte big-endian element count followed
// by the element frames of the scalar type.
const (
	frameHeaderLen = 5
	addressLen     = 20
	wordLen        = 8
)

// Address is a 20-byte account identifier. The text form is 0x-prefixed
// hex, which is also how decoded addresses are rendered.
type Address [addressLen]byte

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ParseAddress parses the canonical 0x-prefixed 40-digit hex form.
func ParseAddress(text string) (Address, error) {
	var a Address
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if len(s) != addressLen*2 {
		return a, fmt.Errorf("address %q: want %d hex digits, got %d", text, addressLen*2, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("address %q: %w", text, err)
	}
	copy(a[:], raw)
	return a, nil
}

// EncodeText converts the provider-supplied text form of an argument
// into a typed ParamValue. Array values are given as JSON arrays of the
// scalar text form.
func EncodeText(t ParamType, text string) (ParamValue, error) {
	if !t.Valid() {
		return ParamValue{}, fmt.Errorf("invalid param type %d", uint8(t))
	}
	if t.IsArray() {
		var items []string
		if err := json.Unmarshal([]byte(text), &items); err != nil {
			// Tolerate JSON arrays of non-string scalars ([1,2]) by
			// re-reading as raw values and rendering each to text.
			// UseNumber keeps the digits intact; float64 would round
			// uint values above 2^53.
			dec := json.NewDecoder(strings.NewReader(text))
			dec.UseNumber()
			var anyItems []any
			if err2 := dec.Decode(&anyItems); err2 != nil {
				return ParamValue{}, fmt.Errorf("%s value %q: not a JSON array: %w", t, text, err)
			}
			items = make([]string, len(anyItems))
			for i, item := range anyItems {
				items[i] = scalarText(item)
			}
		}
		payload := make([]byte, 4, 4+len(items)*frameHeaderLen)
		binary.BigEndian.PutUint32(payload, uint32(len(items)))
		for i, item := range items {
			elem, err := EncodeText(t.Elem(), item)
			if err != nil {
				return ParamValue{}, fmt.Errorf("%s element %d: %w", t, i, err)
			}
			payload = appendFrame(payload, elem)
		}
		return ParamValue{Type: t, Raw: payload}, nil
	}

	switch t {
	case TypeString:
		return ParamValue{Type: t, Raw: []byte(text)}, nil
	case TypeAddress:
		addr, err := ParseAddress(text)
		if err != nil {
			return ParamValue{}, err
		}
		return ParamValue{Type: t, Raw: addr[:]}, nil
	case TypeBool:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return ParamValue{}, fmt.Errorf("bool value %q: %w", text, err)
		}
		raw := []byte{0}
		if b {
			raw[0] = 1
		}
		return ParamValue{Type: t, Raw: raw}, nil
	case TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return ParamValue{}, fmt.Errorf("int value %q: %w", text, err)
		}
		raw := make([]byte, wordLen)
		binary.BigEndian.PutUint64(raw, uint64(n))
		return ParamValue{Type: t, Raw: raw}, nil
	case TypeUint:
		n, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return ParamValue{}, fmt.Errorf("uint value %q: %w", text, err)
		}
		raw := make([]byte, wordLen)
		binary.BigEndian.PutUint64(raw, n)
		return ParamValue{Type: t, Raw: raw}, nil
	}
	return ParamValue{}, fmt.Errorf("unhandled param type %s", t)
}

func scalarText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		// JSON numbers arrive as float64; integral params want the
		// integer text form.
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Decode returns the Go value carried by v: string, Address, bool,
// int64, uint64, or a slice of those for array types.
func (v ParamValue) Decode() (any, error) {
	if v.Type.IsArray() {
		if len(v.Raw) < 4 {
			return nil, fmt.Errorf("%s: truncated array payload", v.Type)
		}
		count := int(binary.BigEndian.Uint32(v.Raw))
		rest := v.Raw[4:]
		out := make([]any, 0, count)
		for i := 0; i < count; i++ {
			elem, n, err := readFrame(rest)
			if err != nil {
				return nil, fmt.Errorf("%s element %d: %w", v.Type, i, err)
			}
			if elem.Type != v.Type.Elem() {
				return nil, fmt.Errorf("%s element %d: tag %s does not match element type %s", v.Type, i, elem.Type, v.Type.Elem())
			}
			val, err := elem.Decode()
			if err != nil {
				return nil, err
			}
			out = append(out, val)
			rest = rest[n:]
		}
		if len(rest) != 0 {
			return nil, fmt.Errorf("%s: %d trailing bytes after %d elements", v.Type, len(rest), count)
		}
		return out, nil
	}

	switch v.Type {
	case TypeString:
		return string(v.Raw), nil
	case TypeAddress:
		if len(v.Raw) != addressLen {
			return nil, fmt.Errorf("address payload is %d bytes, want %d", len(v.Raw), addressLen)
		}
		var a Address
		copy(a[:], v.Raw)
		return a, nil
	case TypeBool:
		if len(v.Raw) != 1 {
			return nil, fmt.Errorf("bool payload is %d bytes, want 1", len(v.Raw))
		}
		return v.Raw[0] != 0, nil
	case TypeInt:
		if len(v.Raw) != wordLen {
			return nil, fmt.Errorf("int payload is %d bytes, want %d", len(v.Raw), wordLen)
		}
		return int64(binary.BigEndian.Uint64(v.Raw)), nil
	case TypeUint:
		if len(v.Raw) != wordLen {
			return nil, fmt.Errorf("uint payload is %d bytes, want %d", len(v.Raw), wordLen)
		}
		return binary.BigEndian.Uint64(v.Raw), nil
	}
	return nil, fmt.Errorf("invalid param type %d", uint8(v.Type))
}

// Text renders the decoded value back into the provider-facing text
// form, the inverse of EncodeText.
func (v ParamValue) Text() (string, error) {
	val, err := v.Decode()
	if err != nil {
		return "", err
	}
	if items, ok := val.([]any); ok {
		texts := make([]string, len(items))
		for i, item := range items {
			texts[i] = scalarText(renderScalar(item))
		}
		raw, err := json.Marshal(texts)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return scalarText(renderScalar(val)), nil
}

func renderScalar(v any) any {
	switch x := v.(type) {
	case Address:
		return x.String()
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	default:
		return x
	}
}

func appendFrame(dst []byte, v ParamValue) []byte {
	var header [frameHeaderLen]byte
	header[0] = byte(v.Type)
	binary.BigEndian.PutUint32(header[1:], uint32(len(v.Raw)))
	dst = append(dst, header[:]...)
	return append(dst, v.Raw...)
}

func readFrame(data []byte) (ParamValue, int, error) {
	if len(data) < frameHeaderLen {
		return ParamValue{}, 0, fmt.Errorf("truncated frame header (%d bytes)", len(data))
	}
	t := ParamType(data[0])
	if !t.Valid() {
		return ParamValue{}, 0, fmt.Errorf("invalid type tag %d", data[0])
	}
	size := int(binary.BigEndian.Uint32(data[1:frameHeaderLen]))
	if len(data) < frameHeaderLen+size {
		return ParamValue{}, 0, fmt.Errorf("frame declares %d payload bytes, %d available", size, len(data)-frameHeaderLen)
	}
	raw := make([]byte, size)
	copy(raw, data[frameHeaderLen:frameHeaderLen+size])
	return ParamValue{Type: t, Raw: raw}, frameHeaderLen + size, nil
}

// EncodeBlob concatenates the value frames into the combined binary
// form carried alongside the ordered sequence.
func EncodeBlob(values []ParamValue) []byte {
	size := 0
	for _, v := range values {
		size += frameHeaderLen + len(v.Raw)
	}
	blob := make([]byte, 0, size)
	for _, v := range values {
		blob = appendFrame(blob, v)
	}
	return blob
}

// DecodeBlob splits a combined blob back into the ordered value
// sequence, checking each frame's tag against the declared slot type.
func DecodeBlob(desc InputDescription, blob []byte) ([]ParamValue, error) {
	values := make([]ParamValue, 0, len(desc))
	rest := blob
	for i, pd := range desc {
		v, n, err := readFrame(rest)
		if err != nil {
			return nil, fmt.Errorf("param %q (slot %d): %w", pd.Name, i, err)
		}
		if v.Type != pd.Type {
			return nil, fmt.Errorf("param %q (slot %d): tag %s does not match declared %s", pd.Name, i, v.Type, pd.Type)
		}
		values = append(values, v)
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%d trailing bytes after %d declared params", len(rest), len(desc))
	}
	return values, nil
}
