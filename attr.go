package wifimon

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/mdlayher/netlink"
	"github.com/mdlayher/netlink/nlenc"
	"github.com/wavebar/wifimon/internal/nl80211"
)

// encodeIfindex encodes the interface index used to filter a request to a
// single interface.
func encodeIfindex(ae *netlink.AttributeEncoder, ifindex uint32) {
	ae.Uint32(uint16(nl80211.AttrIfindex), ifindex)
}

// newDecoder returns a decoder which lazily iterates the attributes packed in
// b. Attribute lengths are validated against len(b) up front, so a decoder is
// never returned for a truncated buffer.
func newDecoder(b []byte) (*netlink.AttributeDecoder, error) {
	ad, err := netlink.NewAttributeDecoder(b)
	if err != nil {
		return nil, errors.Join(ErrMalformedMessage, err)
	}

	return ad, nil
}

// lookup returns the data of the first attribute of type typ in b, or
// os.ErrNotExist if b contains no such attribute.
func lookup(b []byte, typ uint16) ([]byte, error) {
	ad, err := newDecoder(b)
	if err != nil {
		return nil, err
	}

	for ad.Next() {
		if ad.Type() == typ {
			return ad.Bytes(), nil
		}
	}

	if err := ad.Err(); err != nil {
		return nil, errors.Join(ErrMalformedMessage, err)
	}

	return nil, os.ErrNotExist
}

// nested returns a decoder over the attributes nested in the first attribute
// of type typ in b, or os.ErrNotExist if the group is absent.
func nested(b []byte, typ uint16) (*netlink.AttributeDecoder, error) {
	nb, err := lookup(b, typ)
	if err != nil {
		return nil, err
	}

	return newDecoder(nb)
}

// malformed reports an attribute whose length does not match its type.
func malformed(typ uint16, want string, got int) error {
	return errors.Join(
		ErrMalformedMessage,
		fmt.Errorf("%w: type %d is not a %s; length: %d", ErrMalformedAttribute, typ, want, got),
	)
}

// uint32Attr decodes a fixed-width u32 attribute.
func uint32Attr(typ uint16, b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, malformed(typ, "uint32", len(b))
	}

	return nlenc.Uint32(b), nil
}

// iftypeAttr decodes an interface type attribute. Current kernels send a u32,
// but a u16 is accepted as well.
func iftypeAttr(b []byte) (nl80211.Iftype, error) {
	switch len(b) {
	case 4:
		return nl80211.Iftype(nlenc.Uint32(b)), nil
	case 2:
		return nl80211.Iftype(nlenc.Uint16(b)), nil
	default:
		return 0, malformed(uint16(nl80211.AttrIftype), "uint16 or uint32", len(b))
	}
}

// int8Attr decodes a fixed-width signed 8 bit attribute such as a dBm value.
func int8Attr(typ uint16, b []byte) (int8, error) {
	if len(b) != 1 {
		return 0, malformed(typ, "int8", len(b))
	}

	// Should just be cast to int8, see iw's station.c.
	return int8(b[0]), nil
}

// ssidAttr decodes an SSID attribute. Only the attribute's own bytes are used;
// a trailing NUL is dropped if present.
func ssidAttr(b []byte) string {
	if i := bytes.IndexByte(b, 0x00); i >= 0 {
		b = b[:i]
	}

	return decodeSSID(b)
}

// decodeSSID safely parses a byte slice into UTF-8 runes, and returns the
// resulting string from the runes.
func decodeSSID(b []byte) string {
	buf := bytes.NewBuffer(nil)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]

		buf.WriteRune(r)
	}

	return buf.String()
}
