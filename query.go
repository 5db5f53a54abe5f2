package wifimon

import (
	"errors"
	"os"

	"github.com/mdlayher/genetlink"
	"github.com/wavebar/wifimon/internal/nl80211"
)

// parseDefaultInterface returns the index of the first station (managed mode)
// interface in a GetInterface dump, or 0 if there is none.
//
// Each dump message describes exactly one interface, so the index and type are
// paired per message regardless of the order the kernel emits them in.
// Messages without a payload or with malformed attributes are skipped.
func parseDefaultInterface(msgs []genetlink.Message) uint32 {
	for _, m := range msgs {
		if len(m.Data) == 0 {
			continue
		}

		ifindex, iftype, err := parseInterface(m.Data)
		if err != nil {
			continue
		}

		if iftype == nl80211.IftypeStation && ifindex != 0 {
			return ifindex
		}
	}

	return 0
}

// parseInterface decodes the index and type of a single interface message.
func parseInterface(b []byte) (uint32, nl80211.Iftype, error) {
	ad, err := newDecoder(b)
	if err != nil {
		return 0, 0, err
	}

	var (
		ifindex uint32
		iftype  nl80211.Iftype
	)

	for ad.Next() {
		switch nl80211.Attribute(ad.Type()) {
		case nl80211.AttrIfindex:
			if ifindex, err = uint32Attr(ad.Type(), ad.Bytes()); err != nil {
				return 0, 0, err
			}
		case nl80211.AttrIftype:
			if iftype, err = iftypeAttr(ad.Bytes()); err != nil {
				return 0, 0, err
			}
		}
	}

	if err := ad.Err(); err != nil {
		return 0, 0, errors.Join(ErrMalformedMessage, err)
	}

	return ifindex, iftype, nil
}

// parseSSID returns the SSID carried by a GetInterface response. An
// interface which is not associated has no SSID attribute, in which case
// os.ErrNotExist is returned.
func parseSSID(msgs []genetlink.Message) (string, error) {
	if len(msgs) == 0 || len(msgs[0].Data) == 0 {
		return "", os.ErrNotExist
	}

	b, err := lookup(msgs[0].Data, uint16(nl80211.AttrSsid))
	if err != nil {
		return "", err
	}

	return ssidAttr(b), nil
}

// parseSignal returns the signal strength in dBm of the first station in a
// GetStation response. os.ErrNotExist is returned if no message carries a
// station info group with a signal attribute.
func parseSignal(msgs []genetlink.Message) (int8, error) {
	for _, m := range msgs {
		if len(m.Data) == 0 {
			continue
		}

		ad, err := nested(m.Data, uint16(nl80211.AttrStaInfo))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return 0, err
		}

		for ad.Next() {
			if nl80211.StaInfo(ad.Type()) == nl80211.StaInfoSignal {
				return int8Attr(ad.Type(), ad.Bytes())
			}
		}

		if err := ad.Err(); err != nil {
			return 0, errors.Join(ErrMalformedMessage, err)
		}
	}

	return 0, os.ErrNotExist
}
