// Package nl80211 contains the subset of the nl80211 generic netlink ABI used
// by wifimon.
//
// Constants are sourced from the kernel's include/uapi/linux/nl80211.h. They are
// spelled out here rather than taken from golang.org/x/sys/unix so the catalog
// can be used to decode messages on any platform.
package nl80211

import "fmt"

// FamilyName is the name of the nl80211 generic netlink family.
const FamilyName = "nl80211"

// A Command is an nl80211 generic netlink command code.
type Command uint8

// Commands understood by wifimon. Any other value is unrecognized.
const (
	CmdUnspecified  Command = 0
	CmdGetWiPhy     Command = 1
	CmdGetInterface Command = 5
	CmdGetStation   Command = 17
	CmdConnect      Command = 46
	CmdDisconnect   Command = 48
)

// Known reports whether c is one of the commands in this catalog.
func (c Command) Known() bool {
	switch c {
	case CmdUnspecified, CmdGetWiPhy, CmdGetInterface, CmdGetStation, CmdConnect, CmdDisconnect:
		return true
	default:
		return false
	}
}

// String returns the string representation of a Command.
func (c Command) String() string {
	switch c {
	case CmdUnspecified:
		return "unspecified"
	case CmdGetWiPhy:
		return "get wiphy"
	case CmdGetInterface:
		return "get interface"
	case CmdGetStation:
		return "get station"
	case CmdConnect:
		return "connect"
	case CmdDisconnect:
		return "disconnect"
	default:
		return fmt.Sprintf("unrecognized(%d)", uint8(c))
	}
}

// An Attribute is a top-level nl80211 attribute type.
type Attribute uint16

// Attributes understood by wifimon.
const (
	AttrUnspecified Attribute = 0
	AttrWiphy       Attribute = 1
	AttrWiphyName   Attribute = 2
	AttrIfindex     Attribute = 3
	AttrIftype      Attribute = 5
	AttrStaInfo     Attribute = 21
	AttrSsid        Attribute = 52
)

// Known reports whether a is one of the attributes in this catalog.
func (a Attribute) Known() bool {
	switch a {
	case AttrUnspecified, AttrWiphy, AttrWiphyName, AttrIfindex, AttrIftype, AttrStaInfo, AttrSsid:
		return true
	default:
		return false
	}
}

// String returns the string representation of an Attribute.
func (a Attribute) String() string {
	switch a {
	case AttrUnspecified:
		return "unspecified"
	case AttrWiphy:
		return "wiphy"
	case AttrWiphyName:
		return "wiphy name"
	case AttrIfindex:
		return "ifindex"
	case AttrIftype:
		return "iftype"
	case AttrStaInfo:
		return "station info"
	case AttrSsid:
		return "ssid"
	default:
		return fmt.Sprintf("unrecognized(%d)", uint16(a))
	}
}

// A StaInfo is an attribute type nested inside AttrStaInfo.
type StaInfo uint16

// Station info attributes, from enum nl80211_sta_info.
const (
	StaInfoInvalid StaInfo = iota
	StaInfoInactiveTime
	StaInfoRxBytes
	StaInfoTxBytes
	StaInfoLlid
	StaInfoPlid
	StaInfoPlinkState
	StaInfoSignal
	StaInfoTxBitrate
	StaInfoRxPackets
	StaInfoTxPackets
	StaInfoTxRetries
	StaInfoTxFailed
	StaInfoSignalAvg
	StaInfoRxBitrate
	StaInfoBssParam
	StaInfoConnectedTime
	StaInfoStaFlags
	StaInfoBeaconLoss
	StaInfoTOffset
	StaInfoLocalPM
	StaInfoPeerPM
	StaInfoNonpeerPM
	StaInfoRxBytes64
	StaInfoTxBytes64
	StaInfoChainSignal
	StaInfoChainSignalAvg
	StaInfoExpectedThroughput
	StaInfoRxDropMisc
	StaInfoBeaconRx
	StaInfoBeaconSignalAvg
	StaInfoTidStats
	StaInfoRxDuration
	StaInfoPad
)

// An Iftype is an nl80211 interface type, carried in AttrIftype.
type Iftype uint32

// Interface types, from enum nl80211_iftype.
const (
	IftypeUnspecified Iftype = iota
	IftypeAdHoc
	IftypeStation
	IftypeAP
	IftypeAPVLAN
	IftypeWDS
	IftypeMonitor
	IftypeMeshPoint
	IftypeP2PClient
	IftypeP2PGO
	IftypeP2PDevice
	IftypeOCB
	IftypeNAN
)

// String returns the string representation of an Iftype.
func (t Iftype) String() string {
	switch t {
	case IftypeUnspecified:
		return "unspecified"
	case IftypeAdHoc:
		return "ad-hoc"
	case IftypeStation:
		return "station"
	case IftypeAP:
		return "access point"
	case IftypeAPVLAN:
		return "access point/VLAN"
	case IftypeWDS:
		return "wireless distribution"
	case IftypeMonitor:
		return "monitor"
	case IftypeMeshPoint:
		return "mesh point"
	case IftypeP2PClient:
		return "P2P client"
	case IftypeP2PGO:
		return "P2P group owner"
	case IftypeP2PDevice:
		return "P2P device"
	case IftypeOCB:
		return "outside context of BSS"
	case IftypeNAN:
		return "near-me area network"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}
