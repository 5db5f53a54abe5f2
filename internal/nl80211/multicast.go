package nl80211

// Multicast group names registered by nl80211 in net/wireless/nl80211.c.
//
// The kernel assigns group IDs dynamically; only the names are stable, so IDs
// must be resolved through the generic netlink controller at runtime.
const (
	GroupConfig     = "config"
	GroupScan       = "scan"
	GroupRegulatory = "regulatory"
	GroupMlme       = "mlme"
	GroupVendor     = "vendor"
	GroupNan        = "nan"
	GroupTestmode   = "testmode"
)

// Groups lists the nl80211 multicast group names in kernel registration order.
var Groups = []string{
	GroupConfig,
	GroupScan,
	GroupRegulatory,
	GroupMlme,
	GroupVendor,
	GroupNan,
	GroupTestmode,
}
