package proto

import (
	"strings"

	"github.com/mosaicnetworks/meshkv/src/common"
	"github.com/mosaicnetworks/meshkv/src/ledger"
	"github.com/mosaicnetworks/meshkv/src/peers"
)

const traceSep = ", "

// FormatTrace renders a trace as [host:port, host:port].
func FormatTrace(t ledger.Trace) string {
	return peers.FormatList(t)
}

// ParseTrace parses the output of FormatTrace.
func ParseTrace(s string) (ledger.Trace, error) {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, common.NewNodeErr("Codec", common.Malformed, "trace "+s)
	}

	inner := s[1 : len(s)-1]
	if inner == "" {
		return nil, nil
	}

	parts := strings.Split(inner, traceSep)
	trace := make(ledger.Trace, 0, len(parts))
	for _, p := range parts {
		a, err := peers.ParseAddress(p)
		if err != nil {
			return nil, common.WrapNodeErr("Codec", common.Malformed, "trace entry "+p, err)
		}
		trace = append(trace, a)
	}

	return trace, nil
}
