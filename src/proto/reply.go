package proto

import (
	"strings"

	"github.com/mosaicnetworks/meshkv/src/peers"
)

// Reply strings.
const (
	ReplyOK      = "OK"
	ReplyError   = "ERROR"
	ReplyUnknown = "UNKNOWN COMMAND"
	ReplyAdded   = "ADDED"
	ReplyPresent = "ALREADY PRESENT"
)

// UnknownCommand is the reply to an operation no node understands. It is the
// same for clients and peers.
func UnknownCommand(op Operation) string {
	if op == "" {
		return ReplyUnknown
	}
	return ReplyUnknown + " " + string(op)
}

// MembershipReply acknowledges an add-connection request with the membership
// after the operation.
func MembershipReply(added bool, addrs []peers.Address) string {
	if added {
		return ReplyAdded + " " + peers.FormatList(addrs)
	}
	return ReplyPresent + " " + peers.FormatList(addrs)
}

// IsErrorReply reports whether a reply belongs to the error class.
func IsErrorReply(reply string) bool {
	return reply == ReplyError ||
		strings.HasPrefix(reply, ReplyError+" ") ||
		strings.HasPrefix(reply, ReplyUnknown)
}
