package proto

import (
	"strconv"
	"strings"

	"github.com/mosaicnetworks/meshkv/src/common"
	"github.com/mosaicnetworks/meshkv/src/peers"
	"github.com/mosaicnetworks/meshkv/src/record"
)

// Operation is the name of a request.
type Operation string

// Operations understood by a node.
const (
	SetValue      Operation = "set-value"
	GetValue      Operation = "get-value"
	FindKey       Operation = "find-key"
	GetMax        Operation = "get-max"
	GetMin        Operation = "get-min"
	NewRecord     Operation = "new-record"
	Terminate     Operation = "terminate"
	GetCons       Operation = "get-cons"
	AddConnection Operation = "add-connection"
)

// Category tells how the router treats an operation.
type Category int

const (
	// Unknown operations are rejected.
	Unknown Category = iota
	// Point queries are resolved by the first node owning the key.
	Point
	// Aggregate queries are fanned out to every reachable node and reduced.
	Aggregate
	// Admin operations are handled locally and never forwarded.
	Admin
)

// Category returns the category of the operation.
func (o Operation) Category() Category {
	switch o {
	case SetValue, GetValue, FindKey:
		return Point
	case GetMax, GetMin:
		return Aggregate
	case NewRecord, Terminate, GetCons, AddConnection:
		return Admin
	default:
		return Unknown
	}
}

// Command is an operation with its arguments.
type Command struct {
	Op   Operation
	Args []string
}

// NewCommand creates a Command.
func NewCommand(op Operation, args ...string) Command {
	return Command{
		Op:   op,
		Args: args,
	}
}

// ParseCommand parses the whitespace-separated form of a command.
func ParseCommand(s string) (Command, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Command{}, common.NewNodeErr("Codec", common.Malformed, "empty command")
	}

	return NewCommand(Operation(fields[0]), fields[1:]...), nil
}

// String returns the whitespace-separated form of the command.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return string(c.Op)
	}
	return string(c.Op) + " " + strings.Join(c.Args, " ")
}

func (c Command) arg() (string, error) {
	if len(c.Args) != 1 {
		return "", common.NewNodeErr("Codec", common.Malformed,
			string(c.Op)+" expects 1 argument, got "+strconv.Itoa(len(c.Args)))
	}
	return c.Args[0], nil
}

// Key parses the single key argument of get-value and find-key.
func (c Command) Key() (int, error) {
	a, err := c.arg()
	if err != nil {
		return 0, err
	}

	key, err := strconv.Atoi(a)
	if err != nil {
		return 0, common.WrapNodeErr("Codec", common.Malformed, a, err)
	}

	return key, nil
}

// Record parses the single key:value argument of set-value and new-record.
func (c Command) Record() (record.Record, error) {
	a, err := c.arg()
	if err != nil {
		return record.Record{}, err
	}

	r, err := record.Parse(a)
	if err != nil {
		return record.Record{}, common.WrapNodeErr("Codec", common.Malformed, a, err)
	}

	return r, nil
}

// Address parses the single host:port argument of add-connection.
func (c Command) Address() (peers.Address, error) {
	a, err := c.arg()
	if err != nil {
		return peers.Address{}, err
	}

	addr, err := peers.ParseAddress(a)
	if err != nil {
		return peers.Address{}, common.WrapNodeErr("Codec", common.Malformed, a, err)
	}

	return addr, nil
}

// Bound parses the optional best-so-far argument of get-max and get-min. It
// returns def when the argument is absent.
func (c Command) Bound(def int) (int, error) {
	if len(c.Args) == 0 {
		return def, nil
	}

	a, err := c.arg()
	if err != nil {
		return 0, err
	}

	b, err := strconv.Atoi(a)
	if err != nil {
		return 0, common.WrapNodeErr("Codec", common.Malformed, a, err)
	}

	return b, nil
}
