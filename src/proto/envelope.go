package proto

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/mosaicnetworks/meshkv/src/common"
	"github.com/mosaicnetworks/meshkv/src/ledger"
	"github.com/mosaicnetworks/meshkv/src/peers"
	"github.com/ugorji/go/codec"
)

// RequestID identifies a client command across the hops of its flood.
type RequestID = ledger.RequestID

// NoDedup is the RequestID of administrative messages.
const NoDedup = ledger.NoDedup

const (
	// Version is the schema version of the structured envelope.
	Version = 1

	envelopeKind  = "node"
	lineSep       = "//"
	lineFieldsNum = 5
)

// WireFormat selects how outbound envelopes are encoded.
type WireFormat string

const (
	// LineFormat is node//op args//id//trace//origin.
	LineFormat WireFormat = "line"
	// JSONFormat is the versioned structured envelope.
	JSONFormat WireFormat = "json"
)

// ParseWireFormat validates a wire format name.
func ParseWireFormat(s string) (WireFormat, error) {
	switch WireFormat(s) {
	case LineFormat, JSONFormat:
		return WireFormat(s), nil
	default:
		return "", common.NewNodeErr("Codec", common.Malformed, "wire format "+s)
	}
}

// Envelope is a request exchanged between nodes. Origin is the node that sent
// this hop; the first entry of Trace is the node the flood started from.
type Envelope struct {
	Version   int
	Command   Command
	RequestID RequestID
	Trace     ledger.Trace
	Origin    peers.Address
}

// NewEnvelope creates an Envelope with the current schema version.
func NewEnvelope(cmd Command, id RequestID, trace ledger.Trace, origin peers.Address) *Envelope {
	return &Envelope{
		Version:   Version,
		Command:   cmd,
		RequestID: id,
		Trace:     trace,
		Origin:    origin,
	}
}

// wireEnvelope is the structured form of an Envelope. ID and Trace are
// pointers so that a missing key can be told apart from a zero value.
type wireEnvelope struct {
	V      int       `codec:"v"`
	Kind   string    `codec:"kind"`
	Op     string    `codec:"op"`
	Args   []string  `codec:"args"`
	ID     *int64    `codec:"id"`
	Trace  *[]string `codec:"trace"`
	Origin string    `codec:"origin"`
}

// Line encodes the envelope as a single line, without the trailing newline.
func (e *Envelope) Line(format WireFormat) (string, error) {
	switch format {
	case LineFormat:
		return e.line()
	case JSONFormat:
		return e.json()
	default:
		return "", common.NewNodeErr("Codec", common.Malformed, "wire format "+string(format))
	}
}

func (e *Envelope) line() (string, error) {
	cmd := e.Command.String()
	if strings.Contains(cmd, lineSep) || strings.ContainsAny(cmd, "\r\n") {
		return "", common.NewNodeErr("Codec", common.Malformed, "command cannot be framed: "+cmd)
	}

	fields := []string{
		envelopeKind,
		cmd,
		e.RequestID.String(),
		FormatTrace(e.Trace),
		e.Origin.String(),
	}

	return strings.Join(fields, lineSep), nil
}

func (e *Envelope) json() (string, error) {
	id := int64(e.RequestID)
	trace := make([]string, len(e.Trace))
	for i, a := range e.Trace {
		trace[i] = a.String()
	}

	w := wireEnvelope{
		V:      e.Version,
		Kind:   envelopeKind,
		Op:     string(e.Command.Op),
		Args:   e.Command.Args,
		ID:     &id,
		Trace:  &trace,
		Origin: e.Origin.String(),
	}

	var b bytes.Buffer
	jh := new(codec.JsonHandle)
	enc := codec.NewEncoder(&b, jh)
	if err := enc.Encode(w); err != nil {
		return "", err
	}

	return b.String(), nil
}

func parseLineEnvelope(line string) (*Envelope, error) {
	fields := strings.Split(line, lineSep)
	if len(fields) != lineFieldsNum {
		return nil, common.NewNodeErr("Codec", common.Malformed,
			"envelope has "+strconv.Itoa(len(fields))+" fields")
	}

	if fields[0] != envelopeKind {
		return nil, common.NewNodeErr("Codec", common.Malformed, "envelope kind "+fields[0])
	}

	cmd, err := ParseCommand(fields[1])
	if err != nil {
		return nil, err
	}

	id, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, common.WrapNodeErr("Codec", common.Malformed, "request id "+fields[2], err)
	}

	trace, err := ParseTrace(fields[3])
	if err != nil {
		return nil, err
	}

	origin, err := peers.ParseAddress(fields[4])
	if err != nil {
		return nil, common.WrapNodeErr("Codec", common.Malformed, "origin "+fields[4], err)
	}

	return &Envelope{
		Version:   Version,
		Command:   cmd,
		RequestID: RequestID(id),
		Trace:     trace,
		Origin:    origin,
	}, nil
}

func parseJSONEnvelope(line string) (*Envelope, error) {
	var w wireEnvelope

	b := bytes.NewBufferString(line)
	jh := new(codec.JsonHandle)
	dec := codec.NewDecoder(b, jh)
	if err := dec.Decode(&w); err != nil {
		return nil, common.WrapNodeErr("Codec", common.Malformed, "structured envelope", err)
	}

	if w.V != Version {
		return nil, common.NewNodeErr("Codec", common.Malformed, "envelope version "+strconv.Itoa(w.V))
	}

	if w.Kind != envelopeKind {
		return nil, common.NewNodeErr("Codec", common.Malformed, "envelope kind "+w.Kind)
	}

	if w.Op == "" {
		return nil, common.NewNodeErr("Codec", common.Malformed, "empty operation")
	}

	if w.ID == nil {
		return nil, common.NewNodeErr("Codec", common.Malformed, "missing request id")
	}

	if w.Trace == nil {
		return nil, common.NewNodeErr("Codec", common.Malformed, "missing trace")
	}

	var trace ledger.Trace
	for _, s := range *w.Trace {
		a, err := peers.ParseAddress(s)
		if err != nil {
			return nil, common.WrapNodeErr("Codec", common.Malformed, "trace entry "+s, err)
		}
		trace = append(trace, a)
	}

	origin, err := peers.ParseAddress(w.Origin)
	if err != nil {
		return nil, common.WrapNodeErr("Codec", common.Malformed, "origin "+w.Origin, err)
	}

	return &Envelope{
		Version:   w.V,
		Command:   NewCommand(Operation(w.Op), w.Args...),
		RequestID: RequestID(*w.ID),
		Trace:     trace,
		Origin:    origin,
	}, nil
}
