package proto

import (
	"strings"
)

// Message is a classified request line. Envelope is nil for client commands.
type Message struct {
	Command  Command
	Envelope *Envelope
}

// FromPeer reports whether the message was sent by another node.
func (m Message) FromPeer() bool {
	return m.Envelope != nil
}

// ParseLine classifies and decodes the first line of a connection.
func ParseLine(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")

	if strings.HasPrefix(line, envelopeKind+lineSep) {
		env, err := parseLineEnvelope(line)
		if err != nil {
			return Message{}, err
		}
		return Message{Command: env.Command, Envelope: env}, nil
	}

	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		env, err := parseJSONEnvelope(trimmed)
		if err != nil {
			return Message{}, err
		}
		return Message{Command: env.Command, Envelope: env}, nil
	}

	cmd, err := ParseCommand(trimmed)
	if err != nil {
		return Message{}, err
	}

	return Message{Command: cmd}, nil
}
