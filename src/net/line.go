package net

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

const (
	// maxLineSize bounds the length of a request or reply line.
	maxLineSize = 64 * 1024
)

var (
	// ErrLineTooLong is returned when a peer sends a line longer than
	// maxLineSize.
	ErrLineTooLong = errors.New("line too long")

	// ErrEmptyReply is returned when a connection is closed without a reply.
	ErrEmptyReply = errors.New("connection closed without reply")
)

// readLine reads one line and strips the line terminator. A final line
// without terminator is accepted.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadSlice('\n')
	switch {
	case err == bufio.ErrBufferFull:
		return "", ErrLineTooLong
	case err == io.EOF && len(line) > 0:
	case err != nil:
		return "", err
	}

	return strings.TrimRight(string(line), "\r\n"), nil
}

// writeLine writes a line followed by a newline.
func writeLine(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}

// exchange sends a request over an established connection and reads the
// reply.
func exchange(conn net.Conn, line string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		conn.SetDeadline(time.Now().Add(timeout))
	}

	w := bufio.NewWriter(conn)
	if err := writeLine(w, line); err != nil {
		return "", err
	}

	r := bufio.NewReaderSize(conn, maxLineSize)
	reply, err := readLine(r)
	if err == io.EOF {
		return "", ErrEmptyReply
	}

	return reply, err
}

// Query dials addr over TCP, sends a single request line and returns the
// reply. It is what command line clients use to talk to a node.
func Query(addr string, line string, timeout time.Duration) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	return exchange(conn, line, timeout)
}
