// Package receiver is the external collaborator named in spec §1: a
// syslog datagram listener that feeds internal/core.Engine.Submit. It is
// intentionally thin - PRI header and program/pid parsing plus line
// formatting, nothing more.
package receiver

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/openwebos/pmlogdaemon/internal/diag"
	"github.com/openwebos/pmlogdaemon/internal/sylevel"
)

// Submitter is the core's entry point, matching internal/core.Engine's
// Submit method. Declared as an interface so the receiver can be tested
// without a real Engine.
type Submitter interface {
	Submit(contextName string, facility sylevel.Facility, level sylevel.Level, program string, line []byte)
}

// Listener receives syslog datagrams on a Unix domain socket (the
// historical /dev/log convention) and hands each one to a Submitter.
type Listener struct {
	conn net.PacketConn
	core Submitter
	host string
}

// Listen binds a Unix datagram socket at path and returns a Listener
// ready to Serve. Binding failure is a fatal startup error per spec §6.
func Listen(path string, core Submitter, host string) (*Listener, error) {
	addr := &net.UnixAddr{Name: path, Net: "unixgram"}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return nil, fmt.Errorf("receiver: listen %s: %w", path, err)
	}
	return &Listener{conn: conn, core: core, host: host}, nil
}

// Close releases the listening socket.
func (l *Listener) Close() error { return l.conn.Close() }

// Serve reads datagrams until the socket is closed, parsing and
// submitting each one. It returns nil when the listener is closed out
// from under it (the expected shutdown path) and a non-nil error for any
// other read failure.
func (l *Listener) Serve() error {
	buf := make([]byte, 64*1024)
	for {
		n, _, err := l.conn.ReadFrom(buf)
		if err != nil {
			if isClosed(err) {
				return nil
			}
			return fmt.Errorf("receiver: read: %w", err)
		}
		l.handle(buf[:n])
	}
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

// handle parses one raw datagram and submits it to the core. Context is
// always the global context: this wire format (PRI + program[pid]:) has
// no concept of an application-selected context, unlike the in-process
// submit API it feeds.
func (l *Listener) handle(raw []byte) {
	facility, level, rest, err := parsePRI(raw)
	if err != nil {
		diag.Warn("receiver: %s", err)
		facility = sylevel.NewFacility(sylevel.FacUser)
		level = sylevel.NewLevel(sylevel.LevelNotice)
		rest = raw
	}

	program, pid, message := parseProgram(rest)
	line := formatLine(time.Now().UTC(), l.host, program, pid, message)

	l.core.Submit("<global>", facility, level, program, line)
}

// parsePRI extracts the <facility*8+level> header per spec §4.4's
// formatting note; the wire encoding matches RFC 3164's PRI field.
func parsePRI(raw []byte) (sylevel.Facility, sylevel.Level, []byte, error) {
	if len(raw) == 0 || raw[0] != '<' {
		return sylevel.Facility{}, sylevel.Level{}, raw, fmt.Errorf("missing PRI header")
	}
	end := bytes.IndexByte(raw, '>')
	if end < 1 {
		return sylevel.Facility{}, sylevel.Level{}, raw, fmt.Errorf("malformed PRI header")
	}
	pri, err := strconv.Atoi(string(raw[1:end]))
	if err != nil || pri < 0 {
		return sylevel.Facility{}, sylevel.Level{}, raw, fmt.Errorf("non-numeric PRI header")
	}
	facility := sylevel.NewFacility(pri / 8)
	level := sylevel.NewLevel(pri % 8)
	return facility, level, raw[end+1:], nil
}

// parseProgram splits a "program[pid]: message" prefix from the tag. If
// the prefix is absent or malformed, the whole payload is treated as the
// message and the program and pid are empty. pid is returned as the
// literal digits between the brackets, unparsed, so formatLine can
// re-emit it verbatim.
func parseProgram(rest []byte) (program, pid string, message []byte) {
	colon := bytes.IndexByte(rest, ':')
	if colon < 0 {
		return "", "", bytes.TrimLeft(rest, " ")
	}
	tag := rest[:colon]
	msg := bytes.TrimLeft(rest[colon+1:], " ")

	if lb := bytes.IndexByte(tag, '['); lb >= 0 && bytes.HasSuffix(tag, []byte("]")) {
		return string(tag[:lb]), string(tag[lb+1 : len(tag)-1]), msg
	}
	return string(tag), "", msg
}

// formatLine renders the final byte string handed to the core, per the
// §4.4 format: "<timestamp> <host> <program>[<pid>]: <message>". pid is
// re-emitted in brackets when present on the wire; it is omitted
// entirely (along with its brackets) when the tag carried none.
func formatLine(ts time.Time, host, program, pid string, message []byte) []byte {
	var b bytes.Buffer
	b.WriteString(ts.Format("2006-01-02T15:04:05.000000Z"))
	b.WriteByte(' ')
	b.WriteString(host)
	b.WriteByte(' ')
	if program != "" {
		b.WriteString(program)
		if pid != "" {
			b.WriteByte('[')
			b.WriteString(pid)
			b.WriteByte(']')
		}
		b.WriteString(": ")
	}
	b.Write(message)
	return b.Bytes()
}
