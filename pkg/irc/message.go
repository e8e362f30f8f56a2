package irc

import (
	"errors"
	"strings"
)

// Numerics and commands the client reacts to.
const (
	RplWelcome       = "001"
	ErrNicknameInUse = "433"
	ErrTargetTooFast = "439"

	CmdPing    = "PING"
	CmdPong    = "PONG"
	CmdPrivmsg = "PRIVMSG"
	CmdNick    = "NICK"
	CmdError   = "ERROR"
)

var ErrMalformedLine = errors.New("malformed irc line")

// Message is one decoded protocol line. A trailing parameter, when
// present, is the last element of Params.
type Message struct {
	Prefix  string
	Command string
	Params  []string
}

// ParseLine decodes a single line without its CRLF terminator. Message
// tags are skipped.
func ParseLine(line string) (*Message, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.HasPrefix(line, "@") {
		idx := strings.IndexByte(line, ' ')
		if idx < 0 {
			return nil, ErrMalformedLine
		}
		line = line[idx+1:]
	}
	line = strings.TrimLeft(line, " ")
	if line == "" {
		return nil, ErrMalformedLine
	}

	msg := &Message{}
	if line[0] == ':' {
		idx := strings.IndexByte(line, ' ')
		if idx < 0 {
			return nil, ErrMalformedLine
		}
		msg.Prefix = line[1:idx]
		line = strings.TrimLeft(line[idx+1:], " ")
	}

	idx := strings.IndexByte(line, ' ')
	if idx < 0 {
		msg.Command = strings.ToUpper(line)
		line = ""
	} else {
		msg.Command = strings.ToUpper(line[:idx])
		line = line[idx+1:]
	}
	if msg.Command == "" {
		return nil, ErrMalformedLine
	}

	for line != "" {
		line = strings.TrimLeft(line, " ")
		if line == "" {
			break
		}
		if line[0] == ':' {
			msg.Params = append(msg.Params, line[1:])
			break
		}
		idx := strings.IndexByte(line, ' ')
		if idx < 0 {
			msg.Params = append(msg.Params, line)
			break
		}
		msg.Params = append(msg.Params, line[:idx])
		line = line[idx+1:]
	}

	return msg, nil
}

// Nick is the nickname part of a "nick!user@host" prefix.
func (m *Message) Nick() string {
	if i := strings.IndexByte(m.Prefix, '!'); i >= 0 {
		return m.Prefix[:i]
	}
	return m.Prefix
}

// Param returns the i-th parameter or "".
func (m *Message) Param(i int) string {
	if i < 0 || i >= len(m.Params) {
		return ""
	}
	return m.Params[i]
}

// IsChannel reports whether target names a channel rather than a user.
func IsChannel(target string) bool {
	return target != "" && strings.ContainsRune("#&+!", rune(target[0]))
}

// sanitize keeps a payload on one protocol line.
func sanitize(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
