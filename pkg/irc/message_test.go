package irc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *Message
		wantErr bool
	}{
		{
			name: "privmsg with trailing",
			line: ":alice!a@host PRIVMSG #chan :!Quran mercy and patience\r\n",
			want: &Message{Prefix: "alice!a@host", Command: "PRIVMSG", Params: []string{"#chan", "!Quran mercy and patience"}},
		},
		{
			name: "ping without prefix",
			line: "PING :irc.example.net",
			want: &Message{Command: "PING", Params: []string{"irc.example.net"}},
		},
		{
			name: "numeric with middle params",
			line: ":srv 439 bot #chan :Target change too fast",
			want: &Message{Prefix: "srv", Command: "439", Params: []string{"bot", "#chan", "Target change too fast"}},
		},
		{
			name: "tags are skipped",
			line: "@time=2024-01-01T00:00:00Z :srv 001 bot :Welcome",
			want: &Message{Prefix: "srv", Command: "001", Params: []string{"bot", "Welcome"}},
		},
		{
			name: "empty trailing kept",
			line: ":bob PRIVMSG bot :",
			want: &Message{Prefix: "bob", Command: "PRIVMSG", Params: []string{"bot", ""}},
		},
		{
			name: "lowercase command normalized",
			line: "ping token",
			want: &Message{Command: "PING", Params: []string{"token"}},
		},
		{name: "empty line", line: "\r\n", wantErr: true},
		{name: "prefix only", line: ":srv", wantErr: true},
		{name: "tags only", line: "@a=b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedLine)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessageNick(t *testing.T) {
	assert.Equal(t, "alice", (&Message{Prefix: "alice!a@host"}).Nick())
	assert.Equal(t, "irc.example.net", (&Message{Prefix: "irc.example.net"}).Nick())
	assert.Equal(t, "", (&Message{}).Nick())
}

func TestIsChannel(t *testing.T) {
	assert.True(t, IsChannel("#quran"))
	assert.True(t, IsChannel("&local"))
	assert.False(t, IsChannel("alice"))
	assert.False(t, IsChannel(""))
}
