package ident

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(nil)
	require.NoError(t, s.Start("127.0.0.1:0"))
	t.Cleanup(s.Close)
	return s
}

func query(t *testing.T, addr, q string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * time.Second))

	_, err = conn.Write([]byte(q + "\r\n"))
	require.NoError(t, err)

	reply, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	return reply
}

func TestKnownPortReportsLogin(t *testing.T) {
	s := startServer(t)
	s.AddEntry(6667, "mybot")

	reply := query(t, s.Addr(), "6667 , 45000")
	assert.Equal(t, "6667 , 45000 : USERID : UNIX : mybot\r\n", reply)
}

func TestUnknownPortReportsNoUser(t *testing.T) {
	s := startServer(t)

	reply := query(t, s.Addr(), "7000 , 45000")
	assert.Equal(t, "7000 , 45000 : ERROR : NO-USER\r\n", reply)
}

func TestRemovedEntryReportsNoUser(t *testing.T) {
	s := startServer(t)
	s.AddEntry(6667, "mybot")
	s.RemoveEntry(6667)

	reply := query(t, s.Addr(), "6667 , 45000")
	assert.Contains(t, reply, "NO-USER")
}

func TestMalformedQuery(t *testing.T) {
	s := startServer(t)

	assert.Contains(t, query(t, s.Addr(), "garbage"), "INVALID-PORT")
	assert.Contains(t, query(t, s.Addr(), "0 , 45000"), "INVALID-PORT")
	assert.Contains(t, query(t, s.Addr(), "6667 , 99999"), "INVALID-PORT")
}

func TestLifecycleMisuse(t *testing.T) {
	s := NewServer(nil)
	require.NoError(t, s.Start("127.0.0.1:0"))
	assert.Error(t, s.Start("127.0.0.1:0"), "double start is rejected")

	s.Close()
	s.Close() // second close is a no-op
	assert.Error(t, s.Start("127.0.0.1:0"), "closed server cannot restart")
}
