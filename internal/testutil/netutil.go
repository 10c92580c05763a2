package testutil

import (
	"net"
	"testing"
)

// TCPAddr is a net.Addr with a fixed "host:port".
type TCPAddr string

func (a TCPAddr) Network() string { return "tcp" }
func (a TCPAddr) String() string  { return string(a) }

// remoteConn подменяет RemoteAddr: net.Pipe отдаёт "pipe", без порта.
type remoteConn struct {
	net.Conn
	remote net.Addr
}

func (c remoteConn) RemoteAddr() net.Addr { return c.remote }

// PipeConn создаёт in-memory пару соединений. server сообщает remote как адрес клиента.
// Автоматически закрывает соединения при завершении теста.
func PipeConn(t testing.TB, remote string) (client, server net.Conn) {
	t.Helper()

	s, c := net.Pipe()
	t.Cleanup(func() {
		_ = s.Close()
		_ = c.Close()
	})

	return c, remoteConn{Conn: s, remote: TCPAddr(remote)}
}

// ListenTCP создаёт TCP listener на случайном порту для тестов.
// Возвращает listener и адрес в формате "host:port".
// Автоматически закрывает listener при завершении теста.
func ListenTCP(t testing.TB) (net.Listener, string) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create TCP listener: %v", err)
	}

	t.Cleanup(func() {
		_ = listener.Close()
	})

	return listener, listener.Addr().String()
}
