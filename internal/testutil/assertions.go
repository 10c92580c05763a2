package testutil

import (
	"testing"

	"github.com/udisondev/realmd/internal/protocol"
)

// AssertOpcode проверяет, что первый байт пакета соответствует ожидаемому opcode.
func AssertOpcode(t testing.TB, expected protocol.Opcode, packet []byte) {
	t.Helper()

	if len(packet) == 0 {
		t.Fatalf("packet is empty, expected opcode %s", expected)
	}

	actual := protocol.Opcode(packet[0])
	if actual != expected {
		t.Fatalf("packet opcode mismatch: expected %s, got %s", expected, actual)
	}
}

// AssertStatus проверяет байт статуса ответа по смещению.
func AssertStatus(t testing.TB, expected protocol.Status, packet []byte, offset int) {
	t.Helper()

	if len(packet) <= offset {
		t.Fatalf("packet too short: need %d bytes, got %d", offset+1, len(packet))
	}

	actual := protocol.Status(packet[offset])
	if actual != expected {
		t.Fatalf("status mismatch at offset %d: expected %s, got %s", offset, expected, actual)
	}
}
