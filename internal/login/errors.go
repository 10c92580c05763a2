package login

import (
	"errors"
	"io"
	"net"
	"os"

	"github.com/udisondev/realmd/internal/protocol"
	"github.com/udisondev/realmd/internal/srp"
)

var (
	// ErrUnexpectedOpcode — опкод не разрешён в текущем состоянии соединения.
	ErrUnexpectedOpcode = errors.New("unexpected opcode for connection state")
	ErrUnknownAccount   = errors.New("unknown account")
	ErrAccountBanned    = errors.New("account banned")
	ErrProofMismatch    = errors.New("proof mismatch")
	ErrStoreUnavailable = errors.New("account store unavailable")
	ErrVersionInvalid   = errors.New("client build not accepted")

	ErrMalformedFrame   = protocol.ErrMalformedFrame
	ErrInvalidEphemeral = srp.ErrInvalidEphemeral
)

// errorReason maps an error to a short label for logs and metrics.
func errorReason(err error) string {
	var netErr net.Error
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrMalformedFrame):
		return "malformed_frame"
	case errors.Is(err, ErrUnexpectedOpcode):
		return "unexpected_opcode"
	case errors.Is(err, ErrInvalidEphemeral):
		return "invalid_ephemeral"
	case errors.Is(err, ErrProofMismatch):
		return "proof_mismatch"
	case errors.Is(err, ErrUnknownAccount):
		return "unknown_account"
	case errors.Is(err, ErrAccountBanned):
		return "account_banned"
	case errors.Is(err, ErrVersionInvalid):
		return "version_invalid"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		return "disconnected"
	case errors.Is(err, os.ErrDeadlineExceeded):
		return "idle_timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "idle_timeout"
	default:
		return "internal"
	}
}

// isSecurityEvent reports errors that indicate a hostile or broken client.
func isSecurityEvent(err error) bool {
	return errors.Is(err, ErrInvalidEphemeral) || errors.Is(err, ErrProofMismatch)
}
