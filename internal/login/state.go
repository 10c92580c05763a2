package login

import (
	"context"

	"github.com/udisondev/realmd/internal/protocol"
)

// ConnectionState represents the state machine for an auth connection.
type ConnectionState int

const (
	StateAwaitingChallenge      ConnectionState = iota // TCP connected, nothing received
	StateChallengeSent                                 // B отправлен, ждём LogonProof
	StateAwaitingReconnectProof                        // server challenge отправлен
	StateAuthenticated                                 // сессия установлена
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateAwaitingChallenge:
		return "AWAITING_CHALLENGE"
	case StateChallengeSent:
		return "CHALLENGE_SENT"
	case StateAwaitingReconnectProof:
		return "AWAITING_RECONNECT_PROOF"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// frameHandler handles one frame. Returned values follow Handler.HandleFrame.
type frameHandler func(h *Handler, ctx context.Context, client *Client, frame protocol.Frame) (protocol.Reply, bool, error)

type transitionKey struct {
	state  ConnectionState
	opcode protocol.Opcode
}

type transition struct {
	handle frameHandler
	next   ConnectionState
}

// transitions is the whole state machine. Anything missing here closes the
// connection with ErrUnexpectedOpcode.
var transitions = map[transitionKey]transition{
	{StateAwaitingChallenge, protocol.OpLogonChallenge}: {
		handle: (*Handler).handleLogonChallenge,
		next:   StateChallengeSent,
	},
	{StateAwaitingChallenge, protocol.OpReconnectChallenge}: {
		handle: (*Handler).handleReconnectChallenge,
		next:   StateAwaitingReconnectProof,
	},
	{StateChallengeSent, protocol.OpLogonProof}: {
		handle: (*Handler).handleLogonProof,
		next:   StateAuthenticated,
	},
	{StateAwaitingReconnectProof, protocol.OpReconnectProof}: {
		handle: (*Handler).handleReconnectProof,
		next:   StateAuthenticated,
	},
	{StateAuthenticated, protocol.OpRealmList}: {
		handle: (*Handler).handleRealmList,
		next:   StateAuthenticated,
	},
}

func lookupTransition(state ConnectionState, op protocol.Opcode) (transition, bool) {
	t, ok := transitions[transitionKey{state: state, opcode: op}]
	return t, ok
}
