package protocol

import "fmt"

// Opcode is the first byte of every auth frame.
type Opcode byte

const (
	OpLogonChallenge     Opcode = 0x00
	OpLogonProof         Opcode = 0x01
	OpReconnectChallenge Opcode = 0x02
	OpReconnectProof     Opcode = 0x03
	OpRealmList          Opcode = 0x10

	// transfer опкоды клиент знает, но мы их не поддерживаем
	OpTransferInitiate Opcode = 0x30
	OpTransferData     Opcode = 0x31
	OpTransferAccept   Opcode = 0x32
	OpTransferResume   Opcode = 0x33
	OpTransferCancel   Opcode = 0x34
)

func (o Opcode) String() string {
	switch o {
	case OpLogonChallenge:
		return "LOGON_CHALLENGE"
	case OpLogonProof:
		return "LOGON_PROOF"
	case OpReconnectChallenge:
		return "RECONNECT_CHALLENGE"
	case OpReconnectProof:
		return "RECONNECT_PROOF"
	case OpRealmList:
		return "REALM_LIST"
	case OpTransferInitiate, OpTransferData, OpTransferAccept, OpTransferResume, OpTransferCancel:
		return fmt.Sprintf("TRANSFER(0x%02X)", byte(o))
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", byte(o))
	}
}

func (o Opcode) isTransfer() bool {
	return o >= OpTransferInitiate && o <= OpTransferCancel
}

// Status is the result code carried by server replies.
type Status byte

const (
	StatusSuccess           Status = 0x00
	StatusFailed            Status = 0x01
	StatusFailed2           Status = 0x02
	StatusBanned            Status = 0x03
	StatusUnknownAccount    Status = 0x04
	StatusIncorrectPassword Status = 0x05
	StatusAlreadyOnline     Status = 0x06
	StatusNoTime            Status = 0x07
	StatusDBBusy            Status = 0x08
	StatusVersionInvalid    Status = 0x09
	StatusVersionUpdate     Status = 0x0A
	StatusInvalidServer     Status = 0x0B
	StatusSuspended         Status = 0x0C
	StatusNoAccess          Status = 0x0D
	StatusSuccessSurvey     Status = 0x0E
	StatusParentControl     Status = 0x0F
	StatusLockedEnforced    Status = 0x10
	StatusTrialEnded        Status = 0x11
	StatusUseBattlenet      Status = 0x12
	StatusDisconnected      Status = 0xFF
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailed, StatusFailed2:
		return "FAILED"
	case StatusBanned:
		return "BANNED"
	case StatusUnknownAccount:
		return "UNKNOWN_ACCOUNT"
	case StatusIncorrectPassword:
		return "INCORRECT_PASSWORD"
	case StatusAlreadyOnline:
		return "ALREADY_ONLINE"
	case StatusNoTime:
		return "NO_TIME"
	case StatusDBBusy:
		return "DB_BUSY"
	case StatusVersionInvalid:
		return "VERSION_INVALID"
	case StatusVersionUpdate:
		return "VERSION_UPDATE"
	case StatusInvalidServer:
		return "INVALID_SERVER"
	case StatusSuspended:
		return "SUSPENDED"
	case StatusNoAccess:
		return "NO_ACCESS"
	case StatusDisconnected:
		return "DISCONNECTED"
	default:
		return fmt.Sprintf("STATUS(0x%02X)", byte(s))
	}
}
