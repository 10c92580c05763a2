package login

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/udisondev/realmd/internal/config"
	"github.com/udisondev/realmd/internal/constants"
	"github.com/udisondev/realmd/internal/crypto"
	"github.com/udisondev/realmd/internal/metrics"
	"github.com/udisondev/realmd/internal/model"
	"github.com/udisondev/realmd/internal/protocol"
	"github.com/udisondev/realmd/internal/srp"
)

// Handler processes auth frames. Singleton — один на сервер.
type Handler struct {
	accounts AccountStore
	realms   RealmSnapshotter
	sessions *SessionManager
	builds   map[uint16]struct{}

	// ключ из store старше sessionTTL для reconnect не годится
	sessionTTL time.Duration

	// modexp дорогой: не даём тысяче соединений одновременно занять все ядра
	crypto *semaphore.Weighted
}

// NewHandler creates a frame handler.
func NewHandler(accounts AccountStore, realms RealmSnapshotter, sessions *SessionManager, cfg config.AuthServer) *Handler {
	workers := cfg.CryptoWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	builds := make(map[uint16]struct{}, len(cfg.AcceptedBuilds))
	for _, b := range cfg.AcceptedBuilds {
		builds[uint16(b)] = struct{}{}
	}

	return &Handler{
		accounts: accounts,
		realms:   realms,
		sessions: sessions,
		builds:   builds,
		crypto:   semaphore.NewWeighted(int64(workers)),

		sessionTTL: cfg.SessionTTL,
	}
}

// HandleFrame dispatches a decoded frame through the transition table.
// reply is nil when nothing must be sent. ok is false when the connection
// must be closed after the reply. A reply may accompany an error
// (IncorrectPassword). On err with ok the state is unchanged.
func (h *Handler) HandleFrame(
	ctx context.Context,
	client *Client,
	frame protocol.Frame,
) (protocol.Reply, bool, error) {
	metrics.FramesReceived.WithLabelValues(frame.Opcode().String()).Inc()

	state := client.State()
	tr, found := lookupTransition(state, frame.Opcode())
	if !found {
		client.SetState(StateClosed)
		return nil, false, fmt.Errorf("%w: %s in state %s", ErrUnexpectedOpcode, frame.Opcode(), state)
	}

	reply, ok, err := tr.handle(h, ctx, client, frame)
	switch {
	case !ok:
		client.SetState(StateClosed)
	case err == nil:
		client.SetState(tr.next)
	}
	return reply, ok, err
}

func (h *Handler) buildAccepted(build uint16) bool {
	_, ok := h.builds[build]
	return ok
}

// runCrypto runs fn on one of the bounded crypto workers.
func (h *Handler) runCrypto(ctx context.Context, fn func()) error {
	start := time.Now()
	if err := h.crypto.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquiring crypto worker: %w", err)
	}
	defer h.crypto.Release(1)

	fn()
	metrics.CryptoLatency.Observe(time.Since(start).Seconds())
	return nil
}

func banStatus(b model.BanStatus) protocol.Status {
	if b == model.BanTemporary {
		return protocol.StatusSuspended
	}
	return protocol.StatusBanned
}

// handleLogonChallenge processes opcode 0x00 in state AWAITING_CHALLENGE.
func (h *Handler) handleLogonChallenge(
	ctx context.Context,
	client *Client,
	frame protocol.Frame,
) (protocol.Reply, bool, error) {
	req := frame.(protocol.LogonChallenge)
	username := model.NormalizeUsername(req.Account)
	client.setIdentity(username, req.Build)

	fail := func(s protocol.Status) protocol.Reply {
		return protocol.LogonChallengeReply{Status: s}
	}

	if !h.buildAccepted(req.Build) {
		slog.Warn("client build rejected", "build", req.Build, "account", username, "client", client.IP())
		metrics.Handshakes.WithLabelValues("logon", "version_invalid").Inc()
		return fail(protocol.StatusVersionInvalid), false, fmt.Errorf("%w: %d", ErrVersionInvalid, req.Build)
	}

	acc, err := h.accounts.FindAccount(ctx, username)
	if err != nil {
		slog.Error("account store error during challenge", "err", err, "account", username, "client", client.IP())
		return fail(protocol.StatusFailed), true, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if acc == nil {
		slog.Info("challenge for unknown account", "account", username, "client", client.IP())
		metrics.Handshakes.WithLabelValues("logon", "unknown_account").Inc()
		return fail(protocol.StatusUnknownAccount), true, ErrUnknownAccount
	}
	if acc.Banned() {
		slog.Warn("account banned", "account", username, "ban", acc.Ban, "client", client.IP())
		metrics.Handshakes.WithLabelValues("logon", "banned").Inc()
		return fail(banStatus(acc.Ban)), false, ErrAccountBanned
	}

	var (
		challenge srp.Challenge
		genErr    error
	)
	if err := h.runCrypto(ctx, func() {
		challenge, genErr = srp.GenerateChallenge(acc.Verifier)
	}); err != nil {
		return nil, false, err
	}
	if genErr != nil {
		return nil, false, fmt.Errorf("generating server ephemeral: %w", genErr)
	}

	client.setAccountID(acc.ID)
	client.beginHandshake(&handshake{
		salt:      acc.Salt,
		verifier:  acc.Verifier,
		challenge: challenge,
	})

	slog.Debug("challenge sent", "account", username, "build", req.Build, "client", client.IP())
	return protocol.LogonChallengeReply{
		Status: protocol.StatusSuccess,
		B:      challenge.Public,
		Salt:   acc.Salt,
	}, true, nil
}

// handleLogonProof processes opcode 0x01 in state CHALLENGE_SENT.
func (h *Handler) handleLogonProof(
	ctx context.Context,
	client *Client,
	frame protocol.Frame,
) (protocol.Reply, bool, error) {
	req := frame.(protocol.LogonProof)
	username := client.Account()
	build := client.Build()

	hs := client.takeHandshake()
	if hs == nil {
		return nil, false, fmt.Errorf("%w: proof without challenge", ErrUnexpectedOpcode)
	}

	var (
		key    srp.SessionKey
		keyErr error
	)
	if err := h.runCrypto(ctx, func() {
		_, key, keyErr = srp.ComputeSessionKey(hs.challenge, req.A, hs.verifier)
	}); err != nil {
		return nil, false, err
	}
	if keyErr != nil {
		slog.Warn("invalid client ephemeral", "security", true, "account", username, "client", client.IP())
		metrics.Handshakes.WithLabelValues("logon", "invalid_ephemeral").Inc()
		return nil, false, keyErr
	}

	if !srp.ClientProofMatches(username, hs.salt, req.A, hs.challenge.Public, key, req.M1) {
		slog.Warn("client proof mismatch", "security", true, "account", username, "client", client.IP())
		metrics.Handshakes.WithLabelValues("logon", "proof_mismatch").Inc()
		return protocol.LogonProofReply{
			Build:  build,
			Status: protocol.StatusIncorrectPassword,
		}, false, ErrProofMismatch
	}

	m2 := srp.ServerProof(req.A, req.M1, key)

	// Сессия попадает в реестр только после успешной проверки M1
	h.sessions.Put(username, key)
	if err := h.accounts.RecordSession(ctx, username, key); err != nil {
		slog.Error("failed to record session", "err", err, "account", username)
	}
	if lr, ok := h.accounts.(LoginRecorder); ok {
		if err := lr.RecordLogin(ctx, username, client.IP()); err != nil {
			slog.Warn("failed to record login address", "err", err, "account", username)
		}
	}

	slog.Info("auth success", "account", username, "build", build, "client", client.IP())
	metrics.Handshakes.WithLabelValues("logon", "success").Inc()

	return protocol.LogonProofReply{
		Build:        build,
		Status:       protocol.StatusSuccess,
		M2:           m2,
		AccountFlags: constants.AccountFlagProPass,
	}, true, nil
}

// handleReconnectChallenge processes opcode 0x02 in state AWAITING_CHALLENGE.
func (h *Handler) handleReconnectChallenge(
	ctx context.Context,
	client *Client,
	frame protocol.Frame,
) (protocol.Reply, bool, error) {
	req := frame.(protocol.ReconnectChallenge)
	username := model.NormalizeUsername(req.Account)
	client.setIdentity(username, req.Build)

	fail := func(s protocol.Status) protocol.Reply {
		return protocol.ReconnectChallengeReply{Status: s}
	}

	if !h.buildAccepted(req.Build) {
		slog.Warn("client build rejected", "build", req.Build, "account", username, "client", client.IP())
		metrics.Handshakes.WithLabelValues("reconnect", "version_invalid").Inc()
		return fail(protocol.StatusVersionInvalid), false, fmt.Errorf("%w: %d", ErrVersionInvalid, req.Build)
	}

	acc, err := h.accounts.FindAccount(ctx, username)
	if err != nil {
		slog.Error("account store error during reconnect", "err", err, "account", username, "client", client.IP())
		return fail(protocol.StatusFailed), true, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if acc == nil {
		metrics.Handshakes.WithLabelValues("reconnect", "unknown_account").Inc()
		return fail(protocol.StatusUnknownAccount), false, ErrUnknownAccount
	}
	if acc.Banned() {
		slog.Warn("account banned", "account", username, "ban", acc.Ban, "client", client.IP())
		metrics.Handshakes.WithLabelValues("reconnect", "banned").Inc()
		return fail(banStatus(acc.Ban)), false, ErrAccountBanned
	}

	rc := &reconnect{}
	if _, ok := h.sessions.Get(username); !ok {
		stored, found, err := h.findStoredSession(ctx, username)
		if err != nil {
			slog.Error("account store error during reconnect", "err", err, "account", username, "client", client.IP())
			return fail(protocol.StatusFailed), true, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		if !found {
			slog.Info("reconnect without session", "account", username, "client", client.IP())
			metrics.Handshakes.WithLabelValues("reconnect", "no_session").Inc()
			return fail(protocol.StatusUnknownAccount), false, fmt.Errorf("%w: no session", ErrUnknownAccount)
		}
		rc.stored = stored
	}

	random, err := crypto.RandomBytes(srp.ChallengeSize)
	if err != nil {
		return nil, false, err
	}
	copy(rc.challenge[:], random)

	client.setAccountID(acc.ID)
	client.beginReconnect(rc)

	return protocol.ReconnectChallengeReply{
		Status:    protocol.StatusSuccess,
		Challenge: rc.challenge,
	}, true, nil
}

func (h *Handler) findStoredSession(ctx context.Context, username string) (srp.SessionKey, bool, error) {
	finder, ok := h.accounts.(SessionFinder)
	if !ok {
		return srp.SessionKey{}, false, nil
	}
	key, found, err := finder.FindSession(ctx, username, h.sessionTTL)
	if err != nil {
		return srp.SessionKey{}, false, err
	}
	return key, found && !key.IsZero(), nil
}

// handleReconnectProof processes opcode 0x03 in state AWAITING_RECONNECT_PROOF.
func (h *Handler) handleReconnectProof(
	_ context.Context,
	client *Client,
	frame protocol.Frame,
) (protocol.Reply, bool, error) {
	req := frame.(protocol.ReconnectProof)
	username := client.Account()

	rc := client.takeReconnect()
	if rc == nil {
		return nil, false, fmt.Errorf("%w: proof without challenge", ErrUnexpectedOpcode)
	}

	// Ключ перечитываем: его мог заменить параллельный логон
	key, live := h.sessions.Get(username)
	if !live {
		key = rc.stored
	}

	if !srp.ReconnectProofMatches(username, key, req.R1, rc.challenge, req.R2) {
		slog.Warn("reconnect proof mismatch", "security", true, "account", username, "client", client.IP())
		metrics.Handshakes.WithLabelValues("reconnect", "proof_mismatch").Inc()
		return nil, false, ErrProofMismatch
	}

	if live {
		h.sessions.Touch(username)
	} else {
		h.sessions.Put(username, key)
	}

	slog.Info("reconnect success", "account", username, "client", client.IP())
	metrics.Handshakes.WithLabelValues("reconnect", "success").Inc()

	return protocol.ReconnectProofReply{
		Build:  client.Build(),
		Status: protocol.StatusSuccess,
	}, true, nil
}

// handleRealmList processes opcode 0x10 in state AUTHENTICATED.
func (h *Handler) handleRealmList(
	ctx context.Context,
	client *Client,
	_ protocol.Frame,
) (protocol.Reply, bool, error) {
	username := client.Account()
	build := client.Build()

	var counts map[uint8]uint8
	if counter, ok := h.accounts.(CharacterCounter); ok {
		c, err := counter.CharacterCounts(ctx, client.AccountID())
		if err != nil {
			slog.Warn("failed to load character counts", "err", err, "account", username)
		} else {
			counts = c
		}
	}

	h.sessions.Touch(username)

	return protocol.RealmListReply{
		Build:  build,
		Realms: realmEntries(h.realms.Snapshot(), build, counts),
	}, true, nil
}

// realmEntries converts a snapshot into wire entries for one client.
// Invalid realms are hidden; realms pinned to another build show as offline.
func realmEntries(realms []model.Realm, build uint16, counts map[uint8]uint8) []protocol.RealmEntry {
	entries := make([]protocol.RealmEntry, 0, len(realms))
	for _, r := range realms {
		if r.Flags.Has(model.RealmFlagInvalid) {
			continue
		}

		flags := r.Flags
		if r.Build != 0 && r.Build != build {
			flags |= model.RealmFlagOffline
		}
		if !protocol.IsPostBC(build) {
			flags &^= model.RealmFlagSpecifyBuild
		}

		entries = append(entries, protocol.RealmEntry{
			ID:         r.ID,
			Type:       uint8(r.Type),
			Locked:     r.Locked,
			Flags:      uint8(flags),
			Name:       r.Name,
			Address:    r.Address(),
			Population: r.Population,
			Characters: counts[r.ID],
			Timezone:   r.Timezone,
			Version:    r.Version,
			Build:      r.Build,
		})
	}
	return entries
}
