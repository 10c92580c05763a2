package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/realmd/internal/constants"
	"github.com/udisondev/realmd/internal/crypto"
	"github.com/udisondev/realmd/internal/model"
	"github.com/udisondev/realmd/internal/srp"
)

const pgUniqueViolation = "23505"

// AccountRepository реализует login.AccountStore, SessionFinder и
// CharacterCounter для PostgreSQL.
type AccountRepository struct {
	pool   *pgxpool.Pool
	sealer *crypto.Sealer // nil = session key хранится открытым
}

// NewAccountRepository создаёт repository. sealer может быть nil.
func NewAccountRepository(pool *pgxpool.Pool, sealer *crypto.Sealer) *AccountRepository {
	return &AccountRepository{pool: pool, sealer: sealer}
}

// FindAccount возвращает аккаунт по имени.
// Возвращает nil, nil если аккаунт не найден.
func (r *AccountRepository) FindAccount(ctx context.Context, username string) (*model.Account, error) {
	username = model.NormalizeUsername(username)

	var (
		acc       model.Account
		salt      []byte
		verifier  []byte
		lastLogin *time.Time
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, salt, verifier, email, ban_status, last_ip, last_login
		 FROM accounts WHERE username = $1`, username,
	).Scan(&acc.ID, &acc.Username, &salt, &verifier, &acc.Email, &acc.Ban, &acc.LastIP, &lastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying account %q: %w", username, err)
	}

	if len(salt) != srp.KeySize || len(verifier) != srp.KeySize {
		return nil, fmt.Errorf("account %q: corrupt salt/verifier (%d/%d bytes)", username, len(salt), len(verifier))
	}
	copy(acc.Salt[:], salt)
	copy(acc.Verifier[:], verifier)
	if lastLogin != nil {
		acc.LastLogin = *lastLogin
	}
	return &acc, nil
}

// CreateAccount регистрирует аккаунт: генерирует salt и verifier, пароль не сохраняется.
func (r *AccountRepository) CreateAccount(ctx context.Context, username, password, email string) (*model.Account, error) {
	username = model.NormalizeUsername(username)
	if username == "" || len(username) > constants.MaxAccountNameLength {
		return nil, fmt.Errorf("invalid account name %q", username)
	}

	salt, verifier, err := srp.Register(username, password)
	if err != nil {
		return nil, err
	}

	acc := &model.Account{
		Username: username,
		Salt:     salt,
		Verifier: verifier,
		Email:    email,
	}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO accounts (username, salt, verifier, email)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		username, salt[:], verifier[:], email,
	).Scan(&acc.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrAccountExists, username)
		}
		return nil, fmt.Errorf("creating account %q: %w", username, err)
	}
	return acc, nil
}

// SetBan меняет статус бана аккаунта.
func (r *AccountRepository) SetBan(ctx context.Context, username string, ban model.BanStatus) error {
	username = model.NormalizeUsername(username)
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET ban_status = $1 WHERE username = $2`,
		int16(ban), username,
	)
	if err != nil {
		return fmt.Errorf("updating ban for %q: %w", username, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, username)
	}
	return nil
}

// RecordSession сохраняет session key и время входа.
func (r *AccountRepository) RecordSession(ctx context.Context, username string, key srp.SessionKey) error {
	username = model.NormalizeUsername(username)

	stored := key[:]
	if r.sealer != nil {
		sealed, err := r.sealer.Seal(key[:], []byte(username))
		if err != nil {
			return fmt.Errorf("sealing session key: %w", err)
		}
		stored = sealed
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET session_key = $1, last_login = now() WHERE username = $2`,
		stored, username,
	)
	if err != nil {
		return fmt.Errorf("recording session for %q: %w", username, err)
	}
	return nil
}

// RecordLogin сохраняет IP последнего входа.
func (r *AccountRepository) RecordLogin(ctx context.Context, username, ip string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET last_ip = $1 WHERE username = $2`,
		ip, model.NormalizeUsername(username),
	)
	if err != nil {
		return fmt.Errorf("updating last ip for %q: %w", username, err)
	}
	return nil
}

// FindSession возвращает session key, записанный не раньше maxAge назад.
// maxAge <= 0 отключает проверку возраста.
// Ключ, который не удалось расшифровать, считается отсутствующим.
func (r *AccountRepository) FindSession(ctx context.Context, username string, maxAge time.Duration) (srp.SessionKey, bool, error) {
	username = model.NormalizeUsername(username)

	var (
		stored []byte
		age    *float64 // секунды с last_login по часам БД
	)
	err := r.pool.QueryRow(ctx,
		`SELECT session_key, EXTRACT(EPOCH FROM now() - last_login)::float8
		 FROM accounts WHERE username = $1`, username,
	).Scan(&stored, &age)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return srp.SessionKey{}, false, nil
		}
		return srp.SessionKey{}, false, fmt.Errorf("querying session for %q: %w", username, err)
	}
	if maxAge > 0 && (age == nil || *age > maxAge.Seconds()) {
		return srp.SessionKey{}, false, nil
	}
	if stored == nil {
		return srp.SessionKey{}, false, nil
	}

	raw := stored
	if r.sealer != nil {
		opened, err := r.sealer.Open(stored, []byte(username))
		if err != nil {
			// ключ запечатан другим seal key или записан до его включения
			return srp.SessionKey{}, false, nil
		}
		raw = opened
	}
	if len(raw) != srp.SessionKeySize {
		return srp.SessionKey{}, false, nil
	}

	var key srp.SessionKey
	copy(key[:], raw)
	return key, true, nil
}

// CharacterCounts возвращает число персонажей аккаунта по realm id.
func (r *AccountRepository) CharacterCounts(ctx context.Context, accountID int64) (map[uint8]uint8, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT realm_id, num_chars FROM realm_characters WHERE account_id = $1`, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying character counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[uint8]uint8)
	for rows.Next() {
		var realmID, n int16
		if err := rows.Scan(&realmID, &n); err != nil {
			return nil, fmt.Errorf("scanning character count: %w", err)
		}
		counts[uint8(realmID)] = uint8(min(n, 255))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating character counts: %w", err)
	}
	return counts, nil
}

// SetCharacterCount upserts the character count of an account on a realm.
// Normally written by the world server.
func (r *AccountRepository) SetCharacterCount(ctx context.Context, realmID uint8, accountID int64, n uint8) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO realm_characters (realm_id, account_id, num_chars)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (realm_id, account_id) DO UPDATE SET num_chars = EXCLUDED.num_chars`,
		int16(realmID), accountID, int16(n),
	)
	if err != nil {
		return fmt.Errorf("setting character count: %w", err)
	}
	return nil
}
