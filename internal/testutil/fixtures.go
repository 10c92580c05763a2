package testutil

import (
	"testing"

	"github.com/udisondev/realmd/internal/model"
	"github.com/udisondev/realmd/internal/srp"
)

// Тестовые аккаунты
const (
	ValidAccount  = "TEST"
	ValidPassword = "PASSWORD"
)

// NewAccount регистрирует аккаунт со свежими salt и verifier.
func NewAccount(t testing.TB, id int64, username, password string) *model.Account {
	t.Helper()

	salt, verifier, err := srp.Register(username, password)
	if err != nil {
		t.Fatalf("registering %s: %v", username, err)
	}

	return &model.Account{
		ID:       id,
		Username: model.NormalizeUsername(username),
		Salt:     salt,
		Verifier: verifier,
	}
}

// TestRealm returns a PvP realm on 127.0.0.1:8085.
func TestRealm(id uint8, name string) model.Realm {
	return model.Realm{
		ID:         id,
		Name:       name,
		Host:       "127.0.0.1",
		Port:       8085,
		Type:       model.RealmPvP,
		Population: 1.0,
		Timezone:   1,
	}
}
