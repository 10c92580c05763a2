package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/realmd/internal/model"
)

// RealmRepository reads the realmlist table. Implements realm.Source.
type RealmRepository struct {
	pool *pgxpool.Pool
}

// NewRealmRepository создаёт новый RealmRepository.
func NewRealmRepository(pool *pgxpool.Pool) *RealmRepository {
	return &RealmRepository{pool: pool}
}

// ListRealms returns all realms ordered by id.
func (r *RealmRepository) ListRealms(ctx context.Context) ([]model.Realm, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, address, port, realm_type, flags, locked, timezone, population,
		        build, version_major, version_minor, version_patch
		 FROM realmlist ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying realmlist: %w", err)
	}
	defer rows.Close()

	var realms []model.Realm
	for rows.Next() {
		var (
			id, typ, flags, tz  int16
			major, minor, patch int16
			port, build         int32
			realm               model.Realm
		)
		if err := rows.Scan(&id, &realm.Name, &realm.Host, &port, &typ, &flags, &realm.Locked, &tz,
			&realm.Population, &build, &major, &minor, &patch); err != nil {
			return nil, fmt.Errorf("scanning realm: %w", err)
		}
		realm.ID = uint8(id)
		realm.Port = int(port)
		realm.Type = model.RealmType(typ)
		realm.Flags = model.RealmFlags(flags)
		realm.Timezone = uint8(tz)
		realm.Build = uint16(build)
		realm.Version = [3]byte{byte(major), byte(minor), byte(patch)}
		realms = append(realms, realm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating realms: %w", err)
	}
	return realms, nil
}

// AddRealm inserts or replaces a realm.
func (r *RealmRepository) AddRealm(ctx context.Context, realm model.Realm) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO realmlist (id, name, address, port, realm_type, flags, locked, timezone, population,
		                        build, version_major, version_minor, version_patch)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (id) DO UPDATE SET
		    name = EXCLUDED.name, address = EXCLUDED.address, port = EXCLUDED.port,
		    realm_type = EXCLUDED.realm_type, flags = EXCLUDED.flags, locked = EXCLUDED.locked,
		    timezone = EXCLUDED.timezone, population = EXCLUDED.population, build = EXCLUDED.build,
		    version_major = EXCLUDED.version_major, version_minor = EXCLUDED.version_minor,
		    version_patch = EXCLUDED.version_patch`,
		int16(realm.ID), realm.Name, realm.Host, int32(realm.Port), int16(realm.Type), int16(realm.Flags),
		realm.Locked, int16(realm.Timezone), realm.Population, int32(realm.Build),
		int16(realm.Version[0]), int16(realm.Version[1]), int16(realm.Version[2]),
	)
	if err != nil {
		return fmt.Errorf("adding realm %d: %w", realm.ID, err)
	}
	return nil
}
