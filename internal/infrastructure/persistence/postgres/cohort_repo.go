// Package postgres implements PostgreSQL persistence layer for BotCamp Hub.
package postgres

import (
	"context"

	"github.com/c4t-hub/botcamp-hub/internal/domain/cohort"
	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// COHORT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CohortRepository implements cohort.Repository for PostgreSQL.
type CohortRepository struct {
	q Querier
}

// NewCohortRepository creates a pool-backed CohortRepository.
func NewCohortRepository(conn *Connection) *CohortRepository {
	return &CohortRepository{q: conn}
}

// newCohortRepositoryTx creates a transaction-backed CohortRepository.
func newCohortRepositoryTx(tx pgx.Tx) *CohortRepository {
	return &CohortRepository{q: tx}
}

// Get returns the guild's cohort settings.
func (r *CohortRepository) Get(ctx context.Context, guildID shared.GuildID) (*cohort.Cohort, error) {
	query := `
		SELECT guild_id, start_date, coc_msg_id, created_at, updated_at
		FROM cohort_settings
		WHERE guild_id = $1
	`

	var c cohort.Cohort
	var rawGuildID int64
	var markerMsgID *int64

	err := r.q.QueryRow(ctx, query, guildID.Int64()).Scan(
		&rawGuildID,
		&c.StartDate,
		&markerMsgID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCohortNotFound
		}
		return nil, storeErr("cohort.Get", err)
	}

	c.GuildID = shared.GuildID(rawGuildID)
	if markerMsgID != nil {
		c.MarkerMsgID = shared.MessageID(*markerMsgID)
	}

	return &c, nil
}

// Save upserts the guild's cohort settings.
func (r *CohortRepository) Save(ctx context.Context, c *cohort.Cohort) error {
	query := `
		INSERT INTO cohort_settings (guild_id, start_date, coc_msg_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (guild_id) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			coc_msg_id = EXCLUDED.coc_msg_id,
			updated_at = NOW()
	`

	var markerMsgID *int64
	if c.MarkerMsgID.IsValid() {
		v := c.MarkerMsgID.Int64()
		markerMsgID = &v
	}

	if _, err := r.q.Exec(ctx, query, c.GuildID.Int64(), c.StartDate, markerMsgID, c.CreatedAt); err != nil {
		return storeErr("cohort.Save", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRY IMPLEMENTATION
// Single-row pointer at the active cohort. Activation is last writer
// wins: the upsert replaces whatever guild was active before.
// ══════════════════════════════════════════════════════════════════════════════

// RegistryRepository implements cohort.Registry for PostgreSQL.
type RegistryRepository struct {
	q Querier
}

// NewRegistryRepository creates a pool-backed RegistryRepository.
func NewRegistryRepository(conn *Connection) *RegistryRepository {
	return &RegistryRepository{q: conn}
}

// newRegistryRepositoryTx creates a transaction-backed RegistryRepository.
func newRegistryRepositoryTx(tx pgx.Tx) *RegistryRepository {
	return &RegistryRepository{q: tx}
}

// ActiveGuild returns the guild of the active cohort.
func (r *RegistryRepository) ActiveGuild(ctx context.Context) (shared.GuildID, error) {
	var guildID int64
	err := r.q.QueryRow(ctx, `SELECT active_guild_id FROM registry WHERE id = 1`).Scan(&guildID)
	if err != nil {
		if IsNoRows(err) {
			return 0, shared.ErrNoActiveCohort
		}
		return 0, storeErr("registry.ActiveGuild", err)
	}
	return shared.GuildID(guildID), nil
}

// SetActiveGuild points the registry at the given guild.
func (r *RegistryRepository) SetActiveGuild(ctx context.Context, guildID shared.GuildID) error {
	query := `
		INSERT INTO registry (id, active_guild_id, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET
			active_guild_id = EXCLUDED.active_guild_id,
			updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, guildID.Int64()); err != nil {
		return storeErr("registry.SetActiveGuild", err)
	}
	return nil
}
