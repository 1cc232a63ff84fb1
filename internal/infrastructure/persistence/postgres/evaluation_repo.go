// Package postgres implements PostgreSQL persistence layer for BotCamp Hub.
package postgres

import (
	"context"

	"github.com/c4t-hub/botcamp-hub/internal/domain/evaluation"
	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVALUATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// EvaluationRepository implements evaluation.Repository for PostgreSQL.
type EvaluationRepository struct {
	q Querier
}

// NewEvaluationRepository creates a pool-backed EvaluationRepository.
func NewEvaluationRepository(conn *Connection) *EvaluationRepository {
	return &EvaluationRepository{q: conn}
}

// Create records a single evaluation pair.
// Returns shared.ErrAlreadyExists when the (day, code) slot is taken.
func (r *EvaluationRepository) Create(ctx context.Context, p *evaluation.Pair) error {
	query := `
		INSERT INTO eval_pairs (guild_id, day, code, coder_id, tester_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.Exec(ctx, query,
		p.GuildID.Int64(),
		p.Day.Int(),
		p.Code.Int(),
		p.CoderID.Int64(),
		p.TesterID.Int64(),
		p.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return storeErr("eval.Create", err)
	}

	return nil
}

// CreateBatch records a day's pairs in one transaction-shaped batch.
// The batch preserves slice order, which is the storage order readers
// later rely on.
func (r *EvaluationRepository) CreateBatch(ctx context.Context, pairs []*evaluation.Pair) error {
	if len(pairs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO eval_pairs (guild_id, day, code, coder_id, tester_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, p := range pairs {
		batch.Queue(query,
			p.GuildID.Int64(),
			p.Day.Int(),
			p.Code.Int(),
			p.CoderID.Int64(),
			p.TesterID.Int64(),
			p.CreatedAt,
		)
	}

	results := r.q.SendBatch(ctx, batch)
	defer results.Close()

	for range pairs {
		if _, err := results.Exec(); err != nil {
			if IsUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			return storeErr("eval.CreateBatch", err)
		}
	}

	return nil
}

// ListByDay returns the day's pairs in recording order.
func (r *EvaluationRepository) ListByDay(ctx context.Context, guildID shared.GuildID, day shared.Day) ([]*evaluation.Pair, error) {
	query := `
		SELECT guild_id, day, code, coder_id, tester_id, created_at
		FROM eval_pairs
		WHERE guild_id = $1 AND day = $2
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, query, guildID.Int64(), day.Int())
	if err != nil {
		return nil, storeErr("eval.ListByDay", err)
	}
	defer rows.Close()

	pairs := make([]*evaluation.Pair, 0)
	for rows.Next() {
		var p evaluation.Pair
		var rawGuildID, coderID, testerID int64
		var rawDay, rawCode int

		if err := rows.Scan(&rawGuildID, &rawDay, &rawCode, &coderID, &testerID, &p.CreatedAt); err != nil {
			return nil, storeErr("eval.ListByDay", err)
		}

		p.GuildID = shared.GuildID(rawGuildID)
		p.Day = shared.Day(rawDay)
		p.Code = shared.EvalCode(rawCode)
		p.CoderID = shared.StudentID(coderID)
		p.TesterID = shared.StudentID(testerID)

		pairs = append(pairs, &p)
	}

	return pairs, rows.Err()
}

// MaxDay returns the highest recorded day, 0 when no pairs exist.
func (r *EvaluationRepository) MaxDay(ctx context.Context, guildID shared.GuildID) (shared.Day, error) {
	var maxDay int
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(MAX(day), 0) FROM eval_pairs WHERE guild_id = $1`,
		guildID.Int64(),
	).Scan(&maxDay)
	if err != nil {
		return 0, storeErr("eval.MaxDay", err)
	}
	return shared.Day(maxDay), nil
}

// DeleteByDay removes all pairs of the given day.
func (r *EvaluationRepository) DeleteByDay(ctx context.Context, guildID shared.GuildID, day shared.Day) error {
	if _, err := r.q.Exec(ctx,
		`DELETE FROM eval_pairs WHERE guild_id = $1 AND day = $2`,
		guildID.Int64(), day.Int(),
	); err != nil {
		return storeErr("eval.DeleteByDay", err)
	}
	return nil
}
