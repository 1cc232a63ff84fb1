// Package postgres implements PostgreSQL persistence layer for BotCamp Hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const studentColumns = `guild_id, id, name, nickname, lvl, xp, enrolled_at, updated_at`

// StudentRepository implements student.Repository for PostgreSQL.
// It runs on a Querier, so the same implementation serves both the pool
// and an open transaction.
type StudentRepository struct {
	q Querier
}

// NewStudentRepository creates a pool-backed StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{q: conn}
}

// newStudentRepositoryTx creates a transaction-backed StudentRepository.
func newStudentRepositoryTx(tx pgx.Tx) *StudentRepository {
	return &StudentRepository{q: tx}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new student record.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (guild_id, id, name, nickname, lvl, xp, enrolled_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.Exec(ctx, query,
		s.GuildID.Int64(),
		s.ID.Int64(),
		s.Name,
		s.Nickname,
		s.Level.Int(),
		s.XP.Int(),
		s.EnrolledAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return storeErr("Create", err)
	}

	return nil
}

// GetByID returns a student by member ID within a guild.
func (r *StudentRepository) GetByID(ctx context.Context, guildID shared.GuildID, id shared.StudentID) (*student.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE guild_id = $1 AND id = $2
	`

	row := r.q.QueryRow(ctx, query, guildID.Int64(), id.Int64())
	return r.scanStudent(row)
}

// GetByIDForUpdate returns a student with the row locked until the end
// of the enclosing transaction. Meaningful only on a tx-backed
// repository; on the pool the lock lasts for the single statement.
func (r *StudentRepository) GetByIDForUpdate(ctx context.Context, guildID shared.GuildID, id shared.StudentID) (*student.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE guild_id = $1 AND id = $2
		FOR UPDATE
	`

	row := r.q.QueryRow(ctx, query, guildID.Int64(), id.Int64())
	return r.scanStudent(row)
}

// Update persists the student's mutable fields.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	query := `
		UPDATE students SET
			name = $1,
			nickname = $2,
			lvl = $3,
			xp = $4,
			updated_at = NOW()
		WHERE guild_id = $5 AND id = $6
	`

	tag, err := r.q.Exec(ctx, query,
		s.Name,
		s.Nickname,
		s.Level.Int(),
		s.XP.Int(),
		s.GuildID.Int64(),
		s.ID.Int64(),
	)
	if err != nil {
		return storeErr("Update", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}

	return nil
}

// Delete removes a student record.
func (r *StudentRepository) Delete(ctx context.Context, guildID shared.GuildID, id shared.StudentID) error {
	query := `DELETE FROM students WHERE guild_id = $1 AND id = $2`

	if _, err := r.q.Exec(ctx, query, guildID.Int64(), id.Int64()); err != nil {
		return storeErr("Delete", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bulk Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetByIDs returns students for the given IDs. Missing IDs are simply
// absent from the result.
func (r *StudentRepository) GetByIDs(ctx context.Context, guildID shared.GuildID, ids []shared.StudentID) ([]*student.Student, error) {
	if len(ids) == 0 {
		return []*student.Student{}, nil
	}

	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = id.Int64()
	}

	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE guild_id = $1 AND id = ANY($2)
	`

	rows, err := r.q.Query(ctx, query, guildID.Int64(), raw)
	if err != nil {
		return nil, storeErr("GetByIDs", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// ListRanked returns the guild's students in ranking order: level
// descending, then XP descending, ties broken by the display name
// ascending. The nickname mode falls back to the real name when the
// nickname is empty, matching what gets rendered.
func (r *StudentRepository) ListRanked(ctx context.Context, guildID shared.GuildID, limit int, useNickname bool) ([]*student.Student, error) {
	if limit <= 0 {
		return []*student.Student{}, nil
	}

	nameExpr := "name"
	if useNickname {
		nameExpr = "COALESCE(NULLIF(nickname, ''), name)"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM students
		WHERE guild_id = $1
		ORDER BY lvl DESC, xp DESC, %s ASC
		LIMIT $2
	`, studentColumns, nameExpr)

	rows, err := r.q.Query(ctx, query, guildID.Int64(), limit)
	if err != nil {
		return nil, storeErr("ListRanked", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// Count returns the number of enrolled students in the guild.
func (r *StudentRepository) Count(ctx context.Context, guildID shared.GuildID) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM students WHERE guild_id = $1`, guildID.Int64()).Scan(&count)
	if err != nil {
		return 0, storeErr("Count", err)
	}
	return count, nil
}

// Exists reports whether the member is enrolled as a student.
func (r *StudentRepository) Exists(ctx context.Context, guildID shared.GuildID, id shared.StudentID) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE guild_id = $1 AND id = $2)`,
		guildID.Int64(), id.Int64(),
	).Scan(&exists)
	if err != nil {
		return false, storeErr("Exists", err)
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *StudentRepository) scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	var guildID, id int64
	var lvl, xp int

	err := row.Scan(&guildID, &id, &s.Name, &s.Nickname, &lvl, &xp, &s.EnrolledAt, &s.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, storeErr("scan", err)
	}

	s.GuildID = shared.GuildID(guildID)
	s.ID = shared.StudentID(id)
	s.Level = shared.Level(lvl)
	s.XP = shared.XP(xp)

	return &s, nil
}

func (r *StudentRepository) scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	students := make([]*student.Student, 0)
	for rows.Next() {
		s, err := r.scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// storeErr maps low-level failures onto the shared error kinds.
// Serialization failures and deadlocks surface as retryable store
// errors; everything else stays opaque.
func storeErr(op string, err error) error {
	if IsSerializationFailure(err) {
		return shared.WrapError("persistence", op, shared.ErrStoreUnavailable, "transient store failure", err)
	}
	return fmt.Errorf("postgres: %s: %w", op, err)
}
