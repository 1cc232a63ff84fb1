package query

import (
	"context"
	"sort"
	"time"

	"github.com/c4t-hub/botcamp-hub/internal/domain/evaluation"
	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/domain/student"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory fakes shared by the query tests.
// ─────────────────────────────────────────────────────────────────────────────

type fakeStudentRepo struct {
	students map[shared.StudentID]*student.Student
	listErr  error
}

func newFakeStudentRepo(students ...*student.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[shared.StudentID]*student.Student)}
	for _, st := range students {
		repo.students[st.ID] = st
	}
	return repo
}

func (r *fakeStudentRepo) Create(_ context.Context, st *student.Student) error {
	if _, ok := r.students[st.ID]; ok {
		return shared.ErrAlreadyExists
	}
	r.students[st.ID] = st
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, _ shared.GuildID, id shared.StudentID) (*student.Student, error) {
	st, ok := r.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return st, nil
}

func (r *fakeStudentRepo) GetByIDForUpdate(ctx context.Context, guildID shared.GuildID, id shared.StudentID) (*student.Student, error) {
	return r.GetByID(ctx, guildID, id)
}

func (r *fakeStudentRepo) Update(_ context.Context, st *student.Student) error {
	if _, ok := r.students[st.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	r.students[st.ID] = st
	return nil
}

func (r *fakeStudentRepo) Delete(_ context.Context, _ shared.GuildID, id shared.StudentID) error {
	delete(r.students, id)
	return nil
}

func (r *fakeStudentRepo) GetByIDs(_ context.Context, _ shared.GuildID, ids []shared.StudentID) ([]*student.Student, error) {
	out := make([]*student.Student, 0, len(ids))
	for _, id := range ids {
		if st, ok := r.students[id]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) ListRanked(_ context.Context, _ shared.GuildID, limit int, useNickname bool) ([]*student.Student, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	if limit <= 0 {
		return []*student.Student{}, nil
	}

	all := make([]*student.Student, 0, len(r.students))
	for _, st := range r.students {
		all = append(all, st)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		if a.XP != b.XP {
			return a.XP > b.XP
		}
		an, bn := a.Name, b.Name
		if useNickname {
			an, bn = a.DisplayName(), b.DisplayName()
		}
		return an < bn
	})

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeStudentRepo) Count(context.Context, shared.GuildID) (int, error) {
	return len(r.students), nil
}

func (r *fakeStudentRepo) Exists(_ context.Context, _ shared.GuildID, id shared.StudentID) (bool, error) {
	_, ok := r.students[id]
	return ok, nil
}

type fakeRankingCache struct {
	entries []student.RankedEntry
	sets    int
	hits    int
}

func (c *fakeRankingCache) GetRanking(context.Context, shared.GuildID, int, bool) ([]student.RankedEntry, error) {
	if c.entries == nil {
		return nil, shared.ErrNotFound
	}
	c.hits++
	return c.entries, nil
}

func (c *fakeRankingCache) SetRanking(_ context.Context, _ shared.GuildID, _ int, _ bool, entries []student.RankedEntry, _ time.Duration) error {
	c.entries = entries
	c.sets++
	return nil
}

func (c *fakeRankingCache) InvalidateRanking(context.Context, shared.GuildID) error {
	c.entries = nil
	return nil
}

type fakeEvalRepo struct {
	pairs []*evaluation.Pair
}

func (r *fakeEvalRepo) Create(_ context.Context, p *evaluation.Pair) error {
	r.pairs = append(r.pairs, p)
	return nil
}

func (r *fakeEvalRepo) CreateBatch(_ context.Context, pairs []*evaluation.Pair) error {
	r.pairs = append(r.pairs, pairs...)
	return nil
}

func (r *fakeEvalRepo) ListByDay(_ context.Context, _ shared.GuildID, day shared.Day) ([]*evaluation.Pair, error) {
	out := make([]*evaluation.Pair, 0)
	for _, p := range r.pairs {
		if p.Day == day {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeEvalRepo) MaxDay(context.Context, shared.GuildID) (shared.Day, error) {
	max := shared.Day(0)
	for _, p := range r.pairs {
		if p.Day > max {
			max = p.Day
		}
	}
	return max, nil
}

func (r *fakeEvalRepo) DeleteByDay(_ context.Context, _ shared.GuildID, day shared.Day) error {
	kept := r.pairs[:0]
	for _, p := range r.pairs {
		if p.Day != day {
			kept = append(kept, p)
		}
	}
	r.pairs = kept
	return nil
}

type fakeRoster struct {
	channels map[string][]int64
	students map[int64]bool
}

func (r *fakeRoster) VoiceChannelMembers(_ context.Context, _ shared.GuildID, channelName string) ([]int64, error) {
	members, ok := r.channels[channelName]
	if !ok {
		return nil, shared.ErrChannelNotFound
	}
	return members, nil
}

func (r *fakeRoster) IsStudent(_ context.Context, _ shared.GuildID, memberID int64) (bool, error) {
	return r.students[memberID], nil
}

func mustStudent(id int64, name, nickname string, level, xp int) *student.Student {
	st, err := student.NewStudent(student.NewStudentParams{
		ID:       id,
		GuildID:  10,
		Name:     name,
		Nickname: nickname,
		Level:    level,
		XP:       xp,
	})
	if err != nil {
		panic(err)
	}
	return st
}
