package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/domain/student"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type memStudentRepo struct {
	students map[shared.StudentID]*student.Student
	getErrs  []error // consumed one per GetByIDForUpdate call
	updates  int
}

func newMemStudentRepo(students ...*student.Student) *memStudentRepo {
	repo := &memStudentRepo{students: make(map[shared.StudentID]*student.Student)}
	for _, st := range students {
		repo.students[st.ID] = st
	}
	return repo
}

func (r *memStudentRepo) Create(_ context.Context, st *student.Student) error {
	r.students[st.ID] = st
	return nil
}

func (r *memStudentRepo) GetByID(_ context.Context, _ shared.GuildID, id shared.StudentID) (*student.Student, error) {
	st, ok := r.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return st, nil
}

func (r *memStudentRepo) GetByIDForUpdate(ctx context.Context, guildID shared.GuildID, id shared.StudentID) (*student.Student, error) {
	if len(r.getErrs) > 0 {
		err := r.getErrs[0]
		r.getErrs = r.getErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, guildID, id)
}

func (r *memStudentRepo) Update(_ context.Context, st *student.Student) error {
	if _, ok := r.students[st.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	r.students[st.ID] = st
	r.updates++
	return nil
}

func (r *memStudentRepo) Delete(_ context.Context, _ shared.GuildID, id shared.StudentID) error {
	delete(r.students, id)
	return nil
}

func (r *memStudentRepo) GetByIDs(_ context.Context, _ shared.GuildID, ids []shared.StudentID) ([]*student.Student, error) {
	out := make([]*student.Student, 0, len(ids))
	for _, id := range ids {
		if st, ok := r.students[id]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r *memStudentRepo) ListRanked(context.Context, shared.GuildID, int, bool) ([]*student.Student, error) {
	return nil, nil
}

func (r *memStudentRepo) Count(context.Context, shared.GuildID) (int, error) {
	return len(r.students), nil
}

func (r *memStudentRepo) Exists(_ context.Context, _ shared.GuildID, id shared.StudentID) (bool, error) {
	_, ok := r.students[id]
	return ok, nil
}

type memUow struct {
	repo      *memStudentRepo
	commits   *int
	rollbacks *int
}

func (u *memUow) Students() student.Repository { return u.repo }
func (u *memUow) Commit(context.Context) error {
	*u.commits++
	return nil
}
func (u *memUow) Rollback(context.Context) error {
	*u.rollbacks++
	return nil
}

type memUowFactory struct {
	repo      *memStudentRepo
	commits   int
	rollbacks int
}

func (f *memUowFactory) Begin(context.Context) (student.UnitOfWork, error) {
	return &memUow{repo: f.repo, commits: &f.commits, rollbacks: &f.rollbacks}, nil
}

type fakeDirectory struct {
	students map[shared.StudentID]bool
}

func (d *fakeDirectory) IsStudent(_ context.Context, _ shared.GuildID, memberID shared.StudentID) (bool, error) {
	return d.students[memberID], nil
}

type fakeLock struct {
	busy     bool
	acquires int
	releases int
}

func (l *fakeLock) Acquire(context.Context, shared.GuildID, shared.StudentID, time.Duration) (func(context.Context) error, bool, error) {
	if l.busy {
		return nil, false, nil
	}
	l.acquires++
	return func(context.Context) error {
		l.releases++
		return nil
	}, true, nil
}

type fakeCache struct {
	invalidations int
}

func (c *fakeCache) GetRanking(context.Context, shared.GuildID, int, bool) ([]student.RankedEntry, error) {
	return nil, shared.ErrNotFound
}

func (c *fakeCache) SetRanking(context.Context, shared.GuildID, int, bool, []student.RankedEntry, time.Duration) error {
	return nil
}

func (c *fakeCache) InvalidateRanking(context.Context, shared.GuildID) error {
	c.invalidations++
	return nil
}

type capturingPublisher struct {
	events []shared.Event
}

func (p *capturingPublisher) Publish(ev shared.Event) error {
	p.events = append(p.events, ev)
	return nil
}

func mustStudent(id int64, level, xp int) *student.Student {
	st, err := student.NewStudent(student.NewStudentParams{
		ID:      id,
		GuildID: 10,
		Name:    "anna",
		Level:   level,
		XP:      xp,
	})
	if err != nil {
		panic(err)
	}
	return st
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestAwardXP_SimpleAward(t *testing.T) {
	repo := newMemStudentRepo(mustStudent(1, 0, 0))
	factory := &memUowFactory{repo: repo}
	lock := &fakeLock{}
	cache := &fakeCache{}
	pub := &capturingPublisher{}
	h := NewAwardXPHandler(factory, &fakeDirectory{students: map[shared.StudentID]bool{1: true}}, lock, cache, pub)

	res, err := h.Handle(context.Background(), AwardXPCommand{GuildID: 10, MemberID: 1, Amount: 10})
	require.NoError(t, err)

	assert.False(t, res.Skipped)
	assert.Equal(t, 0, res.Award.NewLevel)
	assert.Equal(t, 10, res.Award.NewXP)
	assert.Equal(t, 1, factory.commits)
	assert.Equal(t, 1, repo.updates)
	assert.Equal(t, 1, cache.invalidations)
	assert.Equal(t, 1, lock.releases)
}

func TestAwardXP_CascadeEmitsLevelUpEvents(t *testing.T) {
	repo := newMemStudentRepo(mustStudent(1, 0, 0))
	factory := &memUowFactory{repo: repo}
	pub := &capturingPublisher{}
	h := NewAwardXPHandler(factory, &fakeDirectory{students: map[shared.StudentID]bool{1: true}}, &fakeLock{}, nil, pub)

	// 500 XP from level 0 crosses thresholds 100, 155 and 220.
	res, err := h.Handle(context.Background(), AwardXPCommand{GuildID: 10, MemberID: 1, Amount: 500})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Award.NewLevel)
	assert.Equal(t, 25, res.Award.NewXP)
	assert.Equal(t, 3, res.Award.LevelsGained)

	var levelUps int
	for _, ev := range pub.events {
		if ev.EventType() == shared.EventLevelUp {
			levelUps++
		}
	}
	assert.Equal(t, 3, levelUps)

	st := repo.students[shared.StudentID(1)]
	assert.Equal(t, 3, st.Level.Int())
	assert.Equal(t, 25, st.XP.Int())
}

func TestAwardXP_NonStudentSkippedSilently(t *testing.T) {
	repo := newMemStudentRepo()
	factory := &memUowFactory{repo: repo}
	pub := &capturingPublisher{}
	h := NewAwardXPHandler(factory, &fakeDirectory{students: map[shared.StudentID]bool{}}, &fakeLock{}, nil, pub)

	res, err := h.Handle(context.Background(), AwardXPCommand{GuildID: 10, MemberID: 7, Amount: 10})
	require.NoError(t, err)

	assert.True(t, res.Skipped)
	assert.Zero(t, factory.commits)
	require.Len(t, pub.events, 1)
	assert.Equal(t, shared.EventAwardSkipped, pub.events[0].EventType())
}

func TestAwardXP_NilDirectoryTreatsEveryoneAsStudent(t *testing.T) {
	repo := newMemStudentRepo(mustStudent(1, 0, 0))
	factory := &memUowFactory{repo: repo}
	h := NewAwardXPHandler(factory, nil, &fakeLock{}, nil, nil)

	res, err := h.Handle(context.Background(), AwardXPCommand{GuildID: 10, MemberID: 1, Amount: 10})
	require.NoError(t, err)

	assert.False(t, res.Skipped)
	assert.Equal(t, 10, res.Award.NewXP)
	assert.Equal(t, 1, factory.commits)
}

func TestAwardXP_NegativeAmountKeepsLevel(t *testing.T) {
	repo := newMemStudentRepo(mustStudent(1, 3, 10))
	factory := &memUowFactory{repo: repo}
	h := NewAwardXPHandler(factory, &fakeDirectory{students: map[shared.StudentID]bool{1: true}}, &fakeLock{}, nil, nil)

	res, err := h.Handle(context.Background(), AwardXPCommand{GuildID: 10, MemberID: 1, Amount: -25})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Award.NewLevel)
	assert.Equal(t, -15, res.Award.NewXP)
}

func TestAwardXP_LockBusy(t *testing.T) {
	repo := newMemStudentRepo(mustStudent(1, 0, 0))
	factory := &memUowFactory{repo: repo}
	h := NewAwardXPHandler(factory, &fakeDirectory{students: map[shared.StudentID]bool{1: true}}, &fakeLock{busy: true}, nil, nil)

	_, err := h.Handle(context.Background(), AwardXPCommand{GuildID: 10, MemberID: 1, Amount: 10})
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)
	assert.Zero(t, factory.commits)
}

func TestAwardXP_RetriesTransientStoreFailure(t *testing.T) {
	repo := newMemStudentRepo(mustStudent(1, 0, 0))
	repo.getErrs = []error{shared.WrapError("persistence", "GetByIDForUpdate", shared.ErrStoreUnavailable, "connection reset", errors.New("reset"))}
	factory := &memUowFactory{repo: repo}
	h := NewAwardXPHandler(factory, &fakeDirectory{students: map[shared.StudentID]bool{1: true}}, &fakeLock{}, nil, nil)

	res, err := h.Handle(context.Background(), AwardXPCommand{GuildID: 10, MemberID: 1, Amount: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Award.NewXP)
	assert.Equal(t, 1, factory.commits)
}

func TestAwardXP_UnknownStudentRowFails(t *testing.T) {
	repo := newMemStudentRepo()
	factory := &memUowFactory{repo: repo}
	h := NewAwardXPHandler(factory, &fakeDirectory{students: map[shared.StudentID]bool{9: true}}, &fakeLock{}, nil, nil)

	_, err := h.Handle(context.Background(), AwardXPCommand{GuildID: 10, MemberID: 9, Amount: 10})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAwardXP_Validation(t *testing.T) {
	h := NewAwardXPHandler(&memUowFactory{repo: newMemStudentRepo()}, &fakeDirectory{}, &fakeLock{}, nil, nil)

	_, err := h.Handle(context.Background(), AwardXPCommand{GuildID: 0, MemberID: 1})
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = h.Handle(context.Background(), AwardXPCommand{GuildID: 10, MemberID: 0})
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}
