package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4t-hub/botcamp-hub/internal/domain/evaluation"
	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

func mustPair(day, code int, coderID, testerID int64) *evaluation.Pair {
	p, err := evaluation.NewPair(evaluation.NewPairParams{
		GuildID:  10,
		Day:      day,
		Code:     code,
		CoderID:  coderID,
		TesterID: testerID,
	})
	if err != nil {
		panic(err)
	}
	return p
}

func TestGetDailyPairings_ExplicitDay(t *testing.T) {
	evals := &fakeEvalRepo{pairs: []*evaluation.Pair{
		mustPair(2, 7, 1, 2),
		mustPair(2, 3, 2, 1),
		mustPair(1, 1, 1, 2),
	}}
	students := newFakeStudentRepo(
		mustStudent(1, "anna", "ann", 1, 0),
		mustStudent(2, "boris", "bob", 1, 0),
	)
	h := NewGetDailyPairingsHandler(evals, students)

	res, err := h.Handle(context.Background(), GetDailyPairingsQuery{GuildID: 10, Day: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, res.RequestedDay)
	assert.Equal(t, 2, res.EffectiveDay)
	require.Len(t, res.Pairings, 2)

	// Storage order is preserved, codes are zero padded.
	assert.Equal(t, "0007", res.Pairings[0].Code)
	assert.Equal(t, "bob", res.Pairings[0].TesterName)
	assert.Equal(t, "ann", res.Pairings[0].CoderName)
	assert.Equal(t, "0003", res.Pairings[1].Code)
	assert.Equal(t, "ann", res.Pairings[1].TesterName)
	assert.Equal(t, "bob", res.Pairings[1].CoderName)
}

func TestGetDailyPairings_ZeroResolvesToLatestDay(t *testing.T) {
	evals := &fakeEvalRepo{pairs: []*evaluation.Pair{
		mustPair(1, 1, 1, 2),
		mustPair(3, 5, 2, 1),
	}}
	students := newFakeStudentRepo(
		mustStudent(1, "anna", "ann", 1, 0),
		mustStudent(2, "boris", "bob", 1, 0),
	)
	h := NewGetDailyPairingsHandler(evals, students)

	res, err := h.Handle(context.Background(), GetDailyPairingsQuery{GuildID: 10, Day: 0})
	require.NoError(t, err)

	assert.Equal(t, 0, res.RequestedDay)
	assert.Equal(t, 3, res.EffectiveDay)
	require.Len(t, res.Pairings, 1)
	assert.Equal(t, "0005", res.Pairings[0].Code)
}

func TestGetDailyPairings_NoRecordsAtAll(t *testing.T) {
	h := NewGetDailyPairingsHandler(&fakeEvalRepo{}, newFakeStudentRepo())

	res, err := h.Handle(context.Background(), GetDailyPairingsQuery{GuildID: 10, Day: 0})
	require.NoError(t, err)

	assert.Equal(t, 0, res.EffectiveDay)
	assert.Empty(t, res.Pairings)
}

func TestGetDailyPairings_EmptyExplicitDay(t *testing.T) {
	evals := &fakeEvalRepo{pairs: []*evaluation.Pair{mustPair(1, 1, 1, 2)}}
	students := newFakeStudentRepo(
		mustStudent(1, "anna", "ann", 1, 0),
		mustStudent(2, "boris", "bob", 1, 0),
	)
	h := NewGetDailyPairingsHandler(evals, students)

	res, err := h.Handle(context.Background(), GetDailyPairingsQuery{GuildID: 10, Day: 9})
	require.NoError(t, err)

	assert.Equal(t, 9, res.EffectiveDay)
	assert.Empty(t, res.Pairings)
}

func TestGetDailyPairings_RealNameMode(t *testing.T) {
	evals := &fakeEvalRepo{pairs: []*evaluation.Pair{mustPair(1, 1, 1, 2)}}
	students := newFakeStudentRepo(
		mustStudent(1, "anna", "ann", 1, 0),
		mustStudent(2, "boris", "bob", 1, 0),
	)
	h := NewGetDailyPairingsHandler(evals, students)

	res, err := h.Handle(context.Background(), GetDailyPairingsQuery{GuildID: 10, Day: 1, UseRealName: true})
	require.NoError(t, err)

	require.Len(t, res.Pairings, 1)
	assert.Equal(t, "boris", res.Pairings[0].TesterName)
	assert.Equal(t, "anna", res.Pairings[0].CoderName)
}

func TestGetDailyPairings_OrphanedPair(t *testing.T) {
	evals := &fakeEvalRepo{pairs: []*evaluation.Pair{mustPair(1, 1, 1, 99)}}
	students := newFakeStudentRepo(mustStudent(1, "anna", "ann", 1, 0))
	h := NewGetDailyPairingsHandler(evals, students)

	_, err := h.Handle(context.Background(), GetDailyPairingsQuery{GuildID: 10, Day: 1})
	assert.ErrorIs(t, err, shared.ErrInternalConsistency)
}

func TestGetDailyPairings_NegativeDayRejected(t *testing.T) {
	h := NewGetDailyPairingsHandler(&fakeEvalRepo{}, newFakeStudentRepo())

	_, err := h.Handle(context.Background(), GetDailyPairingsQuery{GuildID: 10, Day: -1})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
