package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

func TestGetHeadcount_CountsOnlyStudents(t *testing.T) {
	roster := &fakeRoster{
		channels: map[string][]int64{"study-hall": {1, 2, 3, 4}},
		students: map[int64]bool{1: true, 3: true},
	}
	h := NewGetHeadcountHandler(roster)

	res, err := h.Handle(context.Background(), GetHeadcountQuery{GuildID: 10, ChannelName: "study-hall"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "study-hall", res.ChannelName)
}

func TestGetHeadcount_EmptyChannel(t *testing.T) {
	roster := &fakeRoster{
		channels: map[string][]int64{"study-hall": {}},
		students: map[int64]bool{},
	}
	h := NewGetHeadcountHandler(roster)

	res, err := h.Handle(context.Background(), GetHeadcountQuery{GuildID: 10, ChannelName: "study-hall"})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
}

func TestGetHeadcount_UnknownChannel(t *testing.T) {
	roster := &fakeRoster{channels: map[string][]int64{}}
	h := NewGetHeadcountHandler(roster)

	_, err := h.Handle(context.Background(), GetHeadcountQuery{GuildID: 10, ChannelName: "nope"})
	assert.ErrorIs(t, err, shared.ErrChannelNotFound)
}

func TestGetHeadcount_Validation(t *testing.T) {
	h := NewGetHeadcountHandler(&fakeRoster{})

	_, err := h.Handle(context.Background(), GetHeadcountQuery{GuildID: 0, ChannelName: "x"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = h.Handle(context.Background(), GetHeadcountQuery{GuildID: 10})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
