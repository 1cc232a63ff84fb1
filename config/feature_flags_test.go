package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlags_DefaultsAllEnabled(t *testing.T) {
	ff := LoadFeatureFlags()

	for _, name := range []string{
		FeatureLeaderboardCache,
		FeatureAwardLock,
		FeatureLevelUpAnnounce,
		FeatureAwardDirectoryCheck,
		FeatureCommandListener,
		FeatureHTTPAPI,
	} {
		assert.True(t, ff.IsEnabled(name), name)
	}

	assert.False(t, ff.IsEnabled("no.such.feature"))
}

func TestFeatureFlags_EnvBooleanOverride(t *testing.T) {
	t.Setenv("FEATURE_AWARDS_DIRECTORY_CHECK", "false")

	ff := LoadFeatureFlags()
	assert.False(t, ff.IsEnabled(FeatureAwardDirectoryCheck))
	assert.True(t, ff.IsEnabled(FeatureAwardLock))
}

func TestFeatureFlags_EnvPercentRollout(t *testing.T) {
	t.Setenv("FEATURE_AWARDS_LEVEL_UP_ANNOUNCE", "50")

	ff := LoadFeatureFlags()

	// Globally still on, but individual members land in buckets.
	assert.True(t, ff.IsEnabled(FeatureLevelUpAnnounce))

	inRollout := 0
	for id := int64(1); id <= 200; id++ {
		if ff.IsEnabledFor(FeatureLevelUpAnnounce, id) {
			inRollout++
		}
	}
	assert.Greater(t, inRollout, 0)
	assert.Less(t, inRollout, 200)

	// Bucketing is stable for a given member.
	first := ff.IsEnabledFor(FeatureLevelUpAnnounce, 42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ff.IsEnabledFor(FeatureLevelUpAnnounce, 42))
	}
}

func TestFeatureFlags_MemberOverridesFromEnv(t *testing.T) {
	t.Setenv("FEATURE_AWARDS_LEVEL_UP_ANNOUNCE", "0")
	t.Setenv("FEATURE_AWARDS_LEVEL_UP_ANNOUNCE_MEMBERS", "101:true, 202:false, junk, 0:true")

	ff := LoadFeatureFlags()

	// Member override wins over the disabled rollout.
	assert.True(t, ff.IsEnabledFor(FeatureLevelUpAnnounce, 101))
	assert.False(t, ff.IsEnabledFor(FeatureLevelUpAnnounce, 202))
	assert.False(t, ff.IsEnabledFor(FeatureLevelUpAnnounce, 303))
}

func TestFeatureFlags_SetAndClearMemberOverride(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.DisableFeature(FeatureLevelUpAnnounce))

	ff.SetMemberOverride(7, FeatureLevelUpAnnounce, true)
	assert.True(t, ff.IsEnabledFor(FeatureLevelUpAnnounce, 7))

	ff.ClearMemberOverrides(7)
	assert.False(t, ff.IsEnabledFor(FeatureLevelUpAnnounce, 7))
}

func TestFeatureFlags_SetRolloutPercentValidation(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.ErrorIs(t, ff.SetRolloutPercent(FeatureHTTPAPI, 150), ErrInvalidRolloutPercent)
	assert.ErrorIs(t, ff.SetRolloutPercent("no.such.feature", 10), ErrFeatureNotFound)

	require.NoError(t, ff.SetRolloutPercent(FeatureHTTPAPI, 0))
	assert.False(t, ff.IsEnabled(FeatureHTTPAPI))
}
