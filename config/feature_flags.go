package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages runtime feature toggles.
// Supports gradual per-member rollout and per-member overrides so new
// behavior can be trialed on part of a cohort before everyone sees it.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Override rules (for testing/debugging)
	memberOverrides map[int64]map[string]bool // memberID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Members are assigned based on hash of their ID
	RolloutPercent int
}

// Predefined feature flag names.
const (
	// === Leaderboard Features ===
	FeatureLeaderboardCache = "leaderboard.cache" // Redis-backed ranking cache

	// === Award Features ===
	FeatureAwardLock           = "awards.distributed_lock"  // Cross-process award lock
	FeatureLevelUpAnnounce     = "awards.level_up_announce" // Announce level-ups in chat
	FeatureAwardDirectoryCheck = "awards.directory_check"   // Verify student role before award

	// === Interface Features ===
	FeatureCommandListener = "interface.command_listener" // Chat command listener
	FeatureHTTPAPI         = "interface.http_api"         // REST read API
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:        make(map[string]*Feature),
		memberOverrides: make(map[int64]map[string]bool),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureLeaderboardCache] = &Feature{
		Name:           FeatureLeaderboardCache,
		Description:    "Cache ranked leaderboards in Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureAwardLock] = &Feature{
		Name:           FeatureAwardLock,
		Description:    "Serialize XP awards across processes with a Redis lock",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLevelUpAnnounce] = &Feature{
		Name:           FeatureLevelUpAnnounce,
		Description:    "Announce level-ups in the announcements channel",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureAwardDirectoryCheck] = &Feature{
		Name:           FeatureAwardDirectoryCheck,
		Description:    "Require the student role on the award target",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCommandListener] = &Feature{
		Name:           FeatureCommandListener,
		Description:    "Long-polling chat command listener",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureHTTPAPI] = &Feature{
		Name:           FeatureHTTPAPI,
		Description:    "HTTP read API and ops endpoints",
		Enabled:        true,
		RolloutPercent: 100,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_AWARDS_DISTRIBUTED_LOCK=false
// Example: FEATURE_AWARDS_LEVEL_UP_ANNOUNCE=50 (50% rollout)
// Per-member overrides: FEATURE_<NAME>_MEMBERS=123:true,456:false
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
			} else if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				// Percentage rollout
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}

		ff.loadMemberOverrides(name, os.Getenv(envKey+"_MEMBERS"))
	}
}

// loadMemberOverrides parses a "memberID:bool" comma list. Malformed
// entries are skipped.
func (ff *FeatureFlags) loadMemberOverrides(featureName, val string) {
	if val == "" {
		return
	}

	for _, entry := range strings.Split(val, ",") {
		id, flag, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok {
			continue
		}
		memberID, err := strconv.ParseInt(id, 10, 64)
		if err != nil || memberID == 0 {
			continue
		}
		enabled, err := strconv.ParseBool(flag)
		if err != nil {
			continue
		}
		ff.SetMemberOverride(memberID, featureName, enabled)
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "awards.distributed_lock" -> "FEATURE_AWARDS_DISTRIBUTED_LOCK"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled globally.
func (ff *FeatureFlags) IsEnabled(featureName string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	return feature.Enabled && feature.RolloutPercent > 0
}

// IsEnabledFor checks if a feature is enabled for a specific member,
// honoring overrides and the rollout percentage.
func (ff *FeatureFlags) IsEnabledFor(featureName string, memberID int64) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check member overrides first
	if memberID != 0 {
		if overrides, ok := ff.memberOverrides[memberID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok || !feature.Enabled {
		return false
	}

	if feature.RolloutPercent >= 100 {
		return true
	}
	if memberID == 0 {
		return feature.RolloutPercent > 0
	}

	return isInRollout(memberID, featureName, feature.RolloutPercent)
}

// isInRollout determines if a member is in the rollout percentage.
// Uses consistent hashing so members stay in their bucket.
func isInRollout(memberID int64, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(strconv.FormatInt(memberID, 10)))

	// Map to 0-99 range
	bucket := int(h.Sum32() % 100)

	return bucket < percent
}

// SetMemberOverride sets a feature override for a specific member.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetMemberOverride(memberID int64, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.memberOverrides[memberID]; !ok {
		ff.memberOverrides[memberID] = make(map[string]bool)
	}
	ff.memberOverrides[memberID][featureName] = enabled
}

// ClearMemberOverrides removes all overrides for a member.
func (ff *FeatureFlags) ClearMemberOverrides(memberID int64) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.memberOverrides, memberID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		// Return a copy
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
