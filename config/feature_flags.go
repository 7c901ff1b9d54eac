package config

import (
	"hash/fnv"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles with gradual per-user rollout.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Percentage of users that see the feature (0-100).
	RolloutPercent int
}

// Feature names.
const (
	FeatureLeaderboardCache   = "leaderboard.cache"      // Serve and update rankings through Redis
	FeatureSubmitRateLimit    = "scoring.rate_limit"     // Throttle submissions per user
	FeatureLeaderboardRebuild = "scheduler.leaderboard"  // Periodic cache rebuild from the store
	FeatureGroupStats         = "groups.stats"           // Compute group statistics on view
	FeatureRatingHistory      = "profile.rating_history" // Reconstruct rating history on profile
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := NewFeatureFlags()
	ff.loadFromEnvironment()
	return ff
}

// NewFeatureFlags returns the defaults without reading the environment.
func NewFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{features: make(map[string]*Feature)}
	ff.initializeDefaults()
	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	for _, f := range []Feature{
		{Name: FeatureLeaderboardCache, Description: "Keep per-game rankings in Redis sorted sets", Enabled: true, RolloutPercent: 100},
		{Name: FeatureSubmitRateLimit, Description: "Limit score submissions per user and window", Enabled: true, RolloutPercent: 100},
		{Name: FeatureLeaderboardRebuild, Description: "Rebuild cached rankings on a schedule", Enabled: true, RolloutPercent: 100},
		{Name: FeatureGroupStats, Description: "Show group statistics", Enabled: true, RolloutPercent: 100},
		{Name: FeatureRatingHistory, Description: "Show rating history on profiles", Enabled: true, RolloutPercent: 100},
	} {
		f := f
		ff.features[f.Name] = &f
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_LEADERBOARD_CACHE=false
func (ff *FeatureFlags) loadFromEnvironment() {
	for _, name := range ff.names() {
		val := os.Getenv(featureNameToEnvKey(name))
		if val == "" {
			continue
		}
		if b, err := strconv.ParseBool(val); err == nil {
			percent := 0
			if b {
				percent = 100
			}
			_ = ff.SetRolloutPercent(name, percent)
			continue
		}
		if p, err := strconv.Atoi(val); err == nil {
			_ = ff.SetRolloutPercent(name, p)
		}
	}
}

func (ff *FeatureFlags) names() []string {
	ff.mu.RLock()
	defer ff.mu.RUnlock()
	out := make([]string, 0, len(ff.features))
	for name := range ff.features {
		out = append(out, name)
	}
	return out
}

// featureNameToEnvKey converts feature name to environment variable key.
// "leaderboard.cache" -> "FEATURE_LEADERBOARD_CACHE"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// Enabled reports whether a feature is on globally, ignoring partial rollouts.
func (ff *FeatureFlags) Enabled(featureName string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()
	f, ok := ff.features[featureName]
	return ok && f.Enabled && f.RolloutPercent > 0
}

// IsEnabledFor checks if a feature is enabled for one user. An empty userID
// gets the global answer.
func (ff *FeatureFlags) IsEnabledFor(featureName, userID string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	if !ok || !feature.Enabled {
		return false
	}
	if feature.RolloutPercent < 100 && userID != "" {
		return inRollout(userID, featureName, feature.RolloutPercent)
	}
	return feature.RolloutPercent > 0
}

// inRollout hashes user and feature so a user stays in its bucket.
func inRollout(userID, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(userID))
	return int(h.Sum32()%100) < percent
}

// SetRolloutPercent updates the rollout percentage for a feature.
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

// All returns a copy of every feature, sorted by name.
func (ff *FeatureFlags) All() []Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	out := make([]Feature, 0, len(ff.features))
	for _, f := range ff.features {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
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
