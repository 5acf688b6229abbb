package recommend

import (
	"context"
	"fmt"
	"hash/fnv"

	"aiImageStudio/pkg/logger"

	"github.com/goccy/go-json"
)

// configSource resolves the effective Config for one request.
type configSource struct {
	cfgRepo     ConfigRepository
	variantRepo VariantRepository
	defaultCfg  Config
}

// loadConfigForUser picks the user's variant and returns its config.
// Recommend, Explain and Record all resolve config through here, so one
// user sees the same arm on every path.
func (s configSource) loadConfigForUser(ctx context.Context, userID uint) (Config, int) {
	// 1) base row over the defaults
	base := s.loadConfig(ctx, BaseVariant, s.defaultCfg)

	// 2) stable variant for (user, name)
	variant := s.assignVariant(ctx, userID, base)
	if variant == BaseVariant {
		return base, variant
	}

	// 3) variant row over the base
	return s.loadConfig(ctx, variant, base), variant
}

// loadConfig reads the stored override for one variant and merges it over
// fallback, returning fallback on any error.
func (s configSource) loadConfig(ctx context.Context, variant int, fallback Config) Config {
	if s.cfgRepo == nil {
		return fallback
	}

	row, ok, err := s.cfgRepo.GetConfig(ctx, DefaultConfigName, variant)
	if err != nil {
		logger.Warn("recommend_config_load_failed",
			"trace_id", TraceIDFromContext(ctx),
			"variant", variant,
			"error", err,
		)
		return fallback
	}
	if !ok || len(row.Settings) == 0 {
		return fallback
	}

	cfg, err := MergeConfig(fallback, row.Settings)
	if err != nil {
		logger.Warn("recommend_config_invalid",
			"trace_id", TraceIDFromContext(ctx),
			"variant", variant,
			"error", err,
		)
		return fallback
	}

	return cfg
}

// assignVariant returns the user's pinned variant when one is stored,
// otherwise hashes (user, config name) into [0, NumVariants).
func (s configSource) assignVariant(ctx context.Context, userID uint, cfg Config) int {
	if cfg.NumVariants <= 1 {
		return BaseVariant
	}

	if s.variantRepo != nil {
		v, ok, err := s.variantRepo.GetVariant(ctx, userID)
		switch {
		case err != nil:
			logger.Warn("recommend_variant_load_failed",
				"trace_id", TraceIDFromContext(ctx),
				"user_id", userID,
				"error", err,
			)
		case ok && v >= 0:
			return v % cfg.NumVariants
		}
	}

	return hashVariant(userID, DefaultConfigName, cfg.NumVariants)
}

func hashVariant(userID uint, name string, numVariants int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", userID, name)))
	return int(h.Sum32() % uint32(numVariants))
}

// MergeConfig applies a partial JSON override on top of base. Fields absent
// from raw keep their base value; a nested map row present in raw replaces
// the base row.
func MergeConfig(base Config, raw []byte) (Config, error) {
	cfg := base.clone()
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config override: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config override: %w", err)
	}
	return cfg, nil
}
