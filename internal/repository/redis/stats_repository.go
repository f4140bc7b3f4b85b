package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ai-synthesis-be/internal/model"
	"ai-synthesis-be/internal/repository/contract"

	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultStatsKey = "synthesis:stats"

	fieldTotal        = "total"
	fieldFallbacks    = "fallbacks"
	fieldQualitySum   = "quality_sum"
	fieldCoherenceSum = "coherence_sum"
	fieldHarmonySum   = "harmony_sum"
	fieldLatencySum   = "latency_sum_ms"

	prefixCategory       = "category:"
	prefixChannelFailure = "channel_failure:"
)

// ErrStatsUnavailable is returned when no Redis client was configured
var ErrStatsUnavailable = errors.New("stats store unavailable")

type StatsRepository struct {
	rdb *goredis.Client
	key string
}

var _ contract.StatsRepository = &StatsRepository{}

func NewStatsRepository(rdb *goredis.Client, key string) *StatsRepository {
	if key == "" {
		key = DefaultStatsKey
	}
	return &StatsRepository{rdb: rdb, key: key}
}

// Record increments all counters for one synthesis in a single transaction
func (r *StatsRepository) Record(ctx context.Context, rec *model.SynthesisRecord) error {
	if r.rdb == nil {
		return ErrStatsUnavailable
	}

	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HIncrBy(ctx, r.key, fieldTotal, 1)
		if rec.IsFallback {
			pipe.HIncrBy(ctx, r.key, fieldFallbacks, 1)
		}
		pipe.HIncrByFloat(ctx, r.key, fieldQualitySum, rec.SynthesisQuality)
		pipe.HIncrByFloat(ctx, r.key, fieldCoherenceSum, rec.Coherence)
		pipe.HIncrByFloat(ctx, r.key, fieldHarmonySum, rec.Harmony)
		pipe.HIncrBy(ctx, r.key, fieldLatencySum, rec.ElapsedMs)
		pipe.HIncrBy(ctx, r.key, prefixCategory+rec.Category, 1)
		for _, ch := range rec.FailedChannels {
			pipe.HIncrBy(ctx, r.key, prefixChannelFailure+ch, 1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record synthesis stats: %w", err)
	}
	return nil
}

func (r *StatsRepository) Get(ctx context.Context) (*model.SynthesisStats, error) {
	if r.rdb == nil {
		return nil, ErrStatsUnavailable
	}

	fields, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("read synthesis stats: %w", err)
	}
	return parseStats(fields), nil
}

func parseStats(fields map[string]string) *model.SynthesisStats {
	stats := &model.SynthesisStats{
		ByCategory:      map[string]int64{},
		ChannelFailures: map[string]int64{},
	}

	for k, v := range fields {
		switch {
		case k == fieldTotal:
			stats.Total = parseInt(v)
		case k == fieldFallbacks:
			stats.Fallbacks = parseInt(v)
		case k == fieldQualitySum:
			stats.QualitySum = parseFloat(v)
		case k == fieldCoherenceSum:
			stats.CoherenceSum = parseFloat(v)
		case k == fieldHarmonySum:
			stats.HarmonySum = parseFloat(v)
		case k == fieldLatencySum:
			stats.LatencySumMs = parseInt(v)
		case strings.HasPrefix(k, prefixCategory):
			stats.ByCategory[strings.TrimPrefix(k, prefixCategory)] = parseInt(v)
		case strings.HasPrefix(k, prefixChannelFailure):
			stats.ChannelFailures[strings.TrimPrefix(k, prefixChannelFailure)] = parseInt(v)
		}
	}
	return stats
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
