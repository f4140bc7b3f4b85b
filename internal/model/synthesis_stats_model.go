package model

// SynthesisStats holds the running counters kept in Redis.
// Sums are stored so means can be derived without read-modify-write.
type SynthesisStats struct {
	Total           int64
	Fallbacks       int64
	QualitySum      float64
	CoherenceSum    float64
	HarmonySum      float64
	LatencySumMs    int64
	ByCategory      map[string]int64
	ChannelFailures map[string]int64
}

// SynthesisRecord is one completed synthesis as recorded by the telemetry consumer
type SynthesisRecord struct {
	SynthesisId      string
	Category         string
	IsFallback       bool
	FailedChannels   []string
	SynthesisQuality float64
	Coherence        float64
	Harmony          float64
	ElapsedMs        int64
}
