package mapper

import (
	"ai-synthesis-be/internal/dto"
	"ai-synthesis-be/internal/model"
	"ai-synthesis-be/pkg/ai/synthesis"
	"ai-synthesis-be/pkg/events"
)

type SynthesisMapper struct{}

func NewSynthesisMapper() *SynthesisMapper {
	return &SynthesisMapper{}
}

func (m *SynthesisMapper) ToRequest(req *dto.SynthesizeRequest) synthesis.Request {
	return synthesis.Request{
		Text:       req.Text,
		AuxSignals: req.AuxSignals,
	}
}

func (m *SynthesisMapper) ToResponse(resp *synthesis.SynthesizedResponse) *dto.SynthesisResponse {
	if resp == nil {
		return nil
	}

	weights := make(map[string]float64, len(resp.Weights))
	for ch, w := range resp.Weights {
		weights[string(ch)] = w
	}

	channels := make([]dto.ChannelResultDTO, 0, len(resp.Results))
	for _, res := range resp.Results {
		channels = append(channels, dto.ChannelResultDTO{
			Channel:      string(res.Channel),
			Label:        res.Channel.Label(),
			Weight:       resp.Weights[res.Channel],
			IsFallback:   res.IsFallback,
			Quality:      res.Quality,
			ErrorKind:    res.ErrorKind,
			ErrorMessage: res.ErrorMessage,
			LatencyMs:    res.LatencyMs,
		})
	}

	return &dto.SynthesisResponse{
		SynthesisId:          resp.SynthesisID,
		Content:              resp.Content,
		Category:             string(resp.Category),
		ContributingChannels: channelNames(resp.ContributingChannels),
		Weights:              weights,
		QualityMetrics:       m.toMetrics(resp.QualityMetrics),
		IsFallback:           resp.IsFallback,
		Channels:             channels,
		CreatedAt:            resp.CreatedAt,
	}
}

func (m *SynthesisMapper) ToEventMessage(data events.SynthesisCompleted) dto.SynthesisEventMessage {
	return dto.SynthesisEventMessage{
		Type: "synthesis_completed",
		Data: data,
	}
}

func (m *SynthesisMapper) ToRecord(data events.SynthesisCompleted) *model.SynthesisRecord {
	return &model.SynthesisRecord{
		SynthesisId:      data.SynthesisID,
		Category:         data.Category,
		IsFallback:       data.IsFallback,
		FailedChannels:   data.FailedChannels,
		SynthesisQuality: data.SynthesisQuality,
		Coherence:        data.Coherence,
		Harmony:          data.Harmony,
		ElapsedMs:        data.ElapsedMs,
	}
}

func (m *SynthesisMapper) ToStatsResponse(s *model.SynthesisStats) *dto.SynthesisStatsResponse {
	res := &dto.SynthesisStatsResponse{
		Total:           s.Total,
		Fallbacks:       s.Fallbacks,
		ByCategory:      s.ByCategory,
		ChannelFailures: s.ChannelFailures,
	}
	if res.ByCategory == nil {
		res.ByCategory = map[string]int64{}
	}
	if res.ChannelFailures == nil {
		res.ChannelFailures = map[string]int64{}
	}
	if s.Total > 0 {
		n := float64(s.Total)
		res.FallbackRate = float64(s.Fallbacks) / n
		res.MeanQuality = s.QualitySum / n
		res.MeanCoherence = s.CoherenceSum / n
		res.MeanHarmony = s.HarmonySum / n
		res.MeanLatencyMillis = float64(s.LatencySumMs) / n
	}
	return res
}

func (m *SynthesisMapper) toMetrics(q synthesis.QualityMetrics) dto.QualityMetricsDTO {
	return dto.QualityMetricsDTO{
		SynthesisQuality: q.SynthesisQuality,
		Coherence:        q.Coherence,
		Harmony:          q.Harmony,
	}
}

func channelNames(chs []synthesis.Channel) []string {
	out := make([]string, len(chs))
	for i, ch := range chs {
		out[i] = string(ch)
	}
	return out
}
