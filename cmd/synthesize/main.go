package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"ai-synthesis-be/internal/dto"
	"ai-synthesis-be/internal/pkg/serverutils"

	"github.com/fatih/color"
)

// signalFlags collects repeated -signal name=value pairs
type signalFlags map[string]float64

func (s signalFlags) String() string {
	parts := make([]string, 0, len(s))
	for k, v := range s {
		parts = append(parts, fmt.Sprintf("%s=%g", k, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (s signalFlags) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("expected name=value, got %q", raw)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("signal %s: %w", name, err)
	}
	s[strings.TrimSpace(name)] = f
	return nil
}

func main() {
	signals := signalFlags{}
	baseURL := flag.String("url", "http://localhost:3000/api", "API base URL")
	text := flag.String("text", "", "text to synthesize a response for")
	token := flag.String("token", os.Getenv("SYNTHESIS_TOKEN"), "bearer token when auth is enabled")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP timeout")
	flag.Var(signals, "signal", "auxiliary signal name=value in [0,1], repeatable")
	flag.Parse()

	if strings.TrimSpace(*text) == "" {
		color.Red("-text is required")
		flag.Usage()
		os.Exit(2)
	}

	color.Cyan("🚀 Requesting synthesis from %s", *baseURL)

	res, err := synthesize(*baseURL, *token, *timeout, dto.SynthesizeRequest{Text: *text, AuxSignals: signals})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}

	printResponse(res)
}

func synthesize(baseURL, token string, timeout time.Duration, req dto.SynthesizeRequest) (*dto.SynthesisResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, strings.TrimRight(baseURL, "/")+"/synthesis/v1", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var envelope serverutils.BaseResponse[*dto.SynthesisResponse]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("status %s: %s", resp.Status, string(body))
	}
	if resp.StatusCode != http.StatusOK || envelope.Data == nil {
		return nil, fmt.Errorf("status %s: %s", resp.Status, envelope.Message)
	}
	return envelope.Data, nil
}

func printResponse(res *dto.SynthesisResponse) {
	if res.IsFallback {
		color.Red("\n⚠️  Fallback response (no channel produced content)")
	} else {
		color.Green("\n✅ Synthesis %s", res.SynthesisId)
	}

	color.Yellow("\nCategory: %s", res.Category)
	for _, ch := range res.Channels {
		line := fmt.Sprintf("  %-13s weight=%.2f latency=%dms", ch.Channel, ch.Weight, ch.LatencyMs)
		if ch.IsFallback {
			color.Red("%s failed (%s)", line, ch.ErrorKind)
			continue
		}
		if ch.Quality != nil {
			line += fmt.Sprintf(" quality=%.2f", *ch.Quality)
		}
		color.Green("%s", line)
	}

	color.Cyan("\n%s\n", res.Content)

	color.Yellow("Quality: synthesis=%.2f coherence=%.2f harmony=%.2f",
		res.QualityMetrics.SynthesisQuality,
		res.QualityMetrics.Coherence,
		res.QualityMetrics.Harmony,
	)
}
