package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"ai-synthesis-be/internal/dto"
	"ai-synthesis-be/internal/pkg/serverutils"
)

// simulationCase is one prompt with the category the classifier should pick for it
type simulationCase struct {
	Text         string
	Signals      map[string]float64
	WantCategory string
}

var cases = []simulationCase{
	{Text: "I feel anxious and lonely since I moved to a new city", Signals: map[string]float64{"empathy": 0.9}, WantCategory: "emotional_query"},
	{Text: "What is the meaning and purpose of a conscious life?", WantCategory: "philosophical_query"},
	{Text: "Compare the evidence and explain how does caching measure up", Signals: map[string]float64{"reasoning": 0.85}, WantCategory: "analytical_query"},
	{Text: "Help me imagine a story and design a poem about the sea", WantCategory: "creative_query"},
	{Text: "Tell me something about Tuesday", WantCategory: "balanced"},
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api", "API base URL")
	token := flag.String("token", os.Getenv("SYNTHESIS_TOKEN"), "bearer token when auth is enabled")
	pause := flag.Duration("pause", time.Second, "delay between requests")
	flag.Parse()

	client := &http.Client{Timeout: 60 * time.Second}
	api := strings.TrimRight(*baseURL, "/")

	fmt.Println("=== Synthesis Simulation Client ===")
	fmt.Printf("Target: %s (%d cases)\n", api, len(cases))

	mismatches, fallbacks := 0, 0
	for i, tc := range cases {
		fmt.Printf("\n[%d] USER: %s\n", i+1, tc.Text)

		start := time.Now()
		res, err := synthesize(client, api, *token, tc)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		status := "ok"
		if res.Category != tc.WantCategory {
			status = fmt.Sprintf("category mismatch, want %s", tc.WantCategory)
			mismatches++
		}
		if res.IsFallback {
			fallbacks++
		}

		fmt.Printf("Category: %s (%s)\n", res.Category, status)
		fmt.Printf("Channels: %s | fallback=%v | quality=%.2f coherence=%.2f harmony=%.2f | %v\n",
			strings.Join(res.ContributingChannels, ","),
			res.IsFallback,
			res.QualityMetrics.SynthesisQuality,
			res.QualityMetrics.Coherence,
			res.QualityMetrics.Harmony,
			elapsed,
		)

		// lets the telemetry consumer catch up before the stats read below
		time.Sleep(*pause)
	}

	fmt.Printf("\n=== Summary: %d cases, %d category mismatches, %d fallbacks ===\n", len(cases), mismatches, fallbacks)

	stats, err := fetchStats(client, api, *token)
	if err != nil {
		log.Printf("Stats unavailable: %v", err)
		return
	}
	fmt.Printf("Server totals: %d syntheses, fallback rate %.2f, mean quality %.2f, mean latency %.0fms\n",
		stats.Total, stats.FallbackRate, stats.MeanQuality, stats.MeanLatencyMillis)
}

func synthesize(client *http.Client, api, token string, tc simulationCase) (*dto.SynthesisResponse, error) {
	payload, err := json.Marshal(dto.SynthesizeRequest{Text: tc.Text, AuxSignals: tc.Signals})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, api+"/synthesis/v1", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var envelope serverutils.BaseResponse[*dto.SynthesisResponse]
	if err := do(client, req, token, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func fetchStats(client *http.Client, api, token string) (*dto.SynthesisStatsResponse, error) {
	req, err := http.NewRequest(http.MethodGet, api+"/synthesis/v1/stats", nil)
	if err != nil {
		return nil, err
	}

	var envelope serverutils.BaseResponse[*dto.SynthesisStatsResponse]
	if err := do(client, req, token, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func do[T any](client *http.Client, req *http.Request, token string, out *serverutils.BaseResponse[T]) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
