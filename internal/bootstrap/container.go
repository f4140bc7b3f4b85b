package bootstrap

import (
	"context"
	"errors"
	"log"
	"time"

	"ai-synthesis-be/internal/config"
	"ai-synthesis-be/internal/constant"
	"ai-synthesis-be/internal/controller"
	"ai-synthesis-be/internal/dto"
	"ai-synthesis-be/internal/handler"
	"ai-synthesis-be/internal/pkg/logger"
	"ai-synthesis-be/internal/repository/contract"
	"ai-synthesis-be/internal/repository/memory"
	redisRepo "ai-synthesis-be/internal/repository/redis"
	"ai-synthesis-be/internal/service"
	"ai-synthesis-be/internal/websocket"
	"ai-synthesis-be/pkg/ai/channel"
	"ai-synthesis-be/pkg/ai/synthesis"
	"ai-synthesis-be/pkg/llm/factory"
	pktNats "ai-synthesis-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const telemetryTopic = "synthesis.completed"

type Container struct {
	SynthesisController   controller.ISynthesisController
	SynthesisEventHandler *handler.SynthesisEventHandler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub

	Logger logger.ILogger

	rdb      *redis.Client
	natsPub  *pktNats.Publisher
	channels map[synthesis.Channel]bool

	closers []func()
}

func NewContainer(cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(logger.Options{
		FilePath:   cfg.App.LogFilePath,
		Production: cfg.IsProduction(),
		Level:      cfg.App.LogLevel,
	})
	eventLogger := logger.NewIsolatedLogger(cfg.App.EventLogFilePath)

	c := &Container{Logger: sysLogger}

	// 1. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 2. Infrastructure
	natsPub, err := pktNats.NewPublisher(pktNats.PublisherConfig{
		URL:             cfg.App.NatsURL,
		MaxAge:          cfg.App.NatsStreamMaxAge,
		DuplicateWindow: cfg.App.NatsDedupeWindow,
	})
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		c.closers = append(c.closers, natsPub.Close)
		c.natsPub = natsPub
	}

	rdb := newRedisClient(cfg.App.RedisURL)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}
	c.rdb = rdb

	wsHub := websocket.NewHub(rdb, eventLogger)
	c.WebSocketHub = wsHub

	// 3. Engine
	backends := newChannelBackends(cfg)
	c.channels = make(map[synthesis.Channel]bool, len(synthesis.AllChannels))
	for _, ch := range synthesis.AllChannels {
		_, ok := backends[ch]
		c.channels[ch] = ok
	}

	tuning, err := synthesis.LoadTuning(cfg.Synthesis.TuningFile)
	if err != nil {
		var cfgErr *synthesis.ConfigurationError
		if errors.As(err, &cfgErr) {
			log.Fatalf("[FATAL] Invalid synthesis tuning: %v", err)
		}
		log.Printf("[WARN] Could not load tuning file %s, using defaults: %v", cfg.Synthesis.TuningFile, err)
		tuning = synthesis.DefaultTuning()
	}
	if cfg.Synthesis.DispatchTimeout > 0 {
		tuning.DispatchTimeout = cfg.Synthesis.DispatchTimeout
	}

	observer := service.NewTelemetryObserver(
		service.NewPublisherService(telemetryTopic, pubSub),
		sysLogger,
	)

	orchestrator, err := synthesis.NewOrchestrator(tuning, backends,
		synthesis.WithLogger(sysLogger),
		synthesis.WithObserver(observer),
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build synthesis engine: %v", err)
	}

	// 4. Services
	var statsRepo contract.StatsRepository
	if rdb != nil {
		statsRepo = redisRepo.NewStatsRepository(rdb, redisRepo.DefaultStatsKey)
	}

	sinks := service.ConsumerSinks{
		Stats:       statsRepo,
		Broadcaster: wsHub,
		EventLogger: eventLogger,
	}
	if natsPub != nil {
		sinks.Publisher = natsPub
	}
	c.ConsumerService = service.NewConsumerService(pubSub, telemetryTopic, sinks, sysLogger)

	synthesisService := service.NewSynthesisService(
		orchestrator,
		memory.NewSynthesisRepository(cfg.Synthesis.CacheTTL),
		statsRepo,
	)

	// 5. Controllers
	c.SynthesisController = controller.NewSynthesisController(synthesisService)
	c.SynthesisEventHandler = handler.NewSynthesisEventHandler(wsHub, eventLogger)

	return c
}

// Health probes the optional dependencies. The engine itself is always usable,
// so a missing dependency only degrades the status.
func (c *Container) Health(ctx context.Context) dto.HealthResponse {
	res := dto.HealthResponse{
		Status:   "up",
		Channels: make(map[string]bool, len(c.channels)),
		Redis:    "disabled",
		Nats:     "disabled",
		Time:     time.Now().UTC(),
	}

	for ch, ok := range c.channels {
		res.Channels[string(ch)] = ok
		if !ok {
			res.Status = "degraded"
		}
	}

	if c.rdb != nil {
		pingCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		res.Redis = "up"
		if err := c.rdb.Ping(pingCtx).Err(); err != nil {
			res.Redis = "down"
			res.Status = "degraded"
		}
	}

	if c.natsPub != nil {
		res.Nats = "up"
		if !c.natsPub.IsConnected() {
			res.Nats = "down"
			res.Status = "degraded"
		}
	}

	if c.WebSocketHub != nil {
		res.WebSocketClients = c.WebSocketHub.ClientCount()
	}
	return res
}

// Close releases connections in reverse order of creation
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

// newChannelBackends builds one LLM backend per channel. A channel whose provider fails
// to initialize is left out; the engine reports it as not configured on every request.
func newChannelBackends(cfg *config.Config) map[synthesis.Channel]synthesis.Backend {
	backends := make(map[synthesis.Channel]synthesis.Backend, len(synthesis.AllChannels))

	for _, ch := range synthesis.AllChannels {
		chCfg, ok := cfg.Ai.Channels[string(ch)]
		if !ok {
			log.Printf("[WARN] No backend configured for channel %s", ch)
			continue
		}

		provider, err := factory.NewLLMProvider(providerConfig(cfg, chCfg))
		if err != nil {
			log.Printf("[WARN] Failed to initialize %s provider for channel %s: %v", chCfg.Provider, ch, err)
			continue
		}

		backends[ch] = channel.NewLLMBackend(ch, provider, constant.ChannelPrompts[string(ch)])
		log.Printf("[INFO] Channel %s using LLM Provider: %s (%s)", ch, chCfg.Provider, chCfg.Model)
	}

	return backends
}

func providerConfig(cfg *config.Config, chCfg config.ChannelBackendConfig) factory.ProviderConfig {
	pc := factory.ProviderConfig{
		Provider:  chCfg.Provider,
		Model:     chCfg.Model,
		BaseURL:   chCfg.BaseURL,
		MaxTokens: chCfg.MaxTokens,
	}

	switch chCfg.Provider {
	case "ollama":
		if pc.BaseURL == "" {
			pc.BaseURL = cfg.Ai.OllamaBaseURL
		}
	case "huggingface":
		pc.APIKey = cfg.Keys.HuggingFace
	case "anthropic":
		pc.APIKey = cfg.Keys.Anthropic
	case "openai":
		pc.APIKey = cfg.Keys.OpenAI
		if pc.BaseURL == "" {
			pc.BaseURL = cfg.Ai.OpenAIBaseURL
		}
	}
	return pc
}

func newRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}
