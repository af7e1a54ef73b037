package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/api/handlers"
	"github.com/Harishhackz/seeing-helper/internal/api/middleware"
	"github.com/Harishhackz/seeing-helper/internal/app/service"
	assistevents "github.com/Harishhackz/seeing-helper/internal/cqrs"
	cqrshandlers "github.com/Harishhackz/seeing-helper/internal/cqrs/handlers"
	"github.com/Harishhackz/seeing-helper/internal/domain/account"
	"github.com/Harishhackz/seeing-helper/internal/domain/navigation"
	"github.com/Harishhackz/seeing-helper/internal/domain/schedule"
	"github.com/Harishhackz/seeing-helper/internal/provider/mapbox"
	"github.com/Harishhackz/seeing-helper/internal/provider/vision"
	"github.com/Harishhackz/seeing-helper/internal/speech"
	"github.com/Harishhackz/seeing-helper/pkg/autorouter"
	"github.com/Harishhackz/seeing-helper/pkg/config"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
	"github.com/Harishhackz/seeing-helper/pkg/sse"
)

const serverVersion = "0.1.0"

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	cfg        *config.Config
	mux        *http.ServeMux

	scheduleHandler   *handlers.ScheduleHandler
	voiceHandler      *handlers.VoiceHandler
	navigationHandler *handlers.NavigationHandler
	visionHandler     *handlers.VisionHandler
	authHandler       *handlers.AuthHandler
	serverHandler     *handlers.ServerHandler
	authMiddleware    *middleware.AuthMiddleware
	sseBroadcaster    *sse.Broadcaster

	reminderService *service.ReminderService
	scheduler       *speech.Scheduler

	// Watermill CQRS components
	eventBus        *cqrs.EventBus
	eventProcessor  *cqrs.EventProcessor
	router          *message.Router
	sseEventHandler *cqrshandlers.SSEEventHandler
	sseHelper       *assistevents.SSEBroadcastHelper
}

// NewServer wires the whole assist engine: repositories, the event bus, the
// SSE bridge, providers, services, and the JSON-RPC route table.
func NewServer(cfg *config.Config, log *logger.Logger) *Server {
	mux := http.NewServeMux()
	apiLogger := log.WithComponent("api")

	// In-memory state: schedules and navigation sessions live for the
	// process lifetime only
	scheduleRepo := schedule.NewMemoryRepository()
	sessionRepo := navigation.NewMemoryRepository()
	accountRepo := account.NewMemoryRepository()

	jwtService := account.NewJWTService(
		cfg.Auth.JWTSecret,
		cfg.Auth.Issuer,
		cfg.Auth.JWTExpiration,
	)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, apiLogger)

	// Watermill over an in-process channel pubsub
	watermillLogger := watermill.NewStdLogger(false, false)

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, watermillLogger)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 5 * time.Second,
	}, watermillLogger)
	if err != nil {
		panic(fmt.Sprintf("Failed to create router: %v", err))
	}

	eventBus, err := cqrs.NewEventBusWithConfig(
		pubsub,
		cqrs.EventBusConfig{
			GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
				return fmt.Sprintf("assist-events.%s", params.EventName), nil
			},
			Marshaler: cqrs.JSONMarshaler{},
			Logger:    watermillLogger,
		},
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to create event bus: %v", err))
	}

	eventProcessor, err := cqrs.NewEventProcessorWithConfig(
		router,
		cqrs.EventProcessorConfig{
			GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
				return fmt.Sprintf("assist-events.%s", params.EventName), nil
			},
			SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
				return pubsub, nil
			},
			Marshaler: cqrs.JSONMarshaler{},
			Logger:    watermillLogger,
		},
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to create event processor: %v", err))
	}

	sseBroadcaster := sse.NewBroadcaster(apiLogger)
	sseEventHandler := cqrshandlers.NewSSEEventHandler(sseBroadcaster, apiLogger)

	// Speech pipeline: one speaker per server, deferred utterances share one
	// scheduler
	speaker := speech.NewSpeaker(eventBus, speech.Params{
		Rate:   cfg.Assist.SpeechRate,
		Pitch:  cfg.Assist.SpeechPitch,
		Volume: cfg.Assist.SpeechVolume,
	}, apiLogger)
	scheduler := speech.NewScheduler()

	// External collaborators
	mapboxClient := mapbox.NewClient(cfg.Providers.Mapbox, apiLogger)
	visionClient := vision.NewClient(cfg.Providers.Vision, apiLogger)

	reminderService := service.NewReminderService(
		apiLogger, scheduleRepo, speaker, eventBus, cfg.Assist.ReminderTickInterval)
	guideService := service.NewGuideService(
		apiLogger, sessionRepo, mapboxClient, mapboxClient, speaker, scheduler,
		eventBus, cfg.Assist.PositionMinInterval)

	server := &Server{
		httpServer: &http.Server{
			Addr:         cfg.Server.GetServerAddr(),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0, // SSE streams must not be cut off by a write deadline
			IdleTimeout:  60 * time.Second,
		},
		logger:            apiLogger,
		cfg:               cfg,
		mux:               mux,
		scheduleHandler:   handlers.NewScheduleHandler(apiLogger, scheduleRepo),
		voiceHandler:      handlers.NewVoiceHandler(apiLogger, scheduleRepo, speaker),
		navigationHandler: handlers.NewNavigationHandler(apiLogger, guideService),
		visionHandler:     handlers.NewVisionHandler(apiLogger, visionClient, speaker, eventBus),
		authHandler:       handlers.NewAuthHandler(apiLogger, accountRepo, jwtService),
		serverHandler:     handlers.NewServerHandler(apiLogger, sseBroadcaster, serverVersion),
		authMiddleware:    authMiddleware,
		sseBroadcaster:    sseBroadcaster,
		reminderService:   reminderService,
		scheduler:         scheduler,
		eventBus:          eventBus,
		eventProcessor:    eventProcessor,
		router:            router,
		sseEventHandler:   sseEventHandler,
		sseHelper:         assistevents.NewSSEBroadcastHelper(eventBus),
	}

	err = eventProcessor.AddHandlers(
		cqrs.NewEventHandler("SpeechRequestedEvent", sseEventHandler.HandleSpeechRequestedEvent),
		cqrs.NewEventHandler("ReminderDueEvent", sseEventHandler.HandleReminderDueEvent),
		cqrs.NewEventHandler("ScheduleChangedEvent", sseEventHandler.HandleScheduleChangedEvent),
		cqrs.NewEventHandler("NavigationStartedEvent", sseEventHandler.HandleNavigationStartedEvent),
		cqrs.NewEventHandler("InstructionAnnouncedEvent", sseEventHandler.HandleInstructionAnnouncedEvent),
		cqrs.NewEventHandler("NavigationEndedEvent", sseEventHandler.HandleNavigationEndedEvent),
		cqrs.NewEventHandler("VisionResultEvent", sseEventHandler.HandleVisionResultEvent),
		cqrs.NewEventHandler("SSENotificationEvent", sseEventHandler.HandleSSENotificationEvent),
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to register event handlers: %v", err))
	}

	server.setupRoutes()
	server.setupMiddleware()

	return server
}

// setupRoutes configures the server routes. Authenticated JSON-RPC endpoints
// are registered by reflection: every exported method on a domain handler
// becomes /api/v1/<domain>.<Method>.
func (s *Server) setupRoutes() {
	// Health check endpoint (pure REST)
	s.mux.HandleFunc(s.cfg.Server.HealthCheckPath, s.healthCheckHandler)

	// Swagger documentation endpoint
	s.mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	s.registerDomain("auth.", s.authHandler, false)
	s.registerDomain("server.", s.serverHandler, false)
	s.registerDomain("schedule.", s.scheduleHandler, true)
	s.registerDomain("voice.", s.voiceHandler, true)
	s.registerDomain("navigation.", s.navigationHandler, true)
	s.registerDomain("vision.", s.visionHandler, true)

	// SSE notification stream (dedicated SSE auth: token rides in the query)
	s.mux.Handle("/api/v1/stream/assist", s.authMiddleware.RequireSSEAuth(http.HandlerFunc(s.sseBroadcaster.HandleSSE)))
}

// registerDomain registers one handler struct under a method prefix
func (s *Server) registerDomain(methodPrefix string, handler interface{}, requireAuth bool) {
	router := autorouter.NewAutoRouter(s.mux, autorouter.RegistrationOptions{
		Prefix:       "/api/v1/",
		MethodPrefix: methodPrefix,
	})

	var err error
	if requireAuth {
		err = router.RegisterHandlersWithAuth(handler, s.authMiddleware.RequireAuth)
	} else {
		err = router.RegisterHandlers(handler)
	}
	if err != nil {
		panic(fmt.Sprintf("Failed to register %s handlers: %v", methodPrefix, err))
	}

	for _, info := range router.GetRegisteredHandlers(handler) {
		s.logger.Debug("Route registered",
			zap.String("path", info.URLPath),
			zap.Bool("auth", requireAuth))
	}
}

// setupMiddleware applies middleware to all routes
func (s *Server) setupMiddleware() {
	middlewareChain := middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.ErrorAdapter(s.logger),
		middleware.CORS(s.cfg.CORS),
		middleware.Logging(s.logger),
		middleware.RateLimit(s.logger),
	)

	s.httpServer.Handler = middlewareChain(s.mux)
}

// Start starts the HTTP server, the event router, and the reminder clock
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.httpServer.Addr))

	// Start Watermill router first so SSE handlers see every event
	go func() {
		if err := s.router.Run(ctx); err != nil {
			s.logger.Error("Watermill router error", zap.Error(err))
		}
	}()

	s.reminderService.Start(ctx)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	return s.Shutdown()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down HTTP server")

	// Tell connected clients the stream is going away, and give the event a
	// moment to ride out before connections close
	if err := s.sseHelper.BroadcastToAll(context.Background(), "server.shutdown", map[string]string{"reason": "shutting down"}); err == nil {
		time.Sleep(200 * time.Millisecond)
	}

	if s.sseBroadcaster != nil {
		s.logger.Debug("Closing SSE broadcaster")
		s.sseBroadcaster.Close()
	}

	s.reminderService.Stop()
	s.scheduler.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	if s.router != nil {
		s.logger.Info("Closing Watermill router")
		if err := s.router.Close(); err != nil {
			s.logger.Error("Router shutdown error", zap.Error(err))
			return err
		}
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// GetAddr returns the server address
func (s *Server) GetAddr() string {
	return s.httpServer.Addr
}

// healthCheckHandler handles health check requests
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","version":%q,"sse_clients":%d}`,
		serverVersion, s.sseBroadcaster.GetClientCount())
}
