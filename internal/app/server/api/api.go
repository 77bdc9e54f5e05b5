// POST   /auth/v1/signup                  # регистрация (публичный)
// POST   /auth/v1/token                   # вход (публичный)
// POST   /auth/v1/logout                  # отзыв токена (публичный)
// GET    /api/v1/health                   # проба соединения (публичный)
// GET    /rest/v1/{table}                 # выборка (auth)
// POST   /rest/v1/{table}                 # вставка (auth)
// PUT    /rest/v1/{table}                 # upsert (auth)
// PATCH  /rest/v1/{table}/{id}            # обновление (auth)
// DELETE /rest/v1/{table}/{id}            # удаление (auth)
// GET    /realtime/v1                     # websocket с изменениями (auth)
// POST   /storage/v1/{bucket}             # загрузка файла (auth)
// GET    /storage/v1/object/public/...    # раздача файлов (публичный)
// GET    /api/facilities/nearby           # учреждения рядом (auth)
// POST   /functions/v1/ai-chat            # ассистент (auth)
// POST   /functions/v1/analyze-photo      # анализ фото блюда (auth)

package api

import (
	"context"
	"time"

	"hemapp/internal/app/server/api/http/bucket"
	facilityAPI "hemapp/internal/app/server/api/http/facility"
	functionAPI "hemapp/internal/app/server/api/http/function"
	healthAPI "hemapp/internal/app/server/api/http/health"
	"hemapp/internal/app/server/api/http/middleware"
	"hemapp/internal/app/server/api/http/middleware/auth"
	"hemapp/internal/app/server/api/http/middleware/cors"
	"hemapp/internal/app/server/api/http/middleware/logger"
	realtimeAPI "hemapp/internal/app/server/api/http/realtime"
	"hemapp/internal/app/server/api/http/rest"
	userAPI "hemapp/internal/app/server/api/http/user"
	"hemapp/internal/app/server/config"
	"hemapp/internal/domain/assistant"
	"hemapp/internal/domain/facility"
	"hemapp/internal/domain/session"
	"hemapp/internal/domain/table"
	"hemapp/internal/domain/user"
	"hemapp/internal/infrastructure/llm"
	"hemapp/internal/infrastructure/realtime"
	"hemapp/internal/infrastructure/storage/postgres"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"
)

type Handlers struct {
	Health   *healthAPI.Handler
	User     *userAPI.Handler
	Rest     *rest.Handler
	Facility *facilityAPI.Handler
	Function *functionAPI.Handler
	Realtime *realtimeAPI.Handler
	Bucket   *bucket.Handler

	auth     *auth.Auth
	logger   *logger.Logger
	sessions *session.Service
}

const sessionPurgeInterval = time.Hour

// New собирает роутер: huma-операции и обычные chi-маршруты для websocket и файлов
// Фоновая очистка просроченных сессий живет, пока не отменен ctx.
func New(ctx context.Context, cfg *config.Config, storage *postgres.Storage, broker *realtime.Broker, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler)

	humaConfig := huma.DefaultConfig("Hemapp API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConfig)

	h := handlers(cfg, storage, broker, log)
	go h.sessions.PurgeExpired(ctx, sessionPurgeInterval)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Rest.SetupRoutes(API)
	h.Facility.SetupRoutes(API)
	h.Function.SetupRoutes(API)

	mux.Group(func(r chi.Router) {
		r.Use(h.logger.Handler)

		private := r.With(h.auth.Handler)
		h.Realtime.SetupRoutes(private)
		h.Bucket.SetupRoutes(private, r)
	})

	return mux
}

func handlers(cfg *config.Config, storage *postgres.Storage, broker *realtime.Broker, log *slog.Logger) *Handlers {
	sessionRepo := postgres.NewSessionRepository(storage.Pool(), log)
	sessionService := session.NewService(sessionRepo, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(storage.Pool(), broker, cfg.LLM.APIKey != "", log, middlewares.GetAllAndClear())

	userRepo := postgres.NewUserRepository(storage.Pool(), log)
	userService := user.NewService(userRepo, user.NewCredentialRules(), log)
	middlewares.Add(loggerMW.Middleware())
	userHandler := userAPI.NewHandler(userService, sessionService, log, middlewares.GetAllAndClear())

	tableRepo := postgres.NewTableRepository(storage.Pool(), log)
	tableService := table.NewService(tableRepo, broker, log)
	middlewares.Add(loggerMW.Middleware(), authMW.Middleware())
	restHandler := rest.NewHandler(tableService, log, middlewares.GetAllAndClear())

	facilityRepo := postgres.NewFacilityRepository(storage.Pool(), log)
	facilityService := facility.NewService(facilityRepo, log)
	middlewares.Add(loggerMW.Middleware(), authMW.Middleware())
	facilityHandler := facilityAPI.NewHandler(facilityService, log, middlewares.GetAllAndClear())

	llmClient := llm.NewClient(cfg.LLM, log)
	assistantService := assistant.NewService(llmClient, tableService, log)
	middlewares.Add(loggerMW.Middleware(), authMW.Middleware())
	functionHandler := functionAPI.NewHandler(assistantService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:   healthHandler,
		User:     userHandler,
		Rest:     restHandler,
		Facility: facilityHandler,
		Function: functionHandler,
		Realtime: realtimeAPI.NewHandler(broker, log),
		Bucket:   bucket.NewHandler(cfg.Storage.UploadDir, cfg.Server.PublicURL, log),
		auth:     authMW,
		logger:   loggerMW,
		sessions: sessionService,
	}
}
