package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/agraw-2305/CrediLume/internal/classifier"
	"github.com/agraw-2305/CrediLume/internal/config"
	"github.com/agraw-2305/CrediLume/internal/handler"
	"github.com/agraw-2305/CrediLume/internal/repository"
	"github.com/agraw-2305/CrediLume/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Загрузка конфигурации приложения
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Уровень логирования (Debug для разработки, Info для продакшена)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	// Скоринговая модель грузится лениво при первом запросе,
	// чтобы старт сервера не зависел от артефакта
	scoringModel := classifier.New(cfg.ModelPath, logger)

	// Кеш советов: redis, если настроен, иначе память процесса
	var cache repository.CacheRepository
	if cfg.RedisAddr != "" {
		logger.WithField("addr", cfg.RedisAddr).Info("Кеш советов: redis")
		cache = repository.NewRedisCache(cfg.RedisAddr, logger)
	} else {
		logger.Info("Кеш советов: в памяти процесса")
		cache = repository.NewMemoryCache()
	}

	// Инициализация сервисов
	logger.Info("Инициализация сервисов...")
	geminiClient := service.NewGeminiClient(cfg, logger)
	if !geminiClient.Enabled() {
		logger.Warn("GEMINI_API_KEY не задан: обогащение и советник работают в fallback-режиме")
	}

	decisionService := service.NewDecisionService(scoringModel, geminiClient, service.DefaultGuardrailPolicy(), logger)
	adviceService := service.NewAdviceService(geminiClient, cache, logger)
	chatService := service.NewChatService(geminiClient, logger)

	// Инициализация HTTP обработчиков
	logger.Info("Инициализация обработчиков API...")
	decisionHandler := handler.NewDecisionHandler(decisionService, logger)
	adviceHandler := handler.NewAdviceHandler(adviceService, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)

	rateLimiter := handler.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer rateLimiter.Stop()

	// Настройка маршрутизатора
	router := mux.NewRouter()
	router.Use(handler.RequestIDMiddleware(logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	apiRouter := router.NewRoute().Subrouter()
	apiRouter.Use(handler.RateLimitMiddleware(rateLimiter))
	decisionHandler.RegisterRoutes(apiRouter)
	adviceHandler.RegisterRoutes(apiRouter)
	chatHandler.RegisterRoutes(apiRouter)

	// Настройка и запуск HTTP сервера
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Запуск сервера на порту :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание сигналов для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Завершение работы сервера...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Ошибка при завершении работы сервера: %v", err)
	}
	logger.Info("Сервер успешно остановлен")
}
