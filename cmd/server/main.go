package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"neuroassist/internal/api"
	"neuroassist/internal/chat"
	"neuroassist/internal/config"
	"neuroassist/internal/detection"
	"neuroassist/internal/preview"
	"neuroassist/internal/upstream"
	"neuroassist/pkg/logger"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			log.Fatal("Invalid PORT:", err)
		}
		cfg.Server.Port = p
	}
	if baseURL := os.Getenv("UPSTREAM_BASE_URL"); baseURL != "" {
		cfg.Upstream.BaseURL = baseURL
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zapLogger.Sync()

	previews, err := preview.NewStore(cfg.Upload.PreviewDir)
	if err != nil {
		log.Fatal("Failed to initialize preview store:", err)
	}
	defer previews.Close()

	timeout := time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second
	predictClient := upstream.NewPredictClient(cfg.Upstream.BaseURL, timeout, zapLogger)
	chatClient := upstream.NewChatClient(cfg.Upstream.BaseURL, timeout, zapLogger)

	bridge := detection.NewBridge()
	controller := detection.NewController(predictClient, bridge, zapLogger)
	session := chat.NewSession(chatClient, zapLogger)
	bridge.Subscribe(session.HandleOutcome)

	app := &api.App{
		Previews:      previews,
		Controller:    controller,
		Session:       session,
		Logger:        zapLogger,
		MaxUploadSize: cfg.Upload.MaxSize,
	}

	router := api.NewRouter(app)

	zapLogger.Info("server starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.Int64("maxUploadSize", cfg.Upload.MaxSize))

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.Port), router); err != nil {
		log.Fatal(err)
	}
}
