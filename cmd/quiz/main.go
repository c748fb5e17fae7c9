package main

import (
	"errors"
	"log"
	"os"

	"go.uber.org/zap"

	"wordplay/internal/audio"
	"wordplay/internal/config"
	"wordplay/internal/database"
	"wordplay/internal/logger"
	"wordplay/internal/profile"
	"wordplay/internal/repository"
	"wordplay/internal/service"
	"wordplay/internal/vocab"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logg.Sync()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logg.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	logg.Info("database ready", zap.String("type", cfg.DatabaseType))

	store := profile.NewStore(repository.NewStateRepository(db), logg)
	if err := store.Load(); err != nil {
		var storageErr *profile.StorageError
		if !errors.As(err, &storageErr) {
			logg.Fatal("failed to load profiles", zap.Error(err))
		}
		// malformed data: continue with an empty collection
	}

	var speaker audio.Pronouncer = audio.Nop{}
	if cfg.TTSEnabled {
		tts := audio.NewTTSService(audio.Options{
			AudioDir:          cfg.AudioDir,
			Language:          cfg.TTSLanguage,
			Endpoint:          cfg.TTSEndpoint,
			Player:            cfg.TTSPlayer,
			RequestsPerMinute: cfg.TTSRateLimit,
		}, logg)
		defer tts.Close()
		speaker = tts
	}

	ctl := service.NewQuizController(store, vocab.NewParser(logg), speaker, logg)

	a := newApp(ctl, os.Stdin, os.Stdout, cfg.DefaultQuestionCount, cfg.QuestionCountOptions)
	if err := a.run(); err != nil {
		logg.Error("input error", zap.Error(err))
	}
}
