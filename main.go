package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turbekoff/lcdcalc/pkg/env"
	"github.com/turbekoff/lcdcalc/pkg/wordlist"
)

type Config struct {
	BotToken              string        `env:"CALCBOT_TELEGRAM_TOKEN,required"`
	BotOffset             int           `env:"CALCBOT_TELEGRAM_OFFSET" env-default:"0"`
	BotTimeout            int           `env:"CALCBOT_TELEGRAM_TIMEOUT" env-default:"60"`
	SessionTTLTimeout     time.Duration `env:"CALCBOT_SESSION_TTL_TIMEOUT" env-default:"20m"`
	SessionCleanupTimeout time.Duration `env:"CALCBOT_SESSION_CLEANUP_TIMEOUT" env-default:"1m"`
	ShutdownTimeout       time.Duration `env:"CALCBOT_SHUTDOWN_TIMEOUT" env-default:"2m"`
	WordListPath          string        `env:"CALCBOT_WORDLIST_PATH"`
	ChallengeSize         int           `env:"CALCBOT_CHALLENGE_SIZE" env-default:"3"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Read(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config, error: %v\n", err)
	}

	words, err := wordlist.Load(config.WordListPath)
	if err != nil {
		log.Fatalf("failed to load word list, error: %v\n", err)
	}

	bot, err := LoadBot(config, words, log.Default())
	if err != nil {
		log.Fatalf("failed to connect telegram, error: %v\n", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("starting telegram bot, %d words loaded\n", len(words))
		if err := bot.Run(); !errors.Is(err, ErrClosed) {
			log.Printf("failed to start telegram bot, error: %s\n", err)
		}
		quit <- os.Interrupt
	}()

	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	log.Println("stopping telegram bot")
	if err := bot.Shutdown(ctx); err != nil && !errors.Is(err, ErrClosed) {
		log.Printf("failed to graceful shutdown telegram bot, error: %s\n", err)
		if err := bot.Close(); err != nil && !errors.Is(err, ErrClosed) {
			log.Printf("failed to close telegram bot, error: %s\n", err)
		}
	}
	log.Println("telegram bot stopped")
}
