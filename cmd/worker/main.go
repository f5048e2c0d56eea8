package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/tripoffice/config"
	"github.com/Domenick1991/tripoffice/internal/email"
	"github.com/Domenick1991/tripoffice/internal/kafka"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.SMTP.AdminBCC == "" {
		log.Println("WARNING: no admin inbox configured, booking notices will be skipped")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	notifier := email.NewNotifier(email.NewSMTPSender(cfg.SMTP), cfg.SMTP.AdminBCC)

	log.Printf("worker consuming %s", cfg.Kafka.NotificationsTopic)
	if err := consumer.Consume(ctx, notifier.HandleMessage); err != nil {
		log.Fatalf("consumer stopped: %v", err)
	}
	log.Println("worker stopped")
}
