package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/slotpoll/api/internal/adapters/repository/postgres"
	"github.com/slotpoll/api/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	cache := postgres.NewConnCache(dbConnString())
	defer cache.Close()

	db, err := cache.Get(context.Background())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	pollRepo := postgres.NewPollRepository(db)
	resultRepo := postgres.NewPollResultRepository(db)

	summaryService := services.NewSummaryService(pollRepo, resultRepo, logger)

	// Bound the job so a stuck poll cannot hang the whole run
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger.Info("starting vote summarization job")

	if err := summaryService.SummarizeAllVotes(ctx); err != nil {
		logger.Fatal("error summarizing votes", zap.Error(err))
	}

	logger.Info("vote summarization completed successfully")
}

func dbConnString() string {
	dbName, user, password, host, port := dbConfig()
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
}

func dbConfig() (dbName string, user string, password string, host string, port string) {
	dbName = os.Getenv("POSTGRES_DB")
	user = os.Getenv("POSTGRES_USER")
	password = os.Getenv("POSTGRES_PASSWORD")
	host = os.Getenv("POSTGRES_HOST")
	port = os.Getenv("POSTGRES_PORT")
	return
}
