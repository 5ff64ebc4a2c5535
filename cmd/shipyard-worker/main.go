/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/tomoncle/shipyard"
	"github.com/tomoncle/shipyard/database"
	_ "github.com/tomoncle/shipyard/models"
	"github.com/tomoncle/shipyard/tasks"
	"github.com/tomoncle/shipyard/utils"
)

func main() {
	log := utils.NewLogger("WORKER")
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded")
	}
	utils.ConfigureLogLevel(utils.EnvDefaultString("LOG_LEVEL", "info"))

	cfg := database.DefaultConfig()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		loaded, err := database.LoadConfig(path)
		if err != nil {
			log.WithError(err).Fatal("load config")
		}
		cfg = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager, err := database.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer func() { _ = manager.Disconnect() }()

	redisOpt, err := redisConnOpt()
	if err != nil {
		log.WithError(err).Fatal("parse redis address")
	}

	store := shipyard.NewStore(manager.GetDB())
	worker := tasks.NewWorker(redisOpt, store, utils.EnvDefaultInt("WORKER_CONCURRENCY", 10), log)

	if err := worker.Start(); err != nil {
		log.WithError(err).Fatal("start worker")
	}
	log.Info("worker started")
	<-ctx.Done()
	log.Info("shutting down worker")
	worker.Shutdown()
}

func redisConnOpt() (asynq.RedisConnOpt, error) {
	if uri := os.Getenv("REDIS_URL"); uri != "" {
		return asynq.ParseRedisURI(uri)
	}
	return asynq.RedisClientOpt{
		Addr:     utils.EnvDefaultString("REDIS_ADDR", "127.0.0.1:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}, nil
}
