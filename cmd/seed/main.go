package main

import (
	"context"
	"flag"
	"os"
	"time"

	"blog-ingest/cmd/api/auth"
	"blog-ingest/config"
	"blog-ingest/db"
	"blog-ingest/internal/logger"
	"blog-ingest/models"
	"blog-ingest/repositories"
)

// seed 는 백오피스 계정을 만들거나 갱신한다. 같은 이메일로 다시 실행하면 비밀번호와 역할이 바뀐다.
func main() {
	name := flag.String("name", "", "Display name")
	email := flag.String("email", "", "Login email")
	password := flag.String("password", os.Getenv("SEED_PASSWORD"), "Plain password (min 8 chars, defaults to $SEED_PASSWORD)")
	role := flag.String("role", models.RoleAdmin, "Role: admin or user")
	flag.Parse()

	config.InitApp()
	cfg := config.GetConfig()
	logger.InitFromEnv("LOG_LEVEL", cfg.Logging.Level)

	hash, err := auth.HashPassword(*password)
	if err != nil {
		logger.Log.Errorf("invalid password: %v", err)
		os.Exit(1)
	}

	user := models.User{Name: *name, Email: *email, PasswordHash: hash, Role: *role}
	if err := user.Validate(); err != nil {
		logger.Log.Errorf("invalid user: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Init(ctx); err != nil {
		logger.Log.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}
	defer db.Disconnect(context.Background())

	res, err := repositories.NewUserRepository(db.Database()).UpsertByEmail(ctx, &user)
	if err != nil {
		logger.Log.Errorf("failed to upsert user: %v", err)
		os.Exit(1)
	}
	logger.InfoWithFields("user seeded", logger.Fields{
		"email":    user.Email,
		"role":     user.Role,
		"created":  res.UpsertedCount > 0,
		"modified": res.ModifiedCount > 0,
	})
}
