// Command main fills a development database with demo forum data.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"forumhub/internal/config"
	"forumhub/internal/database"
	"forumhub/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	maxComments := flag.Int("comments", 5, "Maximum comments per post")
	shouldClean := flag.Bool("clean", false, "Empty all collections before seeding")
	randomSeed := flag.Int64("seed", 0, "Fixed random seed for reproducible data")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" {
		log.Fatal("Refusing to seed a production database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(context.Background(), db); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	if *shouldClean {
		if err := seed.Clear(ctx, db); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		log.Println("Collections cleared")
	}

	res, err := seed.NewSeeder(db).Run(ctx, seed.Options{
		NumUsers:      *numUsers,
		NumPosts:      *numPosts,
		MaxComments:   *maxComments,
		AdminEmail:    cfg.SeedAdminEmail,
		AdminPassword: cfg.SeedAdminPassword,
		RandomSeed:    *randomSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d comments and %d tags", res.Users, res.Posts, res.Comments, res.Tags)
	log.Printf("All generated users have the password: %s", seed.DefaultPassword)
}
