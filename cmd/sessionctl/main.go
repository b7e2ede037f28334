package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/af-corp/prism-enhance/internal/session"
)

func main() {
	id := flag.String("id", "", "session ID (optional, generated when omitted)")
	username := flag.String("username", "", "username for the session (required unless -guest)")
	guest := flag.Bool("guest", false, "create a guest session")
	ttl := flag.String("ttl", "7d", "session lifetime (e.g., 7d, 24h)")
	addr := flag.String("redis", "", "redis address (overrides env)")
	password := flag.String("redis-password", "", "redis password (overrides env)")
	db := flag.Int("redis-db", 0, "redis database number")
	flag.Parse()

	if *username == "" && !*guest {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "\nerror: -username is required for non-guest sessions")
		os.Exit(1)
	}

	sessionID := *id
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	dur, err := session.ParseTTL(*ttl)
	if err != nil {
		log.Fatalf("invalid ttl: %v", err)
	}

	// Connect to Redis
	redisAddr := *addr
	if redisAddr == "" {
		redisAddr = envOrDefault("REDIS_ADDR", "localhost:6379")
	}
	redisPassword := *password
	if redisPassword == "" {
		redisPassword = os.Getenv("REDIS_PASSWORD")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       *db,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	rec := &session.Record{
		ID:        sessionID,
		Username:  *username,
		Guest:     *guest,
		CreatedAt: time.Now().UTC(),
	}
	if err := session.Save(ctx, rdb, rec, dur); err != nil {
		log.Fatalf("failed to store session: %v", err)
	}

	tier := "member"
	if *guest {
		tier = "guest"
	}

	fmt.Println("=== PRISM Session Created ===")
	fmt.Println()
	fmt.Printf("  Session ID: %s\n", sessionID)
	if *username != "" {
		fmt.Printf("  Username:   %s\n", *username)
	}
	fmt.Printf("  Tier:       %s\n", tier)
	fmt.Printf("  Expires:    %s\n", time.Now().Add(dur).Format(time.RFC3339))
	fmt.Println()
	fmt.Println("  Send it with: X-User-ID header or user_id cookie")
	fmt.Println()
	fmt.Println("=============================")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
