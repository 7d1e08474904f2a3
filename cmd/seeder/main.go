package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/matchmaker/internal/backend"
	"github.com/mauv0809/matchmaker/internal/compat"
	"github.com/mauv0809/matchmaker/internal/config"
	"github.com/mauv0809/matchmaker/internal/matchmaking"
	"github.com/mauv0809/matchmaker/internal/metrics"
	"github.com/mauv0809/matchmaker/internal/stats"
)

const (
	numPlayers = 1000
	batchSize  = 100
)

var regions = []string{"us-east", "us-west", "eu-west", "ap-south"}

func main() {
	log.Info("Starting queue seeder...")
	cfg := config.Load()
	ctx := context.Background()

	stores, teardown, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %s", err)
	}
	defer teardown()
	log.Info("Successfully connected to the store.", "backend", cfg.Store.Backend)

	// Seeded joins still count towards the persisted totals.
	observer := stats.NewObserver(stores.Counter)
	defer observer.Close()
	svc := matchmaking.NewService(
		stores.Pool,
		compat.New(cfg.Matchmaking.MaxSkillGap, cfg.Matchmaking.MaxLatency),
		stores.Matches,
		stores.Events,
		metrics.Multi(metrics.Nop{}, observer),
	)

	log.Info("Preparing to enqueue dummy players...", "total", numPlayers, "batch_size", batchSize)
	startTime := time.Now()
	skipped := 0

	for i := 0; i < numPlayers; i++ {
		id := uuid.NewString()
		req := matchmaking.JoinRequest{
			PlayerID: id,
			Username: fmt.Sprintf("Seeder Player %d", i+1),
			// Ratings cluster around the midpoint so most players find partners.
			SkillRating: clamp(int(rand.NormFloat64()*300)+1500, 0, 5000),
			Latency:     rand.Intn(150),
			Region:      regions[rand.Intn(len(regions))],
		}
		if _, err := svc.JoinQueue(ctx, req); err != nil {
			if errors.Is(err, matchmaking.ErrAlreadyQueued) {
				skipped++
				continue
			}
			log.Fatalf("Failed to enqueue dummy player %s: %s", id, err)
		}

		if (i+1)%batchSize == 0 || (i+1) == numPlayers {
			log.Info("Enqueued batch", "completed", i+1, "total", numPlayers)
		}
	}

	status, err := svc.QueueStatus(ctx)
	if err != nil {
		log.Fatalf("Failed to read queue status: %s", err)
	}
	duration := time.Since(startTime)
	log.Info("Successfully enqueued all dummy players.", "duration", duration, "queue_size", status.Size, "skipped", skipped)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
