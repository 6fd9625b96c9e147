package worker

import (
	"context"
	"log"
	"time"

	"nurtura/nurture"

	"github.com/go-redis/redis/v8"
)

const processorLockKey = "nurtura:processor:lock"

// NurtureWorker periodically runs one processing pass over due nurture
// tasks. When redis is available a short-lived lock keeps overlapping
// ticks (or a second instance of the service) from running concurrent
// passes; the per-task claim in the processor remains the final guard.
type NurtureWorker struct {
	Service  *nurture.Service
	Redis    *redis.Client
	Logger   *log.Logger
	Interval time.Duration
}

func NewNurtureWorker(service *nurture.Service, redisClient *redis.Client, logger *log.Logger, interval time.Duration) *NurtureWorker {
	return &NurtureWorker{
		Service:  service,
		Redis:    redisClient,
		Logger:   logger,
		Interval: interval,
	}
}

func (nw *NurtureWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	nw.Logger.Println("Nurture worker started")

	ticker := time.NewTicker(nw.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			nw.Logger.Println("Nurture worker shutting down...")
			return
		case <-ticker.C:
			nw.runPass(ctx)
		}
	}
}

func (nw *NurtureWorker) runPass(ctx context.Context) {
	if nw.Redis != nil {
		acquired, err := nw.Redis.SetNX(ctx, processorLockKey, "1", 2*nw.Interval).Result()
		if err != nil {
			nw.Logger.Printf("Failed to acquire processor lock, running unlocked: %v", err)
		} else if !acquired {
			nw.Logger.Println("Another processor pass is in progress, skipping tick")
			return
		} else {
			defer nw.Redis.Del(ctx, processorLockKey)
		}
	}

	count, err := nw.Service.ProcessDueTasks(ctx)
	if err != nil {
		nw.Logger.Printf("Error processing due tasks: %v", err)
		return
	}
	if count > 0 {
		nw.Logger.Printf("Processed %d due tasks", count)
	}
}
