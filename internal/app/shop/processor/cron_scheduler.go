package processor

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"maplemarket/internal/app/shop/entity"
	"maplemarket/internal/app/shop/util"
	"maplemarket/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// RatingReconciler пересчитывает агрегированные рейтинги товаров
type RatingReconciler interface {
	RecalculateAllRatings(ctx context.Context) (int64, error)
}

// CronScheduler периодически сверяет рейтинги товаров со средним активных оценок.
// Деактивация оценок не пересчитывает рейтинг синхронно, дрейф устраняется здесь.
type CronScheduler struct {
	cron       *cron.Cron
	reconciler RatingReconciler
	publisher  util.MessagePublisher
}

func NewCronScheduler(reconciler RatingReconciler, publisher util.MessagePublisher) *CronScheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log.Default())))

	return &CronScheduler{
		cron:       c,
		reconciler: reconciler,
		publisher:  publisher,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	log.Printf("Starting cron scheduler with schedule: %s", schedule)

	_, err := s.cron.AddFunc(schedule, func() {
		s.reconcile(ctx)
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Cron scheduler started")

	log.Println("Performing initial rating reconciliation...")
	s.reconcile(ctx)

	return nil
}

func (s *CronScheduler) reconcile(ctx context.Context) {
	log.Println("Cron job triggered: reconciling product ratings")

	updated, err := s.reconciler.RecalculateAllRatings(ctx)
	if err != nil {
		log.Printf("ERROR: Failed to reconcile product ratings: %v", err)
		return
	}

	metrics.RatingRecalculations.WithLabelValues("reconciler").Inc()
	log.Printf("Cron job completed: %d product ratings updated", updated)

	if s.publisher == nil || updated == 0 {
		return
	}

	event := entity.ShopEvent{
		EventType: "RATINGS_RECONCILED",
		Payload:   map[string]int64{"updated_products": updated},
		Timestamp: time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("WARNING: Failed to marshal reconciliation event: %v", err)
		return
	}

	if err := s.publisher.PublishMessage(ctx, event.EventType, value); err != nil {
		log.Printf("WARNING: Failed to publish reconciliation event: %v", err)
	}
}

func (s *CronScheduler) Stop() {
	log.Println("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
