package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"ziraweb/automation"
	"ziraweb/models"
)

// DispatchWorker delivers email events that were queued with a delay by
// automation rules. Failed deliveries stay failed; there is no retry loop.
type DispatchWorker struct {
	DB         *gorm.DB
	Dispatcher *automation.Dispatcher
	Logger     *log.Logger
}

func NewDispatchWorker(db *gorm.DB, dispatcher *automation.Dispatcher, logger *log.Logger) *DispatchWorker {
	return &DispatchWorker{
		DB:         db,
		Dispatcher: dispatcher,
		Logger:     logger,
	}
}

func (dw *DispatchWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	dw.Logger.Println("Dispatch worker started")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			dw.Logger.Println("Dispatch worker shutting down...")
			return
		case <-ticker.C:
			dw.processDueEvents(ctx)
		}
	}
}

func (dw *DispatchWorker) processDueEvents(ctx context.Context) {
	var due []models.EmailEvent
	if err := dw.DB.
		Where("status = ? AND send_at IS NOT NULL AND send_at <= ?", models.EmailStatusPending, time.Now()).
		Order("send_at ASC").
		Limit(100).
		Find(&due).Error; err != nil {
		dw.Logger.Printf("Error fetching due events: %v", err)
		return
	}

	for i := range due {
		if ctx.Err() != nil {
			return
		}
		ev := &due[i]
		if err := dw.Dispatcher.Deliver(ctx, ev); err != nil {
			dw.Logger.Printf("Error delivering event %d: %v", ev.ID, err)
			continue
		}
		dw.Logger.Printf("Delivered delayed event %d to %s (%s)", ev.ID, ev.RecipientEmail, ev.Status)
	}
}
