package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"funneltrack/internal/funnel"
	"funneltrack/internal/settings"
	"funneltrack/internal/users"
)

// Seeder generates realistic funnel traffic for development and demos:
// visitor sessions that walk the checkout steps with believable drop-off at
// each stage, a share of which convert.
type Seeder struct {
	DBManager    cartridge.DBManager
	Logger       *slog.Logger
	SessionCount int
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, sessionCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager:    dbManager,
		Logger:       logger,
		SessionCount: sessionCount,
	}
}

var seedPages = []string{"tregnar", "maps-booster", "leadtrain"}

var seedStepNames = [funnel.FunnelSteps]string{
	"plan_selection",
	"account_info",
	"payment_info",
	"confirmation",
}

// Per-step probability that a visitor who reached the step completes it.
var stepAdvanceProbability = [funnel.FunnelSteps]float64{0.75, 0.60, 0.55, 0.85}

var seedUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Mobile Safari/537.36",
}

// Run wipes nothing and adds SessionCount synthetic visitor sessions spread
// over the last 14 days, then ensures a default admin exists.
func (s *Seeder) Run(ctx context.Context) error {
	start := time.Now()
	s.Logger.Info("Seeding funnel data...", slog.Int("sessions", s.SessionCount))

	db := s.DBManager.GetConnection()

	if err := settings.SetupDefaultSettings(db); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}
	users.SetupAdminUserIfNotExists(db, "admin@funneltrack.local")

	batch := make([]funnel.TrackedEvent, 0, 256)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := sqlite.PerformWrite(s.Logger, db, func(tx *gorm.DB) error {
			return tx.CreateInBatches(batch, 100).Error
		})
		batch = batch[:0]
		return err
	}

	for i := 0; i < s.SessionCount; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch = append(batch, s.generateSession()...)
		if len(batch) >= 200 {
			if err := flush(); err != nil {
				return fmt.Errorf("failed to write seed events: %w", err)
			}
		}
	}
	if err := flush(); err != nil {
		return fmt.Errorf("failed to write seed events: %w", err)
	}

	s.Logger.Info("Seeding completed",
		slog.Int("sessions", s.SessionCount),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// generateSession produces the event trail of one synthetic visitor.
func (s *Seeder) generateSession() []funnel.TrackedEvent {
	sessionID := "session_" + uuid.NewString()
	page := seedPages[rand.IntN(len(seedPages))]
	ip := randomIP()
	userAgent := seedUserAgents[rand.IntN(len(seedUserAgents))]

	// Sessions start at a random point in the last two weeks.
	at := time.Now().UTC().
		Add(-time.Duration(rand.IntN(14*24)) * time.Hour).
		Add(-time.Duration(rand.IntN(3600)) * time.Second)

	emit := func(eventType funnel.EventType, step int, timeSpent int, formData string) funnel.TrackedEvent {
		e := funnel.TrackedEvent{
			PageName:         page,
			EventType:        eventType,
			VisitorSessionID: sessionID,
			StepNumber:       step,
			TimeSpentSeconds: timeSpent,
			FormData:         formData,
			VisitorIP:        ip,
			UserAgent:        userAgent,
			CreatedAt:        at,
		}
		if step > 0 {
			e.StepName = seedStepNames[step-1]
		}
		at = at.Add(time.Duration(5+rand.IntN(90)) * time.Second)
		return e
	}

	events := []funnel.TrackedEvent{emit(funnel.EventPageLoad, 0, 0, "")}

	// Roughly a third bounce without opening the checkout.
	if rand.Float64() < 0.35 {
		return events
	}
	events = append(events, emit(funnel.EventCheckoutOpen, 0, rand.IntN(60), ""))

	for step := 1; step <= funnel.FunnelSteps; step++ {
		events = append(events, emit(funnel.EventStepStart, step, 0, ""))

		if rand.Float64() >= stepAdvanceProbability[step-1] {
			events = append(events, emit(funnel.EventCheckoutAbandon, step, rand.IntN(120), ""))
			return events
		}
		events = append(events, emit(funnel.EventStepComplete, step, 10+rand.IntN(110), ""))
	}

	payment, _ := json.Marshal(map[string]any{
		"plan":     "professional",
		"amount":   149.0,
		"order_id": "order_" + uuid.NewString(),
	})
	events = append(events, emit(funnel.EventPaymentAttempt, 0, rand.IntN(30), ""))
	events = append(events, emit(funnel.EventPaymentComplete, 0, rand.IntN(20), string(payment)))
	return events
}

func randomIP() string {
	return fmt.Sprintf("%d.%d.%d.%d", 1+rand.IntN(222), rand.IntN(256), rand.IntN(256), 1+rand.IntN(254))
}
