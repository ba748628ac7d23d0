package main

import (
	"context"
	"flag"
	"log"
	"time"

	"museumtix/internal/config"
	"museumtix/internal/database"
	"museumtix/internal/domain"
	"museumtix/internal/modules/booking"
	"museumtix/internal/pkg/ticket"
	"museumtix/internal/repository"
)

// One-shot maintenance for deployments that run jobs from cron instead of the API scheduler.
func main() {
	chatLogDays := flag.Int("chat-log-days", 90, "delete chat log entries older than this many days (0 keeps all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	bookings := booking.NewService(
		repository.NewBookingRepository(db),
		repository.NewMuseumRepository(db),
		repository.NewEventRepository(db),
		nil,
		nil,
		ticket.NewSigner(cfg.TicketSigningSecret),
	)
	expired, err := bookings.ExpirePending(context.Background(), cfg.PendingBookingTTL)
	if err != nil {
		log.Fatalf("expire pending bookings failed: %v", err)
	}

	var purged int64
	if *chatLogDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -*chatLogDays)
		res := db.Where("timestamp < ?", cutoff).Delete(&domain.ChatLogEntry{})
		if res.Error != nil {
			log.Fatalf("cleanup chat_logs failed: %v", res.Error)
		}
		purged = res.RowsAffected
	}

	log.Printf("cleanup completed: expired_bookings=%d chat_logs=%d", expired, purged)
}
