package main

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"museumtix/internal/config"
	"museumtix/internal/database"
	"museumtix/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	now := time.Now().UTC()
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(domain.DateLayout) }

	// ================== USERS ==================
	log.Println("Creating users...")
	users := []struct {
		id, email, name, password string
		role                      domain.UserRole
	}{
		{"user-admin", "admin@museumtix.local", "Alex Doe", "admin123", domain.RoleAdmin},
		{"user-staff", "staff@museumtix.local", "Front Desk", "staff123", domain.RoleStaff},
		{"user-visitor", "visitor@museumtix.local", "Jamie Visitor", "visitor123", domain.RoleVisitor},
	}
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("hash password:", err)
		}
		upsert(db, &domain.User{
			ID:           u.id,
			Email:        u.email,
			PasswordHash: string(hash),
			DisplayName:  u.name,
			Role:         u.role,
			Language:     "en",
			CreatedAt:    now,
			LastSeen:     now,
		})
		log.Printf("User: %s / %s (%s)", u.email, u.password, u.role)
	}

	// ================== MUSEUMS ==================
	log.Println("Creating museums...")
	museums := []domain.Museum{
		{
			ID: "museum-1", Name: "The Metropolitan Museum of Art",
			Description: `The Metropolitan Museum of Art of New York City, colloquially "the Met", is the largest art museum in the Americas.`,
			Location:    domain.Location{Address: "1000 5th Ave", City: "New York", Country: "USA"},
			OpenHours:   []domain.OpenHours{{Day: "Mon-Sun", Open: "10:00", Close: "17:00"}},
			ImageURL:    "https://picsum.photos/seed/museum-1/600/400", ImageHint: "art museum",
		},
		{
			ID: "museum-2", Name: "Louvre Museum",
			Description: "The Louvre is a national art museum in Paris, France, on the Right Bank of the Seine.",
			Location:    domain.Location{Address: "Rue de Rivoli", City: "Paris", Country: "France"},
			OpenHours:   []domain.OpenHours{{Day: "Wed-Mon", Open: "09:00", Close: "18:00"}},
			ImageURL:    "https://picsum.photos/seed/museum-2/600/400", ImageHint: "modern architecture",
		},
		{
			ID: "museum-3", Name: "British Museum",
			Description: "The British Museum is a public museum dedicated to human history, art and culture in Bloomsbury, London.",
			Location:    domain.Location{Address: "Great Russell St", City: "London", Country: "UK"},
			OpenHours:   []domain.OpenHours{{Day: "Mon-Sun", Open: "10:00", Close: "17:30"}},
			ImageURL:    "https://picsum.photos/seed/museum-3/600/400", ImageHint: "historic building",
		},
		{
			ID: "museum-4", Name: "Prado Museum",
			Description: "The Museo Nacional del Prado is the main Spanish national art museum, in central Madrid.",
			Location:    domain.Location{Address: "P.º del Prado", City: "Madrid", Country: "Spain"},
			OpenHours:   []domain.OpenHours{{Day: "Mon-Sat", Open: "10:00", Close: "20:00"}},
			ImageURL:    "https://picsum.photos/seed/museum-4/600/400", ImageHint: "classical architecture",
		},
		{
			ID: "museum-5", Name: "Rijksmuseum",
			Description: "The Rijksmuseum is the national museum of the Netherlands, dedicated to Dutch arts and history, in Amsterdam.",
			Location:    domain.Location{Address: "Museumstraat 1", City: "Amsterdam", Country: "Netherlands"},
			OpenHours:   []domain.OpenHours{{Day: "Mon-Sun", Open: "09:00", Close: "17:00"}},
			ImageURL:    "https://picsum.photos/seed/museum-5/600/400", ImageHint: "dutch museum",
		},
	}
	for i := range museums {
		upsert(db, &museums[i])
	}

	// ================== EVENTS ==================
	log.Println("Creating events...")
	events := []domain.Event{
		{
			ID: "event-1", MuseumID: "museum-1", Title: "Ancient Egypt: Art and Magic",
			Description: "Explore the mystical world of ancient Egyptian artifacts and their connection to magic.",
			Date:        day(14), StartTime: "10:00", EndTime: "17:00",
			Capacity: 200, BookedCount: 150, BasePrice: 25,
			ImageURL: "https://picsum.photos/seed/event-1/400/200", ImageHint: "egyptian art",
		},
		{
			ID: "event-2", MuseumID: "museum-1", Title: "The Renaissance Masters",
			Description: "A deep dive into the works of Leonardo, Michelangelo, and Raphael.",
			Date:        day(30), StartTime: "10:00", EndTime: "17:00",
			Capacity: 150, BookedCount: 90, BasePrice: 30,
			ImageURL: "https://picsum.photos/seed/event-2/400/200", ImageHint: "renaissance painting",
		},
		{
			ID: "event-3", MuseumID: "museum-2", Title: "Modern Art Revolution",
			Description: "From Impressionism to Cubism, witness the revolution of modern art.",
			Date:        day(19), StartTime: "09:00", EndTime: "18:00",
			Capacity: 300, BookedCount: 250, BasePrice: 22,
			ImageURL: "https://picsum.photos/seed/event-3/400/200", ImageHint: "modern art",
		},
	}
	for i := range events {
		upsert(db, &events[i])
	}

	// ================== PROMOTIONS ==================
	log.Println("Creating promotions...")
	promos := []domain.Promotion{
		{ID: "promo-1", Title: "Spring into Art", Description: "20% off all web bookings this season.", DiscountPercent: 20, Code: "SPRING20", Active: true},
		{ID: "promo-2", Title: "Student Days", Description: "Students save 15% with a valid ID.", DiscountPercent: 15, Code: "STUDENT15", Active: true},
		{ID: "promo-3", Title: "Holiday Special", Description: "Last season's offer.", DiscountPercent: 25, Code: "HOLIDAY25", Active: false},
	}
	for i := range promos {
		upsert(db, &promos[i])
	}

	// ================== BOOKINGS ==================
	log.Println("Creating bookings...")
	checkedIn := now.AddDate(0, 0, -1)
	bookings := []domain.Booking{
		{
			ID: "booking-1", UserID: "user-visitor", EventID: "event-1", MuseumID: "museum-1",
			NumTickets: 2, PricePaid: 50, Status: domain.BookingPaid, Source: domain.SourceWeb,
			EventTitle: events[0].Title, MuseumName: museums[0].Name, EventDate: events[0].Date, Slot: events[0].Slot(),
			CreatedAt: now.AddDate(0, 0, -3),
		},
		{
			ID: "booking-2", UserID: "user-visitor", EventID: "event-3", MuseumID: "museum-2",
			NumTickets: 1, PricePaid: 22, Status: domain.BookingCheckedIn, Source: domain.SourceChat,
			EventTitle: events[2].Title, MuseumName: museums[1].Name, EventDate: events[2].Date, Slot: events[2].Slot(),
			CreatedAt: now.AddDate(0, 0, -5), CheckedInAt: &checkedIn,
		},
		{
			ID: "booking-3", UserID: "user-visitor", EventID: "event-2", MuseumID: "museum-1",
			NumTickets: 4, PricePaid: 120, Status: domain.BookingPaid, Source: domain.SourceChat,
			EventTitle: events[1].Title, MuseumName: museums[0].Name, EventDate: events[1].Date, Slot: events[1].Slot(),
			CreatedAt: now.AddDate(0, 0, -2),
		},
	}
	for i := range bookings {
		bookings[i].Currency = domain.DefaultCurrency
		bookings[i].QRID = "qr-" + bookings[i].ID
		bookings[i].UpdatedAt = now
		upsert(db, &bookings[i])
	}

	fmt.Printf("Seed complete: %d users, %d museums, %d events, %d promotions, %d bookings\n",
		len(users), len(museums), len(events), len(promos), len(bookings))
}

// upsert overwrites the row with the same primary key so the seed can be re-run.
func upsert(db *gorm.DB, v any) {
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(v).Error; err != nil {
		log.Fatalf("seed %T: %v", v, err)
	}
}
