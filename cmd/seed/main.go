// Package main provides a tool to seed the database with demo reading data.
//
// This creates a small catalog of books and, optionally, test users with
// realistic reading sessions spread over the past two weeks so the stats
// endpoints have something to report.
//
// Usage:
//
//	DATA_PATH=~/PageTurn/data go run ./cmd/seed
//	DATA_PATH=~/PageTurn/data go run ./cmd/seed --create-users
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/auth"
	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
)

var createUsers = flag.Bool("create-users", false, "Create test users with reading history")

var catalog = []struct {
	title, author, short string
	year                 int
}{
	{"The Trial", "Franz Kafka", "A man is arrested and prosecuted for an unnamed crime.", 1925},
	{"Anna Karenina", "Leo Tolstoy", "A married aristocrat's affair unravels her world.", 1878},
	{"The Master and Margarita", "Mikhail Bulgakov", "The devil visits Soviet Moscow.", 1967},
	{"Invisible Cities", "Italo Calvino", "Marco Polo describes fantastical cities to Kublai Khan.", 1972},
	{"Stoner", "John Williams", "The quiet life of a university professor.", 1965},
	{"The Leopard", "Giuseppe Tomasi di Lampedusa", "A Sicilian prince watches his world fade.", 1958},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dataPath = filepath.Join(home, "PageTurn", "data")
	}
	dbPath := filepath.Join(dataPath, "pageturn.db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	seedBooks(ctx, st)

	if *createUsers {
		createTestUsers(ctx, st)
	}

	users, err := st.ListUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to get users: %v", err)
	}
	if len(users) == 0 {
		fmt.Println("No users in database; run with --create-users or sign up via the API.")
		return
	}

	books, err := st.ListBooks(ctx)
	if err != nil {
		log.Fatalf("Failed to list books: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, user := range users {
		fmt.Printf("\nSeeding sessions for user: %s (%s)\n", user.Username, user.ID)
		created := seedSessions(ctx, st, rng, user.ID, books)
		fmt.Printf("  Created %d sessions\n", created)
	}

	fmt.Println("\nDone. Run the server and hit /api/v1/statistic/users/me.")
}

// seedBooks inserts the demo catalog, skipping titles that already exist.
func seedBooks(ctx context.Context, st *sqlite.Store) {
	existing, err := st.ListBooks(ctx)
	if err != nil {
		log.Fatalf("Failed to list books: %v", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, b := range existing {
		seen[b.Title] = true
	}

	for _, entry := range catalog {
		if seen[entry.title] {
			continue
		}
		bookID, err := id.Generate("book")
		if err != nil {
			log.Fatalf("Failed to generate book ID: %v", err)
		}
		book := &domain.Book{
			ID:               bookID,
			Title:            entry.title,
			Author:           entry.author,
			Year:             entry.year,
			ShortDescription: entry.short,
		}
		book.InitTimestamps()
		if err := st.CreateBook(ctx, book); err != nil {
			log.Fatalf("Failed to create book %q: %v", entry.title, err)
		}
		fmt.Printf("Created book: %s\n", entry.title)
	}
}

// createTestUsers adds a handful of accounts with a known password.
func createTestUsers(ctx context.Context, st *sqlite.Store) {
	names := []string{"ada", "grace", "edsger"}
	for _, name := range names {
		if _, err := st.GetUserByUsername(ctx, name); err == nil {
			continue
		}

		hash, err := auth.HashPassword("reading is fun")
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		userID, err := id.Generate("usr")
		if err != nil {
			log.Fatalf("Failed to generate user ID: %v", err)
		}

		now := time.Now().UTC()
		user := &domain.User{
			ID:           userID,
			Username:     name,
			Email:        name + "@example.com",
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := st.CreateUser(ctx, user); err != nil {
			log.Fatalf("Failed to create user %q: %v", name, err)
		}
		fmt.Printf("Created user: %s (password: \"reading is fun\")\n", name)
	}
}

// seedSessions writes terminated sessions over the past 14 days.
func seedSessions(ctx context.Context, st *sqlite.Store, rng *rand.Rand, userID string, books []*domain.Book) int {
	if len(books) == 0 {
		return 0
	}

	now := time.Now().UTC()
	created := 0

	for day := 13; day >= 0; day-- {
		// Skip some days for realism.
		if day > 1 && rng.Float32() > 0.8 {
			continue
		}

		book := books[rng.Intn(len(books))]

		// An evening read of 20-80 minutes.
		start := now.AddDate(0, 0, -day).
			Truncate(24 * time.Hour).
			Add(time.Duration(19+rng.Intn(3)) * time.Hour)
		length := time.Duration(20+rng.Intn(61)) * time.Minute

		if _, err := st.StartSession(ctx, userID, book.ID, start); err != nil {
			log.Printf("Failed to start session for %s: %v", userID, err)
			continue
		}
		if _, err := st.EndSessions(ctx, userID, book.ID, start.Add(length)); err != nil {
			log.Printf("Failed to end session for %s: %v", userID, err)
			continue
		}
		created++
	}

	return created
}
