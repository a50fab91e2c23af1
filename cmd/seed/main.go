// Package main provides a tool to seed the database with a sample catalog.
//
// This creates a set of well-known books, a few test readers, and random
// reviews so search, genre listings, and rating aggregates have data to
// work against during development.
//
// Usage:
//
//	DATA_PATH=~/Ebookd/data go run ./cmd/seed
//	DATA_PATH=~/Ebookd/data go run ./cmd/seed --reviews=0  # Books only
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

	"github.com/Amir-Wake/Ebookd/internal/domain"
	"github.com/Amir-Wake/Ebookd/internal/id"
	"github.com/Amir-Wake/Ebookd/internal/keywords"
	"github.com/Amir-Wake/Ebookd/internal/store"
)

var reviewsPerBook = flag.Int("reviews", 3, "Maximum random reviews per book (0 disables)")

type seedBook struct {
	title     string
	author    string
	publisher string
	language  string
	pages     int
	genres    []string
}

var catalog = []seedBook{
	{"Dune", "Frank Herbert", "Chilton Books", "en", 412, []string{"Science Fiction", "Classic"}},
	{"The Hobbit", "J.R.R. Tolkien", "George Allen & Unwin", "en", 310, []string{"Fantasy", "Classic"}},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "Ace Books", "en", 304, []string{"Science Fiction"}},
	{"Mistborn: The Final Empire", "Brandon Sanderson", "Tor Books", "en", 541, []string{"Fantasy"}},
	{"Snow Crash", "Neal Stephenson", "Bantam Books", "en", 440, []string{"Science Fiction", "Cyberpunk"}},
	{"Pride and Prejudice", "Jane Austen", "T. Egerton", "en", 432, []string{"Classic", "Romance"}},
	{"The Name of the Wind", "Patrick Rothfuss", "DAW Books", "en", 662, []string{"Fantasy"}},
	{"Neuromancer", "William Gibson", "Ace Books", "en", 271, []string{"Science Fiction", "Cyberpunk"}},
	{"Station Eleven", "Emily St. John Mandel", "Knopf", "en", 333, []string{"Science Fiction", "Literary"}},
	{"The Fifth Season", "N.K. Jemisin", "Orbit", "en", 468, []string{"Fantasy"}},
}

var readerNames = []string{"ada", "brendan", "grace", "ken", "rob"}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Ebookd/data")
	}
	dbPath := filepath.Join(dataPath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	books := seedBooks(ctx, s)

	if *reviewsPerBook > 0 {
		users := seedUsers(ctx, s)
		seedReviews(ctx, s, rng, books, users)
	}

	fmt.Println("\nDone.")
}

func seedBooks(ctx context.Context, s *store.Store) []*domain.Book {
	var created []*domain.Book

	for _, sb := range catalog {
		book := &domain.Book{
			Title:       sb.title,
			Author:      sb.author,
			Publisher:   sb.publisher,
			Language:    sb.language,
			PrintLength: sb.pages,
			Genres:      keywords.GenreSlugs(sb.genres),
			Keywords:    keywords.Generate(sb.title, sb.author),
		}
		book.ID = id.MustGenerate("book")
		book.InitTimestamps()

		if err := s.CreateBook(ctx, book); err != nil {
			log.Printf("Failed to create %q: %v", sb.title, err)
			continue
		}
		fmt.Printf("Created book: %s (%s)\n", book.Title, book.ID)
		created = append(created, book)
	}

	return created
}

func seedUsers(ctx context.Context, s *store.Store) []*domain.User {
	var users []*domain.User

	for _, name := range readerNames {
		user, err := s.EnsureUser(ctx, "seed-"+name, name+"@example.com")
		if err != nil {
			log.Printf("Failed to create user %s: %v", name, err)
			continue
		}
		users = append(users, user)
	}

	fmt.Printf("Created %d users\n", len(users))
	return users
}

func seedReviews(ctx context.Context, s *store.Store, rng *rand.Rand, books []*domain.Book, users []*domain.User) {
	comments := []string{
		"Could not put it down.",
		"Slow start but worth it.",
		"A new favorite.",
		"Not for me, but well written.",
		"Reread material.",
	}

	total := 0
	for _, book := range books {
		n := rng.Intn(*reviewsPerBook + 1)
		for _, user := range pickUsers(rng, users, n) {
			review := &domain.Review{
				BookID:  book.ID,
				UserID:  user.ID,
				Rating:  domain.MinRating + rng.Intn(domain.MaxRating-domain.MinRating+1),
				Comment: comments[rng.Intn(len(comments))],
			}
			review.ID = id.MustGenerate("review")
			review.InitTimestamps()

			if err := s.AddReview(ctx, review); err != nil {
				log.Printf("Failed to review %q as %s: %v", book.Title, user.ID, err)
				continue
			}
			total++
		}
	}

	fmt.Printf("Created %d reviews\n", total)
}

// pickUsers returns n distinct users in random order.
func pickUsers(rng *rand.Rand, users []*domain.User, n int) []*domain.User {
	if n > len(users) {
		n = len(users)
	}
	perm := rng.Perm(len(users))
	picked := make([]*domain.User, 0, n)
	for _, idx := range perm[:n] {
		picked = append(picked, users[idx])
	}
	return picked
}
