// Command seed fills the Folio database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()

	numUsers := flag.Int("users", defaults.NumUsers, "Number of member accounts to create")
	numAuthors := flag.Int("authors", defaults.NumAuthors, "Number of random authors to create")
	numBooks := flag.Int("books", defaults.NumBooks, "Number of random books to create")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of posts to create")
	maxComments := flag.Int("comments", defaults.MaxComments, "Maximum comments per post")
	shouldClean := flag.Bool("clean", defaults.ShouldClean, "Clean database before seeding")
	fixture := flag.String("fixture", "", "YAML catalog fixture (defaults to the bundled one)")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible content (0 picks one)")
	fast := flag.Bool("fast", false, "Store plain passwords instead of bcrypt hashes")
	flag.Parse()

	log.Println("Folio database seeder")
	log.Printf("Target: %d users, %d authors, %d books, %d posts, clean=%v",
		*numUsers, *numAuthors, *numBooks, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		NumUsers:    *numUsers,
		NumAuthors:  *numAuthors,
		NumBooks:    *numBooks,
		NumPosts:    *numPosts,
		MaxComments: *maxComments,
		ShouldClean: *shouldClean,
		SkipBcrypt:  *fast,
		FixturePath: *fixture,
		RandSeed:    *randSeed,
	})

	sum, err := s.Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d authors, %d books, %d libraries, %d posts, %d comments, %d tags",
		sum.Users, sum.Authors, sum.Books, sum.Libraries, sum.Posts, sum.Comments, sum.Tags)
	log.Printf("Staff accounts: admin, librarian. All seeded users have the password: %s", seed.DefaultPassword)
}
