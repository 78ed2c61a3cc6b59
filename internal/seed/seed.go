// Package seed fills the database with demo data for development and tests.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/repository"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumAuthors  int
	NumBooks    int
	NumPosts    int
	MaxComments int
	ShouldClean bool
	// SkipBcrypt stores the plain default password. Only for tests.
	SkipBcrypt  bool
	FixturePath string
	RandSeed    int64
}

// DefaultOptions is what the seed command runs with when no flags are given.
func DefaultOptions() Options {
	return Options{
		NumUsers:    20,
		NumAuthors:  10,
		NumBooks:    60,
		NumPosts:    80,
		MaxComments: 4,
		ShouldClean: true,
	}
}

// Summary counts what a run created.
type Summary struct {
	Users     int
	Authors   int
	Books     int
	Libraries int
	Posts     int
	Comments  int
	Tags      int
}

// Staff accounts created on every run, keyed by username.
var staffAccounts = []struct {
	Username string
	Role     models.Role
}{
	{"admin", models.RoleAdmin},
	{"librarian", models.RoleLibrarian},
}

// cleanOrder lists tables children first.
var cleanOrder = []string{
	"post_tags",
	"library_books",
	"comments",
	"posts",
	"tags",
	"books",
	"libraries",
	"authors",
	"profiles",
	"users",
}

type Seeder struct {
	db        *gorm.DB
	tx        *database.Transactor
	users     repository.UserRepository
	posts     repository.PostRepository
	tags      repository.TagRepository
	libraries repository.LibraryRepository
	factory   *Factory
	opts      Options
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:        db,
		tx:        database.NewTransactor(db),
		users:     repository.NewUserRepository(db),
		posts:     repository.NewPostRepository(db),
		tags:      repository.NewTagRepository(db),
		libraries: repository.NewLibraryRepository(db),
		factory:   NewFactory(db, opts.RandSeed, opts.SkipBcrypt),
		opts:      opts,
	}
}

// ClearAll deletes every seeded row.
func (s *Seeder) ClearAll(ctx context.Context) error {
	conn := database.Conn(ctx, s.db)
	for _, table := range cleanOrder {
		if err := conn.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	slog.InfoContext(ctx, "Database cleared", "tables", len(cleanOrder))
	return nil
}

// Run seeds staff accounts, the fixture catalog, random members and books,
// then posts with tags and comments. The whole run is one transaction.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	fx, err := LoadFixture(s.opts.FixturePath)
	if err != nil {
		return nil, err
	}

	sum := &Summary{}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if s.opts.ShouldClean {
			if err := s.ClearAll(ctx); err != nil {
				return err
			}
		}

		staff, err := s.seedStaff(ctx, sum)
		if err != nil {
			return err
		}
		members, err := s.seedMembers(ctx, sum)
		if err != nil {
			return err
		}
		if err := s.seedCatalog(ctx, fx, staff["librarian"], sum); err != nil {
			return err
		}

		writers := append([]*models.User{staff["admin"], staff["librarian"]}, members...)
		return s.seedPosts(ctx, fx.Tags, writers, sum)
	})
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	slog.InfoContext(ctx, "Seeding complete",
		"users", sum.Users,
		"authors", sum.Authors,
		"books", sum.Books,
		"libraries", sum.Libraries,
		"posts", sum.Posts,
		"comments", sum.Comments,
		"tags", sum.Tags,
	)
	return sum, nil
}

// seedStaff reuses staff accounts left by an earlier run.
func (s *Seeder) seedStaff(ctx context.Context, sum *Summary) (map[string]*models.User, error) {
	staff := make(map[string]*models.User, len(staffAccounts))
	for _, acct := range staffAccounts {
		user, err := s.users.GetByUsername(ctx, acct.Username)
		switch models.CodeOf(err) {
		case "":
		case models.CodeNotFound:
			user, err = s.factory.CreateUser(ctx, acct.Role, func(u *models.User) {
				u.Username = acct.Username
				u.Email = acct.Username + "@folio.local"
			})
			if err != nil {
				return nil, err
			}
			if _, err := s.factory.CreateProfile(ctx, user); err != nil {
				return nil, err
			}
			sum.Users++
		default:
			return nil, err
		}
		staff[acct.Username] = user
	}
	return staff, nil
}

func (s *Seeder) seedMembers(ctx context.Context, sum *Summary) ([]*models.User, error) {
	members := make([]*models.User, 0, s.opts.NumUsers)
	for range s.opts.NumUsers {
		user, err := s.factory.CreateUser(ctx, models.RoleMember)
		if err != nil {
			return nil, err
		}
		if _, err := s.factory.CreateProfile(ctx, user); err != nil {
			return nil, err
		}
		members = append(members, user)
	}
	sum.Users += len(members)
	return members, nil
}

func (s *Seeder) seedCatalog(ctx context.Context, fx *Fixture, librarian *models.User, sum *Summary) error {
	byTitle := make(map[string]uint)
	authors := make([]*models.Author, 0, len(fx.Authors)+s.opts.NumAuthors)

	for _, fa := range fx.Authors {
		author, err := s.factory.CreateAuthor(ctx, func(a *models.Author) { a.Name = fa.Name })
		if err != nil {
			return err
		}
		authors = append(authors, author)
		for _, fb := range fa.Books {
			book, err := s.factory.CreateBook(ctx, author, librarian, func(b *models.Book) {
				b.Title = fb.Title
				b.PublicationYear = fb.Year
				b.Description = fb.Description
			})
			if err != nil {
				return err
			}
			byTitle[book.Title] = book.ID
			sum.Books++
		}
	}

	for range s.opts.NumAuthors {
		author, err := s.factory.CreateAuthor(ctx)
		if err != nil {
			return err
		}
		authors = append(authors, author)
	}
	sum.Authors += len(authors)

	var randomBooks []uint
	for i := range s.opts.NumBooks {
		var author *models.Author
		// Every fifth book stays unlinked to exercise the free-text author.
		if len(authors) > 0 && i%5 != 4 {
			author = authors[s.factory.faker.Number(0, len(authors)-1)]
		}
		book, err := s.factory.CreateBook(ctx, author, librarian)
		if err != nil {
			return err
		}
		randomBooks = append(randomBooks, book.ID)
		sum.Books++
	}

	for _, fl := range fx.Libraries {
		library, err := s.factory.CreateLibrary(ctx, func(l *models.Library) { l.Name = fl.Name })
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(fl.Books)+3)
		for _, title := range fl.Books {
			ids = append(ids, byTitle[title])
		}
		ids = append(ids, Pick(s.factory, randomBooks, 3)...)
		if err := s.libraries.ReplaceBooks(ctx, library, ids); err != nil {
			return err
		}
		sum.Libraries++
	}
	return nil
}

func (s *Seeder) seedPosts(ctx context.Context, tagPool []string, writers []*models.User, sum *Summary) error {
	seen := make(map[uint]bool)
	for range s.opts.NumPosts {
		author := writers[s.factory.faker.Number(0, len(writers)-1)]
		post, err := s.factory.CreatePost(ctx, author)
		if err != nil {
			return err
		}
		sum.Posts++

		names := Pick(s.factory, tagPool, s.factory.faker.Number(0, 3))
		if len(names) > 0 {
			tags, err := s.tags.GetOrCreate(ctx, names)
			if err != nil {
				return err
			}
			if err := s.posts.ReplaceTags(ctx, post, tags); err != nil {
				return err
			}
			for _, t := range tags {
				seen[t.ID] = true
			}
		}

		if s.opts.MaxComments <= 0 {
			continue
		}
		for range s.factory.faker.Number(0, s.opts.MaxComments) {
			commenter := writers[s.factory.faker.Number(0, len(writers)-1)]
			if _, err := s.factory.CreateComment(ctx, post, commenter); err != nil {
				return err
			}
			sum.Comments++
		}
	}
	sum.Tags = len(seen)
	return nil
}
