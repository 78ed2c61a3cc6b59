package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"folio/internal/database"
	"folio/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded user signs in with.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and by tests.
type Factory struct {
	db         *gorm.DB
	faker      *gofakeit.Faker
	skipBcrypt bool
	now        func() time.Time
	seq        int
}

// NewFactory creates a Factory bound to db. A zero seed picks one from the
// clock; any other value makes the generated content reproducible.
func NewFactory(db *gorm.DB, seed int64, skipBcrypt bool) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:         db,
		faker:      gofakeit.New(seed),
		skipBcrypt: skipBcrypt,
		now:        time.Now,
	}
}

func (f *Factory) conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, f.db)
}

func (f *Factory) next() int {
	f.seq++
	return f.seq
}

func (f *Factory) password() (string, error) {
	if f.skipBcrypt {
		return DefaultPassword, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CreateUser persists a user with the given role. Usernames and emails get
// a sequence suffix so repeated calls never collide.
func (f *Factory) CreateUser(ctx context.Context, role models.Role, overrides ...func(*models.User)) (*models.User, error) {
	password, err := f.password()
	if err != nil {
		return nil, err
	}

	n := f.next()
	user := &models.User{
		Username: fmt.Sprintf("%s%d", strings.ToLower(f.faker.Username()), n),
		Email:    fmt.Sprintf("user%d.%s", n, strings.ToLower(f.faker.Email())),
		Password: password,
		Role:     role,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.conn(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %q: %w", user.Username, err)
	}
	return user, nil
}

// CreateProfile gives user a bio and avatar.
func (f *Factory) CreateProfile(ctx context.Context, user *models.User) (*models.Profile, error) {
	profile := &models.Profile{
		UserID: user.ID,
		Bio:    f.faker.Sentence(12),
		Avatar: fmt.Sprintf("https://picsum.photos/seed/%s/200/200", f.faker.UUID()),
	}
	if err := f.conn(ctx).Create(profile).Error; err != nil {
		return nil, fmt.Errorf("create profile for user %d: %w", user.ID, err)
	}
	return profile, nil
}

func (f *Factory) CreateAuthor(ctx context.Context, overrides ...func(*models.Author)) (*models.Author, error) {
	author := &models.Author{Name: f.faker.Name()}
	for _, override := range overrides {
		override(author)
	}
	if err := f.conn(ctx).Omit("Books").Create(author).Error; err != nil {
		return nil, fmt.Errorf("create author %q: %w", author.Name, err)
	}
	return author, nil
}

// CreateBook persists a book. When author is non-nil the book is linked to it
// and carries its display name.
func (f *Factory) CreateBook(ctx context.Context, author *models.Author, createdBy *models.User, overrides ...func(*models.Book)) (*models.Book, error) {
	book := &models.Book{
		Title:           strings.TrimSuffix(f.faker.Sentence(3), "."),
		Author:          f.faker.Name(),
		PublicationYear: f.faker.Number(1850, f.now().Year()),
		Description:     f.faker.Paragraph(1, 3, 12, " "),
	}
	if author != nil {
		book.Author = author.Name
		book.AuthorID = &author.ID
	}
	if createdBy != nil {
		book.CreatedByID = &createdBy.ID
	}
	for _, override := range overrides {
		override(book)
	}

	if err := f.conn(ctx).Create(book).Error; err != nil {
		return nil, fmt.Errorf("create book %q: %w", book.Title, err)
	}
	return book, nil
}

// CreateLibrary reuses an existing library with the same name.
func (f *Factory) CreateLibrary(ctx context.Context, overrides ...func(*models.Library)) (*models.Library, error) {
	library := &models.Library{Name: fmt.Sprintf("%s Library %d", f.faker.City(), f.next())}
	for _, override := range overrides {
		override(library)
	}
	err := f.conn(ctx).Omit("Books").Where(models.Library{Name: library.Name}).FirstOrCreate(library).Error
	if err != nil {
		return nil, fmt.Errorf("create library %q: %w", library.Name, err)
	}
	return library, nil
}

// CreatePost persists a post by user, published somewhere in the last
// ninety days. Tags are attached separately.
func (f *Factory) CreatePost(ctx context.Context, user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	back := time.Duration(f.faker.Number(0, 90*24*60)) * time.Minute
	post := &models.Post{
		Title:         strings.TrimSuffix(f.faker.Sentence(5), "."),
		Content:       f.faker.Paragraph(1, 3, 10, "\n"),
		UserID:        user.ID,
		PublishedDate: f.now().Add(-back).UTC(),
	}
	for _, override := range overrides {
		override(post)
	}
	if err := f.conn(ctx).Omit("User", "Tags").Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post %q: %w", post.Title, err)
	}
	return post, nil
}

func (f *Factory) CreateComment(ctx context.Context, post *models.Post, user *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		Content: f.faker.Sentence(f.faker.Number(4, 16)),
		UserID:  user.ID,
		PostID:  post.ID,
	}
	if err := f.conn(ctx).Omit("User").Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment on post %d: %w", post.ID, err)
	}
	return comment, nil
}

// Pick returns up to n distinct items of pool in random order.
func Pick[T any](f *Factory, pool []T, n int) []T {
	if n > len(pool) {
		n = len(pool)
	}
	shuffled := make([]T, len(pool))
	copy(shuffled, pool)
	f.faker.ShuffleAnySlice(shuffled)
	return shuffled[:n]
}
