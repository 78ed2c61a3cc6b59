package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/catalog.yaml
var defaultFixture []byte

// Fixture is a hand-written catalog loaded before the random content.
type Fixture struct {
	Authors   []FixtureAuthor  `yaml:"authors"`
	Libraries []FixtureLibrary `yaml:"libraries"`
	Tags      []string         `yaml:"tags"`
}

type FixtureAuthor struct {
	Name  string        `yaml:"name"`
	Books []FixtureBook `yaml:"books"`
}

type FixtureBook struct {
	Title       string `yaml:"title"`
	Year        int    `yaml:"year"`
	Description string `yaml:"description"`
}

// FixtureLibrary lists its books by title.
type FixtureLibrary struct {
	Name  string   `yaml:"name"`
	Books []string `yaml:"books"`
}

// DefaultFixture returns the catalog bundled with the binary.
func DefaultFixture() (*Fixture, error) {
	return ParseFixture(defaultFixture)
}

// LoadFixture reads a fixture file. An empty path yields the bundled one.
func LoadFixture(path string) (*Fixture, error) {
	if path == "" {
		return DefaultFixture()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes YAML and checks that every library refers to books
// the fixture declares.
func ParseFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	titles := make(map[string]bool)
	for _, a := range fx.Authors {
		if strings.TrimSpace(a.Name) == "" {
			return nil, fmt.Errorf("parse fixture: author without a name")
		}
		for _, b := range a.Books {
			if strings.TrimSpace(b.Title) == "" {
				return nil, fmt.Errorf("parse fixture: book without a title under %q", a.Name)
			}
			titles[b.Title] = true
		}
	}
	for _, l := range fx.Libraries {
		for _, title := range l.Books {
			if !titles[title] {
				return nil, fmt.Errorf("parse fixture: library %q lists unknown book %q", l.Name, title)
			}
		}
	}
	return &fx, nil
}
