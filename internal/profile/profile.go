// Package profile loads the portfolio content shown by the desktop applications.
package profile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Profile is the portfolio owner and everything the apps display about them.
type Profile struct {
	Name     string   `yaml:"name"`
	Title    string   `yaml:"title"`
	Tagline  string   `yaml:"tagline"`
	Location string   `yaml:"location"`
	Email    string   `yaml:"email"`
	Phone    string   `yaml:"phone,omitempty"`
	Links    []Link   `yaml:"links"`
	About    []string `yaml:"about"`

	Experience []Experience `yaml:"experience"`
	Education  []Education  `yaml:"education"`
	Projects   []Project    `yaml:"projects"`
	Skills     []SkillGroup `yaml:"skills"`
	Resume     Resume       `yaml:"resume"`
	Services   []Service    `yaml:"services"`

	Readme    Document `yaml:"readme"`
	Playlist  []Track  `yaml:"playlist"`
	Bookmarks []Link   `yaml:"bookmarks"`
}

type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

type Experience struct {
	Company    string   `yaml:"company"`
	Role       string   `yaml:"role"`
	Period     string   `yaml:"period"`
	Location   string   `yaml:"location"`
	Highlights []string `yaml:"highlights"`
}

type Education struct {
	School string `yaml:"school"`
	Degree string `yaml:"degree"`
	Period string `yaml:"period"`
	Notes  string `yaml:"notes,omitempty"`
}

type Project struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tech        []string `yaml:"tech"`
	URL         string   `yaml:"url,omitempty"`
}

type SkillGroup struct {
	Group string   `yaml:"group"`
	Items []string `yaml:"items"`
}

type Resume struct {
	URL     string   `yaml:"url"`
	Summary []string `yaml:"summary"`
}

type Service struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Document is a named text file shown in the code viewer.
type Document struct {
	Filename string `yaml:"filename"`
	Body     string `yaml:"body"`
}

// Track is one playlist entry. Length is in seconds.
type Track struct {
	Title  string `yaml:"title"`
	Artist string `yaml:"artist"`
	Length int    `yaml:"length"`
}

// Default returns the bundled profile.
func Default() *Profile {
	p, err := Parse(bytes.NewReader(defaultYAML))
	if err != nil {
		panic(fmt.Sprintf("bundled profile is invalid: %v", err))
	}
	return p
}

// Load reads a profile from path. An empty path returns the bundled profile.
func Load(path string) (*Profile, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	defer func() { _ = f.Close() }()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a YAML profile. Unknown fields are rejected.
func Parse(r io.Reader) (*Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("profile is empty")
		}
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the fields every app relies on.
func (p *Profile) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		problems = append(problems, "email is required")
	}
	for i, t := range p.Playlist {
		if t.Length <= 0 {
			problems = append(problems, fmt.Sprintf("playlist[%d] %q: length must be positive", i, t.Title))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid profile: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Marshal encodes the profile as YAML.
func (p *Profile) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}
