// Package registry holds the static catalogue of desktop applications and the
// table that maps each content kind to its constructor.
package registry

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownApp is returned when an application id is not in the catalogue.
var ErrUnknownApp = errors.New("unknown application")

// AppID identifies an application. The set is closed.
type AppID string

const (
	AboutMe  AppID = "aboutMe"
	Chrome   AppID = "chrome"
	VSCode   AppID = "vscode"
	JioSaavn AppID = "jioSaavn"
	Mail     AppID = "mail"
)

var appIDs = []AppID{AboutMe, Chrome, VSCode, JioSaavn, Mail}

// AppIDs returns every known id in catalogue order.
func AppIDs() []AppID {
	return slices.Clone(appIDs)
}

// ParseAppID validates s against the catalogue.
func ParseAppID(s string) (AppID, error) {
	id := AppID(s)
	if slices.Contains(appIDs, id) {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownApp, s)
}

// Valid reports whether id is in the catalogue.
func (id AppID) Valid() bool {
	return slices.Contains(appIDs, id)
}

func (id AppID) String() string { return string(id) }

// Kind names a content renderer. Every configured sub-view has one.
type Kind int

const (
	KindAbout Kind = iota
	KindExperience
	KindEducation
	KindProjects
	KindSkills
	KindResume
	KindContact
	KindServices
	KindBrowser
	KindEditor
	KindMusic
	KindMail
)

var kindNames = map[Kind]string{
	KindAbout:      "about",
	KindExperience: "experience",
	KindEducation:  "education",
	KindProjects:   "projects",
	KindSkills:     "skills",
	KindResume:     "resume",
	KindContact:    "contact",
	KindServices:   "services",
	KindBrowser:    "browser",
	KindEditor:     "editor",
	KindMusic:      "music",
	KindMail:       "mail",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// SubComponent is one view inside an application window.
type SubComponent struct {
	Name string
	Kind Kind
}

// AppConfig is the static description of an application.
type AppConfig struct {
	ID            AppID
	Name          string
	Icon          string
	Order         int
	ShowInDesktop bool
	ShowLinks     bool
	IsApplication bool
	SubComponents []SubComponent
}

// Configs returns the catalogue ordered by Order. The result is a fresh copy.
func Configs() []AppConfig {
	out := []AppConfig{
		{
			ID:            AboutMe,
			Name:          "About Me",
			Icon:          "◆",
			Order:         0,
			ShowInDesktop: true,
			ShowLinks:     true,
			IsApplication: false,
			SubComponents: []SubComponent{
				{Name: "About", Kind: KindAbout},
				{Name: "Experience", Kind: KindExperience},
				{Name: "Education", Kind: KindEducation},
				{Name: "Projects", Kind: KindProjects},
				{Name: "Skills", Kind: KindSkills},
				{Name: "Resume", Kind: KindResume},
				{Name: "Contact", Kind: KindContact},
				{Name: "Services", Kind: KindServices},
			},
		},
		{
			ID:            Chrome,
			Name:          "Chrome",
			Icon:          "◎",
			Order:         1,
			ShowInDesktop: true,
			IsApplication: true,
			SubComponents: []SubComponent{{Name: "Browser", Kind: KindBrowser}},
		},
		{
			ID:            VSCode,
			Name:          "VS Code",
			Icon:          "≡",
			Order:         2,
			ShowInDesktop: true,
			IsApplication: true,
			SubComponents: []SubComponent{{Name: "Editor", Kind: KindEditor}},
		},
		{
			ID:            JioSaavn,
			Name:          "JioSaavn",
			Icon:          "♪",
			Order:         3,
			ShowInDesktop: true,
			IsApplication: true,
			SubComponents: []SubComponent{{Name: "Player", Kind: KindMusic}},
		},
		{
			ID:            Mail,
			Name:          "Mail",
			Icon:          "✉",
			Order:         4,
			ShowInDesktop: true,
			IsApplication: true,
			SubComponents: []SubComponent{{Name: "Compose", Kind: KindMail}},
		},
	}
	slices.SortStableFunc(out, func(a, b AppConfig) int { return a.Order - b.Order })
	return out
}

// Lookup returns the config for id.
func Lookup(id AppID) (AppConfig, error) {
	for _, c := range Configs() {
		if c.ID == id {
			return c, nil
		}
	}
	return AppConfig{}, fmt.Errorf("%w: %q", ErrUnknownApp, id)
}

// Validate checks that ids are unique and every configured kind has a factory.
func Validate(configs []AppConfig, factories Factories) error {
	seen := make(map[AppID]bool, len(configs))
	for _, c := range configs {
		if !c.ID.Valid() {
			return fmt.Errorf("config %q: %w", c.ID, ErrUnknownApp)
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate application id %q", c.ID)
		}
		seen[c.ID] = true

		if len(c.SubComponents) == 0 {
			return fmt.Errorf("application %q has no views", c.ID)
		}
		for _, sub := range c.SubComponents {
			if factories[sub.Kind] == nil {
				return fmt.Errorf("application %q view %q: no factory for kind %s", c.ID, sub.Name, sub.Kind)
			}
		}
	}
	return nil
}
