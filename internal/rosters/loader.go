package rosters

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/preston-bernstein/derby-clock-service/internal/domain/roster"
)

var ErrNotFound = errors.New("roster not found")

// Entry is a catalog listing.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog is the set of rosters available to start a bout with.
type Catalog struct {
	rosters map[string]*roster.Roster
}

// NewCatalog wraps already loaded rosters keyed by ID.
func NewCatalog(rosters map[string]*roster.Roster) *Catalog {
	c := &Catalog{rosters: make(map[string]*roster.Roster, len(rosters))}
	for id, r := range rosters {
		c.rosters[id] = r
	}
	return c
}

// LoadDir reads every .txt, .yaml and .yml file in dir. The file name
// without its extension is the roster ID. A missing directory yields an
// empty catalog.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return NewCatalog(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read roster dir: %w", err)
	}

	loaded := make(map[string]*roster.Roster)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		var parse func(io.Reader) (*roster.Roster, error)
		switch ext {
		case ".txt":
			parse = ParseText
		case ".yaml", ".yml":
			parse = ParseYAML
		default:
			continue
		}
		r, err := parseFile(filepath.Join(dir, e.Name()), parse)
		if err != nil {
			return nil, err
		}
		loaded[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = r
	}
	return NewCatalog(loaded), nil
}

func parseFile(path string, parse func(io.Reader) (*roster.Roster, error)) (*roster.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster %s: %w", path, err)
	}
	defer f.Close()

	r, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	return r, nil
}

// ParseText reads the plain roster format: the team name on the first line,
// then one "number<TAB>name" line per skater.
func ParseText(in io.Reader) (*roster.Roster, error) {
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("empty roster")
	}
	name := sc.Text()

	var skaters []roster.Skater
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		number, skaterName, _ := strings.Cut(line, "\t")
		skaters = append(skaters, roster.Skater{Number: number, Name: skaterName})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return roster.New(name, skaters)
}

type yamlRoster struct {
	Name    string `yaml:"name"`
	Skaters []struct {
		Number string `yaml:"number"`
		Name   string `yaml:"name"`
	} `yaml:"skaters"`
}

// ParseYAML reads a roster document with name and skaters keys.
func ParseYAML(in io.Reader) (*roster.Roster, error) {
	var doc yamlRoster
	if err := yaml.NewDecoder(in).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	skaters := make([]roster.Skater, 0, len(doc.Skaters))
	for _, s := range doc.Skaters {
		skaters = append(skaters, roster.Skater{Number: s.Number, Name: s.Name})
	}
	return roster.New(doc.Name, skaters)
}

// Get returns the roster with the given ID.
func (c *Catalog) Get(id string) (*roster.Roster, error) {
	r, ok := c.rosters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

// List returns every roster sorted by ID.
func (c *Catalog) List() []Entry {
	out := make([]Entry, 0, len(c.rosters))
	for id, r := range c.rosters {
		out = append(out, Entry{ID: id, Name: r.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
