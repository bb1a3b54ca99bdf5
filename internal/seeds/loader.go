// Package seeds loads demo fixture files: job postings with optional
// assessment definitions, used to populate a fresh install.
package seeds

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/assessment"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

// Seed is one demo job posting, optionally with an assessment attached
type Seed struct {
	Slug        string
	Title       string
	Description string
	Status      models.JobStatus
	Tags        []string
	Assessment  *models.Assessment
}

// Loader loads and caches seed fixtures
type Loader struct {
	mu    sync.RWMutex
	seeds map[string]*Seed
}

// NewLoader creates an empty seed loader
func NewLoader() *Loader {
	return &Loader{seeds: make(map[string]*Seed)}
}

// LoadFromDir loads all YAML seed files from a directory
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading seed fixtures", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load seed file", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("seed fixtures loaded", "count", loaded, "total_files", len(files))
	return nil
}

// LoadFromFile loads a single seed fixture from a YAML file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if sf.Job.Slug == "" {
		return fmt.Errorf("job slug is required")
	}
	if sf.Job.Title == "" {
		return fmt.Errorf("job title is required")
	}

	status := models.JobStatus(sf.Job.Status)
	if status == "" {
		status = models.JobActive
	}

	seed := &Seed{
		Slug:        sf.Job.Slug,
		Title:       sf.Job.Title,
		Description: sf.Job.Description,
		Status:      status,
		Tags:        sf.Job.Tags,
		Assessment:  sf.Assessment,
	}

	// A broken assessment definition in a fixture is dropped, not fatal:
	// the job itself still seeds.
	if seed.Assessment != nil {
		if res := assessment.ValidateDefinition(seed.Assessment); !res.IsValid {
			slog.Warn("seed assessment failed validation, skipping it",
				"file", path, "slug", seed.Slug, "errors", res.Errors)
			seed.Assessment = nil
		}
	}

	l.mu.Lock()
	l.seeds[seed.Slug] = seed
	l.mu.Unlock()

	slog.Info("seed fixture loaded", "slug", seed.Slug, "title", seed.Title,
		"has_assessment", seed.Assessment != nil)
	return nil
}

// Get retrieves a seed by job slug
func (l *Loader) Get(slug string) *Seed {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seeds[slug]
}

// List returns all loaded seeds
func (l *Loader) List() []*Seed {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Seed, 0, len(l.seeds))
	for _, s := range l.seeds {
		result = append(result, s)
	}
	return result
}

// Add programmatically registers a seed
func (l *Loader) Add(seed *Seed) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seeds[seed.Slug] = seed
}

// seedFile represents the YAML structure of a seed fixture
type seedFile struct {
	Job        seedJob            `yaml:"job"`
	Assessment *models.Assessment `yaml:"assessment"`
}

type seedJob struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Status      string   `yaml:"status"`
	Tags        []string `yaml:"tags"`
}
