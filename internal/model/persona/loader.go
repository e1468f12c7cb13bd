package persona

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Load scans dir in fsys for persona definition files, one persona per file.
// A file that cannot be read or parsed, fails validation, or repeats an id is
// logged and skipped. Only a missing or unreadable directory is an error.
func Load(fsys fs.FS, dir string) ([]Persona, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read persona directory %q: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isDefinition(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	seen := make(map[string]string, len(names))
	personas := make([]Persona, 0, len(names))
	for _, name := range names {
		file := path.Join(dir, name)
		p, err := loadFile(fsys, file)
		if err != nil {
			log.Warn().Str("component", "persona").Str("file", file).Err(err).Msg("skipping persona definition")
			continue
		}
		if first, dup := seen[p.ID]; dup {
			log.Warn().Str("component", "persona").Str("file", file).Str("id", p.ID).
				Str("first", first).Msg("skipping duplicate persona id")
			continue
		}
		seen[p.ID] = file
		personas = append(personas, p)
	}

	ids := make([]string, 0, len(personas))
	for _, p := range personas {
		ids = append(ids, p.ID)
	}
	log.Info().Str("component", "persona").Int("count", len(personas)).Strs("ids", ids).Msg("personas loaded")
	return personas, nil
}

// ParseDefinition decodes a single YAML persona definition and validates it.
func ParseDefinition(data []byte) (Persona, error) {
	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Persona{}, fmt.Errorf("parse persona yaml: %w", err)
	}
	p.ID = strings.TrimSpace(p.ID)
	if err := p.validate(); err != nil {
		return Persona{}, fmt.Errorf("invalid persona definition: %w", err)
	}
	return p, nil
}

func loadFile(fsys fs.FS, file string) (Persona, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return Persona{}, err
	}
	return ParseDefinition(data)
}

func isDefinition(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return false
	}
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
