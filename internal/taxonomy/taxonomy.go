package taxonomy

import (
	"encoding/json"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Entry is a single canonical skill from the ESCO taxonomy. Entries are
// identified by their position in the loaded slice; Skill is the canonical
// label reported downstream.
type Entry struct {
	Skill       string `json:"skill"`
	Description string `json:"description"`
}

// Default returns the built-in taxonomy subset used when no taxonomy file is
// available.
func Default() []Entry {
	return []Entry{
		{Skill: "Python programming", Description: "Write and debug code in Python."},
		{Skill: "SQL", Description: "Query relational databases using SQL."},
		{Skill: "Communication", Description: "Effective verbal and written communication."},
		{Skill: "Problem-solving", Description: "Analyze and resolve complex issues."},
		{Skill: "Agile methodologies", Description: "Experience with Agile processes."},
	}
}

// Load reads the taxonomy from a JSON file. Records without a skill name are
// skipped. An absent or unreadable file is not fatal: the built-in default
// subset is returned instead.
func Load(path string, logger *zap.Logger) []Entry {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("taxonomy file is not readable, using default subset",
			zap.String("path", path),
			zap.Error(err),
		)
		return Default()
	}

	var raw []Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("taxonomy file is not valid JSON, using default subset",
			zap.String("path", path),
			zap.Error(err),
		)
		return Default()
	}

	entries := make([]Entry, 0, len(raw))
	for _, entry := range raw {
		if strings.TrimSpace(entry.Skill) == "" {
			continue
		}
		entries = append(entries, entry)
	}

	logger.Info("loaded taxonomy",
		zap.String("path", path),
		zap.Int("entries", len(entries)),
	)

	return entries
}

// Texts returns the embedding input for each entry, skill name joined with its
// description. The order matches the entries slice.
func Texts(entries []Entry) []string {
	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Skill + ": " + entry.Description
	}
	return texts
}

// Names returns the skill labels in entry order.
func Names(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Skill
	}
	return names
}
