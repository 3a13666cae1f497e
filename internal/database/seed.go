package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// tagVocabulary is the fixed set of tag values the platform recognizes.
// Blogs may only reference values from this list.
var tagVocabulary = map[string]string{
	"ai":          "AI",
	"programming": "Programming",
	"web":         "Web",
	"devops":      "DevOps",
	"databases":   "Databases",
	"security":    "Security",
	"design":      "Design",
	"career":      "Career",
}

// topicVocabulary is the fixed set of topic values, parallel to tags.
var topicVocabulary = map[string]string{
	"science":     "Science",
	"technology":  "Technology",
	"engineering": "Engineering",
	"culture":     "Culture",
	"business":    "Business",
	"education":   "Education",
}

// Seed inserts the fixed tag and topic vocabularies. It is idempotent:
// values already present are left untouched, so it runs safely on every
// startup.
func Seed(db *sql.DB) error {
	for value, label := range tagVocabulary {
		if _, err := db.Exec(`
			INSERT INTO tags (value, label) VALUES ($1, $2)
			ON CONFLICT (value) DO NOTHING
		`, value, label); err != nil {
			return fmt.Errorf("seed tag %q: %w", value, err)
		}
	}

	for value, label := range topicVocabulary {
		if _, err := db.Exec(`
			INSERT INTO topics (value, label) VALUES ($1, $2)
			ON CONFLICT (value) DO NOTHING
		`, value, label); err != nil {
			return fmt.Errorf("seed topic %q: %w", value, err)
		}
	}

	slog.Info("vocabulary seeded", "tags", len(tagVocabulary), "topics", len(topicVocabulary))
	return nil
}
