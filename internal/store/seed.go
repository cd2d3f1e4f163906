package store

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed data/*.json
var seedFS embed.FS

// Open returns a store seeded from the embedded fixture files. Seeding
// happens once; everything after that mutates the in-memory collections.
func Open() (*Store, error) {
	s := New()
	if err := load(seedFS, "data/users.json", &s.users); err != nil {
		return nil, err
	}
	if err := load(seedFS, "data/courses.json", &s.courses); err != nil {
		return nil, err
	}
	if err := load(seedFS, "data/lessons.json", &s.lessons); err != nil {
		return nil, err
	}
	if err := load(seedFS, "data/enrollments.json", &s.enrollments); err != nil {
		return nil, err
	}
	if err := load(seedFS, "data/quizzes.json", &s.quizzes); err != nil {
		return nil, err
	}
	if err := load(seedFS, "data/questions.json", &s.questions); err != nil {
		return nil, err
	}
	if err := load(seedFS, "data/options.json", &s.options); err != nil {
		return nil, err
	}
	if err := load(seedFS, "data/submissions.json", &s.submissions); err != nil {
		return nil, err
	}
	if err := load(seedFS, "data/progress.json", &s.progress); err != nil {
		return nil, err
	}
	if err := load(seedFS, "data/notifications.json", &s.notifications); err != nil {
		return nil, err
	}
	for i := range s.progress {
		if s.progress[i].CompletedLessonIDs == nil {
			s.progress[i].CompletedLessonIDs = []string{}
		}
	}
	return s, nil
}

func load(fs embed.FS, name string, dst interface{}) error {
	raw, err := fs.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read seed %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode seed %s: %w", name, err)
	}
	return nil
}
