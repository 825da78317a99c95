// Package catalog loads the per-stream question banks and course catalogs
// from versioned YAML files. The shipped content is embedded in the binary;
// a directory can be supplied instead to override it.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/career-guide/internal/assessment"
)

//go:embed data/*.yaml
var embedded embed.FS

// Default loads the embedded catalog.
func Default() (*assessment.Bank, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("opening embedded catalog: %w", err)
	}
	return Load(sub)
}

// LoadDir loads every stream file under dir.
func LoadDir(dir string) (*assessment.Bank, error) {
	return Load(os.DirFS(dir))
}

// Load reads every .yaml/.yml file in fsys, validates it, and builds the
// bank. Any invalid file fails the whole load, as does a tree with no
// stream files.
func Load(fsys fs.FS) (*assessment.Bank, error) {
	var contents []assessment.StreamContent

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !(strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")) {
			return nil
		}

		c, err := loadStream(fsys, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		contents = append(contents, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("loading catalog: no stream files found")
	}

	slices.SortStableFunc(contents, func(a, b assessment.StreamContent) int {
		return slices.Index(assessment.AllStreams, a.Info.Stream) - slices.Index(assessment.AllStreams, b.Info.Stream)
	})

	bank, err := assessment.NewBank(contents...)
	if err != nil {
		return nil, err
	}

	for _, c := range contents {
		slog.Info("catalog stream loaded",
			"stream", c.Info.Stream,
			"questions", len(c.Questions),
			"courses", len(c.Courses),
		)
	}
	return bank, nil
}

func loadStream(fsys fs.FS, path string) (assessment.StreamContent, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return assessment.StreamContent{}, err
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return assessment.StreamContent{}, fmt.Errorf("parsing yaml: %w", err)
	}
	if err := validateDocument(raw); err != nil {
		return assessment.StreamContent{}, err
	}

	var doc streamFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return assessment.StreamContent{}, fmt.Errorf("decoding stream: %w", err)
	}

	return toContent(doc), nil
}

func toContent(doc streamFile) assessment.StreamContent {
	c := assessment.StreamContent{
		Info: assessment.StreamInfo{
			Stream:      assessment.Stream(doc.Stream),
			Name:        doc.Name,
			Description: doc.Description,
		},
		Questions: make([]assessment.Question, 0, len(doc.Questions)),
		Courses:   make([]assessment.CourseCatalogEntry, 0, len(doc.Courses)),
	}

	for _, q := range doc.Questions {
		opts := make([]assessment.Option, 0, len(q.Options))
		for _, o := range q.Options {
			opts = append(opts, assessment.Option{
				ID:     o.ID,
				Text:   o.Text,
				Traits: NormalizeTraits(o.Traits),
			})
		}
		c.Questions = append(c.Questions, assessment.Question{
			ID:       q.ID,
			Scenario: q.Scenario,
			Options:  opts,
		})
	}

	for _, course := range doc.Courses {
		c.Courses = append(c.Courses, assessment.CourseCatalogEntry{
			Name:           course.Name,
			RequiredTraits: NormalizeTraits(course.RequiredTraits),
			Careers:        course.Careers,
			SalaryRange:    course.SalaryRange,
			Duration:       course.Duration,
			Description:    course.Description,
		})
	}
	return c
}

// NormalizeTrait folds a trait tag to its canonical form: NFKC, lower case,
// inner whitespace replaced by hyphens.
func NormalizeTrait(t string) string {
	t = cases.Lower(language.Und).String(norm.NFKC.String(t))
	return strings.Join(strings.Fields(t), "-")
}

// NormalizeTraits normalizes and de-duplicates tags, keeping first
// occurrence order. Empty tags are dropped.
func NormalizeTraits(traits []string) []string {
	out := make([]string, 0, len(traits))
	for _, t := range traits {
		n := NormalizeTrait(t)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}
