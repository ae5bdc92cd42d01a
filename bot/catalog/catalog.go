// Package catalog defines the immutable course/subject tree the storefront
// serves. The tree is loaded once at startup from a YAML file and never
// mutated afterwards, so lookups are lock-free.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Subject is a single teachable unit inside a course. Demo identifiers are
// Telegram message ids inside the demo channel; zero means no demo of that
// kind exists for the subject.
type Subject struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	DemoVideoID     int    `yaml:"demo_video_id"`
	DemoMaterialID  int    `yaml:"demo_material_id"`
}

// Course groups subjects under a priced offering.
type Course struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Price    int       `yaml:"price"`
	Subjects []Subject `yaml:"subjects"`
}

type catalogFile struct {
	Courses []Course `yaml:"courses"`
}

// Registry provides lookups over the loaded catalog.
type Registry struct {
	courses  []Course
	byID     map[string]*Course
	subjects map[string]map[string]*Subject
}

// Load reads and validates a catalog definition from path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Registry from raw YAML.
func Parse(data []byte) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if len(file.Courses) == 0 {
		return nil, fmt.Errorf("catalog: no courses defined")
	}

	reg := &Registry{
		courses:  file.Courses,
		byID:     make(map[string]*Course, len(file.Courses)),
		subjects: make(map[string]map[string]*Subject, len(file.Courses)),
	}

	for i := range reg.courses {
		course := &reg.courses[i]
		course.ID = strings.TrimSpace(course.ID)
		if course.ID == "" {
			return nil, fmt.Errorf("catalog: course %d: empty id", i)
		}
		if course.Name == "" {
			return nil, fmt.Errorf("catalog: course %s: empty name", course.ID)
		}
		if course.Price <= 0 {
			return nil, fmt.Errorf("catalog: course %s: price must be > 0", course.ID)
		}
		if _, dup := reg.byID[course.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate course id %s", course.ID)
		}
		if len(course.Subjects) == 0 {
			return nil, fmt.Errorf("catalog: course %s: no subjects", course.ID)
		}

		reg.byID[course.ID] = course
		subjIndex := make(map[string]*Subject, len(course.Subjects))
		for j := range course.Subjects {
			subj := &course.Subjects[j]
			subj.ID = strings.TrimSpace(subj.ID)
			if subj.ID == "" {
				return nil, fmt.Errorf("catalog: course %s: subject %d: empty id", course.ID, j)
			}
			if subj.Name == "" {
				return nil, fmt.Errorf("catalog: course %s: subject %s: empty name", course.ID, subj.ID)
			}
			if subj.DemoVideoID < 0 || subj.DemoMaterialID < 0 {
				return nil, fmt.Errorf("catalog: course %s: subject %s: negative demo id", course.ID, subj.ID)
			}
			if _, dup := subjIndex[subj.ID]; dup {
				return nil, fmt.Errorf("catalog: course %s: duplicate subject id %s", course.ID, subj.ID)
			}
			subjIndex[subj.ID] = subj
		}
		reg.subjects[course.ID] = subjIndex
	}

	return reg, nil
}

// Courses returns courses in their declaration order.
func (r *Registry) Courses() []Course {
	return r.courses
}

// Course returns the course with the given id.
func (r *Registry) Course(id string) (*Course, error) {
	if c, ok := r.byID[id]; ok {
		return c, nil
	}
	return nil, &NotFoundError{Kind: "course", ID: id}
}

// Subject returns the subject within a course.
func (r *Registry) Subject(courseID, subjectID string) (*Course, *Subject, error) {
	c, ok := r.byID[courseID]
	if !ok {
		return nil, nil, &NotFoundError{Kind: "course", ID: courseID}
	}
	s, ok := r.subjects[courseID][subjectID]
	if !ok {
		return nil, nil, &NotFoundError{Kind: "subject", ID: subjectID}
	}
	return c, s, nil
}
