package catalog

import (
	"strings"
	"testing"
)

const sampleYAML = `
courses:
  - id: c_gsssb
    name: "GSSSB Non-Tech"
    price: 499
    subjects:
      - id: s_maths
        name: "Maths"
        demo_video_id: 10
        demo_material_id: 11
      - id: s_reason
        name: "Reasoning"
        demo_video_id: 12
        demo_material_id: 13
  - id: c_gpsc
    name: "GPSC AE Civil"
    price: 999
    subjects:
      - id: s_survey
        name: "Surveying"
        demo_video_id: 20
        demo_material_id: 21
      - id: s_bim
        name: "Building Materials"
`

func TestParseAndLookup(t *testing.T) {
	reg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	courses := reg.Courses()
	if len(courses) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(courses))
	}
	if courses[0].ID != "c_gsssb" || courses[1].ID != "c_gpsc" {
		t.Fatalf("declaration order not preserved: %s, %s", courses[0].ID, courses[1].ID)
	}

	c, err := reg.Course("c_gpsc")
	if err != nil {
		t.Fatalf("Course: %v", err)
	}
	if c.Price != 999 {
		t.Errorf("price = %d, want 999", c.Price)
	}

	course, subj, err := reg.Subject("c_gsssb", "s_reason")
	if err != nil {
		t.Fatalf("Subject: %v", err)
	}
	if course.ID != "c_gsssb" || subj.Name != "Reasoning" {
		t.Errorf("unexpected lookup result: %s/%s", course.ID, subj.Name)
	}
	if subj.DemoVideoID != 12 || subj.DemoMaterialID != 13 {
		t.Errorf("demo ids = %d/%d, want 12/13", subj.DemoVideoID, subj.DemoMaterialID)
	}
}

func TestAbsentDemoIDsDefaultToZero(t *testing.T) {
	reg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, subj, err := reg.Subject("c_gpsc", "s_bim")
	if err != nil {
		t.Fatalf("Subject: %v", err)
	}
	if subj.DemoVideoID != 0 || subj.DemoMaterialID != 0 {
		t.Errorf("demo ids = %d/%d, want 0/0", subj.DemoVideoID, subj.DemoMaterialID)
	}
}

func TestLookupMiss(t *testing.T) {
	reg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if _, err := reg.Course("c_nope"); !IsNotFound(err) {
		t.Errorf("Course miss: err = %v, want NotFoundError", err)
	}

	_, _, err = reg.Subject("c_gsssb", "s_nope")
	if !IsNotFound(err) {
		t.Errorf("Subject miss: err = %v, want NotFoundError", err)
	}
	var nf *NotFoundError
	if ok := IsNotFound(err); ok {
		nf = err.(*NotFoundError)
		if nf.Code() != "NOT_FOUND" {
			t.Errorf("Code() = %q, want NOT_FOUND", nf.Code())
		}
	}

	// Unknown course takes precedence over unknown subject.
	_, _, err = reg.Subject("c_nope", "s_maths")
	if !IsNotFound(err) || !strings.Contains(err.Error(), "course") {
		t.Errorf("expected course miss, got %v", err)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"empty", `courses: []`},
		{"no price", `
courses:
  - id: c_x
    name: "X"
    subjects:
      - {id: s_a, name: "A"}
`},
		{"duplicate course", `
courses:
  - id: c_x
    name: "X"
    price: 1
    subjects: [{id: s_a, name: "A"}]
  - id: c_x
    name: "X2"
    price: 2
    subjects: [{id: s_b, name: "B"}]
`},
		{"duplicate subject", `
courses:
  - id: c_x
    name: "X"
    price: 1
    subjects:
      - {id: s_a, name: "A"}
      - {id: s_a, name: "A2"}
`},
		{"no subjects", `
courses:
  - id: c_x
    name: "X"
    price: 1
    subjects: []
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.yaml)); err == nil {
				t.Errorf("Parse accepted invalid catalog")
			}
		})
	}
}
