package course

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// courseSchema constrains course definition files. Validation happens before
// any hashing: a definition that fails here never reaches the store.
const courseSchema = `
{
	course: string & !=""
	teeSets: [...{
		name: string & !=""
		holes: [...{
			hole: int & >=1 & <=36
			par:  int & >=3 & <=6
		}]
	}]
}
`

// Definition is a parsed course definition file: one course with one or more
// tee sets. Each (course, tee set) pair yields an independent snapshot.
type Definition struct {
	Course  string      `json:"course"`
	TeeSets []TeeSetDef `json:"teeSets"`
}

// TeeSetDef is one tee set of a definition file.
type TeeSetDef struct {
	Name  string `json:"name"`
	Holes []Hole `json:"holes"`
}

// LoadDefinition reads a YAML course definition file and validates it
// against the embedded schema.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load course definition: %w", err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("load course definition %s: %w", path, err)
	}
	return def, nil
}

// ParseDefinition parses and validates YAML course definition bytes.
func ParseDefinition(data []byte) (*Definition, error) {
	var raw struct {
		Course  string `yaml:"course"`
		TeeSets []struct {
			Name  string `yaml:"name"`
			Holes []struct {
				Hole int `yaml:"hole"`
				Par  int `yaml:"par"`
			} `yaml:"holes"`
		} `yaml:"teeSets"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	def := &Definition{Course: raw.Course}
	for _, ts := range raw.TeeSets {
		tee := TeeSetDef{Name: ts.Name}
		for _, h := range ts.Holes {
			tee.Holes = append(tee.Holes, Hole{Number: h.Hole, Par: h.Par})
		}
		def.TeeSets = append(def.TeeSets, tee)
	}

	if err := validateDefinition(def); err != nil {
		return nil, err
	}
	return def, nil
}

// validateDefinition unifies the definition with the CUE schema and checks
// the structural rules the schema cannot express (non-empty tee sets, unique
// and gapless hole numbering).
func validateDefinition(def *Definition) error {
	cueCtx := cuecontext.New()

	schema := cueCtx.CompileString(courseSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile course schema: %w", err)
	}

	value := cueCtx.Encode(def)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode course definition: %w", err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid course definition: %w", err)
	}

	if len(def.TeeSets) == 0 {
		return fmt.Errorf("invalid course definition: no tee sets")
	}
	for _, ts := range def.TeeSets {
		if len(ts.Holes) == 0 {
			return fmt.Errorf("invalid course definition: tee set %q has no holes", ts.Name)
		}
		seen := make(map[int]bool, len(ts.Holes))
		for _, h := range ts.Holes {
			if seen[h.Number] {
				return fmt.Errorf("invalid course definition: tee set %q repeats hole %d", ts.Name, h.Number)
			}
			seen[h.Number] = true
		}
		for n := 1; n <= len(ts.Holes); n++ {
			if !seen[n] {
				return fmt.Errorf("invalid course definition: tee set %q missing hole %d", ts.Name, n)
			}
		}
	}
	return nil
}

// TeeSet returns the named tee set, or false when the definition has none by
// that name.
func (d *Definition) TeeSet(name string) (TeeSetDef, bool) {
	for _, ts := range d.TeeSets {
		if ts.Name == name {
			return ts, true
		}
	}
	return TeeSetDef{}, false
}
