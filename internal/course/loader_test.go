package course

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pebbleCreekYAML = `
course: Pebble Creek
teeSets:
  - name: Blue
    holes:
      - hole: 1
        par: 4
      - hole: 2
        par: 3
      - hole: 3
        par: 5
  - name: White
    holes:
      - hole: 1
        par: 4
      - hole: 2
        par: 3
      - hole: 3
        par: 4
`

func TestParseDefinition_Valid(t *testing.T) {
	def, err := ParseDefinition([]byte(pebbleCreekYAML))
	require.NoError(t, err)

	assert.Equal(t, "Pebble Creek", def.Course)
	require.Len(t, def.TeeSets, 2)

	blue, ok := def.TeeSet("Blue")
	require.True(t, ok)
	assert.Equal(t, pebbleCreekHoles(), blue.Holes)

	_, ok = def.TeeSet("Red")
	assert.False(t, ok)
}

func TestParseDefinition_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing course name",
			yaml: "teeSets:\n  - name: Blue\n    holes:\n      - hole: 1\n        par: 4\n",
		},
		{
			name: "no tee sets",
			yaml: "course: Pebble Creek\n",
		},
		{
			name: "tee set without holes",
			yaml: "course: Pebble Creek\nteeSets:\n  - name: Blue\n    holes: []\n",
		},
		{
			name: "par out of range",
			yaml: "course: Pebble Creek\nteeSets:\n  - name: Blue\n    holes:\n      - hole: 1\n        par: 9\n",
		},
		{
			name: "duplicate hole number",
			yaml: "course: Pebble Creek\nteeSets:\n  - name: Blue\n    holes:\n      - hole: 1\n        par: 4\n      - hole: 1\n        par: 3\n",
		},
		{
			name: "gap in hole numbering",
			yaml: "course: Pebble Creek\nteeSets:\n  - name: Blue\n    holes:\n      - hole: 1\n        par: 4\n      - hole: 3\n        par: 3\n",
		},
		{
			name: "malformed yaml",
			yaml: "course: [unclosed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinition([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadDefinition_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pebble-creek.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pebbleCreekYAML), 0o644))

	def, err := LoadDefinition(path)
	require.NoError(t, err)
	assert.Equal(t, "Pebble Creek", def.Course)
}

func TestLoadDefinition_MissingFile(t *testing.T) {
	_, err := LoadDefinition(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
