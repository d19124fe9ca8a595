package researchers

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/newsdesk/pkg/models"
)

const directory = `# DC Think Tank Researchers

## Brookings   Institution

### Foreign Policy

- Jane Doe - Senior Fellow - jane.doe@brookings.edu
- Richard Roe - Director, Center on Asia
- Note: contact details change often
- Leadership & Board of Directors
- Multiple fellows - see website
- Plato - Philosopher
* Star Bullet - not a dash item

### Economic Studies

- Ann Lee - Fellow (alee@brookings.edu; press@brookings.edu)

## Heritage Foundation

- Tom Smith - Analyst - tsmith@heritage.org
  - Nested Person - Research Assistant
`

func TestParse(t *testing.T) {
	rows := Parse([]byte(directory))
	assert.Equal(t, []models.Researcher{
		{Name: "Jane Doe", ThinkTank: "Brookings Institution", Topic: "Foreign Policy", Email: "jane.doe@brookings.edu"},
		{Name: "Richard Roe", ThinkTank: "Brookings Institution", Topic: "Foreign Policy"},
		{Name: "Ann Lee", ThinkTank: "Brookings Institution", Topic: "Economic Studies", Email: "alee@brookings.edu"},
		{Name: "Tom Smith", ThinkTank: "Heritage Foundation", Email: "tsmith@heritage.org"},
		{Name: "Nested Person", ThinkTank: "Heritage Foundation"},
	}, rows)
}

func TestParseItem(t *testing.T) {
	tests := []struct {
		item string
		want string
		ok   bool
	}{
		{"Jane Doe - Fellow", "Jane Doe", true},
		{"Jane Doe", "Jane Doe", true},
		{"Cher", "", false},
		{"12 34 - numbers only", "", false},
		{"Research conducted in 2023", "", false},
		{"Positions open - apply", "", false},
		{"### Not a person - heading", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			r, ok := parseItem(tt.item)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, r.Name)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "name,think_tank,topic,email\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, []models.Researcher{
		{Name: "Jane Doe", ThinkTank: "Brookings, Inc", Topic: "Asia", Email: "j@b.org"},
	}))
	assert.Equal(t, "name,think_tank,topic,email\nJane Doe,\"Brookings, Inc\",Asia,j@b.org\n", buf.String())
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.md")
	out := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(in, []byte(directory), 0o644))

	n, err := Convert(in, out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Jane Doe,Brookings Institution,Foreign Policy,jane.doe@brookings.edu\n")
}

func TestConvertMissingInput(t *testing.T) {
	_, err := Convert(filepath.Join(t.TempDir(), "nope.md"), filepath.Join(t.TempDir(), "out.csv"))
	assert.ErrorContains(t, err, "input file not found")
}
