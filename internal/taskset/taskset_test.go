package taskset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtsched"
)

const example = `
tasks:
  - id: 1
    wcet: 10
    bcet: 5
    deadline: 20
    period: 40
  - id: 2
    wcet: 20
    bcet: 10
    deadline: 40
    period: 40
    phase: 3
    priority: 7
    kind: soft
`

func TestDecode(t *testing.T) {
	tasks, err := Decode(strings.NewReader(example))
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, 1, tasks[0].ID())
	assert.Equal(t, rtsched.Ttick(10), tasks[0].WCET())
	assert.Equal(t, rtsched.Ttick(5), tasks[0].BCET())
	assert.Equal(t, rtsched.Ttick(20), tasks[0].RelativeDeadline())
	assert.Equal(t, rtsched.Ttick(40), tasks[0].Period())
	assert.Equal(t, rtsched.Hard, tasks[0].Kind())

	assert.Equal(t, rtsched.Ttick(3), tasks[1].Phase())
	assert.Equal(t, 7, tasks[1].Priority())
	assert.Equal(t, rtsched.Soft, tasks[1].Kind())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		invalid bool
	}{
		{"empty", "", true},
		{"no tasks", "tasks: []\n", true},
		{"duplicate id", "tasks:\n  - {id: 1, wcet: 2, bcet: 1, deadline: 4, period: 4}\n  - {id: 1, wcet: 2, bcet: 1, deadline: 4, period: 4}\n", true},
		{"bcet above wcet", "tasks:\n  - {id: 1, wcet: 2, bcet: 3, deadline: 4, period: 4}\n", true},
		{"negative phase", "tasks:\n  - {id: 1, wcet: 2, bcet: 1, deadline: 4, period: 4, phase: -1}\n", true},
		{"unknown kind", "tasks:\n  - {id: 1, wcet: 2, bcet: 1, deadline: 4, period: 4, kind: sometimes}\n", true},
		{"unknown field", "tasks:\n  - {id: 1, wcet: 2, bcet: 1, deadline: 4, period: 4, jitter: 2}\n", false},
		{"malformed", "tasks: [\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, rtsched.ErrInvalidParameters)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	tasks, err := Decode(strings.NewReader(example))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tasks))
	assert.Contains(t, buf.String(), "kind: soft")
	assert.NotContains(t, buf.String(), "kind: hard")

	again, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, again, len(tasks))
	for i := range tasks {
		assert.Equal(t, FromTask(tasks[i]), FromTask(again[i]))
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(example), 0o644))

	tasks, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
