package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/warp/sport-bonus/generate"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// workspace chdirs into a temp dir holding a generated dataset.
func workspace(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	code, _, stderr := runCLI(t, "generate", "--seed", "7", "--employees", "40", "--targets", "5", "--log-level", "error")
	require.Equal(t, 0, code, stderr)
}

func TestGenerate_WritesBothFiles(t *testing.T) {
	workspace(t)

	assert.FileExists(t, generate.HRFile)
	assert.FileExists(t, generate.ActivityFile)
}

func TestRun_JSONOutput(t *testing.T) {
	workspace(t)

	code, stdout, stderr := runCLI(t, "run", "--driver", "memory", "--output", "json", "--log-level", "error")
	require.Equal(t, 0, code, stderr)

	var doc runDocument
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.NotEmpty(t, doc.RunID)
	assert.Len(t, doc.Rows, 40)
	assert.Equal(t, 40, doc.Summary.Employees)
	assert.Equal(t, 5, doc.Summary.WellnessEligible)
	assert.Contains(t, stderr, "Pipeline finished")
	assert.Contains(t, stderr, "notification skipped")
}

func TestRun_YAMLOutput(t *testing.T) {
	workspace(t)

	code, stdout, stderr := runCLI(t, "run", "--driver", "memory", "-o", "yaml", "--no-notify", "--log-level", "error")
	require.Equal(t, 0, code, stderr)

	var doc runDocument
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))
	assert.Len(t, doc.Rows, 40)
	assert.NotContains(t, stderr, "notification")
}

func TestRun_TableOutputToSQLite(t *testing.T) {
	workspace(t)

	code, stdout, stderr := runCLI(t, "run", "--driver", "sqlite", "--no-notify", "--log-level", "error")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "employee_id")
	assert.Contains(t, stdout, "new_salary")
	assert.FileExists(t, "sport_bonus.db")
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"missing source", []string{"run", "--driver", "memory", "--hr", "absent.csv"}, 2},
		{"unknown driver", []string{"run", "--driver", "oracle"}, 1},
		{"unknown output", []string{"run", "--driver", "memory", "-o", "xml"}, 1},
		{"unknown flag", []string{"run", "--nope"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace(t)
			code, _, stderr := runCLI(t, append(tt.args, "--log-level", "error")...)
			assert.Equal(t, tt.want, code, stderr)
			assert.Contains(t, stderr, "✗")
		})
	}
}

func TestCheckOutput(t *testing.T) {
	for _, f := range []string{outputTable, outputJSON, outputYAML, outputNone} {
		assert.NoError(t, checkOutput(f))
	}
	assert.Error(t, checkOutput("csv"))
}
