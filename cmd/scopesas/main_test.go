package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTask = `begin_version
3
end_version
begin_metric
0
end_metric
2
begin_variable
var0
-1
3
a0
a1
a2
end_variable
begin_variable
var1
-1
2
b0
b1
end_variable
0
begin_state
0
0
end_state
begin_goal
1
0 2
end_goal
2
begin_operator
inc0
0
1
0 0 -1 1
0
end_operator
begin_operator
inc0b
0
1
0 0 -1 2
0
end_operator
0
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "task.sas")
	require.NoError(t, os.WriteFile(path, []byte(sampleTask), 0644))
	return path
}

func TestRunPlainSummaryExitsZero(t *testing.T) {
	path := writeSample(t)
	var stdout, stderr bytes.Buffer
	code := Run(nil, &stdout, &stderr, []string{path})
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "variables:")
}

func TestRunJSONFormatEmitsCounters(t *testing.T) {
	path := writeSample(t)
	var stdout, stderr bytes.Buffer
	code := Run(nil, &stdout, &stderr, []string{"--format", "json", path})
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), `"variables_before"`)
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	path := writeSample(t)
	var stdout, stderr bytes.Buffer
	code := Run(nil, &stdout, &stderr, []string{"--format", "xml", path})
	assert.Equal(t, 1, code)
}

func TestRunMissingFileIsCodecError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(nil, &stdout, &stderr, []string{"/no/such/file.sas"})
	assert.Equal(t, 1, code)
}

func TestRunWriteFlagProducesScopedFile(t *testing.T) {
	path := writeSample(t)
	var stdout, stderr bytes.Buffer
	code := Run(nil, &stdout, &stderr, []string{"-w", path})
	assert.Equal(t, 0, code)

	scopedPath := path[:len(path)-len(".sas")] + "_scoped.sas"
	_, err := os.Stat(scopedPath)
	assert.NoError(t, err)
}
