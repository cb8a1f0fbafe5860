package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "opsintel version test-version-1.0.0")
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"ingest", "watch", "query", "ask", "stats", "docs", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestQueryFilters(t *testing.T) {
	originalType, originalSource := queryDocType, querySource
	defer func() { queryDocType, querySource = originalType, originalSource }()

	queryDocType = "markdown"
	querySource = "runbook.md"

	filters := queryFilters()
	assert.Equal(t, "markdown", filters["doc_type"])
	assert.Equal(t, "runbook.md", filters["source"])
}
