package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "version: unknown", String())

	GitCommit = "abc123"
	defer func() { GitCommit = "" }()
	assert.Equal(t, "git commit: abc123\nversion: unknown", String())
}
