package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefreshTestModePicksUpEnvChanges(t *testing.T) {
	t.Setenv("MILLETFLOW_TEST_MODE", "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv("MILLETFLOW_TEST_MODE", "")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
