package version_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ut1cat/ut1cat/internal/version"
)

func TestUserAgent(t *testing.T) {
	t.Parallel()

	ua := version.UserAgent()
	assert.True(t, strings.HasPrefix(ua, version.Name()+"/"))
	assert.NotEqual(t, version.Name()+"/", ua)
}
