// Package ut1test contains simple mocks for common interfaces and other test
// utilities.
package ut1test

import (
	"time"
)

// Timeout is the common timeout for tests.
const Timeout = 1 * time.Second
