package roadchain

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEasterDaysUntil(t *testing.T) {
	defer func(orig func() time.Time) { now = orig }(now)
	now = func() time.Time {
		return time.Date(2024, time.March, 30, 9, 0, 0, 0, time.UTC)
	}

	buf := new(bytes.Buffer)
	RootCmd.SetOut(buf)
	RootCmd.SetArgs([]string{"easter", "--facts", "", "--logLevel", "error"})
	_, err := RootCmd.ExecuteC()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Easter 2024:          Sunday, March 31")
	assert.Contains(t, buf.String(), "Days until Easter:  1")
}
