// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	assert.Equal(t, "value", ParseString("TEST_STR", "default"))
	assert.Equal(t, "default", ParseString("TEST_STR_MISSING", "default"))

	t.Setenv("TEST_STR_EMPTY", "")
	assert.Equal(t, "default", ParseString("TEST_STR_EMPTY", "default"))
}

func TestParseInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, ParseInt("TEST_INT", 7))

	t.Setenv("TEST_INT_BAD", "not-a-number")
	assert.Equal(t, 7, ParseInt("TEST_INT_BAD", 7))

	assert.Equal(t, 7, ParseInt("TEST_INT_MISSING", 7))
}

func TestParseBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, ParseBool("TEST_BOOL", false))

	t.Setenv("TEST_BOOL_NUM", "1")
	assert.True(t, ParseBool("TEST_BOOL_NUM", false))

	t.Setenv("TEST_BOOL_BAD", "yep")
	assert.False(t, ParseBool("TEST_BOOL_BAD", false))
}

func TestParseDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, ParseDuration("TEST_DUR", time.Minute))

	t.Setenv("TEST_DUR_BAD", "ninety")
	assert.Equal(t, time.Minute, ParseDuration("TEST_DUR_BAD", time.Minute))
}

func TestParseFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.25")
	assert.Equal(t, 0.25, ParseFloat("TEST_FLOAT", 1.0))
	assert.Equal(t, 1.0, ParseFloat("TEST_FLOAT_MISSING", 1.0))
}
