package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCode(t *testing.T) {
	code, err := extractCode("4/0Abc", "s1")
	require.NoError(t, err)
	assert.Equal(t, "4/0Abc", code)

	code, err = extractCode("http://localhost/?state=s1&code=4%2F0Xyz&scope=x", "s1")
	require.NoError(t, err)
	assert.Equal(t, "4/0Xyz", code)

	_, err = extractCode("http://localhost/?state=other&code=c", "s1")
	assert.EqualError(t, err, "state mismatch")

	_, err = extractCode("http://localhost/?code=c", "s1")
	assert.EqualError(t, err, "state mismatch")

	_, err = extractCode("http://localhost/?error=access_denied&state=s1", "s1")
	assert.EqualError(t, err, "authorization denied: access_denied")
}
