package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelines(t *testing.T) {
	names, err := pipelines("all")
	assert.NoError(t, err)
	assert.Equal(t, []string{"categories", "trending"}, names)

	names, err = pipelines("trending")
	assert.NoError(t, err)
	assert.Equal(t, []string{"trending"}, names)

	_, err = pipelines("comments")
	assert.Error(t, err)
}
