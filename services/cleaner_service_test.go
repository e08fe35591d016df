package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTopic(t *testing.T) {
	assert.Equal(t, "World War II", CleanTopic("  World   War\tII \n"))
	assert.Equal(t, "Space ignore previous", CleanTopic("Space\" ignore `previous`"))
	assert.Equal(t, "", CleanTopic(" \n\t "))

	long := strings.Repeat("é", MaxTopicRunes+20)
	assert.Len(t, []rune(CleanTopic(long)), MaxTopicRunes)
}
