package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	Init()
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	SetLevel("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetLevel("shouting")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
