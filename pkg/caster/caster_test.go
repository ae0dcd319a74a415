package caster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	Throttle int  `json:"throttle"`
	Brake    bool `json:"brake"`
}

func TestJSONCaster(t *testing.T) {
	c := JSON[message]{}

	m, err := c.FromBytes([]byte(`{"throttle":-1,"brake":true}`))
	require.NoError(t, err)
	assert.Equal(t, message{Throttle: -1, Brake: true}, m)

	s, err := c.To(message{Throttle: 1})
	require.NoError(t, err)
	assert.Equal(t, `{"throttle":1,"brake":false}`, s)

	_, err = c.From("{")
	assert.Error(t, err)
}
