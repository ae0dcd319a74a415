package caster

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Caster converts values to and from their wire text.
type Caster[T any] interface {
	From(string) (T, error)
	To(T) (string, error)
}

type JSON[T any] struct{}

func (jc JSON[T]) From(data string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return v, errors.Wrap(err, "decoding json")
	}
	return v, nil
}

func (jc JSON[T]) To(v T) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "encoding json")
	}
	return string(data), nil
}

// FromBytes decodes a message read off a socket.
func (jc JSON[T]) FromBytes(data []byte) (T, error) {
	return jc.From(string(data))
}
