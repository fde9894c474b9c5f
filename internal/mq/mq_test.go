package mq

import (
	"context"
	"testing"

	"github.com/moviecollections/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	m, err := Open(context.Background(), config.MQConfig{})
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = Open(context.Background(), config.MQConfig{Backend: "kafka"})
	assert.EqualError(t, err, `unknown mq backend "kafka"`)

	_, err = Open(context.Background(), config.MQConfig{Backend: BackendRabbitMQ})
	assert.EqualError(t, err, "rabbitmq url is required")

	_, err = Open(context.Background(), config.MQConfig{Backend: BackendPubSub})
	assert.EqualError(t, err, "pubsub project id is required")
}

func TestHeadersToAttributes(t *testing.T) {
	attrs := headersToAttributes(map[string]any{
		AttrEventType: "user.created",
		"raw":         []byte("bytes"),
		"n":           int32(3),
	})
	assert.Equal(t, map[string]string{
		AttrEventType: "user.created",
		"raw":         "bytes",
		"n":           "3",
	}, attrs)
	assert.Nil(t, headersToAttributes(nil))
}
