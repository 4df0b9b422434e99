package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.got = append(r.got, e)
	return r.err
}

func TestMulti_PublishesToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("nats down")
	a := &recorder{err: boom}
	b := &recorder{}

	err := Multi{a, nil, b}.Publish(context.Background(), New(TypeTurnCompleted, map[string]interface{}{"session_id": "s1"}))

	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	assert.Equal(t, TypeTurnCompleted, b.got[0].EventType())
	assert.Equal(t, "s1", b.got[0].Payload()["session_id"])
	assert.False(t, b.got[0].Timestamp().IsZero())
}

func TestMulti_NoErrors(t *testing.T) {
	assert.NoError(t, Multi{&recorder{}, Nop{}}.Publish(context.Background(), New(TypeUserLogin, nil)))
}
