package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu       sync.Mutex
	users    []entity.UserActivity
	channels []entity.ChannelActivity
	err      error
}

func (f *fakeRecorder) RecordUserActivity(_ context.Context, a entity.UserActivity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, a)
	return f.err
}

func (f *fakeRecorder) RecordChannelActivity(_ context.Context, a entity.ChannelActivity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, a)
	return f.err
}

func (f *fakeRecorder) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users), len(f.channels)
}

type fakeMirror struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakeMirror) Publish(_ context.Context, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeMirror) snapshot() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Event(nil), f.events...)
}

func newPubSub(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })
	return pubSub
}

func TestRecorderAndConsumerApplyActivity(t *testing.T) {
	pubSub := newPubSub(t)
	repo := &fakeRecorder{}
	mirror := &fakeMirror{}
	consumer := NewConsumer(pubSub, repo, mirror, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	recorder := NewRecorder(pubSub, logger.NewNopLogger())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, recorder.RecordUserActivity(ctx, entity.UserActivity{Nick: "alice", Commands: 1, Successes: 1, At: at}))
	require.NoError(t, recorder.RecordChannelActivity(ctx, entity.ChannelActivity{Channel: "#quran", Messages: 1, At: at}))

	assert.Eventually(t, func() bool {
		users, channels := repo.counts()
		return users == 1 && channels == 1
	}, 2*time.Second, 5*time.Millisecond)

	repo.mu.Lock()
	assert.Equal(t, "alice", repo.users[0].Nick)
	assert.Equal(t, 1, repo.users[0].Successes)
	assert.True(t, at.Equal(repo.users[0].At))
	assert.Equal(t, "#quran", repo.channels[0].Channel)
	repo.mu.Unlock()

	assert.Eventually(t, func() bool { return len(mirror.snapshot()) == 2 }, 2*time.Second, 5*time.Millisecond)
	mirrored := mirror.snapshot()
	assert.Equal(t, EventUserActivity, mirrored[0].EventType())
	assert.Equal(t, "alice", mirrored[0].Payload()["nick"])
	assert.Equal(t, EventChannelActivity, mirrored[1].EventType())
	assert.Equal(t, "#quran", mirrored[1].Payload()["channel"])

	cancel()
	select {
	case <-consumer.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestConsumerSkipsMirrorOnStorageFailure(t *testing.T) {
	pubSub := newPubSub(t)
	repo := &fakeRecorder{err: errors.New("database is locked")}
	mirror := &fakeMirror{}
	consumer := NewConsumer(pubSub, repo, mirror, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	require.NoError(t, pubSub.Publish(Topic, message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	require.NoError(t, NewRecorder(pubSub, logger.NewNopLogger()).RecordUserActivity(ctx, entity.UserActivity{Nick: "bob", Commands: 1}))

	assert.Eventually(t, func() bool {
		users, _ := repo.counts()
		return users == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, mirror.snapshot())
}

func TestConsumerWithoutMirror(t *testing.T) {
	pubSub := newPubSub(t)
	repo := &fakeRecorder{}
	consumer := NewConsumer(pubSub, repo, nil, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	require.NoError(t, NewRecorder(pubSub, logger.NewNopLogger()).RecordChannelActivity(ctx, entity.ChannelActivity{Channel: "#margalla", Joins: 1}))

	assert.Eventually(t, func() bool {
		_, channels := repo.counts()
		return channels == 1
	}, 2*time.Second, 5*time.Millisecond)
}
