package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/communityconnect/nlquery/pkg/nlquery/model"
)

type fakeRemote struct {
	store   map[string]model.EmbeddingVector
	getErr  error
	setErr  error
	getHits int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{store: make(map[string]model.EmbeddingVector)}
}

func (f *fakeRemote) Get(ctx context.Context, key string) (model.EmbeddingVector, bool, error) {
	f.getHits++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.store[key]
	return v, ok, nil
}

func (f *fakeRemote) Set(ctx context.Context, key string, vector model.EmbeddingVector) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.store[key] = vector
	return nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.FatalLevel)
	return l
}

func TestKeyNormalization(t *testing.T) {
	if Key("Chennai ECE 95") != Key("chennai  ece   95") {
		t.Error("expected normalization to collapse whitespace and case")
	}
}

func TestEmbeddingCacheLocalHit(t *testing.T) {
	c := New(NewLocalCache(10, time.Minute), nil, testLogger())
	c.Set(context.Background(), "ECE from Chennai", model.EmbeddingVector{1, 2})

	v, ok := c.Get(context.Background(), "ece from chennai")
	if !ok {
		t.Fatal("expected hit on normalized key")
	}
	if len(v) != 2 {
		t.Errorf("got %v, want len 2", v)
	}
}

func TestEmbeddingCachePromotesRemoteHit(t *testing.T) {
	remote := newFakeRemote()
	remote.store[Key("pune")] = model.EmbeddingVector{9}

	c := New(NewLocalCache(10, time.Minute), remote, testLogger())

	v, ok := c.Get(context.Background(), "pune")
	if !ok || len(v) != 1 {
		t.Fatalf("expected remote hit, got %v %v", v, ok)
	}

	// second call should hit the now-warm local tier, not the remote
	remote.getHits = 0
	_, ok = c.Get(context.Background(), "pune")
	if !ok {
		t.Fatal("expected local hit after promotion")
	}
	if remote.getHits != 0 {
		t.Errorf("expected no further remote calls, got %d", remote.getHits)
	}
}

func TestEmbeddingCacheMissWhenNeitherTierHas(t *testing.T) {
	c := New(NewLocalCache(10, time.Minute), newFakeRemote(), testLogger())

	if _, ok := c.Get(context.Background(), "nowhere"); ok {
		t.Error("expected miss")
	}
}

func TestEmbeddingCacheTreatsRemoteErrorAsMiss(t *testing.T) {
	remote := newFakeRemote()
	remote.getErr = errors.New("connection refused")

	c := New(NewLocalCache(10, time.Minute), remote, testLogger())

	if _, ok := c.Get(context.Background(), "anything"); ok {
		t.Error("expected a remote error to be treated as a cache miss, not a panic or hit")
	}
}
