package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mythos/internal/volc"
)

func TestSimulatedVideo(t *testing.T) {
	t.Run("returns the image unchanged after the delay", func(t *testing.T) {
		start := time.Now()
		v, err := SimulatedVideo{Delay: 20 * time.Millisecond}.Synthesize(context.Background(), imageURI, "p")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
		assert.Equal(t, imageURI, v.URL)
		assert.True(t, v.Simulated)
	})

	t.Run("cancellation cuts the delay short", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		start := time.Now()
		v, err := SimulatedVideo{Delay: time.Hour}.Synthesize(ctx, imageURI, "p")
		require.NoError(t, err)
		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, imageURI, v.URL)
	})
}

type fakeTasks struct {
	createErr error
	statuses  []string
	url       string
	polls     int
	params    volc.VideoTaskParams
}

func (f *fakeTasks) CreateVideoTask(ctx context.Context, p volc.VideoTaskParams) (string, error) {
	f.params = p
	if f.createErr != nil {
		return "", f.createErr
	}
	return "cgt-1", nil
}

func (f *fakeTasks) GetVideoTask(ctx context.Context, taskID string) (string, string, error) {
	status := f.statuses[min(f.polls, len(f.statuses)-1)]
	f.polls++
	if status == volc.TaskSucceeded {
		return status, f.url, nil
	}
	return status, "", nil
}

func TestSeedanceVideo(t *testing.T) {
	t.Run("polls until succeeded", func(t *testing.T) {
		api := &fakeTasks{statuses: []string{volc.TaskQueued, volc.TaskRunning, volc.TaskSucceeded}, url: "https://cdn.example/v.mp4"}
		v := NewSeedanceVideo(api, "seedance", "16:9", 5, time.Millisecond, time.Second)

		res, err := v.Synthesize(context.Background(), imageURI, "gentle pan")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/v.mp4", res.URL)
		assert.False(t, res.Simulated)
		assert.Equal(t, 3, api.polls)
		assert.Equal(t, imageURI, api.params.FirstFrameURL)
		assert.Equal(t, "gentle pan", api.params.Prompt)
	})

	t.Run("failed task", func(t *testing.T) {
		api := &fakeTasks{statuses: []string{volc.TaskRunning, volc.TaskFailed}}
		_, err := NewSeedanceVideo(api, "m", "", 0, time.Millisecond, time.Second).Synthesize(context.Background(), imageURI, "p")
		assert.Error(t, err)
	})

	t.Run("succeeded without url", func(t *testing.T) {
		api := &fakeTasks{statuses: []string{volc.TaskSucceeded}}
		_, err := NewSeedanceVideo(api, "m", "", 0, time.Millisecond, time.Second).Synthesize(context.Background(), imageURI, "p")
		assert.Error(t, err)
	})

	t.Run("deadline", func(t *testing.T) {
		api := &fakeTasks{statuses: []string{volc.TaskRunning}}
		_, err := NewSeedanceVideo(api, "m", "", 0, time.Millisecond, 20*time.Millisecond).Synthesize(context.Background(), imageURI, "p")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("create failure", func(t *testing.T) {
		api := &fakeTasks{createErr: errors.New("http 401")}
		_, err := NewSeedanceVideo(api, "m", "", 0, time.Millisecond, time.Second).Synthesize(context.Background(), imageURI, "p")
		assert.Error(t, err)
		assert.Equal(t, 0, api.polls)
	})
}
