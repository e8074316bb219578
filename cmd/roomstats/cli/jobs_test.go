package cli

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/roomstats/jobs"
)

type fakeClient struct {
	tasks  []*asynq.Task
	closed bool
}

func (f *fakeClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: jobs.QueueDefault, Type: task.Type()}, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

func (f fakeInspector) ListScheduledTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return []*asynq.TaskInfo{{ID: "s1", Queue: queue}}, nil
}

func (f fakeInspector) Close() error { return f.err }

func TestTriggerWarmupAndBump(t *testing.T) {
	client := &fakeClient{}
	c := NewJobsCLIWith(client, fakeInspector{})

	info, err := c.TriggerWarmup(context.Background(), jobs.WarmupPayload{Days: 7, Months: 2})
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskAnalyticsWarmup, info.Type)

	var payload jobs.WarmupPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	assert.Equal(t, 7, payload.Days)
	assert.Equal(t, 2, payload.Months)

	_, err = c.Trigger(context.Background(), jobs.TaskAnalyticsBump)
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskAnalyticsBump, client.tasks[1].Type())

	_, err = c.Trigger(context.Background(), "mail:send")
	assert.Error(t, err)
}

func TestInspectQueue(t *testing.T) {
	c := NewJobsCLIWith(&fakeClient{}, fakeInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 2, Scheduled: 1}})
	stats, err := c.InspectQueue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, QueueStats{Queue: jobs.QueueDefault, Pending: 2, Scheduled: 1}, stats)

	scheduled, err := c.ListScheduled(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, scheduled, 1)

	failing := NewJobsCLIWith(&fakeClient{}, fakeInspector{err: errors.New("redis down")})
	_, err = failing.InspectQueue(context.Background())
	assert.Error(t, err)
}

func TestUnconfiguredCLI(t *testing.T) {
	c := NewJobsCLIWith(nil, nil)
	_, err := c.TriggerBump(context.Background(), "x")
	assert.Error(t, err)
	_, err = c.InspectQueue(context.Background())
	assert.Error(t, err)
	assert.NoError(t, c.Close())
}

func TestCloseReleasesClient(t *testing.T) {
	client := &fakeClient{}
	require.NoError(t, NewJobsCLIWith(client, fakeInspector{}).Close())
	assert.True(t, client.closed)
}
