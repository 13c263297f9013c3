package dataservice

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanfei1991/dataservice/model"
)

func TestIsLocalWorker(t *testing.T) {
	t.Parallel()

	require.True(t, isLocalWorker("localhost:5051"))
	require.True(t, isLocalWorker("127.0.0.1:5051"))
	require.True(t, isLocalWorker("[::1]:5051"))
	require.False(t, isLocalWorker("10.0.3.7:5051"))
	require.False(t, isLocalWorker("worker-0.fake:5051"))

	hostname, err := os.Hostname()
	require.NoError(t, err)
	require.True(t, isLocalWorker(hostname+":5051"))
}

func TestTaskRunnerDone(t *testing.T) {
	t.Parallel()

	task := newTaskRunner(&model.TaskInfo{ID: 1, WorkerAddr: "w:1"}, "w:1")
	task.stop()
	require.False(t, task.done())

	task.active.Inc()
	task.finished.Store(true)
	require.False(t, task.done())
	task.active.Dec()
	require.True(t, task.done())
}
