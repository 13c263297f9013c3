package dataservice

import (
	"context"
	"net"
	"os"

	"go.uber.org/atomic"

	"github.com/hanfei1991/dataservice/model"
)

// taskRunner is the reader side state of a task.
type taskRunner struct {
	info *model.TaskInfo
	// addr is the address elements are read from.
	addr string

	// cancel stops the request loops. Nil in round-robin mode.
	cancel context.CancelFunc
	// finished is set once the task reported the end of its sequence.
	finished atomic.Bool
	// active counts the running request loops.
	active atomic.Int32
}

func newTaskRunner(info *model.TaskInfo, addr string) *taskRunner {
	return &taskRunner{info: info, addr: addr}
}

func (t *taskRunner) stop() {
	if t.cancel != nil {
		t.cancel()
	}
}

// done returns true if the task reached the end of its sequence and no
// request loop can deliver another element.
func (t *taskRunner) done() bool {
	return t.finished.Load() && t.active.Load() == 0
}

// isLocalWorker returns true if addr points to this host.
func isLocalWorker(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	hostname, err := os.Hostname()
	return err == nil && hostname == host
}
