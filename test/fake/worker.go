package fake

import (
	"context"
	"sync"
	"time"

	"github.com/pingcap/log"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pb"
)

type task struct {
	id model.TaskID

	mu   sync.Mutex
	prog *program
	it   iterator
	// values holds the whole stream of a round-robin task, which is read
	// by position.
	values []int64
	// blocks maps a requested round to the block of numConsumers values
	// it reads. A task only sees the rounds routed to it, so blocks are
	// handed out in the order rounds are first requested.
	blocks       map[int64]int64
	numConsumers int64
	done         bool
	onEnd        func()
}

// next returns the next value of an independent read.
func (t *task) next() (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return 0, false
	}
	v, ok := t.it()
	if !ok {
		t.finish()
	}
	return v, ok
}

// at returns the value the consumer reads in round.
func (t *task) at(round, consumer int64) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.blocks == nil {
		t.blocks = make(map[int64]int64)
	}
	block, ok := t.blocks[round]
	if !ok {
		block = int64(len(t.blocks))
		t.blocks[round] = block
	}
	pos := block*t.numConsumers + consumer
	for int64(len(t.values)) <= pos {
		if t.done {
			return 0, false
		}
		v, ok := t.it()
		if !ok {
			t.finish()
			return 0, false
		}
		t.values = append(t.values, v)
	}
	return t.values[pos], true
}

func (t *task) finish() {
	if t.done {
		return
	}
	t.done = true
	if t.onEnd != nil {
		t.onEnd()
	}
}

// Worker is an in-memory worker. It serves the tasks the fake dispatcher
// assigns to it.
type Worker struct {
	pb.UnimplementedWorkerServer

	addr string

	mu    sync.Mutex
	tasks map[model.TaskID]*task
	delay time.Duration
	// failure is returned once failAfter elements were served.
	failure   error
	failAfter int64

	skips       atomic.Int64
	served      atomic.Int64
	requests    atomic.Int64
	inflight    atomic.Int64
	maxInflight atomic.Int64
}

func newWorker(addr string) *Worker {
	return &Worker{
		addr:  addr,
		tasks: make(map[model.TaskID]*task),
	}
}

// Addr returns the address the worker is listed with.
func (w *Worker) Addr() string {
	return w.addr
}

// SetDelay makes every request wait d before it is answered.
func (w *Worker) SetDelay(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.delay = d
}

// FailAfter makes the worker answer with code once it served n elements.
func (w *Worker) FailAfter(n int64, code codes.Code, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failAfter = n
	w.failure = status.Error(code, msg)
}

// SkipRequests makes the next n requests return a skip.
func (w *Worker) SkipRequests(n int64) {
	w.skips.Store(n)
}

// Served returns the number of elements the worker returned.
func (w *Worker) Served() int64 {
	return w.served.Load()
}

// Requests returns the number of requests the worker received.
func (w *Worker) Requests() int64 {
	return w.requests.Load()
}

// MaxInflight returns the largest number of concurrent requests seen.
func (w *Worker) MaxInflight() int64 {
	return w.maxInflight.Load()
}

func (w *Worker) addTask(t *task) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tasks[t.id] = t
}

func (w *Worker) GetElement(ctx context.Context, req *pb.GetElementRequest) (*pb.GetElementResponse, error) {
	w.requests.Inc()
	n := w.inflight.Inc()
	defer w.inflight.Dec()
	for {
		old := w.maxInflight.Load()
		if n <= old || w.maxInflight.CompareAndSwap(old, n) {
			break
		}
	}

	w.mu.Lock()
	t, ok := w.tasks[req.TaskId]
	delay := w.delay
	failure := w.failure
	failAfter := w.failAfter
	w.mu.Unlock()
	if !ok {
		return nil, status.Errorf(codes.NotFound, "task %d not found at worker %s", req.TaskId, w.addr)
	}
	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, status.FromContextError(ctx.Err()).Err()
		case <-time.After(delay):
		}
	}
	if failure != nil && w.served.Load() >= failAfter {
		return nil, failure
	}
	if w.skips.Load() > 0 && w.skips.Dec() >= 0 {
		return &pb.GetElementResponse{Skip: true}, nil
	}

	var (
		v     int64
		found bool
	)
	if req.RoundIndex != nil && req.ConsumerIndex != nil {
		v, found = t.at(*req.RoundIndex, *req.ConsumerIndex)
	} else {
		v, found = t.next()
	}
	if !found {
		return &pb.GetElementResponse{EndOfSequence: true}, nil
	}
	components, compressed, err := t.prog.encode(v)
	if err != nil {
		log.L().Error("encode element failed", zap.Int64("task-id", int64(t.id)), zap.Error(err))
		return nil, status.Error(codes.Internal, err.Error())
	}
	w.served.Inc()
	return &pb.GetElementResponse{Components: components, Compressed: compressed}, nil
}
