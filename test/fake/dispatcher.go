package fake

import (
	"context"
	"sync"

	"github.com/pingcap/log"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pb"
	"github.com/hanfei1991/dataservice/pipeline"
	"github.com/hanfei1991/dataservice/pkg/autoid"
)

type registration struct {
	fingerprint uint64
	policy      model.ExternalStatePolicy
}

type job struct {
	id           int64
	name         string
	datasetID    model.DatasetID
	mode         model.ProcessingMode
	numConsumers *int64
	tasks        []*model.TaskInfo
	remaining    atomic.Int64
}

func (j *job) finished() bool {
	return j.remaining.Load() <= 0
}

// Dispatcher is an in-memory dispatcher. Every job gets one task per
// worker of the cluster.
type Dispatcher struct {
	pb.UnimplementedDispatcherServer

	workers []*Worker

	mu            sync.Mutex
	datasets      map[model.DatasetID]*pipeline.Definition
	registrations map[registration]model.DatasetID
	jobs          map[string]*job
	clients       map[model.JobClientID]*job
	datasetIDs    *autoid.IDAllocator
	jobIDs        *autoid.IDAllocator
	clientIDs     *autoid.IDAllocator

	registerErr  error
	jobErr       error
	listTasksErr error

	registerCalls  atomic.Int64
	listTasksCalls atomic.Int64
	released       atomic.Int64
}

func newDispatcher(workers []*Worker) *Dispatcher {
	return &Dispatcher{
		workers:       workers,
		datasets:      make(map[model.DatasetID]*pipeline.Definition),
		registrations: make(map[registration]model.DatasetID),
		jobs:          make(map[string]*job),
		clients:       make(map[model.JobClientID]*job),
		datasetIDs:    autoid.NewIDAllocator(0),
		jobIDs:        autoid.NewIDAllocator(0),
		clientIDs:     autoid.NewIDAllocator(0),
	}
}

// AddDataset registers def under id as if another process registered it.
func (d *Dispatcher) AddDataset(id model.DatasetID, def *pipeline.Definition) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.datasets[id] = def.Clone()
	d.datasetIDs.Observe(int64(id))
}

// Dataset returns the definition registered under id.
func (d *Dispatcher) Dataset(id model.DatasetID) (*pipeline.Definition, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	def, ok := d.datasets[id]
	return def, ok
}

// RejectRegistrations makes RegisterDataset fail with code.
func (d *Dispatcher) RejectRegistrations(code codes.Code, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.registerErr = status.Error(code, msg)
}

// RejectJobs makes GetOrCreateJob fail with code.
func (d *Dispatcher) RejectJobs(code codes.Code, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobErr = status.Error(code, msg)
}

// FailListTasks makes ListTasks fail with code. codes.OK clears the
// failure.
func (d *Dispatcher) FailListTasks(code codes.Code, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code == codes.OK {
		d.listTasksErr = nil
		return
	}
	d.listTasksErr = status.Error(code, msg)
}

// RegisterCalls returns the number of RegisterDataset requests received.
func (d *Dispatcher) RegisterCalls() int64 {
	return d.registerCalls.Load()
}

// ListTasksCalls returns the number of ListTasks requests received.
func (d *Dispatcher) ListTasksCalls() int64 {
	return d.listTasksCalls.Load()
}

// Released returns the number of job clients released.
func (d *Dispatcher) Released() int64 {
	return d.released.Load()
}

// ActiveClients returns the number of job clients not released yet.
func (d *Dispatcher) ActiveClients() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.clients)
}

func (d *Dispatcher) RegisterDataset(
	_ context.Context, req *pb.RegisterDatasetRequest,
) (*pb.RegisterDatasetResponse, error) {
	d.registerCalls.Inc()
	if req.Definition == nil {
		return nil, status.Error(codes.InvalidArgument, "missing definition")
	}
	if fp := req.Definition.Fingerprint(); fp != req.Fingerprint {
		return nil, status.Errorf(codes.InvalidArgument, "fingerprint mismatch, computed %d, sent %d", fp, req.Fingerprint)
	}
	if _, err := compile(req.Definition); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.registerErr != nil {
		return nil, d.registerErr
	}
	key := registration{fingerprint: req.Fingerprint, policy: req.ExternalStatePolicy}
	if id, ok := d.registrations[key]; ok {
		return &pb.RegisterDatasetResponse{DatasetId: id}, nil
	}
	id := model.DatasetID(d.datasetIDs.AllocID())
	d.registrations[key] = id
	d.datasets[id] = req.Definition.Clone()
	log.L().Info("fake dispatcher registered dataset",
		zap.Int64("dataset-id", int64(id)), zap.String("pipeline", req.Definition.String()))
	return &pb.RegisterDatasetResponse{DatasetId: id}, nil
}

func (d *Dispatcher) GetOrCreateJob(
	_ context.Context, req *pb.GetOrCreateJobRequest,
) (*pb.GetOrCreateJobResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.jobErr != nil {
		return nil, d.jobErr
	}
	def, ok := d.datasets[req.DatasetId]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "dataset %d not found", req.DatasetId)
	}
	if err := req.ProcessingMode.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var j *job
	if req.JobName != nil {
		j = d.jobs[*req.JobName]
	}
	if j != nil {
		if j.datasetID != req.DatasetId || j.mode != req.ProcessingMode {
			return nil, status.Errorf(codes.FailedPrecondition,
				"job %q exists with dataset %d and mode %s", j.name, j.datasetID, j.mode)
		}
		if !sameConsumers(j.numConsumers, req.NumConsumers) {
			return nil, status.Errorf(codes.FailedPrecondition,
				"job %q exists with a different number of consumers", j.name)
		}
	} else {
		var err error
		j, err = d.createJob(def, req)
		if err != nil {
			return nil, err
		}
	}

	id := model.JobClientID(d.clientIDs.AllocID())
	d.clients[id] = j
	return &pb.GetOrCreateJobResponse{JobClientId: id}, nil
}

// createJob must be called with d.mu held.
func (d *Dispatcher) createJob(def *pipeline.Definition, req *pb.GetOrCreateJobRequest) (*job, error) {
	prog, err := compile(def)
	if err != nil {
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	j := &job{
		id:        d.jobIDs.AllocID(),
		datasetID: req.DatasetId,
		mode:      req.ProcessingMode,
	}
	if req.JobName != nil {
		j.name = *req.JobName
		d.jobs[j.name] = j
	}
	if req.NumConsumers != nil {
		n := *req.NumConsumers
		j.numConsumers = &n
	}
	j.remaining.Store(int64(len(d.workers)))

	// task ids are scoped by job
	taskIDs := autoid.NewIDAllocator(j.id)
	for i, w := range d.workers {
		it := prog.factory()
		if req.ProcessingMode == model.DistributedEpoch {
			it = shard(it, i, len(d.workers))
		}
		t := &task{
			id:    model.TaskID(taskIDs.AllocID()),
			prog:  prog,
			it:    it,
			onEnd: func() { j.remaining.Dec() },
		}
		if j.numConsumers != nil {
			t.numConsumers = *j.numConsumers
		}
		w.addTask(t)
		j.tasks = append(j.tasks, &model.TaskInfo{ID: t.id, WorkerAddr: w.addr, TransferAddr: w.addr})
	}
	log.L().Info("fake dispatcher created job",
		zap.Int64("job-id", j.id), zap.String("job-name", j.name), zap.Int("tasks", len(j.tasks)))
	return j, nil
}

func sameConsumers(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (d *Dispatcher) ListTasks(_ context.Context, req *pb.ListTasksRequest) (*pb.ListTasksResponse, error) {
	d.listTasksCalls.Inc()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listTasksErr != nil {
		return nil, d.listTasksErr
	}
	j, ok := d.clients[req.JobClientId]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "job client %d not found", req.JobClientId)
	}
	tasks := make([]*model.TaskInfo, 0, len(j.tasks))
	for _, t := range j.tasks {
		info := *t
		tasks = append(tasks, &info)
	}
	return &pb.ListTasksResponse{Tasks: tasks, JobFinished: j.finished()}, nil
}

func (d *Dispatcher) ReleaseJobClient(
	_ context.Context, req *pb.ReleaseJobClientRequest,
) (*pb.ReleaseJobClientResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.clients[req.JobClientId]; !ok {
		return nil, status.Errorf(codes.NotFound, "job client %d not found", req.JobClientId)
	}
	delete(d.clients, req.JobClientId)
	d.released.Inc()
	return &pb.ReleaseJobClientResponse{}, nil
}
