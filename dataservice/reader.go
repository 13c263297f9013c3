package dataservice

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pingcap/log"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hanfei1991/dataservice/client"
	"github.com/hanfei1991/dataservice/lib/config"
	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pb"
	"github.com/hanfei1991/dataservice/pipeline"
	"github.com/hanfei1991/dataservice/pkg/autoid"
	"github.com/hanfei1991/dataservice/pkg/compression"
	"github.com/hanfei1991/dataservice/pkg/containers"
	"github.com/hanfei1991/dataservice/pkg/errctx"
	"github.com/hanfei1991/dataservice/pkg/errors"
	"github.com/hanfei1991/dataservice/pkg/rpcutil"
)

// autoMaxOutstandingRequests bounds the requests of a reader that leaves
// max outstanding requests to the runtime. Below the bound, the number of
// tasks times the pipelining depth is the limit.
const autoMaxOutstandingRequests = 64

var readerIDs = autoid.NewUUIDAllocator()

// ReaderConfig is the configuration of a Reader.
type ReaderConfig struct {
	Dispatcher client.DispatcherClient
	DatasetID  model.DatasetID
	Job        *JobSpec
	// ElementSpec is the declared spec of the dataset's elements.
	ElementSpec pipeline.ElementSpec
	// Compression is the resolved compression the dataset was registered
	// with.
	Compression          model.CompressionMode
	DataTransferProtocol model.Optional[string]

	// WorkerDialer defaults to client.NewWorkerDialer with the data
	// transfer protocol, or the dispatcher's protocol.
	WorkerDialer rpcutil.DialFunc[client.WorkerClient]
	// Timeouts defaults to config.DefaultReaderTimeoutConfig.
	Timeouts *config.ReaderTimeoutConfig
	// Clock defaults to the wall clock.
	Clock clock.Clock
}

type result struct {
	taskID model.TaskID
	resp   *pb.GetElementResponse
}

// Reader reads the elements of a job from the workers the dispatcher
// assigns to it. Next must not be called concurrently, Close may be called
// from any goroutine.
type Reader struct {
	id          string
	cfg         ReaderConfig
	jobName     string
	jobClientID model.JobClientID
	protocol    string
	timeouts    config.ReaderTimeoutConfig
	clock       clock.Clock
	metrics     *readerMetrics

	workers   *rpcutil.ClientPool[client.WorkerClient]
	errCenter *errctx.ErrCenter

	// ctx is canceled by Close.
	ctx    context.Context
	cancel context.CancelFunc
	eg     *errgroup.Group
	egCtx  context.Context

	// sem bounds the requests in flight plus the elements buffered.
	sem      *semaphore.Weighted
	results  containers.Queue[*result]
	notifyCh chan struct{}
	// refreshCh asks the refresh loop for an early refresh.
	refreshCh chan struct{}
	closeCh   chan struct{}

	mu          sync.Mutex
	tasks       map[model.TaskID]*taskRunner
	jobFinished bool

	currentRound atomic.Int64
	skipLimiter  *rate.Limiter
	closed       atomic.Bool
	closeOnce    sync.Once
}

// NewReader creates or joins the job and starts reading in the background.
// ctx only bounds the opening, the reader lives until Close.
func NewReader(ctx context.Context, cfg ReaderConfig) (*Reader, error) {
	if cfg.Job == nil {
		return nil, errors.ErrInvalidJobParam.GenWithStackByArgs("job", "must be set")
	}
	if err := cfg.Job.ProcessingMode.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Compression.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.ElementSpec) == 0 {
		return nil, errors.ErrEmptyElementSpec.GenWithStackByArgs()
	}

	timeouts := config.DefaultReaderTimeoutConfig()
	if cfg.Timeouts != nil {
		timeouts = cfg.Timeouts.Adjust()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	protocol := cfg.DataTransferProtocol.OrElse(cfg.Dispatcher.Endpoint().Protocol)
	dialer := cfg.WorkerDialer
	if dialer == nil {
		if err := client.ValidateProtocol(protocol); err != nil {
			return nil, err
		}
		dialer = client.NewWorkerDialer(protocol)
	}

	var jobName string
	if name, ok := cfg.Job.JobName.Get(); ok {
		jobName = EffectiveJobName(cfg.DatasetID, name)
	}
	r := &Reader{
		id:        readerIDs.AllocID(),
		cfg:       cfg,
		jobName:   jobName,
		protocol:  protocol,
		timeouts:  timeouts,
		clock:     clk,
		workers:   rpcutil.NewClientPool(dialer),
		errCenter: errctx.NewErrCenter(),
		results:   containers.NewDequeQueue[*result](),
		notifyCh:  make(chan struct{}, 1),
		refreshCh: make(chan struct{}, 1),
		closeCh:   make(chan struct{}),
		tasks:     make(map[model.TaskID]*taskRunner),
	}
	r.skipLimiter = rate.NewLimiter(rate.Every(timeouts.SkipRetryInterval), 1)
	r.sem = semaphore.NewWeighted(cfg.Job.MaxOutstandingRequests.OrElse(autoMaxOutstandingRequests))
	if cfg.Job.RoundRobin() {
		// the first ListTasks tells the dispatcher the round we start at
		r.currentRound.Store(0)
	} else {
		r.currentRound.Store(-1)
	}

	if err := r.getOrCreateJob(ctx); err != nil {
		r.workers.Close()
		return nil, err
	}
	r.metrics = newReaderMetrics(cfg.DatasetID, jobName, r.id)

	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.eg, r.egCtx = errgroup.WithContext(r.errCenter.DeriveContext(r.ctx))

	// the first refresh is synchronous so that the reader starts with the
	// tasks of the job
	if err := r.refreshTasks(ctx); err != nil {
		_ = r.Close()
		return nil, err
	}
	r.goBackground(r.refreshLoop)
	return r, nil
}

func (r *Reader) getOrCreateJob(ctx context.Context) error {
	req := &pb.GetOrCreateJobRequest{
		DatasetId:      r.cfg.DatasetID,
		ProcessingMode: r.cfg.Job.ProcessingMode,
		ConsumerIndex:  r.cfg.Job.ConsumerIndex.Ptr(),
		NumConsumers:   r.cfg.Job.NumConsumers.Ptr(),
		TargetWorkers:  r.cfg.Job.TargetWorkers,
	}
	if r.cfg.Job.JobName.IsPresent() {
		name := r.jobName
		req.JobName = &name
	}
	resp, err := r.cfg.Dispatcher.Send(ctx, &client.Request{Cmd: client.CmdGetOrCreateJob, Req: req})
	if err != nil {
		return errors.Wrap(errors.ErrJobJoin, err,
			r.cfg.Dispatcher.Endpoint().String(), r.jobName, status.Convert(err).Message())
	}
	r.jobClientID = resp.Resp.(*pb.GetOrCreateJobResponse).JobClientId
	log.L().Info("joined job",
		zap.String("reader-id", r.id),
		zap.Int64("dataset-id", int64(r.cfg.DatasetID)),
		zap.String("job-name", r.jobName),
		zap.Int64("job-client-id", int64(r.jobClientID)),
		zap.Stringer("processing-mode", r.cfg.Job.ProcessingMode),
		zap.Bool("round-robin", r.cfg.Job.RoundRobin()))
	return nil
}

// goBackground runs fn in the reader's errgroup. The first error is kept by
// the error center and returned by Next.
func (r *Reader) goBackground(fn func(ctx context.Context) error) {
	r.eg.Go(func() error {
		err := fn(r.egCtx)
		if err != nil {
			r.errCenter.OnError(err)
			r.notify()
		}
		return err
	})
}

func (r *Reader) refreshInterval() time.Duration {
	return r.cfg.Job.TaskRefreshInterval.OrElse(r.timeouts.TaskRefreshInterval)
}

func (r *Reader) refreshLoop(ctx context.Context) error {
	ticker := r.clock.Ticker(r.refreshInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-r.refreshCh:
		}
		if err := r.refreshTasks(ctx); err != nil {
			return err
		}
	}
}

func (r *Reader) requestRefresh() {
	select {
	case r.refreshCh <- struct{}{}:
	default:
	}
}

func (r *Reader) notify() {
	select {
	case r.notifyCh <- struct{}{}:
	default:
	}
}

// refreshTasks polls the task list of the job. An unavailable dispatcher is
// retried on the next tick, other failures are terminal.
func (r *Reader) refreshTasks(ctx context.Context) error {
	resp, err := r.cfg.Dispatcher.Send(ctx, &client.Request{
		Cmd: client.CmdListTasks,
		Req: &pb.ListTasksRequest{
			JobClientId:  r.jobClientID,
			CurrentRound: r.currentRound.Load(),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if status.Code(err) == codes.Unavailable {
			log.L().Warn("refresh tasks failed, will retry",
				zap.String("reader-id", r.id), zap.Int64("job-client-id", int64(r.jobClientID)), zap.Error(err))
			r.metrics.refreshErrors.Inc()
			return nil
		}
		return errors.Wrap(errors.ErrListTasks, err, r.jobClientID, status.Convert(err).Message())
	}
	r.updateTasks(resp.Resp.(*pb.ListTasksResponse))
	return nil
}

func (r *Reader) updateTasks(resp *pb.ListTasksResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Load() {
		return
	}

	listed := make(map[model.TaskID]struct{}, len(resp.Tasks))
	for _, info := range resp.Tasks {
		if r.cfg.Job.TargetWorkers == model.TargetWorkersLocal && !isLocalWorker(info.WorkerAddr) {
			continue
		}
		listed[info.ID] = struct{}{}
		if _, ok := r.tasks[info.ID]; ok {
			continue
		}
		task := newTaskRunner(info, r.taskAddress(info))
		r.tasks[info.ID] = task
		log.L().Info("add task",
			zap.String("reader-id", r.id),
			zap.Int64("task-id", int64(info.ID)),
			zap.String("worker-addr", task.addr),
			zap.Int64("starting-round", info.StartingRound))
		if !r.cfg.Job.RoundRobin() {
			r.startFetchers(task)
		}
	}
	for id, task := range r.tasks {
		if _, ok := listed[id]; ok {
			continue
		}
		log.L().Info("remove task",
			zap.String("reader-id", r.id), zap.Int64("task-id", int64(id)), zap.String("worker-addr", task.addr))
		task.stop()
		delete(r.tasks, id)
	}

	addrs := make([]string, 0, len(r.tasks))
	for _, task := range r.tasks {
		addrs = append(addrs, task.addr)
	}
	r.workers.UpdateClients(r.egCtx, addrs)

	if resp.JobFinished && !r.jobFinished {
		log.L().Info("job finished", zap.String("reader-id", r.id), zap.String("job-name", r.jobName))
	}
	r.jobFinished = resp.JobFinished
	r.metrics.tasks.Set(float64(len(r.tasks)))
	r.notify()
}

func (r *Reader) taskAddress(info *model.TaskInfo) string {
	if r.cfg.DataTransferProtocol.IsPresent() && info.TransferAddr != "" {
		return info.TransferAddr
	}
	return info.WorkerAddr
}

// startFetchers starts the request loops of a task. Must be called with
// r.mu held.
func (r *Reader) startFetchers(task *taskRunner) {
	ctx, cancel := context.WithCancel(r.egCtx)
	task.cancel = cancel
	for i := int64(0); i < r.cfg.Job.PipeliningDepthPerWorker; i++ {
		task.active.Inc()
		r.goBackground(func(context.Context) error {
			defer func() {
				task.active.Dec()
				r.notify()
			}()
			return r.fetchLoop(ctx, task)
		})
	}
}

// fetchLoop requests elements of task until the end of its sequence. A
// permit of r.sem is held from the request until the element is taken by
// Next.
func (r *Reader) fetchLoop(ctx context.Context, task *taskRunner) error {
	cli, err := r.workers.Get(ctx, task.addr)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(errors.ErrReadElement, err, task.info.ID, task.addr, err.Error())
	}
	skipLimiter := rate.NewLimiter(rate.Every(r.timeouts.SkipRetryInterval), 1)
	for !task.finished.Load() {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return nil
		}
		r.metrics.outstanding.Inc()
		resp, err := cli.GetElement(ctx, &pb.GetElementRequest{TaskId: task.info.ID})
		if err != nil {
			r.releasePermit()
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(errors.ErrReadElement, err, task.info.ID, task.addr, status.Convert(err).Message())
		}
		switch {
		case resp.EndOfSequence:
			r.releasePermit()
			if !task.finished.Swap(true) {
				log.L().Info("task reached end of sequence",
					zap.String("reader-id", r.id), zap.Int64("task-id", int64(task.info.ID)))
			}
			r.requestRefresh()
			return nil
		case resp.Skip:
			r.releasePermit()
			r.metrics.skips.Inc()
			if err := skipLimiter.Wait(ctx); err != nil {
				return nil
			}
		default:
			r.results.Add(&result{taskID: task.info.ID, resp: resp})
			r.notify()
		}
	}
	return nil
}

func (r *Reader) releasePermit() {
	r.sem.Release(1)
	r.metrics.outstanding.Dec()
}

// Next returns the next element. It returns io.EOF once the job is finished
// and every task reached the end of its sequence, ErrReaderClosed after
// Close, and the first terminal error of the background work otherwise.
func (r *Reader) Next(ctx context.Context) (pipeline.Element, error) {
	if r.cfg.Job.RoundRobin() {
		return r.nextRoundRobin(ctx)
	}
	for {
		if r.closed.Load() {
			return pipeline.Element{}, errors.ErrReaderClosed.GenWithStackByArgs()
		}
		if err := r.errCenter.CheckError(); err != nil {
			return pipeline.Element{}, err
		}
		if res, ok := r.results.Pop(); ok {
			r.releasePermit()
			return r.deliver(res)
		}
		if r.endOfSequence() {
			// elements pushed before the last fetcher exited
			if res, ok := r.results.Pop(); ok {
				r.releasePermit()
				return r.deliver(res)
			}
			return pipeline.Element{}, io.EOF
		}
		select {
		case <-ctx.Done():
			return pipeline.Element{}, errors.Trace(ctx.Err())
		case <-r.notifyCh:
		case <-r.errCenter.Done():
		case <-r.closeCh:
		}
	}
}

// endOfSequence returns true if the job is finished and all known tasks
// are done.
func (r *Reader) endOfSequence() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.jobFinished {
		return false
	}
	for _, task := range r.tasks {
		if !task.done() {
			return false
		}
	}
	return true
}

// nextRoundRobin reads the element of the current round from the task
// serving it. A round that is not ready is requested again.
func (r *Reader) nextRoundRobin(ctx context.Context) (pipeline.Element, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(r.ctx, cancel)
	defer stop()

	round := r.currentRound.Load()
	consumerIndex, _ := r.cfg.Job.ConsumerIndex.Get()
	for {
		if r.closed.Load() {
			return pipeline.Element{}, errors.ErrReaderClosed.GenWithStackByArgs()
		}
		if err := r.errCenter.CheckError(); err != nil {
			return pipeline.Element{}, err
		}

		task, finished := r.roundRobinTask(round)
		if task == nil {
			if finished {
				return pipeline.Element{}, io.EOF
			}
			r.requestRefresh()
			if err := r.waitNotify(ctx, r.timeouts.EmptyRetryInterval); err != nil {
				return pipeline.Element{}, err
			}
			continue
		}

		cli, err := r.workers.Get(ctx, task.addr)
		if err != nil {
			return pipeline.Element{}, r.roundRobinError(ctx, task, err)
		}
		roundIndex := round
		resp, err := cli.GetElement(ctx, &pb.GetElementRequest{
			TaskId:        task.info.ID,
			ConsumerIndex: &consumerIndex,
			RoundIndex:    &roundIndex,
		})
		if err != nil {
			return pipeline.Element{}, r.roundRobinError(ctx, task, err)
		}
		switch {
		case resp.EndOfSequence:
			task.finished.Store(true)
			r.requestRefresh()
		case resp.Skip:
			r.metrics.skips.Inc()
			if err := r.skipLimiter.Wait(ctx); err != nil {
				if r.closed.Load() {
					return pipeline.Element{}, errors.ErrReaderClosed.GenWithStackByArgs()
				}
				return pipeline.Element{}, errors.Trace(err)
			}
		default:
			r.currentRound.Store(round + 1)
			return r.deliver(&result{taskID: task.info.ID, resp: resp})
		}
	}
}

func (r *Reader) roundRobinError(ctx context.Context, task *taskRunner, err error) error {
	if r.closed.Load() {
		return errors.ErrReaderClosed.GenWithStackByArgs()
	}
	if ctx.Err() != nil {
		return errors.Trace(ctx.Err())
	}
	err = errors.Wrap(errors.ErrReadElement, err, task.info.ID, task.addr, status.Convert(err).Message())
	r.errCenter.OnError(err)
	return err
}

// roundRobinTask returns the task serving round, or nil if no task can
// serve it yet. finished is true if no task ever will.
func (r *Reader) roundRobinTask(round int64) (task *taskRunner, finished bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	eligible := make([]*taskRunner, 0, len(r.tasks))
	allDone := true
	for _, t := range r.tasks {
		if t.finished.Load() {
			continue
		}
		allDone = false
		if t.info.StartingRound <= round {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) == 0 {
		return nil, r.jobFinished && allDone
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].info.ID < eligible[j].info.ID
	})
	return eligible[round%int64(len(eligible))], false
}

func (r *Reader) waitNotify(ctx context.Context, timeout time.Duration) error {
	timer := r.clock.Timer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		if r.closed.Load() {
			return errors.ErrReaderClosed.GenWithStackByArgs()
		}
		return errors.Trace(ctx.Err())
	case <-r.notifyCh:
	case <-r.errCenter.Done():
	case <-timer.C:
	}
	return nil
}

func (r *Reader) deliver(res *result) (pipeline.Element, error) {
	if r.closed.Load() {
		return pipeline.Element{}, errors.ErrReaderClosed.GenWithStackByArgs()
	}
	elem, err := r.decode(res)
	if err != nil {
		r.errCenter.OnError(err)
		return pipeline.Element{}, err
	}
	r.metrics.elements.Inc()
	log.L().Debug("deliver element",
		zap.String("reader-id", r.id), zap.Int64("task-id", int64(res.taskID)), zap.Int("components", len(elem.Components)))
	return elem, nil
}

// decode checks the element against the compression the dataset was
// registered with. A mismatch means the reader and the registered pipeline
// disagree, and is terminal.
func (r *Reader) decode(res *result) (pipeline.Element, error) {
	elem := pipeline.Element{Components: res.resp.Components}
	switch {
	case r.cfg.Compression == model.CompressionAuto && !res.resp.Compressed:
		return pipeline.Element{}, errors.ErrUncompressElement.GenWithStack(
			"task %d sent an uncompressed element, but compression is %s", res.taskID, r.cfg.Compression)
	case r.cfg.Compression == model.CompressionAuto:
		return compression.Uncompress(elem, r.cfg.ElementSpec)
	case res.resp.Compressed:
		return pipeline.Element{}, errors.ErrUncompressElement.GenWithStack(
			"task %d sent a compressed element, but compression is %s", res.taskID, r.cfg.Compression)
	default:
		return elem, nil
	}
}

// JobClientID returns the id of the reader's membership in the job.
func (r *Reader) JobClientID() model.JobClientID {
	return r.jobClientID
}

// Close stops the reader. In-flight requests are canceled and the job
// client is released at the dispatcher. Close is idempotent.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed.Store(true)
		r.mu.Unlock()
		close(r.closeCh)
		r.cancel()
		// background errors are kept by the error center
		_ = r.eg.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeouts.ReleaseTimeout)
		defer cancel()
		_, err := r.cfg.Dispatcher.Send(ctx, &client.Request{
			Cmd: client.CmdReleaseJobClient,
			Req: &pb.ReleaseJobClientRequest{JobClientId: r.jobClientID},
		})
		if err != nil {
			log.L().Warn("release job client failed",
				zap.String("reader-id", r.id), zap.Int64("job-client-id", int64(r.jobClientID)), zap.Error(err))
		}

		r.workers.Close()
		unregisterReaderMetrics(r.id)
		log.L().Info("reader closed", zap.String("reader-id", r.id), zap.String("job-name", r.jobName))
	})
	return nil
}
