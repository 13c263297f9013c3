package dataservice

import (
	"context"

	"github.com/pingcap/log"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/hanfei1991/dataservice/client"
	"github.com/hanfei1991/dataservice/lib/config"
	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pipeline"
	"github.com/hanfei1991/dataservice/pkg/compression"
	"github.com/hanfei1991/dataservice/pkg/rpcutil"
)

// Options are the parameters shared by Distribute and FromDatasetID.
type Options struct {
	// Service is the dispatcher address, "[protocol://]address".
	Service string
	// DefaultProtocol is used when Service names no protocol. Defaults to
	// model.DefaultProtocol.
	DefaultProtocol string

	Job JobParams
	// Compression defaults to CompressionAuto.
	Compression model.CompressionMode
	// DataTransferProtocol reads elements with another protocol than the
	// dispatcher's. Setting it disables automatic compression.
	DataTransferProtocol model.Optional[string]
	// ExternalStatePolicy overrides the policy option of the pipeline.
	ExternalStatePolicy model.ExternalStatePolicy

	Timeouts *config.ReaderTimeoutConfig
	// DialOptions are appended to the options of every connection.
	DialOptions []grpc.DialOption
	// Registerer defaults to a Registrar on the dataset's dispatcher pool.
	Registerer DatasetRegisterer
}

// Dataset is a registered dataset read through a job. Every Iterate call
// opens a new reader, so iteration can be restarted.
type Dataset struct {
	id          model.DatasetID
	endpoint    model.ServiceEndpoint
	job         *JobSpec
	spec        pipeline.ElementSpec
	compression model.CompressionMode
	opts        Options

	dispatchers *rpcutil.ClientPool[client.DispatcherClient]
}

type preparedOptions struct {
	endpoint    model.ServiceEndpoint
	job         *JobSpec
	compression model.CompressionMode
}

// prepare validates everything that can be checked without talking to the
// dispatcher.
func prepare(opts Options) (*preparedOptions, error) {
	defaultProtocol := opts.DefaultProtocol
	if defaultProtocol == "" {
		defaultProtocol = model.DefaultProtocol
	}
	endpoint, err := client.ParseService(opts.Service, defaultProtocol)
	if err != nil {
		return nil, err
	}
	if err := client.ValidateProtocol(endpoint.Protocol); err != nil {
		return nil, err
	}
	if protocol, ok := opts.DataTransferProtocol.Get(); ok {
		if err := client.ValidateProtocol(protocol); err != nil {
			return nil, err
		}
	}
	job, err := BuildJobSpec(opts.Job)
	if err != nil {
		return nil, err
	}
	requested := opts.Compression
	if requested == 0 {
		requested = model.CompressionAuto
	}
	resolved, err := compression.Resolve(requested, opts.DataTransferProtocol)
	if err != nil {
		return nil, err
	}
	return &preparedOptions{endpoint: endpoint, job: job, compression: resolved}, nil
}

// Distribute registers def with the dispatcher and returns the dataset read
// through the job described by opts.Job.
func Distribute(ctx context.Context, def *pipeline.Definition, opts Options) (*Dataset, error) {
	prepared, err := prepare(opts)
	if err != nil {
		return nil, err
	}
	prepared.job.CheckSource(def)

	dispatchers := rpcutil.NewClientPool(client.NewDispatcherDialer(opts.DialOptions...))
	registerer := opts.Registerer
	if registerer == nil {
		registerer = NewRegistrar(dispatchers)
	}
	id, err := registerer.Register(ctx, prepared.endpoint, def, opts.ExternalStatePolicy, prepared.compression)
	if err != nil {
		dispatchers.Close()
		return nil, err
	}
	return newDataset(id, def.Spec, prepared, opts, dispatchers), nil
}

// FromDatasetID returns a dataset that was registered before, possibly by
// another process. spec must be the element spec of the registered
// pipeline, and opts.Compression the compression it was registered with.
func FromDatasetID(
	id model.DatasetID, spec pipeline.ElementSpec, opts Options,
) (*Dataset, error) {
	prepared, err := prepare(opts)
	if err != nil {
		return nil, err
	}
	dispatchers := rpcutil.NewClientPool(client.NewDispatcherDialer(opts.DialOptions...))
	return newDataset(id, spec, prepared, opts, dispatchers), nil
}

func newDataset(
	id model.DatasetID,
	spec pipeline.ElementSpec,
	prepared *preparedOptions,
	opts Options,
	dispatchers *rpcutil.ClientPool[client.DispatcherClient],
) *Dataset {
	log.L().Info("distributed dataset",
		zap.Int64("dataset-id", int64(id)),
		zap.Stringer("dispatcher", prepared.endpoint),
		zap.Stringer("job-name", prepared.job.JobName),
		zap.Stringer("compression", prepared.compression))
	return &Dataset{
		id:          id,
		endpoint:    prepared.endpoint,
		job:         prepared.job,
		spec:        spec.Clone(),
		compression: prepared.compression,
		opts:        opts,
		dispatchers: dispatchers,
	}
}

// ID returns the dataset id assigned by the dispatcher.
func (d *Dataset) ID() model.DatasetID {
	return d.id
}

// Job returns the validated job parameters.
func (d *Dataset) Job() *JobSpec {
	return d.job
}

// Compression returns the resolved compression.
func (d *Dataset) Compression() model.CompressionMode {
	return d.compression
}

// Iterate opens a new reader of the dataset. The caller must close it.
func (d *Dataset) Iterate(ctx context.Context) (*Reader, error) {
	dispatcher, err := d.dispatchers.Get(ctx, d.endpoint.String())
	if err != nil {
		return nil, err
	}
	var workerDialer rpcutil.DialFunc[client.WorkerClient]
	if len(d.opts.DialOptions) > 0 {
		workerDialer = client.NewWorkerDialer(
			d.opts.DataTransferProtocol.OrElse(d.endpoint.Protocol), d.opts.DialOptions...)
	}
	return NewReader(ctx, ReaderConfig{
		Dispatcher:           dispatcher,
		DatasetID:            d.id,
		Job:                  d.job,
		ElementSpec:          d.spec,
		Compression:          d.compression,
		DataTransferProtocol: d.opts.DataTransferProtocol,
		WorkerDialer:         workerDialer,
		Timeouts:             d.opts.Timeouts,
	})
}

// Close closes the connections to the dispatcher. Readers must be closed
// first.
func (d *Dataset) Close() {
	d.dispatchers.Close()
}
