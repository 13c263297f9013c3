package dataservice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pingcap/log"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/status"

	"github.com/hanfei1991/dataservice/client"
	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pb"
	"github.com/hanfei1991/dataservice/pipeline"
	"github.com/hanfei1991/dataservice/pkg/errors"
	"github.com/hanfei1991/dataservice/pkg/rpcutil"
)

// DatasetRegisterer registers pipelines with the dispatcher of a data
// service.
type DatasetRegisterer interface {
	// Register returns the id of the dataset. Registering the same pipeline
	// with the same external state policy and compression again returns the
	// same id.
	Register(
		ctx context.Context,
		endpoint model.ServiceEndpoint,
		def *pipeline.Definition,
		policy model.ExternalStatePolicy,
		mode model.CompressionMode,
	) (model.DatasetID, error)
}

// Registrar sends registrations to the dispatchers of a client pool, keyed
// by endpoint.
type Registrar struct {
	dispatchers *rpcutil.ClientPool[client.DispatcherClient]
}

func NewRegistrar(dispatchers *rpcutil.ClientPool[client.DispatcherClient]) *Registrar {
	return &Registrar{dispatchers: dispatchers}
}

// Register implements DatasetRegisterer. def is never modified. An unset
// policy falls back to the pipeline's option, then to WARN. A dispatcher
// rejection is returned as is, the registrar never retries.
func (r *Registrar) Register(
	ctx context.Context,
	endpoint model.ServiceEndpoint,
	def *pipeline.Definition,
	policy model.ExternalStatePolicy,
	mode model.CompressionMode,
) (model.DatasetID, error) {
	policy, err := validateRegistration(def, policy, mode)
	if err != nil {
		return 0, err
	}
	registered := prepareDefinition(def, policy, mode)

	cli, err := r.dispatchers.Get(ctx, endpoint.String())
	if err != nil {
		return 0, err
	}
	resp, err := cli.Send(ctx, &client.Request{
		Cmd: client.CmdRegisterDataset,
		Req: &pb.RegisterDatasetRequest{
			Definition:          registered,
			ExternalStatePolicy: policy,
			Fingerprint:         registered.Fingerprint(),
		},
	})
	if err != nil {
		return 0, errors.Wrap(errors.ErrRegisterDataset, err, endpoint.String(), status.Convert(err).Message())
	}
	id := resp.Resp.(*pb.RegisterDatasetResponse).DatasetId
	log.L().Info("dataset registered",
		zap.Stringer("dispatcher", endpoint),
		zap.Int64("dataset-id", int64(id)),
		zap.Stringer("compression", mode),
		zap.Stringer("external-state-policy", policy),
		zap.String("pipeline", registered.String()))
	return id, nil
}

func validateRegistration(
	def *pipeline.Definition, policy model.ExternalStatePolicy, mode model.CompressionMode,
) (model.ExternalStatePolicy, error) {
	if err := mode.Validate(); err != nil {
		return policy, err
	}
	if err := policy.Validate(); err != nil {
		return policy, err
	}
	if len(def.Spec) == 0 {
		return policy, errors.ErrEmptyElementSpec.GenWithStackByArgs()
	}
	if policy == model.ExternalStateUnset {
		policy = def.Options.ExternalStatePolicy
		if err := policy.Validate(); err != nil {
			return policy, err
		}
	}
	return policy.Resolve(), nil
}

// prepareDefinition returns a copy of def as sent to the dispatcher. Workers
// apply their transfer options to the first map step, so a pipeline that is
// not compressed still gets an identity map.
func prepareDefinition(
	def *pipeline.Definition, policy model.ExternalStatePolicy, mode model.CompressionMode,
) *pipeline.Definition {
	registered := def.Clone()
	switch mode {
	case model.CompressionAuto:
		registered.Steps = append(registered.Steps, pipeline.CompressStep())
	case model.CompressionNone:
		registered.Steps = append(registered.Steps, pipeline.IdentityMapStep())
	}
	registered.Steps = append(registered.Steps, pipeline.PrefetchStep(pipeline.AutotuneBuffer))
	registered.Options.ExternalStatePolicy = policy
	return registered
}

type registrationKey struct {
	endpoint    model.ServiceEndpoint
	fingerprint uint64
	policy      model.ExternalStatePolicy
	mode        model.CompressionMode
}

func (k registrationKey) String() string {
	return fmt.Sprintf("%s/%d/%s/%s", k.endpoint, k.fingerprint, k.policy, k.mode)
}

// RegisterTimeout bounds a registration shared by the callers of a
// RegistrationCache.
const RegisterTimeout = 30 * time.Second

// RegistrationCache remembers the dataset ids returned by a registerer.
// Concurrent registrations of the same pipeline share one request.
type RegistrationCache struct {
	registerer DatasetRegisterer
	group      singleflight.Group

	mu  sync.RWMutex
	ids map[registrationKey]model.DatasetID
}

func NewRegistrationCache(registerer DatasetRegisterer) *RegistrationCache {
	return &RegistrationCache{
		registerer: registerer,
		ids:        make(map[registrationKey]model.DatasetID),
	}
}

// Register implements DatasetRegisterer. Failed registrations are not
// cached.
//
// The shared request runs on a context detached from the callers, bounded by
// RegisterTimeout, so one caller giving up does not fail the others waiting
// on it. A canceled caller returns its own context error right away.
func (c *RegistrationCache) Register(
	ctx context.Context,
	endpoint model.ServiceEndpoint,
	def *pipeline.Definition,
	policy model.ExternalStatePolicy,
	mode model.CompressionMode,
) (model.DatasetID, error) {
	resolved, err := validateRegistration(def, policy, mode)
	if err != nil {
		return 0, err
	}
	key := registrationKey{
		endpoint:    endpoint,
		fingerprint: def.Fingerprint(),
		policy:      resolved,
		mode:        mode,
	}

	c.mu.RLock()
	id, ok := c.ids[key]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	flight := c.group.DoChan(key.String(), func() (interface{}, error) {
		c.mu.RLock()
		id, ok := c.ids[key]
		c.mu.RUnlock()
		if ok {
			return id, nil
		}
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RegisterTimeout)
		defer cancel()
		id, err := c.registerer.Register(rctx, endpoint, def, resolved, mode)
		if err != nil {
			return model.DatasetID(0), err
		}
		c.mu.Lock()
		c.ids[key] = id
		c.mu.Unlock()
		return id, nil
	})
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(model.DatasetID), nil
	}
}
