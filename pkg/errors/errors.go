package errors

import (
	stderrors "errors"

	"github.com/pingcap/errors"
)

// all dataservice client errors
var (
	// service address and transport
	ErrInvalidServiceAddress = errors.Normalize(
		"invalid service address %q: %s",
		errors.RFCCodeText("DFLOW:ErrInvalidServiceAddress"),
	)
	ErrUnsupportedProtocol = errors.Normalize(
		"unsupported transport protocol %q, supported protocols: %v",
		errors.RFCCodeText("DFLOW:ErrUnsupportedProtocol"),
	)
	ErrGrpcBuildConn = errors.Normalize(
		"create grpc connection failed, address: %s",
		errors.RFCCodeText("DFLOW:ErrGrpcBuildConn"),
	)

	// enumerations
	ErrInvalidProcessingMode = errors.Normalize(
		"%q is not a valid processing mode, valid modes: %v",
		errors.RFCCodeText("DFLOW:ErrInvalidProcessingMode"),
	)
	ErrInvalidCompression = errors.Normalize(
		"invalid compression %q, must be one of %v",
		errors.RFCCodeText("DFLOW:ErrInvalidCompression"),
	)
	ErrInvalidTargetWorkers = errors.Normalize(
		"invalid target workers %q, must be one of %v",
		errors.RFCCodeText("DFLOW:ErrInvalidTargetWorkers"),
	)
	ErrInvalidExternalStatePolicy = errors.Normalize(
		"invalid external state policy %q, must be one of %v",
		errors.RFCCodeText("DFLOW:ErrInvalidExternalStatePolicy"),
	)

	// job parameters
	ErrConsumerPairing = errors.Normalize(
		"must either set both consumer index and num consumers, or neither, consumer index: %s, num consumers: %s",
		errors.RFCCodeText("DFLOW:ErrConsumerPairing"),
	)
	ErrNumConsumersWithoutJobName = errors.Normalize(
		"job name must be set when setting num consumers, num consumers: %d",
		errors.RFCCodeText("DFLOW:ErrNumConsumersWithoutJobName"),
	)
	ErrEmptyJobName = errors.Normalize(
		"job name must not be empty",
		errors.RFCCodeText("DFLOW:ErrEmptyJobName"),
	)
	ErrConsumerIndexOutOfRange = errors.Normalize(
		"consumer index %d out of range [0, %d)",
		errors.RFCCodeText("DFLOW:ErrConsumerIndexOutOfRange"),
	)
	ErrInvalidPipeliningDepth = errors.Normalize(
		"pipelining depth per worker must be at least 1, got %d",
		errors.RFCCodeText("DFLOW:ErrInvalidPipeliningDepth"),
	)
	ErrInvalidJobParam = errors.Normalize(
		"invalid job parameter %s: %v",
		errors.RFCCodeText("DFLOW:ErrInvalidJobParam"),
	)
	ErrEmptyElementSpec = errors.Normalize(
		"element spec must not be empty",
		errors.RFCCodeText("DFLOW:ErrEmptyElementSpec"),
	)

	// config
	ErrConfigParseFlagSet = errors.Normalize(
		"parse config flag set failed",
		errors.RFCCodeText("DFLOW:ErrConfigParseFlagSet"),
	)
	ErrConfigDecodeFile = errors.Normalize(
		"decode config file failed",
		errors.RFCCodeText("DFLOW:ErrConfigDecodeFile"),
	)
	ErrConfigUnknownItem = errors.Normalize(
		"unknown config items: %s",
		errors.RFCCodeText("DFLOW:ErrConfigUnknownItem"),
	)
	ErrConfigInvalid = errors.Normalize(
		"invalid config: %s",
		errors.RFCCodeText("DFLOW:ErrConfigInvalid"),
	)

	// remote
	ErrRegisterDataset = errors.Normalize(
		"dispatcher %s rejected dataset registration: %s",
		errors.RFCCodeText("DFLOW:ErrRegisterDataset"),
	)
	ErrJobJoin = errors.Normalize(
		"dispatcher %s refused to create or join job %q: %s",
		errors.RFCCodeText("DFLOW:ErrJobJoin"),
	)
	ErrListTasks = errors.Normalize(
		"list tasks of job client %d failed: %s",
		errors.RFCCodeText("DFLOW:ErrListTasks"),
	)
	ErrReadElement = errors.Normalize(
		"read element from task %d at worker %s failed: %s",
		errors.RFCCodeText("DFLOW:ErrReadElement"),
	)

	// element codec
	ErrCompressElement = errors.Normalize(
		"compress element failed",
		errors.RFCCodeText("DFLOW:ErrCompressElement"),
	)
	ErrUncompressElement = errors.Normalize(
		"uncompress element failed",
		errors.RFCCodeText("DFLOW:ErrUncompressElement"),
	)
	ErrElementSpecMismatch = errors.Normalize(
		"element spec mismatch, declared %s, received %s",
		errors.RFCCodeText("DFLOW:ErrElementSpecMismatch"),
	)

	// reader
	ErrReaderClosed = errors.Normalize(
		"reader has been closed",
		errors.RFCCodeText("DFLOW:ErrReaderClosed"),
	)
)

// configurationErrors are detected locally before any RPC is issued.
var configurationErrors = []*errors.Error{
	ErrInvalidServiceAddress,
	ErrUnsupportedProtocol,
	ErrInvalidProcessingMode,
	ErrInvalidCompression,
	ErrInvalidTargetWorkers,
	ErrInvalidExternalStatePolicy,
	ErrConsumerPairing,
	ErrNumConsumersWithoutJobName,
	ErrEmptyJobName,
	ErrConsumerIndexOutOfRange,
	ErrInvalidPipeliningDepth,
	ErrInvalidJobParam,
	ErrEmptyElementSpec,
	ErrConfigParseFlagSet,
	ErrConfigDecodeFile,
	ErrConfigUnknownItem,
	ErrConfigInvalid,
}

// Is reports whether any error in err's chain is rfcErr. Unlike
// (*errors.Error).Equal, it sees through errors created with Wrap.
func Is(err error, rfcErr *errors.Error) bool {
	return stderrors.Is(err, rfcErr)
}

// IsConfigurationError returns true if err is raised by local parameter
// validation, i.e. it was reported before talking to any remote service.
func IsConfigurationError(err error) bool {
	for _, e := range configurationErrors {
		if Is(err, e) {
			return true
		}
	}
	return false
}

// Wrap wraps err with the given rfc error and generates a stack.
// Returns nil if err is nil.
func Wrap(rfcErr *errors.Error, err error, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return rfcErr.Wrap(err).GenWithStackByArgs(args...)
}

// Trace annotates err with a stack trace if it has none.
func Trace(err error) error {
	return errors.Trace(err)
}
