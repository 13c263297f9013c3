// Package compression negotiates whether dataset elements travel in a
// compressed envelope, and implements that envelope.
package compression

import (
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/hanfei1991/dataservice/model"
)

// Resolve returns the compression mode to use for both registration and
// reading. CompressionAuto is downgraded to CompressionNone when a custom
// data transfer protocol is requested. Such a protocol negotiates its own
// compression.
//
// The result must be computed once and passed to both the registrar and the
// reader, so that a compress step on the workers is always matched by an
// uncompress step on the readers.
func Resolve(requested model.CompressionMode, dataTransferProtocol model.Optional[string]) (model.CompressionMode, error) {
	if err := requested.Validate(); err != nil {
		return requested, err
	}
	if requested == model.CompressionAuto && dataTransferProtocol.IsPresent() {
		protocol, _ := dataTransferProtocol.Get()
		log.L().Info("compression disabled by custom data transfer protocol",
			zap.String("data-transfer-protocol", protocol))
		return model.CompressionNone, nil
	}
	return requested, nil
}
