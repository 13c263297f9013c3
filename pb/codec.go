package pb

import (
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype of the dataservice RPCs.
const CodecName = "json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Codec encodes the dataservice messages as JSON. Both ends must force it,
// clients with grpc.ForceCodec and servers with grpc.ForceServerCodec.
type Codec struct{}

// Marshal implements encoding.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Name implements encoding.Codec.
func (Codec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(Codec{})
}
