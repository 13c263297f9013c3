package compression

import (
	"encoding/binary"

	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/zstd"
	"github.com/pingcap/errors"

	"github.com/hanfei1991/dataservice/pipeline"
	derrors "github.com/hanfei1991/dataservice/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxEnvelopeSize bounds the memory a decoded envelope may use.
const maxEnvelopeSize = 1 << 30

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(maxEnvelopeSize))
)

// Compress packs the components of elem, together with spec, into a single
// variant component.
//
// Envelope layout before compression:
//
//	uvarint(len(spec json)) spec json
//	uvarint(#components) { uvarint(len(component)) component }*
func Compress(spec pipeline.ElementSpec, elem pipeline.Element) (pipeline.Element, error) {
	if len(spec) != len(elem.Components) {
		return pipeline.Element{}, derrors.ErrCompressElement.GenWithStack(
			"element has %d components, spec %s declares %d", len(elem.Components), spec, len(spec))
	}
	specBytes, err := json.Marshal(spec)
	if err != nil {
		return pipeline.Element{}, derrors.Wrap(derrors.ErrCompressElement, err)
	}

	size := binary.MaxVarintLen64 * (2 + len(elem.Components))
	size += len(specBytes)
	for _, c := range elem.Components {
		size += len(c)
	}
	raw := make([]byte, 0, size)
	raw = binary.AppendUvarint(raw, uint64(len(specBytes)))
	raw = append(raw, specBytes...)
	raw = binary.AppendUvarint(raw, uint64(len(elem.Components)))
	for _, c := range elem.Components {
		raw = binary.AppendUvarint(raw, uint64(len(c)))
		raw = append(raw, c...)
	}

	return pipeline.Element{Components: [][]byte{encoder.EncodeAll(raw, nil)}}, nil
}

// Uncompress unpacks an element produced by Compress. declared is the spec
// of the dataset before compression; it must match the spec stored in the
// envelope.
func Uncompress(elem pipeline.Element, declared pipeline.ElementSpec) (pipeline.Element, error) {
	if len(elem.Components) != 1 {
		return pipeline.Element{}, derrors.ErrUncompressElement.GenWithStack(
			"compressed element must have exactly one component, got %d", len(elem.Components))
	}
	raw, err := decoder.DecodeAll(elem.Components[0], nil)
	if err != nil {
		return pipeline.Element{}, derrors.Wrap(derrors.ErrUncompressElement, err)
	}

	r := envelopeReader{buf: raw}
	specBytes := r.chunk()
	var spec pipeline.ElementSpec
	if r.err == nil {
		if err := json.Unmarshal(specBytes, &spec); err != nil {
			return pipeline.Element{}, derrors.Wrap(derrors.ErrUncompressElement, err)
		}
	}
	n := r.uvarint()
	if r.err != nil {
		return pipeline.Element{}, errors.Trace(r.err)
	}
	if !spec.Equal(declared) {
		return pipeline.Element{}, derrors.ErrElementSpecMismatch.GenWithStackByArgs(declared.String(), spec.String())
	}
	if n != uint64(len(spec)) {
		return pipeline.Element{}, derrors.ErrUncompressElement.GenWithStack(
			"envelope holds %d components, spec declares %d", n, len(spec))
	}

	components := make([][]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		components = append(components, r.chunk())
	}
	if r.err != nil {
		return pipeline.Element{}, errors.Trace(r.err)
	}
	if len(r.buf) != 0 {
		return pipeline.Element{}, derrors.ErrUncompressElement.GenWithStack(
			"%d trailing bytes in envelope", len(r.buf))
	}
	return pipeline.Element{Components: components}, nil
}

type envelopeReader struct {
	buf []byte
	err error
}

func (r *envelopeReader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.buf)
	if n <= 0 {
		r.err = derrors.ErrUncompressElement.GenWithStack("malformed envelope length")
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

func (r *envelopeReader) chunk() []byte {
	l := r.uvarint()
	if r.err != nil {
		return nil
	}
	if l > uint64(len(r.buf)) {
		r.err = derrors.ErrUncompressElement.GenWithStack("envelope truncated")
		return nil
	}
	ret := r.buf[:l:l]
	r.buf = r.buf[l:]
	return ret
}
