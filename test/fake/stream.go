package fake

import (
	"strconv"

	"github.com/pingcap/errors"

	"github.com/hanfei1991/dataservice/pipeline"
	"github.com/hanfei1991/dataservice/pkg/compression"
)

type iterator func() (int64, bool)

type iteratorFactory func() iterator

// program is a pipeline definition the fake worker can run.
type program struct {
	spec     pipeline.ElementSpec
	factory  iteratorFactory
	compress bool
}

// compile turns the steps of def into a program. Only range sources and a
// few named maps are supported.
func compile(def *pipeline.Definition) (*program, error) {
	if len(def.Steps) == 0 || def.Steps[0].Kind != pipeline.StepSource {
		return nil, errors.New("pipeline must start with a source")
	}
	src := def.Steps[0]
	if src.Name != pipeline.RangeSourceName {
		return nil, errors.Errorf("unsupported source %q", src.Name)
	}
	n, err := strconv.ParseInt(src.Args["n"], 10, 64)
	if err != nil {
		return nil, errors.Annotatef(err, "range source argument n=%q", src.Args["n"])
	}
	p := &program{spec: def.Spec.Clone(), factory: rangeFactory(n)}

	for _, step := range def.Steps[1:] {
		switch step.Kind {
		case pipeline.StepMap:
			fn, ok := mapFuncs[step.Name]
			if !ok {
				return nil, errors.Errorf("unsupported map function %q", step.Name)
			}
			p.factory = mapFactory(p.factory, fn)
		case pipeline.StepRepeat:
			p.factory = repeatFactory(p.factory, step.Count)
		case pipeline.StepTake:
			p.factory = takeFactory(p.factory, step.Count)
		case pipeline.StepCompress:
			p.compress = true
		case pipeline.StepPrefetch:
		default:
			return nil, errors.Errorf("unsupported step %q", step.Kind)
		}
	}
	return p, nil
}

var mapFuncs = map[string]func(int64) int64{
	pipeline.IdentityMapName: func(v int64) int64 { return v },
	"square":                 func(v int64) int64 { return v * v },
}

func rangeFactory(n int64) iteratorFactory {
	return func() iterator {
		var i int64
		return func() (int64, bool) {
			if i >= n {
				return 0, false
			}
			i++
			return i - 1, true
		}
	}
}

func mapFactory(upstream iteratorFactory, fn func(int64) int64) iteratorFactory {
	return func() iterator {
		it := upstream()
		return func() (int64, bool) {
			v, ok := it()
			if !ok {
				return 0, false
			}
			return fn(v), true
		}
	}
}

func repeatFactory(upstream iteratorFactory, count int64) iteratorFactory {
	return func() iterator {
		var passes int64
		it := upstream()
		produced := false
		return func() (int64, bool) {
			for {
				if count >= 0 && passes >= count {
					return 0, false
				}
				if v, ok := it(); ok {
					produced = true
					return v, true
				}
				passes++
				// an empty upstream would repeat forever
				if !produced {
					return 0, false
				}
				produced = false
				it = upstream()
			}
		}
	}
}

func takeFactory(upstream iteratorFactory, n int64) iteratorFactory {
	return func() iterator {
		it := upstream()
		var taken int64
		return func() (int64, bool) {
			if n >= 0 && taken >= n {
				return 0, false
			}
			v, ok := it()
			if ok {
				taken++
			}
			return v, ok
		}
	}
}

// shard keeps the elements whose position modulo numShards is index.
func shard(it iterator, index, numShards int) iterator {
	if numShards <= 1 {
		return it
	}
	var pos int
	return func() (int64, bool) {
		for {
			v, ok := it()
			if !ok {
				return 0, false
			}
			pos++
			if (pos-1)%numShards == index {
				return v, true
			}
		}
	}
}

// encode builds the response components of v.
func (p *program) encode(v int64) ([][]byte, bool, error) {
	elem := pipeline.Int64Element(v)
	if !p.compress {
		return elem.Components, false, nil
	}
	compressed, err := compression.Compress(p.spec, elem)
	if err != nil {
		return nil, false, err
	}
	return compressed.Components, true, nil
}
