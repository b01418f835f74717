package cipher

import "fmt"

// Pipeline chains registered algorithms by key.
type Pipeline struct {
	Keys []string
}

// Encode runs every algorithm's encoder in order.
func (p Pipeline) Encode(reg *Registry, input string) (string, error) {
	algs, err := p.resolve(reg)
	if err != nil {
		return "", err
	}
	out := input
	for _, alg := range algs {
		out = alg.Encode(out)
	}
	return out, nil
}

// Decode runs every algorithm's decoder in reverse order, undoing Encode.
// A stage that returns DecryptionFailed stops the chain.
func (p Pipeline) Decode(reg *Registry, input string) (string, error) {
	algs, err := p.resolve(reg)
	if err != nil {
		return "", err
	}
	out := input
	for i := len(algs) - 1; i >= 0; i-- {
		out = algs[i].Decode(out)
		if out == DecryptionFailed {
			break
		}
	}
	return out, nil
}

// Reverse returns the pipeline with its keys in reverse order.
func (p Pipeline) Reverse() Pipeline {
	keys := make([]string, len(p.Keys))
	for i, key := range p.Keys {
		keys[len(p.Keys)-1-i] = key
	}
	return Pipeline{Keys: keys}
}

func (p Pipeline) resolve(reg *Registry) ([]Algorithm, error) {
	if len(p.Keys) == 0 {
		return nil, ErrEmptyPipeline
	}
	if reg == nil {
		reg = Default()
	}
	algs := make([]Algorithm, 0, len(p.Keys))
	for i, key := range p.Keys {
		alg, ok := reg.Get(key)
		if !ok {
			return nil, fmt.Errorf("step %d: %w: %s", i+1, ErrUnknownAlgorithm, key)
		}
		algs = append(algs, alg)
	}
	return algs, nil
}
