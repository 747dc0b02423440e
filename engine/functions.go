package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/viant/dknn/vector"
	sqlite "modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterVectorFunctions registers knn_l2 and knn_cosine with the driver so
// they are available on connections opened after this call. Existing open
// connections do not see them. Safe to call repeatedly.
func RegisterVectorFunctions() error {
	registerOnce.Do(func() {
		if err := sqlite.RegisterDeterministicScalarFunction("knn_l2", 2, knnL2Impl); err != nil {
			registerErr = fmt.Errorf("engine: register knn_l2: %w", err)
			return
		}
		if err := sqlite.RegisterDeterministicScalarFunction("knn_cosine", 2, knnCosineImpl); err != nil {
			registerErr = fmt.Errorf("engine: register knn_cosine: %w", err)
		}
	})
	return registerErr
}

func embeddingArgs(name string, args []driver.Value) ([]float32, []float32, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	a, err := asEmbedding(args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := asEmbedding(args[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func asEmbedding(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.DecodeEmbedding(v)
	default:
		return nil, fmt.Errorf("engine: unsupported argument type %T for embedding; want BLOB", arg)
	}
}

func knnL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := embeddingArgs("knn_l2", args)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	d, err := vector.L2Distance(a, b)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// knnCosineImpl returns cosine distance; NULL when either side has zero
// magnitude.
func knnCosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := embeddingArgs("knn_cosine", args)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("knn_cosine: dimension mismatch: %d vs %d", len(a), len(b))
	}
	sim, err := vector.CosineSimilarity(a, b)
	if err != nil {
		return nil, nil
	}
	return 1 - sim, nil
}
