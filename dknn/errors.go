package dknn

import "github.com/pkg/errors"

var (
	// ErrNotCalibrated is returned by prediction calls made before a
	// successful Calibrate, or when calibration kept no examples.
	ErrNotCalibrated = errors.New("dknn: model is not calibrated, call Calibrate before predicting")

	// ErrShapeMismatch reports neighbor or activation matrices whose shape
	// disagrees with (examples, neighbors) for some layer.
	ErrShapeMismatch = errors.New("dknn: shape mismatch")

	// ErrIndexQuery reports a neighbor index that could not be queried.
	ErrIndexQuery = errors.New("dknn: neighbor index query failed")

	// ErrInvalidConfig reports an unusable configuration.
	ErrInvalidConfig = errors.New("dknn: invalid config")

	// ErrInvalidInput reports malformed training or calibration data.
	ErrInvalidInput = errors.New("dknn: invalid input")
)
