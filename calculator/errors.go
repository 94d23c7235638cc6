package calculator

import "errors"

var (
	// ErrInvalidConfig is returned before synthesis starts.
	ErrInvalidConfig = errors.New("invalid wind field configuration")
	// ErrNumericalInstability marks a non-positive pivot in the weighting matrix.
	ErrNumericalInstability = errors.New("numerical instability in spectral factorization")
	// ErrBadFormat 文件格式错误
	ErrBadFormat = errors.New("bad wind field file format")
	// ErrTruncated 文件被截断
	ErrTruncated = errors.New("truncated wind field file")
	// ErrNotCalculated is returned when a field is used before it is valid.
	ErrNotCalculated = errors.New("wind field not calculated")
)
