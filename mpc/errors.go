package mpc

import "github.com/pkg/errors"

var (
	ErrWeightsNotSet   = errors.New("cost weights have not been configured")
	ErrInvalidWeights  = errors.New("invalid cost weights")
	ErrReferenceLength = errors.New("reference length does not match the horizon")
	ErrNonFiniteInput  = errors.New("input is not finite")
	ErrNegativeSpeed   = errors.New("reference speed is negative")
	ErrInvalidConfig   = errors.New("invalid solver config")
)
