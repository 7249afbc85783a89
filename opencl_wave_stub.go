//go:build !opencl

package qfield

import "errors"

type gpuWaveSolver struct{}

func newGPUWaveSolver(width, height int) (*gpuWaveSolver, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}

func (s *gpuWaveSolver) step(field *scalarTriple, waveSpeed, damping, reflect float32) error {
	return errors.New("OpenCL solver unavailable")
}

func (s *gpuWaveSolver) close() {}

func (s *gpuWaveSolver) deviceName() string { return "" }
