//go:build opencl

package qfield

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

// gpuWaveSolver offloads the finite-difference update to an OpenCL device.
// The host buffers stay authoritative: current and previous heights are
// uploaded before each step (injection mutates them host-side between
// steps) and the freshly computed next buffer is read back afterwards.
type gpuWaveSolver struct {
	context        *cl.Context
	queue          *cl.CommandQueue
	program        *cl.Program
	stepKernel     *cl.Kernel
	boundaryRowKrn *cl.Kernel
	boundaryColKrn *cl.Kernel
	currBuf        *cl.MemObject
	prevBuf        *cl.MemObject
	nextBuf        *cl.MemObject
	width          int
	height         int
	device         string
}

const gpuKernelSource = `__kernel void wave_step(
    const int width,
    const int height,
    const float speed,
    const float damping,
    __global const float* curr,
    __global const float* prev,
    __global float* next_buffer)
{
    int idx = get_global_id(0);
    int size = width * height;
    if (idx >= size) {
        return;
    }
    int x = idx % width;
    int y = idx / width;
    if (x <= 0 || x >= width - 1 || y <= 0 || y >= height - 1) {
        return;
    }
    float c = curr[idx];
    float p = prev[idx];
    float laplacian = curr[idx - 1] + curr[idx + 1] + curr[idx - width] + curr[idx + width] - 4.0f * c;
    float v = 2.0f * c - p + speed * laplacian - damping * (c - p);
    next_buffer[idx] = clamp(v, -1.0f, 1.0f);
}

__kernel void apply_boundary_rows(
    const int width,
    const int height,
    const float reflect,
    __global float* buffer)
{
    int x = get_global_id(0);
    if (x >= width) {
        return;
    }
    int last_row = height - 1;
    buffer[x] = -buffer[width + x] * reflect;
    buffer[last_row * width + x] = -buffer[(last_row - 1) * width + x] * reflect;
}

__kernel void apply_boundary_cols(
    const int width,
    const int height,
    const float reflect,
    __global float* buffer)
{
    int y = get_global_id(0) + 1;
    if (y >= height - 1) {
        return;
    }
    int base = y * width;
    buffer[base] = -buffer[base + 1] * reflect;
    buffer[base + width - 1] = -buffer[base + width - 2] * reflect;
}`

func newGPUWaveSolver(width, height int) (*gpuWaveSolver, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available")
	}
	device := pickDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = pickDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	s := &gpuWaveSolver{width: width, height: height, device: device.Name()}

	s.context, err = cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	s.queue, err = s.context.CreateCommandQueue(device, 0)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	s.program, err = s.context.CreateProgramWithSource([]string{gpuKernelSource})
	if err != nil {
		s.close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		s.close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	if s.stepKernel, err = s.program.CreateKernel("wave_step"); err != nil {
		s.close()
		return nil, fmt.Errorf("creating step kernel: %w", err)
	}
	if s.boundaryRowKrn, err = s.program.CreateKernel("apply_boundary_rows"); err != nil {
		s.close()
		return nil, fmt.Errorf("creating boundary row kernel: %w", err)
	}
	if s.boundaryColKrn, err = s.program.CreateKernel("apply_boundary_cols"); err != nil {
		s.close()
		return nil, fmt.Errorf("creating boundary column kernel: %w", err)
	}

	byteSize := width * height * int(unsafe.Sizeof(float32(0)))
	if s.currBuf, err = s.context.CreateEmptyBuffer(cl.MemReadOnly, byteSize); err != nil {
		s.close()
		return nil, fmt.Errorf("allocating current buffer: %w", err)
	}
	if s.prevBuf, err = s.context.CreateEmptyBuffer(cl.MemReadOnly, byteSize); err != nil {
		s.close()
		return nil, fmt.Errorf("allocating previous buffer: %w", err)
	}
	if s.nextBuf, err = s.context.CreateEmptyBuffer(cl.MemWriteOnly, byteSize); err != nil {
		s.close()
		return nil, fmt.Errorf("allocating next buffer: %w", err)
	}
	return s, nil
}

// pickDevice returns the first device of the requested type, or nil.
func pickDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

// step runs one finite-difference update on the device, writing the result
// into field.next. The caller rotates buffers afterwards exactly as in the
// CPU path.
func (s *gpuWaveSolver) step(field *scalarTriple, waveSpeed, damping, reflect float32) error {
	size := s.width * s.height
	if len(field.curr) != size || len(field.prev) != size || len(field.next) != size {
		return fmt.Errorf("unexpected field buffer size")
	}
	if _, err := s.queue.EnqueueWriteBufferFloat32(s.currBuf, false, 0, field.curr, nil); err != nil {
		return fmt.Errorf("writing current buffer: %w", err)
	}
	if _, err := s.queue.EnqueueWriteBufferFloat32(s.prevBuf, false, 0, field.prev, nil); err != nil {
		return fmt.Errorf("writing previous buffer: %w", err)
	}
	if err := s.stepKernel.SetArgs(
		int32(s.width), int32(s.height), waveSpeed, damping,
		s.currBuf, s.prevBuf, s.nextBuf,
	); err != nil {
		return fmt.Errorf("setting step kernel arguments: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.stepKernel, nil, []int{size}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing step kernel: %w", err)
	}
	if err := s.boundaryRowKrn.SetArgs(int32(s.width), int32(s.height), reflect, s.nextBuf); err != nil {
		return fmt.Errorf("setting boundary row arguments: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.boundaryRowKrn, nil, []int{s.width}, nil, nil); err != nil {
		return fmt.Errorf("applying boundary rows: %w", err)
	}
	if s.height > 2 {
		if err := s.boundaryColKrn.SetArgs(int32(s.width), int32(s.height), reflect, s.nextBuf); err != nil {
			return fmt.Errorf("setting boundary column arguments: %w", err)
		}
		if _, err := s.queue.EnqueueNDRangeKernel(s.boundaryColKrn, nil, []int{s.height - 2}, nil, nil); err != nil {
			return fmt.Errorf("applying boundary columns: %w", err)
		}
	}
	if _, err := s.queue.EnqueueReadBufferFloat32(s.nextBuf, true, 0, field.next, nil); err != nil {
		return fmt.Errorf("reading next buffer: %w", err)
	}
	return nil
}

func (s *gpuWaveSolver) close() {
	if s.nextBuf != nil {
		s.nextBuf.Release()
		s.nextBuf = nil
	}
	if s.prevBuf != nil {
		s.prevBuf.Release()
		s.prevBuf = nil
	}
	if s.currBuf != nil {
		s.currBuf.Release()
		s.currBuf = nil
	}
	if s.boundaryColKrn != nil {
		s.boundaryColKrn.Release()
		s.boundaryColKrn = nil
	}
	if s.boundaryRowKrn != nil {
		s.boundaryRowKrn.Release()
		s.boundaryRowKrn = nil
	}
	if s.stepKernel != nil {
		s.stepKernel.Release()
		s.stepKernel = nil
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}

func (s *gpuWaveSolver) deviceName() string { return s.device }
