// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package topology

import (
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/pkg/errors"
)

// ErrShape is returned (wrapped) when a layer can't be applied to the shape produced by the previous one.
// Check for it with errors.Is.
var ErrShape = errors.New("incompatible shape")

// OutputShapes infers the output shape of every layer, for an input with the given batch size and the
// shape set in the first layer (see Layer.WithInputShape).
//
// It returns an error wrapping ErrShape if the model has no input shape, or if any of the layers can't be
// applied to the shape of its input -- the same condition that would fail when building the graph.
func (m *Model) OutputShapes(batchSize int) ([]shapes.Shape, error) {
	if len(m.layers) == 0 {
		return nil, errors.Wrapf(ErrShape, "model %q has no layers", m.name)
	}
	inputShape := m.layers[0].InputShape
	if len(inputShape) == 0 {
		return nil, errors.Wrapf(ErrShape, "model %q first layer %q has no input shape", m.name, m.layers[0].Name)
	}
	if batchSize <= 0 {
		return nil, errors.Wrapf(ErrShape, "batch size must be > 0, got %d", batchSize)
	}
	dims := append([]int{batchSize}, inputShape...)
	for _, dim := range dims {
		if dim <= 0 {
			return nil, errors.Wrapf(ErrShape, "model %q input shape %v has non-positive dimensions", m.name, inputShape)
		}
	}

	outputs := make([]shapes.Shape, 0, len(m.layers))
	for idx, layer := range m.layers {
		var err error
		dims, err = layer.outputDims(dims)
		if err != nil {
			return nil, errors.WithMessagef(err, "model %q layer #%d (%q)", m.name, idx, layer.Name)
		}
		outputs = append(outputs, shapes.Make(m.dtype, dims...))
	}
	return outputs, nil
}

// OutputShape returns the shape of the model output, for an input with the given batch size.
// See OutputShapes.
func (m *Model) OutputShape(batchSize int) (shapes.Shape, error) {
	outputs, err := m.OutputShapes(batchSize)
	if err != nil {
		return shapes.Shape{}, err
	}
	return outputs[len(outputs)-1], nil
}

// outputDims returns the output dimensions of the layer (including the batch axis) for the given input dimensions.
func (l Layer) outputDims(input []int) ([]int, error) {
	switch l.Kind {
	case KindConv2D:
		if err := checkImageRank(l, input); err != nil {
			return nil, err
		}
		if l.Channels <= 0 || l.KernelSize <= 0 {
			return nil, errors.Wrapf(ErrShape, "convolution needs channels and kernel size > 0, got %d and %d",
				l.Channels, l.KernelSize)
		}
		output := []int{input[0], input[1], input[2], l.Channels}
		if l.Padding == PaddingValid {
			for axis := 1; axis <= 2; axis++ {
				output[axis] = input[axis] - l.KernelSize + 1
				if output[axis] <= 0 {
					return nil, errors.Wrapf(ErrShape, "kernel size %d larger than spatial dimension %d of input %v",
						l.KernelSize, input[axis], input)
				}
			}
		}
		return output, nil

	case KindBatchNorm:
		if len(input) < 2 {
			return nil, errors.Wrapf(ErrShape, "batch normalization needs a channels axis, got input %v", input)
		}
		return input, nil

	case KindMaxPool2D:
		if err := checkImageRank(l, input); err != nil {
			return nil, err
		}
		if l.Factor <= 0 {
			return nil, errors.Wrapf(ErrShape, "pooling factor must be > 0, got %d", l.Factor)
		}
		output := []int{input[0], input[1] / l.Factor, input[2] / l.Factor, input[3]}
		if output[1] == 0 || output[2] == 0 {
			return nil, errors.Wrapf(ErrShape, "pooling window %d larger than spatial dimensions of input %v",
				l.Factor, input)
		}
		return output, nil

	case KindUpSampling2D:
		if err := checkImageRank(l, input); err != nil {
			return nil, err
		}
		if l.Factor <= 0 {
			return nil, errors.Wrapf(ErrShape, "up-sampling factor must be > 0, got %d", l.Factor)
		}
		return []int{input[0], input[1] * l.Factor, input[2] * l.Factor, input[3]}, nil

	case KindFlatten:
		if len(input) < 2 {
			return nil, errors.Wrapf(ErrShape, "flatten needs at least a batch and a feature axis, got %v", input)
		}
		size := 1
		for _, dim := range input[1:] {
			size *= dim
		}
		return []int{input[0], size}, nil
	}
	return nil, errors.Errorf("invalid layer kind %d", int(l.Kind))
}

func checkImageRank(l Layer, input []int) error {
	if len(input) != 4 {
		return errors.Wrapf(ErrShape, "%s needs input shaped [batch, height, width, channels], got %v", l.Kind, input)
	}
	return nil
}

// ParamCount holds the number of parameters of a layer, or of a whole model.
type ParamCount struct {
	// Trainable parameters, updated by the optimizer.
	Trainable int

	// NonTrainable parameters, like the moving averages of the batch normalization.
	NonTrainable int
}

// Total number of parameters.
func (p ParamCount) Total() int { return p.Trainable + p.NonTrainable }

// Add returns the sum of both counts.
func (p ParamCount) Add(other ParamCount) ParamCount {
	return ParamCount{Trainable: p.Trainable + other.Trainable, NonTrainable: p.NonTrainable + other.NonTrainable}
}

// Parameters returns the number of parameters of each layer, as created by Model.Graph.
//
//   - Convolution: kernel `[k, k, inputChannels, channels]` plus bias `[channels]`.
//   - Batch normalization: trainable scale and offset, and non-trainable mean, variance and
//     averages weight, each shaped `[channels]`.
//
// Other layers have no parameters.
func (m *Model) Parameters() ([]ParamCount, error) {
	outputs, err := m.OutputShapes(1)
	if err != nil {
		return nil, err
	}
	counts := make([]ParamCount, len(m.layers))
	inputChannels := m.layers[0].InputShape[len(m.layers[0].InputShape)-1]
	for idx, layer := range m.layers {
		switch layer.Kind {
		case KindConv2D:
			counts[idx].Trainable = layer.KernelSize*layer.KernelSize*inputChannels*layer.Channels + layer.Channels
		case KindBatchNorm:
			channels := outputs[idx].Dimensions[outputs[idx].Rank()-1]
			counts[idx].Trainable = 2 * channels
			counts[idx].NonTrainable = 3 * channels
		}
		output := outputs[idx]
		inputChannels = output.Dimensions[output.Rank()-1]
	}
	return counts, nil
}

// NumParameters returns the total parameter count of the model. See Parameters.
func (m *Model) NumParameters() (ParamCount, error) {
	counts, err := m.Parameters()
	if err != nil {
		return ParamCount{}, err
	}
	var total ParamCount
	for _, count := range counts {
		total = total.Add(count)
	}
	return total, nil
}
