// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package topology

import (
	"slices"
)

// Layer describes one layer of a sequential model. It holds only configuration: the
// variables are created when the model is realized with Model.Graph.
//
// Create it with one of Conv2D, BatchNorm, MaxPool2D, UpSampling2D or Flatten, and refine it with
// the With* methods. Fields not used by the Kind are left with their zero values.
type Layer struct {
	Kind Kind

	// Name of the layer, also used to scope its variables. If left empty, Model.Add assigns
	// a Keras-like default ("conv2d", "conv2d_1", ...).
	Name string

	// Channels is the number of output channels of a convolution.
	Channels int

	// KernelSize of a convolution, the same for both spatial axes.
	KernelSize int

	// Padding of a convolution. Default is PaddingValid.
	Padding Padding

	// Activation applied after a convolution. Empty means identity (linear).
	// Names are those accepted by the GoMLX activations package ("relu", "swish", "tanh", ...).
	Activation string

	// Factor of pooling or up-sampling: window size and strides for MaxPool2D, multiplier for UpSampling2D.
	Factor int

	// Interpolation used by UpSampling2D.
	Interpolation Interpolation

	// InputShape is `[height, width, channels]`, without the batch axis. It is only used in the first layer.
	InputShape []int
}

// Conv2D returns a convolution layer with the given number of output channels and kernel size.
// By default, it uses no padding, no activation and it adds a bias term.
func Conv2D(channels, kernelSize int) Layer {
	return Layer{Kind: KindConv2D, Channels: channels, KernelSize: kernelSize}
}

// BatchNorm returns a batch normalization layer over the channels axis.
func BatchNorm() Layer {
	return Layer{Kind: KindBatchNorm}
}

// MaxPool2D returns a max-pooling layer with the window and strides equal to factor.
func MaxPool2D(factor int) Layer {
	return Layer{Kind: KindMaxPool2D, Factor: factor}
}

// UpSampling2D returns an up-sampling layer multiplying each spatial axis by factor, using nearest
// neighbor (replication) by default.
func UpSampling2D(factor int) Layer {
	return Layer{Kind: KindUpSampling2D, Factor: factor, Interpolation: InterpolationNearest}
}

// Flatten returns a layer that reshapes its input to `[batch, features]`.
func Flatten() Layer {
	return Layer{Kind: KindFlatten}
}

// WithName returns a copy of the layer with the given name.
func (l Layer) WithName(name string) Layer {
	l.Name = name
	return l
}

// WithActivation returns a copy of the layer with the given activation name.
func (l Layer) WithActivation(activation string) Layer {
	l.Activation = activation
	return l
}

// WithPadding returns a copy of the layer with the given padding.
func (l Layer) WithPadding(padding Padding) Layer {
	l.Padding = padding
	return l
}

// WithInterpolation returns a copy of the layer with the given interpolation.
func (l Layer) WithInterpolation(interpolation Interpolation) Layer {
	l.Interpolation = interpolation
	return l
}

// WithInputShape returns a copy of the layer with the given input shape (`height, width, channels`).
func (l Layer) WithInputShape(dims ...int) Layer {
	l.InputShape = slices.Clone(dims)
	return l
}

// Equal returns whether both layers have the same configuration.
func (l Layer) Equal(other Layer) bool {
	return l.Kind == other.Kind &&
		l.Name == other.Name &&
		l.Channels == other.Channels &&
		l.KernelSize == other.KernelSize &&
		l.Padding == other.Padding &&
		l.Activation == other.Activation &&
		l.Factor == other.Factor &&
		l.Interpolation == other.Interpolation &&
		slices.Equal(l.InputShape, other.InputShape)
}

// HasActivation returns whether the layer applies a non-identity activation.
func (l Layer) HasActivation() bool {
	return l.Kind == KindConv2D && l.Activation != "" && l.Activation != "none" && l.Activation != "linear"
}

func (l Layer) clone() Layer {
	l.InputShape = slices.Clone(l.InputShape)
	return l
}
