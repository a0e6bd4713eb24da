// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package autoencoder builds the topology of a small convolutional autoencoder for single-channel images.
//
// The encoder has four blocks of convolution (8, 16, 32 and 64 channels), batch normalization and
// 2x max-pooling, except the last block, which is not pooled: so images are reduced by a factor of 8 and
// the 64-channel bottleneck keeps the finer detail. The decoder mirrors it with 2x up-sampling,
// convolution and batch normalization blocks (32, 16 and 8 channels), and a final linear convolution
// reconstructs a 1-channel image.
//
// With Config.EncoderOnly the model stops after the encoder and flattens the bottleneck to a vector.
//
// Example:
//
//	model := autoencoder.Build(autoencoder.DefaultConfig())
//	output := model.Graph(ctx, images) // images shaped [batch, 240, 240, 1]
package autoencoder

import (
	"github.com/gomlx/autoencoder/pkg/topology"
)

const (
	// KernelSize of every convolution.
	KernelSize = 3

	// PoolFactor is the spatial factor of each max-pooling and up-sampling.
	PoolFactor = 2

	// OutputChannels of the reconstructed image.
	OutputChannels = 1

	// EncoderName and AutoencoderName are the names (and variable scopes) of the built models.
	EncoderName     = "encoder"
	AutoencoderName = "autoencoder"
)

var (
	// EncoderChannels are the output channels of the encoder convolutions, in order.
	EncoderChannels = []int{8, 16, 32, 64}

	// DecoderChannels are the output channels of the decoder convolutions, in order, not
	// including the final reconstruction.
	DecoderChannels = []int{32, 16, 8}

	// NumDownsamplings is the number of max-pooling layers: the last encoder block is not pooled.
	NumDownsamplings = len(EncoderChannels) - 1
)

// DownsamplingFactor is the factor by which the encoder reduces the height and width of the image.
// Images whose height and width are divisible by it are reconstructed with the same resolution.
func DownsamplingFactor() int {
	factor := 1
	for range NumDownsamplings {
		factor *= PoolFactor
	}
	return factor
}

// Config of the autoencoder.
type Config struct {
	// ImageShape is `[height, width, channels]`.
	ImageShape [3]int

	// EncoderOnly builds only the encoder, ending with a flatten layer.
	EncoderOnly bool

	// Activation used after every convolution, except the final reconstruction one, which is linear.
	// See the GoMLX activations package for valid names.
	Activation string

	// Interpolation of the decoder up-sampling, nearest by default.
	Interpolation topology.Interpolation
}

// DefaultConfig returns the configuration for 240x240 gray images, a full autoencoder and "relu" activations.
func DefaultConfig() Config {
	return Config{
		ImageShape: [3]int{240, 240, 1},
		Activation: "relu",
	}
}

// ReconstructionFits returns whether the full autoencoder output has the same height and width as the input.
func (cfg Config) ReconstructionFits() bool {
	factor := DownsamplingFactor()
	return cfg.ImageShape[0]%factor == 0 && cfg.ImageShape[1]%factor == 0
}

// Build the autoencoder model for the given configuration.
//
// No validation is done: an image shape incompatible with the layers (e.g.: smaller than 8x8) is reported
// by Model.OutputShapes, or by GoMLX when the graph is built.
func Build(cfg Config) *topology.Model {
	name := AutoencoderName
	if cfg.EncoderOnly {
		name = EncoderName
	}
	model := topology.NewModel(name)

	// Encoder
	for idx, channels := range EncoderChannels {
		conv := convolution(channels, cfg.Activation)
		if idx == 0 {
			conv = conv.WithInputShape(cfg.ImageShape[:]...)
		}
		model.Add(conv, topology.BatchNorm())
		if idx < NumDownsamplings {
			model.Add(topology.MaxPool2D(PoolFactor))
		}
	}
	if cfg.EncoderOnly {
		return model.Add(topology.Flatten())
	}

	// Decoder
	for _, channels := range DecoderChannels {
		model.Add(
			topology.UpSampling2D(PoolFactor).WithInterpolation(cfg.Interpolation),
			convolution(channels, cfg.Activation),
			topology.BatchNorm())
	}
	return model.Add(convolution(OutputChannels, ""))
}

func convolution(channels int, activation string) topology.Layer {
	return topology.Conv2D(channels, KernelSize).
		WithPadding(topology.PaddingSame).
		WithActivation(activation)
}
