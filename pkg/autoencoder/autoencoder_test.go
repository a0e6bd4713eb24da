// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autoencoder

import (
	"testing"

	"github.com/gomlx/autoencoder/pkg/topology"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	model := Build(DefaultConfig())
	assert.Equal(t, AutoencoderName, model.Name())
	assert.Equal(t, []int{240, 240, 1}, model.InputShape())

	conv, bn, pool, up := topology.KindConv2D, topology.KindBatchNorm, topology.KindMaxPool2D, topology.KindUpSampling2D
	assert.Equal(t, []topology.Kind{
		conv, bn, pool,
		conv, bn, pool,
		conv, bn, pool,
		conv, bn,
		up, conv, bn,
		up, conv, bn,
		up, conv, bn,
		conv,
	}, model.Kinds())

	var channels []int
	for _, layer := range model.Layers() {
		if layer.Kind == topology.KindConv2D {
			channels = append(channels, layer.Channels)
			assert.Equal(t, KernelSize, layer.KernelSize)
			assert.Equal(t, topology.PaddingSame, layer.Padding)
		}
	}
	assert.Equal(t, []int{8, 16, 32, 64, 32, 16, 8, 1}, channels)

	// Final layer: 1 channel, no activation.
	last, ok := model.Last()
	require.True(t, ok)
	assert.Equal(t, topology.KindConv2D, last.Kind)
	assert.Equal(t, OutputChannels, last.Channels)
	assert.False(t, last.HasActivation())

	output, err := model.OutputShape(1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 240, 240, 1}, output.Dimensions)
}

func TestBuildEncoderOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EncoderOnly = true
	model := Build(cfg)
	assert.Equal(t, EncoderName, model.Name())

	last, ok := model.Last()
	require.True(t, ok)
	assert.Equal(t, topology.KindFlatten, last.Kind)
	assert.Equal(t, 0, model.CountKind(topology.KindUpSampling2D))
	for _, layer := range model.Layers() {
		if layer.Kind == topology.KindConv2D {
			assert.NotEqual(t, OutputChannels, layer.Channels, "no reconstruction convolution expected")
		}
	}

	// 240 / 8 = 30, and the bottleneck has 64 channels.
	output, err := model.OutputShape(2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 30 * 30 * 64}, output.Dimensions)
}

func TestDownsampling(t *testing.T) {
	for _, encoderOnly := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.EncoderOnly = encoderOnly
		model := Build(cfg)
		assert.Equal(t, 3, model.CountKind(topology.KindMaxPool2D))
		assert.Equal(t, NumDownsamplings, model.CountKind(topology.KindMaxPool2D))

		// Four conv+batch-norm encoder blocks, the last one not followed by pooling.
		layers := model.Layers()
		var blocks int
		for idx := 0; idx+1 < len(layers) && layers[idx].Kind != topology.KindUpSampling2D; idx++ {
			if layers[idx].Kind == topology.KindConv2D && layers[idx+1].Kind == topology.KindBatchNorm {
				blocks++
			}
		}
		assert.Equal(t, len(EncoderChannels), blocks)
		assert.NotEqual(t, topology.KindMaxPool2D, layers[11].Kind, "bottleneck should not be pooled")
	}
	assert.Equal(t, 8, DownsamplingFactor())
}

func TestRoundTripShapes(t *testing.T) {
	for _, imageShape := range [][3]int{{240, 240, 1}, {8, 8, 1}, {64, 32, 1}, {16, 24, 3}, {120, 88, 4}} {
		cfg := DefaultConfig()
		cfg.ImageShape = imageShape
		require.True(t, cfg.ReconstructionFits())
		output, err := Build(cfg).OutputShape(3)
		require.NoError(t, err)
		assert.Equal(t, []int{3, imageShape[0], imageShape[1], 1}, output.Dimensions,
			"image shape %v should be reconstructed with 1 channel", imageShape)
	}

	// Not divisible by 8: the reconstruction is smaller.
	cfg := DefaultConfig()
	cfg.ImageShape = [3]int{100, 100, 1}
	assert.False(t, cfg.ReconstructionFits())
	output, err := Build(cfg).OutputShape(1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 96, 96, 1}, output.Dimensions)

	// Too small for three poolings: reported as a shape error.
	cfg.ImageShape = [3]int{4, 4, 1}
	_, err = Build(cfg).OutputShape(1)
	require.ErrorIs(t, err, topology.ErrShape)
}

func TestActivation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Activation = "swish"
	model := Build(cfg)
	layers := model.Layers()
	var numActivated int
	for idx, layer := range layers {
		if layer.Kind != topology.KindConv2D {
			assert.Empty(t, layer.Activation)
			continue
		}
		if idx == len(layers)-1 {
			assert.False(t, layer.HasActivation(), "final reconstruction must be linear")
			continue
		}
		assert.Equal(t, "swish", layer.Activation)
		numActivated++
	}
	assert.Equal(t, len(EncoderChannels)+len(DecoderChannels), numActivated)
}

func TestDeterministic(t *testing.T) {
	for _, encoderOnly := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.EncoderOnly = encoderOnly
		first, second := Build(cfg), Build(cfg)
		assert.True(t, first.Equal(second))
		if diff := cmp.Diff(first.Layers(), second.Layers()); diff != "" {
			t.Errorf("Build(%+v) not deterministic (-first +second):\n%s", cfg, diff)
		}
	}
}

func TestInterpolation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interpolation = topology.InterpolationBilinear
	for _, layer := range Build(cfg).Layers() {
		if layer.Kind == topology.KindUpSampling2D {
			assert.Equal(t, topology.InterpolationBilinear, layer.Interpolation)
		}
	}
}
