// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autoencoder

import (
	"testing"

	"github.com/gomlx/autoencoder/pkg/topology"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/graph/graphtest"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/layers/activations"
	"github.com/gomlx/gomlx/ui/commandline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromContext(t *testing.T) {
	cfg, err := ConfigFromContext(CreateDefaultContext())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	// Parameters not set take the default values.
	cfg, err = ConfigFromContext(context.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	ctx := CreateDefaultContext()
	_, err = commandline.ParseContextSettings(ctx,
		"image_height=64;image_width=32;image_channels=3;encoder_only=true;activation=tanh;upsampling_interpolation=bilinear")
	require.NoError(t, err)
	cfg, err = ConfigFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, Config{
		ImageShape:    [3]int{64, 32, 3},
		EncoderOnly:   true,
		Activation:    "tanh",
		Interpolation: topology.InterpolationBilinear,
	}, cfg)

	ctx.SetParam(ParamInterpolation, "cubic")
	_, err = ConfigFromContext(ctx)
	require.Error(t, err)
	_, err = BuildFromContext(ctx)
	require.Error(t, err)
}

func TestBuildFromContext(t *testing.T) {
	ctx := CreateDefaultContext()
	ctx.SetParams(map[string]any{
		ParamImageHeight:            32,
		ParamImageWidth:             48,
		activations.ParamActivation: "selu",
	})
	model, err := BuildFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{32, 48, 1}, model.InputShape())
	assert.Equal(t, "selu", model.Layer(0).Activation)
}

func TestModelGraph(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	for _, encoderOnly := range []bool{false, true} {
		ctx := CreateDefaultContext()
		ctx.SetParams(map[string]any{
			ParamImageHeight:   16,
			ParamImageWidth:    24,
			ParamImageChannels: 2,
			ParamEncoderOnly:   encoderOnly,
		})
		output := context.MustExecOnce(backend, ctx, func(ctx *context.Context, g *graph.Graph) *graph.Node {
			images := graph.Ones(g, shapes.Make(dtypes.Float32, 2, 16, 24, 2))
			return ModelGraph(ctx, nil, []*graph.Node{images})[0]
		})
		if encoderOnly {
			require.NoError(t, output.Shape().Check(dtypes.Float32, 2, 2*3*64))
		} else {
			// Round-trip: same height and width, 1 channel regardless of the input channels.
			require.NoError(t, output.Shape().Check(dtypes.Float32, 2, 16, 24, 1))
		}
	}
}

func TestModelGraphDefault(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	ctx := CreateDefaultContext()
	output := context.MustExecOnce(backend, ctx, func(ctx *context.Context, g *graph.Graph) *graph.Node {
		return ModelGraph(ctx, nil, []*graph.Node{graph.Zeros(g, shapes.Make(dtypes.Float32, 1, 240, 240, 1))})[0]
	})
	require.NoError(t, output.Shape().Check(dtypes.Float32, 1, 240, 240, 1))
}
