// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autoencoder

import (
	"github.com/gomlx/autoencoder/pkg/topology"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/layers/activations"
	"github.com/pkg/errors"
)

const (
	// ParamImageHeight, ParamImageWidth and ParamImageChannels define the input image shape.
	// Defaults are 240, 240 and 1.
	ParamImageHeight   = "image_height"
	ParamImageWidth    = "image_width"
	ParamImageChannels = "image_channels"

	// ParamEncoderOnly builds only the encoder, flattening the bottleneck. Default is false.
	ParamEncoderOnly = "encoder_only"

	// ParamInterpolation is the decoder up-sampling interpolation: "nearest" (default) or "bilinear".
	ParamInterpolation = "upsampling_interpolation"
)

// The activation is read from activations.ParamActivation ("activation"), default "relu".

// CreateDefaultContext returns a context with the default hyperparameters of the autoencoder set.
// Change them with Context.SetParams, or from the command line with commandline.ParseContextSettings.
func CreateDefaultContext() *context.Context {
	ctx := context.New()
	cfg := DefaultConfig()
	ctx.SetParams(map[string]any{
		ParamImageHeight:            cfg.ImageShape[0],
		ParamImageWidth:             cfg.ImageShape[1],
		ParamImageChannels:          cfg.ImageShape[2],
		ParamEncoderOnly:            cfg.EncoderOnly,
		activations.ParamActivation: cfg.Activation,
		ParamInterpolation:          cfg.Interpolation.String(),
	})
	return ctx
}

// ConfigFromContext reads the autoencoder configuration from the context hyperparameters.
// Parameters not set take the values of DefaultConfig.
func ConfigFromContext(ctx *context.Context) (Config, error) {
	cfg := DefaultConfig()
	cfg.ImageShape[0] = context.GetParamOr(ctx, ParamImageHeight, cfg.ImageShape[0])
	cfg.ImageShape[1] = context.GetParamOr(ctx, ParamImageWidth, cfg.ImageShape[1])
	cfg.ImageShape[2] = context.GetParamOr(ctx, ParamImageChannels, cfg.ImageShape[2])
	cfg.EncoderOnly = context.GetParamOr(ctx, ParamEncoderOnly, cfg.EncoderOnly)
	cfg.Activation = context.GetParamOr(ctx, activations.ParamActivation, cfg.Activation)
	interpolation, err := topology.InterpolationString(context.GetParamOr(ctx, ParamInterpolation, "nearest"))
	if err != nil {
		return cfg, errors.WithMessagef(err, "hyperparameter %q", ParamInterpolation)
	}
	cfg.Interpolation = interpolation
	return cfg, nil
}

// BuildFromContext builds the autoencoder configured by the context hyperparameters. See ConfigFromContext.
func BuildFromContext(ctx *context.Context) (*topology.Model, error) {
	cfg, err := ConfigFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return Build(cfg), nil
}

// ModelGraph implements train.ModelFn: it builds the autoencoder configured by the context hyperparameters
// and applies it to the images in inputs[0], shaped `[batch, height, width, channels]`.
//
// Its variables are created under the scope of the model name ("autoencoder" or "encoder").
func ModelGraph(ctx *context.Context, spec any, inputs []*graph.Node) []*graph.Node {
	model, err := BuildFromContext(ctx)
	if err != nil {
		exceptions.Panicf("failed to build autoencoder: %+v", err)
	}
	return model.ModelGraph(ctx, spec, inputs)
}
