// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package topology

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/layers"
	"github.com/gomlx/gomlx/pkg/ml/layers/activations"
	"github.com/gomlx/gomlx/pkg/ml/layers/batchnorm"
	"k8s.io/klog/v2"
)

// Graph applies the layers of the model in sequence to x, shaped `[batch, height, width, channels]`.
//
// Each layer creates its variables under its own scope, named after its index and name (e.g.: "003_max_pooling2d"),
// so the same context can hold more than one model as long as they use different scopes.
//
// If the first layer has an input shape set, x must match it (batch axis excluded).
// Incompatible shapes or invalid activation names panic with the error from GoMLX,
// see TryGraph for a version that returns an error instead.
func (m *Model) Graph(ctx *context.Context, x *graph.Node) *graph.Node {
	if len(m.layers) == 0 {
		exceptions.Panicf("model %q has no layers", m.name)
	}
	if inputShape := m.layers[0].InputShape; len(inputShape) > 0 {
		x.AssertDims(append([]int{-1}, inputShape...)...)
	}
	for idx, layer := range m.layers {
		x = layer.Graph(ctx.Inf("%03d_%s", idx, layer.Name), x)
		klog.V(2).Infof("%s: layer #%d %q -> %s", m.name, idx, layer.Name, x.Shape())
	}
	return x
}

// TryGraph is like Graph, but it returns an error instead of panicking.
func (m *Model) TryGraph(ctx *context.Context, x *graph.Node) (output *graph.Node, err error) {
	err = exceptions.TryCatch[error](func() { output = m.Graph(ctx, x) })
	if err != nil {
		return nil, err
	}
	return output, nil
}

// ModelGraph implements train.ModelFn: it applies the model to the first input, under the scope of
// the model name, and returns the output.
//
// The spec is ignored.
func (m *Model) ModelGraph(ctx *context.Context, spec any, inputs []*graph.Node) []*graph.Node {
	_ = spec
	if m.name != "" {
		ctx = ctx.In(m.name)
	}
	return []*graph.Node{m.Graph(ctx, inputs[0])}
}

// Graph applies the layer to x, creating its variables (if any) in ctx.
func (l Layer) Graph(ctx *context.Context, x *graph.Node) *graph.Node {
	switch l.Kind {
	case KindConv2D:
		conv := layers.Convolution(ctx, x).Channels(l.Channels).KernelSize(l.KernelSize)
		if l.Padding == PaddingSame {
			conv = conv.PadSame()
		} else {
			conv = conv.NoPadding()
		}
		x = conv.Done()
		if l.HasActivation() {
			x = activations.Apply(activations.FromName(l.Activation), x)
		}
		return x

	case KindBatchNorm:
		return batchnorm.New(ctx, x, -1).Done()

	case KindMaxPool2D:
		return graph.MaxPool(x).Window(l.Factor).Done()

	case KindUpSampling2D:
		return upSampling(x, l.Factor, l.Interpolation)

	case KindFlatten:
		return graph.Reshape(x, x.Shape().Dimensions[0], -1)
	}
	exceptions.Panicf("layer %q has invalid kind %d", l.Name, int(l.Kind))
	return nil
}

// upSampling multiplies the spatial axes of x (shaped `[batch, height, width, channels]`) by factor.
//
// Nearest replicates each value over a `factor x factor` window. Bilinear uses the GoMLX interpolation.
func upSampling(x *graph.Node, factor int, interpolation Interpolation) *graph.Node {
	x.AssertRank(4)
	dims := x.Shape().Dimensions
	batchSize, height, width, channels := dims[0], dims[1], dims[2], dims[3]
	switch interpolation {
	case InterpolationBilinear:
		return graph.Interpolate(x, graph.NoInterpolation, height*factor, width*factor, graph.NoInterpolation).Bilinear().Done()
	case InterpolationNearest:
		x = graph.Reshape(x, batchSize, height, 1, width, 1, channels)
		x = graph.BroadcastToDims(x, batchSize, height, factor, width, factor, channels)
		return graph.Reshape(x, batchSize, height*factor, width*factor, channels)
	}
	exceptions.Panicf("invalid interpolation %d for up-sampling", int(interpolation))
	return nil
}
