// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package topology describes sequential convolutional models as an ordered list of layer
// descriptors, and realizes them as GoMLX computation graphs.
//
// A Model is built by appending layers, the same way one would with a Keras Sequential model:
//
//	model := topology.NewModel("encoder").Add(
//		topology.Conv2D(8, 3).WithPadding(topology.PaddingSame).WithActivation("relu").WithInputShape(28, 28, 1),
//		topology.BatchNorm(),
//		topology.MaxPool2D(2),
//		topology.Flatten())
//
// The output of layer i is the sole input of layer i+1. Shapes can be checked without a backend
// with Model.OutputShapes, and the model is turned into a graph with Model.Graph, or used directly as a
// train.ModelFn with Model.ModelGraph.
package topology

import (
	"fmt"
	"slices"

	"github.com/gomlx/gomlx/pkg/core/dtypes"
)

// Model is a sequential list of layers.
//
// It is not safe for concurrent modification, but once built it can be used (realized, summarized)
// concurrently.
type Model struct {
	name   string
	dtype  dtypes.DType
	layers []Layer

	// kindCount is used to generate default layer names.
	kindCount map[Kind]int
}

// NewModel creates an empty model with the given name. The name is used as the scope of the model
// variables by ModelGraph.
//
// The default dtype is Float32, see SetDType.
func NewModel(name string) *Model {
	return &Model{
		name:      name,
		dtype:     dtypes.Float32,
		kindCount: make(map[Kind]int),
	}
}

// Name of the model.
func (m *Model) Name() string { return m.name }

// DType used for the shapes inferred by OutputShapes.
func (m *Model) DType() dtypes.DType { return m.dtype }

// SetDType sets the dtype used for the shapes inferred by OutputShapes. It returns the model itself.
func (m *Model) SetDType(dtype dtypes.DType) *Model {
	m.dtype = dtype
	return m
}

// Add appends the layers to the end of the model, in order. Layers without a name are
// given a default one based on their kind: "conv2d", "conv2d_1", "conv2d_2", ...
//
// It returns the model itself, so calls can be cascaded.
func (m *Model) Add(layers ...Layer) *Model {
	for _, layer := range layers {
		layer = layer.clone()
		count := m.kindCount[layer.Kind]
		m.kindCount[layer.Kind] = count + 1
		if layer.Name == "" {
			layer.Name = layer.Kind.String()
			if count > 0 {
				layer.Name = fmt.Sprintf("%s_%d", layer.Name, count)
			}
		}
		m.layers = append(m.layers, layer)
	}
	return m
}

// Len returns the number of layers.
func (m *Model) Len() int { return len(m.layers) }

// Layers returns a copy of the layers of the model.
func (m *Model) Layers() []Layer {
	layers := make([]Layer, len(m.layers))
	for ii, layer := range m.layers {
		layers[ii] = layer.clone()
	}
	return layers
}

// Layer returns the layer at the given index. Negative indices count from the end.
func (m *Model) Layer(idx int) Layer {
	if idx < 0 {
		idx += len(m.layers)
	}
	return m.layers[idx].clone()
}

// Last returns the last layer, or false if the model is empty.
func (m *Model) Last() (Layer, bool) {
	if len(m.layers) == 0 {
		return Layer{}, false
	}
	return m.Layer(-1), true
}

// Kinds returns the sequence of layer kinds.
func (m *Model) Kinds() []Kind {
	kinds := make([]Kind, len(m.layers))
	for ii, layer := range m.layers {
		kinds[ii] = layer.Kind
	}
	return kinds
}

// CountKind returns the number of layers of the given kind.
func (m *Model) CountKind(kind Kind) int {
	var count int
	for _, layer := range m.layers {
		if layer.Kind == kind {
			count++
		}
	}
	return count
}

// InputShape returns the `[height, width, channels]` shape set in the first layer, or nil.
func (m *Model) InputShape() []int {
	if len(m.layers) == 0 {
		return nil
	}
	return slices.Clone(m.layers[0].InputShape)
}

// Equal returns whether both models have the same name and the same layers, in the same order.
func (m *Model) Equal(other *Model) bool {
	if other == nil {
		return false
	}
	return m.name == other.name && m.dtype == other.dtype &&
		slices.EqualFunc(m.layers, other.layers, Layer.Equal)
}

// String implements fmt.Stringer, listing the layer names.
func (m *Model) String() string {
	names := make([]string, len(m.layers))
	for ii, layer := range m.layers {
		names[ii] = layer.Name
	}
	return fmt.Sprintf("%s%v", m.name, names)
}
