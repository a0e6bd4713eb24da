// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package topology

import (
	"encoding/json"
)

// layerJSON follows the Keras `{"class_name": ..., "config": {...}}` layout.
type layerJSON struct {
	ClassName string         `json:"class_name"`
	Config    map[string]any `json:"config"`
}

type modelJSON struct {
	ClassName string      `json:"class_name"`
	Name      string      `json:"name"`
	DType     string      `json:"dtype"`
	Layers    []layerJSON `json:"layers"`
}

func (l Layer) toJSON() layerJSON {
	config := map[string]any{"name": l.Name}
	if len(l.InputShape) > 0 {
		config["input_shape"] = l.InputShape
	}
	switch l.Kind {
	case KindConv2D:
		config["filters"] = l.Channels
		config["kernel_size"] = []int{l.KernelSize, l.KernelSize}
		config["padding"] = l.Padding.String()
		activation := "linear"
		if l.HasActivation() {
			activation = l.Activation
		}
		config["activation"] = activation
		config["use_bias"] = true
	case KindBatchNorm:
		config["axis"] = -1
	case KindMaxPool2D:
		config["pool_size"] = []int{l.Factor, l.Factor}
		config["strides"] = []int{l.Factor, l.Factor}
	case KindUpSampling2D:
		config["size"] = []int{l.Factor, l.Factor}
		config["interpolation"] = l.Interpolation.String()
	}
	return layerJSON{ClassName: l.Kind.ClassName(), Config: config}
}

// MarshalJSON implements json.Marshaler, describing the layer in a Keras-like format.
func (l Layer) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.toJSON())
}

// MarshalJSON implements json.Marshaler, describing the model topology in a Keras-like format.
// It only includes the configuration: there are no weights in a Model.
func (m *Model) MarshalJSON() ([]byte, error) {
	desc := modelJSON{
		ClassName: "Sequential",
		Name:      m.name,
		DType:     m.dtype.String(),
		Layers:    make([]layerJSON, len(m.layers)),
	}
	for idx, layer := range m.layers {
		desc.Layers[idx] = layer.toJSON()
	}
	return json.Marshal(desc)
}
