// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package topology

import (
	"slices"

	"github.com/pkg/errors"
)

// Kind of a layer descriptor.
//
// It is converted to snake-format strings (e.g.: KindMaxPool2D -> "max_pooling2d"), which are also
// used as the default layer names.
type Kind int

const (
	KindInvalid Kind = iota

	// KindConv2D is a 2D convolution with an optional activation.
	KindConv2D

	// KindBatchNorm normalizes each channel with the batch statistics during training, and with
	// the moving averages during inference.
	KindBatchNorm

	// KindMaxPool2D takes the maximum of non-overlapping windows, reducing the spatial dimensions.
	KindMaxPool2D

	// KindUpSampling2D enlarges the spatial dimensions by replicating (or interpolating) values.
	KindUpSampling2D

	// KindFlatten reshapes the feature map to `[batch, features]`.
	KindFlatten
)

var kindNames = []string{"invalid", "conv2d", "batch_normalization", "max_pooling2d", "up_sampling2d", "flatten"}

// kindClassNames are the names used in the JSON description, following Keras class names.
var kindClassNames = []string{"Invalid", "Conv2D", "BatchNormalization", "MaxPooling2D", "UpSampling2D", "Flatten"}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// ClassName returns the Keras-like class name of the layer kind, used in the JSON description.
func (k Kind) ClassName() string {
	if k < 0 || int(k) >= len(kindClassNames) {
		return kindClassNames[KindInvalid]
	}
	return kindClassNames[k]
}

// KindValues returns all the valid layer kinds.
func KindValues() []Kind {
	return []Kind{KindConv2D, KindBatchNorm, KindMaxPool2D, KindUpSampling2D, KindFlatten}
}

// KindString converts a snake-format name (see Kind.String) back to its Kind.
func KindString(name string) (Kind, error) {
	idx := slices.Index(kindNames, name)
	if idx <= 0 {
		return KindInvalid, errors.Errorf("%q is not a valid layer kind, options are %v", name, KindValues())
	}
	return Kind(idx), nil
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	var err error
	*k, err = KindString(string(text))
	return err
}

// Padding policy of a convolution.
type Padding int

const (
	// PaddingValid doesn't pad the input: each spatial axis shrinks by `kernelSize-1`.
	PaddingValid Padding = iota

	// PaddingSame pads the input so the output has the same spatial dimensions as the input.
	PaddingSame
)

// String implements fmt.Stringer.
func (p Padding) String() string {
	switch p {
	case PaddingValid:
		return "valid"
	case PaddingSame:
		return "same"
	default:
		return "invalid"
	}
}

// Interpolation used by up-sampling layers.
type Interpolation int

const (
	// InterpolationNearest replicates each value over the enlarged window.
	InterpolationNearest Interpolation = iota

	// InterpolationBilinear interpolates linearly between the neighbouring values.
	InterpolationBilinear
)

// String implements fmt.Stringer.
func (i Interpolation) String() string {
	switch i {
	case InterpolationNearest:
		return "nearest"
	case InterpolationBilinear:
		return "bilinear"
	default:
		return "invalid"
	}
}

// InterpolationString converts "nearest" or "bilinear" to the corresponding Interpolation.
func InterpolationString(name string) (Interpolation, error) {
	switch name {
	case "nearest", "":
		return InterpolationNearest, nil
	case "bilinear":
		return InterpolationBilinear, nil
	}
	return InterpolationNearest, errors.Errorf("invalid interpolation %q, options are \"nearest\" or \"bilinear\"", name)
}
