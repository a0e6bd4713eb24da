// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package topology

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/gomlx/pkg/core/shapes"
)

// SummaryRow describes one layer in a Summary.
type SummaryRow struct {
	Name        string
	Kind        Kind
	OutputShape shapes.Shape
	Activation  string
	Params      ParamCount
}

// Summary of a model: one row per layer and the totals, similar to Keras `model.summary()`.
type Summary struct {
	ModelName string
	BatchSize int
	Rows      []SummaryRow
	Total     ParamCount
}

// Summary returns the per-layer output shapes and parameter counts, for the given batch size.
func (m *Model) Summary(batchSize int) (*Summary, error) {
	outputs, err := m.OutputShapes(batchSize)
	if err != nil {
		return nil, err
	}
	counts, err := m.Parameters()
	if err != nil {
		return nil, err
	}
	s := &Summary{ModelName: m.name, BatchSize: batchSize, Rows: make([]SummaryRow, len(m.layers))}
	for idx, layer := range m.layers {
		activation := ""
		if layer.Kind == KindConv2D {
			activation = "linear"
			if layer.HasActivation() {
				activation = layer.Activation
			}
		}
		s.Rows[idx] = SummaryRow{
			Name:        layer.Name,
			Kind:        layer.Kind,
			OutputShape: outputs[idx],
			Activation:  activation,
			Params:      counts[idx],
		}
		s.Total = s.Total.Add(counts[idx])
	}
	return s, nil
}

// Header of the summary table.
func (s *Summary) Header() []string {
	return []string{"Layer", "Kind", "Output Shape", "Activation", "# Params"}
}

// Table returns the summary as an unstyled lipgloss table, with the header and one row per layer.
// Callers can set their own styles with Table.StyleFunc before rendering.
func (s *Summary) Table() *lgtable.Table {
	table := lgtable.New().
		Border(lipgloss.NormalBorder()).
		Headers(s.Header()...)
	for _, row := range s.Rows {
		table.Row(row.Name, row.Kind.String(), fmt.Sprint(row.OutputShape.Dimensions), row.Activation,
			humanize.Comma(int64(row.Params.Total())))
	}
	return table
}

// Totals returns the lines with the total parameter counts.
func (s *Summary) Totals() []string {
	return []string{
		fmt.Sprintf("Total params: %s", humanize.Comma(int64(s.Total.Total()))),
		fmt.Sprintf("Trainable params: %s", humanize.Comma(int64(s.Total.Trainable))),
		fmt.Sprintf("Non-trainable params: %s", humanize.Comma(int64(s.Total.NonTrainable))),
	}
}

// String implements fmt.Stringer.
func (s *Summary) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Model: %q (batch size %d)", s.ModelName, s.BatchSize))
	parts = append(parts, s.Table().Render())
	parts = append(parts, s.Totals()...)
	return strings.Join(parts, "\n")
}
