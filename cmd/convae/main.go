// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// convae prints the topology of the convolutional autoencoder: its layers, output shapes and parameter counts.
//
// The model is configured with context hyperparameters, set with -set. Example:
//
//	convae -set="image_height=64;image_width=64;activation=swish" -check
//
// With -check the graph is built and executed once with a GoMLX backend (set GOMLX_BACKEND to choose one),
// to confirm the shapes reported.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/autoencoder/pkg/autoencoder"
	"github.com/gomlx/autoencoder/pkg/topology"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/ui/commandline"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	_ "github.com/gomlx/gomlx/backends/default"
)

var (
	flagSummary = flag.Bool("summary", true, "Display the layers with their output shapes and number of parameters.")
	flagParams  = flag.Bool("params", false, "Lists the hyperparameters used to build the model.")
	flagJSON    = flag.Bool("json", false, "Print the Keras-like JSON description of the model topology.")
	flagCheck   = flag.Bool("check", false, "Build and execute the model graph once on zeros, "+
		"and compare the output shape with the one inferred.")
	flagBatch = flag.Int("batch", 1, "Batch size used for the shapes reported and for -check.")
	flagPlain = flag.Bool("plain", false, "Disable colors in the tables.")
)

func main() {
	klog.InitFlags(nil)
	ctx := autoencoder.CreateDefaultContext()
	settings := commandline.CreateContextSettingsFlag(ctx, "")
	flag.Parse()
	paramsSet := must.M1(commandline.ParseContextSettings(ctx, *settings))
	klog.V(1).Infof("Hyperparameters set: %v", paramsSet)
	if *flagPlain {
		setPlain()
	}

	model, err := autoencoder.BuildFromContext(ctx)
	if err != nil {
		klog.Fatalf("Failed to build model: %+v", err)
	}

	if *flagParams {
		fmt.Println(titleStyle.Render("Hyperparameters"))
		table := newPlainTable().Headers("Scope", "Name", "Type", "Value")
		ctx.EnumerateParams(func(scope, key string, value any) {
			table.Row(scope, key, fmt.Sprintf("%T", value), fmt.Sprintf("%v", value))
		})
		fmt.Println(table.Render())
	}

	if *flagSummary {
		if err := printSummary(model, *flagBatch); err != nil {
			klog.Fatalf("%+v", err)
		}
	}

	if *flagJSON {
		fmt.Println(string(must.M1(json.MarshalIndent(model, "", "  "))))
	}

	if *flagCheck {
		if err := check(ctx, model, *flagBatch); err != nil {
			klog.Errorf("Check failed: %+v", err)
			os.Exit(1)
		}
	}
}

func printSummary(model *topology.Model, batchSize int) error {
	summary, err := model.Summary(batchSize)
	if err != nil {
		return err
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("Model %q", summary.ModelName)))
	table := styleTable(summary.Table(), lipgloss.Left, lipgloss.Left, lipgloss.Right, lipgloss.Left, lipgloss.Right)
	fmt.Println(table.Render())

	totals := newPlainTable()
	totals.Row("Total params", humanize.Comma(int64(summary.Total.Total())))
	totals.Row("Trainable params", humanize.Comma(int64(summary.Total.Trainable)))
	totals.Row("Non-trainable params", humanize.Comma(int64(summary.Total.NonTrainable)))
	fmt.Println(totals.Render())
	return nil
}

// check builds the model graph with a backend and executes it on zeros.
func check(ctx *context.Context, model *topology.Model, batchSize int) error {
	want, err := model.OutputShape(batchSize)
	if err != nil {
		return err
	}
	inputShape := shapes.Make(model.DType(), append([]int{batchSize}, model.InputShape()...)...)

	var got shapes.Shape
	err = exceptions.TryCatch[error](func() {
		backend := backends.MustNew()
		klog.V(1).Infof("Backend %q: %s", backend.Name(), backend.Description())
		output := context.MustExecOnce(backend, ctx, func(ctx *context.Context, g *graph.Graph) *graph.Node {
			return model.ModelGraph(ctx, nil, []*graph.Node{graph.Zeros(g, inputShape)})[0]
		})
		got = output.Shape()
	})
	if err != nil {
		return err
	}
	if !got.Equal(want) {
		return errors.Errorf("model %q output shape is %s, but %s was inferred", model.Name(), got, want)
	}
	fmt.Printf("Check ok: %s -> %s (%s parameters)\n", inputShape, got, humanize.Comma(int64(ctx.NumParameters())))
	return nil
}
