// Package pkg provides the core libraries for Morph data augmentation.
//
// # Overview
//
// Morph applies reproducible, composable transforms to images and their
// annotations. The pkg directory is organized into four main areas:
//
//  1. [augment] - The composition core (items, transforms, shared random state)
//  2. [item] / [transform] - Concrete payloads and image-space transforms
//  3. [pipeline] - Orchestration (config → compose → apply → encode)
//  4. [cache] / [fetch] / [track] - Infrastructure (sample cache, remote inputs, run records)
//
// # Architecture
//
// The typical data flow through Morph:
//
//	TOML pipeline config
//	         |
//	    [pipeline] package (build + simplify via augment.Compose)
//	         |
//	    [augment] package (draw state once, apply across the tuple)
//	         |
//	    [transform] package (flips, rotations, crops, random choices)
//	         |
//	    PNG/JPEG output + JSON annotations
//
// # Quick Start
//
//	cfg, _ := pipeline.LoadConfig("augment.toml")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Config: cfg,
//	    Inputs: []string{"cat.png"},
//	})
package pkg
