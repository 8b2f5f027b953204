// Package util - Loaders for model arguments and dumped output tensors.
package util

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-blazeface/models/model"
)

// LoadModelArgs reads detector arguments from a YAML (or JSON) file.
//
// Arguments:
//   - path: The file to read.
//
// Returns:
//   - model.NewModelArgs: The decoded arguments.
//   - error: Error if reading or decoding fails.
//
// @example
// # detector.yaml
// name: face_detection_front
// min_score_threshold: 0.75
// nms:
//
//	iou_threshold: 0.4
//	weighted: true
func LoadModelArgs(path string) (model.NewModelArgs, error) {
	var args model.NewModelArgs

	data, err := os.ReadFile(path)
	if err != nil {
		return args, errors.Wrap(err, "reading model args")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&args); err != nil {
		return args, errors.Wrapf(err, "decoding model args %s", path)
	}
	return args, nil
}

// LoadTensor reads a dumped output tensor. Files ending in .npy are parsed
// as NumPy arrays; anything else is treated as raw little-endian float32.
func LoadTensor(path string) (*tensor.Dense, error) {
	if strings.EqualFold(filepath.Ext(path), ".npy") {
		return LoadNpy(path)
	}

	values, err := LoadRawFloat32(path)
	if err != nil {
		return nil, err
	}
	return tensor.New(tensor.WithShape(len(values)), tensor.WithBacking(values)), nil
}

// LoadNpy reads a NumPy .npy file into a dense tensor.
func LoadNpy(path string) (*tensor.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening npy")
	}
	defer f.Close()

	t := new(tensor.Dense)
	if err := t.ReadNpy(f); err != nil {
		return nil, errors.Wrapf(err, "parsing npy %s", path)
	}
	return t, nil
}

// LoadRawFloat32 reads a headerless little-endian float32 dump.
func LoadRawFloat32(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading raw tensor")
	}
	if len(data)%4 != 0 {
		return nil, errors.Errorf("raw tensor %s: %d bytes is not a whole number of float32 values", path, len(data))
	}

	values := make([]float32, len(data)/4)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, values); err != nil {
		return nil, errors.Wrap(err, "decoding raw tensor")
	}
	return values, nil
}
