// Command blazeface decodes dumped BlazeFace output tensors and prints the
// detections as JSON.
//
//	blazeface -model palm_detection -regressors r.npy -classificators c.npy
//	blazeface -config detector.yaml -output raw.bin
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-blazeface/models"
	"github.com/nvr-ai/go-blazeface/models/blazeface"
	"github.com/nvr-ai/go-blazeface/models/model"
	"github.com/nvr-ai/go-blazeface/models/postprocess"
	"github.com/nvr-ai/go-blazeface/util"
)

type options struct {
	model          string
	config         string
	regressors     string
	classificators string
	output         string
	threshold      float64
	verbose        bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("blazeface", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.model, "model", string(model.ModelNameFaceFront), "Model preset: face_detection_front or palm_detection")
	fs.StringVar(&opts.config, "config", "", "YAML file with model arguments")
	fs.StringVar(&opts.regressors, "regressors", "", "Regressors tensor (.npy or raw float32)")
	fs.StringVar(&opts.classificators, "classificators", "", "Classificators tensor (.npy or raw float32)")
	fs.StringVar(&opts.output, "output", "", "Single flat output tensor (.npy or raw float32)")
	fs.Float64Var(&opts.threshold, "threshold", -1, "Minimum score threshold override")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	split := opts.regressors != "" || opts.classificators != ""
	switch {
	case split && opts.output != "":
		return opts, errors.New("use either -output or -regressors/-classificators, not both")
	case split && (opts.regressors == "" || opts.classificators == ""):
		return opts, errors.New("-regressors and -classificators must be given together")
	case !split && opts.output == "":
		return opts, errors.New("no input tensor given")
	}
	return opts, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func modelArgs(opts options) (model.NewModelArgs, error) {
	args := model.NewModelArgs{Name: model.Name(opts.model)}
	if opts.config != "" {
		var err error
		if args, err = util.LoadModelArgs(opts.config); err != nil {
			return args, err
		}
		if args.Name == "" {
			args.Name = model.Name(opts.model)
		}
	}
	if opts.threshold >= 0 {
		v := float32(opts.threshold)
		args.MinScoreThreshold = &v
	}
	return args, nil
}

func detect(d *blazeface.Detector, opts options) ([]postprocess.Detection, error) {
	if opts.output != "" {
		out, err := util.LoadTensor(opts.output)
		if err != nil {
			return nil, err
		}
		values, err := blazeface.Float32s(out)
		if err != nil {
			return nil, err
		}
		return d.Detect(values)
	}

	reg, err := util.LoadTensor(opts.regressors)
	if err != nil {
		return nil, err
	}
	cls, err := util.LoadTensor(opts.classificators)
	if err != nil {
		return nil, err
	}
	return d.DetectTensors(reg, cls)
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return errors.Wrap(err, "building logger")
	}
	defer logger.Sync() //nolint:errcheck

	margs, err := modelArgs(opts)
	if err != nil {
		return err
	}
	d, err := models.NewDetector(margs, blazeface.WithLogger(logger))
	if err != nil {
		return err
	}

	dets, err := detect(d, opts)
	if err != nil {
		return err
	}
	logger.Info("decoded", zap.String("model", string(margs.Name)), zap.Int("detections", len(dets)))

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(dets)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "blazeface: %v\n", err)
		os.Exit(1)
	}
}
