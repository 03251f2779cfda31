// Command caption prints a one-line description of an image.
//
//	caption [image-path]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/tendant/simple-caption-pipeline/internal/bootstrap"
	"github.com/tendant/simple-caption-pipeline/internal/config"
	"github.com/tendant/simple-caption-pipeline/internal/console"
	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/internal/storage"
	"github.com/tendant/simple-caption-pipeline/internal/workflows"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// errNoCaption is returned after the failure message was already printed
var errNoCaption = errors.New("no caption")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errNoCaption) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.Nop()
	if cfg.Dev {
		if logger, err = logging.New(true); err != nil {
			return err
		}
	}
	defer logger.Sync()

	var path string
	if len(args) > 0 {
		path = args[0]
	} else if term, err := console.NewTerminal(); err == nil {
		term.SetCompletions(console.ImageFiles("."))
		path, _ = console.AskImagePath(term)
		term.Close()
	}
	if path == "" {
		fmt.Fprintln(out, workflows.MessageNoImage)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	images, err := storage.NewFilesystemStorage(filepath.Dir(path))
	if err != nil {
		return err
	}
	components, err := bootstrap.Build(ctx, cfg, bootstrap.Needs{Caption: true}, logger)
	if err != nil {
		return err
	}
	svc := components.Services()
	svc.Images = images

	runner := workflows.NewWorkflowRunner(nil, logger)
	runner.Register(pipeline.JobCaption, workflows.NewCaptionWorkflow(svc))

	result, err := runner.Run(&workflows.WorkflowContext{
		Ctx:     ctx,
		Request: pipeline.ProcessRequest{Job: pipeline.JobCaption, ContentID: filepath.Base(path)},
		RunID:   uuid.New().String(),
	})
	if result == nil {
		return err
	}
	console.PrintCaption(out, result)
	if err != nil {
		logger.Debugf("Run failed: %v", err)
	}
	if !result.Success {
		return errNoCaption
	}
	return nil
}
