// Command narrate captions an image, asks for a target language, translates
// the caption and speaks the translation.
//
//	narrate [image-path] [language-code]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tendant/simple-caption-pipeline/internal/bootstrap"
	"github.com/tendant/simple-caption-pipeline/internal/config"
	"github.com/tendant/simple-caption-pipeline/internal/console"
	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/internal/speech/speaker"
	"github.com/tendant/simple-caption-pipeline/internal/storage"
	"github.com/tendant/simple-caption-pipeline/internal/workflows"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cliLogger(cfg.Dev)
	defer logger.Sync()

	term, err := console.NewTerminal()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	defer term.Close()
	out := term.Stdout()

	path, err := imagePath(term)
	if err != nil || path == "" {
		fmt.Fprintln(out, workflows.MessageNoImage)
		return nil
	}
	var code string
	if len(os.Args) > 2 {
		code = os.Args[2]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	images, err := storage.NewFilesystemStorage(filepath.Dir(path))
	if err != nil {
		return err
	}

	components, err := bootstrap.Build(ctx, cfg, bootstrap.Needs{
		Caption:      true,
		Translate:    true,
		Speech:       true,
		Speaker:      speaker.NewSink(logger),
		DefaultAudio: config.AudioSpeaker,
	}, logger)
	if err != nil {
		return err
	}
	svc := components.Services()
	svc.Images = images
	svc.Derived = images

	runner := workflows.NewWorkflowRunner(nil, logger)
	runner.Register(pipeline.JobNarrate, workflows.NewNarrateWorkflow(svc, cfg.MaxLanguageAttempts))

	result, err := runner.Run(&workflows.WorkflowContext{
		Ctx: ctx,
		Request: pipeline.ProcessRequest{
			Job:          pipeline.JobNarrate,
			ContentID:    filepath.Base(path),
			LanguageCode: code,
		},
		RunID:    uuid.New().String(),
		Prompter: console.NewPrompter(term, out),
		Reporter: console.NewReporter(out),
	})
	console.PrintNarrateOutcome(out, result)
	if err != nil {
		logger.Debugf("Run failed: %v", err)
	}
	return nil
}

// imagePath takes the image from the first argument or asks for it,
// completing image files of the working directory
func imagePath(term *console.Terminal) (string, error) {
	if len(os.Args) > 1 {
		return os.Args[1], nil
	}
	term.SetCompletions(console.ImageFiles("."))
	return console.AskImagePath(term)
}

// cliLogger keeps the terminal clean unless DEV is set
func cliLogger(dev bool) *zap.SugaredLogger {
	if !dev {
		return logging.Nop()
	}
	logger, err := logging.New(true)
	if err != nil {
		return logging.Nop()
	}
	return logger
}
