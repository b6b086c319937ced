package cmd

import (
	"fmt"
	"time"

	libraryadapter "github.com/bnema/arcprompt/internal/adapters/library"
	"github.com/bnema/arcprompt/internal/adapters/library/chain"
	diagnosticsadapter "github.com/bnema/arcprompt/internal/adapters/render/diagnostics"
	"github.com/bnema/arcprompt/internal/application"
	"github.com/bnema/arcprompt/internal/domain"
	"github.com/bnema/arcprompt/internal/logging"
	"github.com/bnema/arcprompt/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	engine            *application.Engine
	library           *chain.Library
	logger            *zap.Logger
	clock             ports.Clock
	diagnosticsReport func([]domain.FallbackRecord, domain.FallbackStats, diagnosticsadapter.RenderOptions) (string, error)
}

func (o *rootOptions) newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:  o.cfg.GetString(keyLogLevel),
		Format: o.cfg.GetString(keyLogFormat),
		Output: zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())),
	})
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	return logger, nil
}

func (o *rootOptions) wireApp(cmd *cobra.Command) (*app, error) {
	logger, err := o.newLogger(cmd)
	if err != nil {
		return nil, err
	}

	library, err := libraryadapter.OpenChain(cmd.Context(), o.cfg.GetStringSlice(keyLibraryPaths), logger)
	if err != nil {
		return nil, fmt.Errorf("wire pattern library: %w", err)
	}

	clock := ports.SystemClock{}
	return &app{
		engine:            application.NewEngine(library, o.engineConfig(), clock, logger),
		library:           library,
		logger:            logger,
		clock:             clock,
		diagnosticsReport: diagnosticsadapter.Render,
	}, nil
}

func (a *app) now() time.Time {
	return a.clock.Now()
}
