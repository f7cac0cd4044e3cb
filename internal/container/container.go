// Package container provides dependency injection for the sms-ledger application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"sms-ledger/internal/api"
	"sms-ledger/internal/config"
	"sms-ledger/internal/feedback"
	"sms-ledger/internal/ingest"
	"sms-ledger/internal/logging"
	"sms-ledger/internal/smsparser"
	"sms-ledger/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation. All fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	store     *store.Store
	extractor *smsparser.Extractor
	pipeline  *ingest.Pipeline
	feedback  *feedback.Service
}

// NewContainer creates and wires all application dependencies: logger, store (migrated
// when database.auto_migrate is set), extractor, ingest pipeline and feedback service.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := config.NewLogger(cfg)

	st, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	extractor := smsparser.NewExtractor(smsparser.DefaultRegistry(), logger,
		smsparser.WithDefaultCurrency(cfg.Ingest.DefaultCurrency))
	pipeline := ingest.NewPipeline(extractor, st, cfg.Categorization.MatchPolicy, cfg.Delimiter(), logger)

	logger.Info("Container initialized successfully",
		logging.F(logging.FieldDriver, st.Driver()),
		logging.F("patterns", extractor.Registry().Len()),
		logging.F("match_policy", cfg.Categorization.MatchPolicy))

	return &Container{
		logger:    logger,
		config:    cfg,
		store:     st,
		extractor: extractor,
		pipeline:  pipeline,
		feedback:  feedback.NewService(st, logger),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the relational store.
func (c *Container) GetStore() *store.Store {
	return c.store
}

// GetExtractor returns the SMS extractor over the default pattern registry.
func (c *Container) GetExtractor() *smsparser.Extractor {
	return c.extractor
}

// GetPipeline returns the bulk ingest pipeline.
func (c *Container) GetPipeline() *ingest.Pipeline {
	return c.pipeline
}

// GetFeedback returns the categorization feedback service.
func (c *Container) GetFeedback() *feedback.Service {
	return c.feedback
}

// NewSession starts a fresh ingest session committing into the store.
func (c *Container) NewSession() *ingest.Session {
	return ingest.NewSession(c.pipeline, c.store, c.logger)
}

// NewHandler builds the HTTP handler over the container's components.
func (c *Container) NewHandler() *api.Handler {
	return api.NewHandler(c.store, c.pipeline, c.feedback, c.logger)
}

// Close releases the database connection.
func (c *Container) Close() error {
	c.logger.Info("Container closed")
	return c.store.Close()
}
