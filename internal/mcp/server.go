package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dshills/fpml-mcp/internal/config"
	"github.com/dshills/fpml-mcp/internal/generator"
	"github.com/dshills/fpml-mcp/internal/indexer"
	"github.com/dshills/fpml-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "fpml-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	index     *indexer.Index
	generator *generator.Generator
	store     storage.EmbeddingStore
	config    *config.Config
	logger    *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewServer loads the schema index named by cfg.Source and, when cfg.DB is set,
// opens the embedding database. A source that fails to load leaves the server
// running with an empty index; get_status reports the error.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	idx := indexer.New(logger, cfg.IndexerConfig()).Load(cfg.Source)

	var store storage.EmbeddingStore
	if cfg.DB != "" {
		db, err := storage.NewSQLiteStorage(cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		store = db
	}

	return NewServerWithIndex(idx, store, cfg, logger), nil
}

// NewServerWithIndex creates a server over an already built index. store may be nil.
func NewServerWithIndex(idx *indexer.Index, store storage.EmbeddingStore, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion),
		index:     idx,
		generator: generator.New(idx, logger, cfg.GeneratorConfig()),
		store:     store,
		config:    cfg,
		logger:    logger,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until ctx is cancelled or
// stdin is closed
func (s *Server) Serve(ctx context.Context) error {
	return s.listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) listen(ctx context.Context, in io.Reader, out io.Writer) error {
	defer func() { _ = s.Close() }()
	s.logger.Info("serving MCP over stdio",
		zap.String("source", s.config.Source),
		zap.Int("tags", s.index.Len()))

	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))

	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the embedding database, if any. It is safe to call more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		if s.store != nil {
			s.closeErr = s.store.Close()
		}
	})
	return s.closeErr
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(lookupTagTool(), s.handleLookupTag)
	s.mcp.AddTool(generateTemplateTool(), s.handleGenerateTemplate)
	s.mcp.AddTool(generateMinimalTool(), s.handleGenerateMinimal)
	s.mcp.AddTool(listTagsTool(), s.handleListTags)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
