package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/tools/sqldatabase"
	_ "github.com/tmc/langchaingo/tools/sqldatabase/postgresql"
)

// SQLAgent answers questions by running them through a Gemini-backed
// SQL chain with read access to the argo_profiles table.
type SQLAgent struct {
	db    *sqldatabase.SQLDatabase
	chain chains.Chain
}

const sqlChainTopK = 5

// NewSQLAgent connects to the database and the language model. Either
// failure is fatal to the session.
func NewSQLAgent(ctx context.Context, databaseURL, apiKey, model string) (*SQLAgent, error) {
	db, err := sqldatabase.NewSQLDatabaseWithDSN("postgresql", databaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize the language model: %w", err)
	}

	return &SQLAgent{
		db:    db,
		chain: chains.NewSQLDatabaseChain(llm, sqlChainTopK, db),
	}, nil
}

// Answer runs the question through the SQL chain. An empty chain
// result maps to the fixed fallback answer.
func (a *SQLAgent) Answer(ctx context.Context, question string) (string, error) {
	out, err := chains.Run(ctx, a.chain, question)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return FallbackAnswer, nil
	}
	return out, nil
}

// SchemaInfo returns the description of the tables the chain queries.
func (a *SQLAgent) SchemaInfo(ctx context.Context) (string, error) {
	return a.db.TableInfo(ctx, a.db.TableNames())
}

// Close releases the agent's database handle.
func (a *SQLAgent) Close() error {
	return a.db.Close()
}
