// Command go-engine serves the word-guessing engine over HTTP, websocket and MCP.
//
// With --stdio the MCP tools are served on stdin/stdout instead, for agents
// that launch the engine as a subprocess.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/robalobadob/wordle/apps/go-engine/assets"
	"github.com/robalobadob/wordle/apps/go-engine/internal/config"
	"github.com/robalobadob/wordle/apps/go-engine/internal/daily"
	"github.com/robalobadob/wordle/apps/go-engine/internal/db"
	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
	"github.com/robalobadob/wordle/apps/go-engine/internal/gametoken"
	"github.com/robalobadob/wordle/apps/go-engine/internal/httpserver"
	"github.com/robalobadob/wordle/apps/go-engine/internal/hub"
	"github.com/robalobadob/wordle/apps/go-engine/internal/mcptools"
	"github.com/robalobadob/wordle/apps/go-engine/internal/store"
	"github.com/robalobadob/wordle/apps/go-engine/internal/words"
)

const version = "1.0.0"

// devSecret is used when JWT_SECRET is not configured.
const devSecret = "dev_secret_change_me"

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("WORDLE_CONFIG"), "JSONC config file")
	stdio := flag.Bool("stdio", false, "serve MCP on stdin/stdout instead of HTTP")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if *stdio {
		// stdout carries the protocol.
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *stdio); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg config.Config, stdio bool) error {
	list, err := words.LoadOrEmbedded(cfg.WordsFile)
	if err != nil {
		return fmt.Errorf("load word list: %w", err)
	}
	log.Info().Int("words", list.Len()).Str("file", cfg.WordsFile).Msg("word list loaded")

	lookup, random := list.Lookup(), list.Supplier()
	var dict *words.SQLDictionary
	if cfg.DictDB != "" {
		conn, err := openDictionary(ctx, cfg.DictDB, list)
		if err != nil {
			return err
		}
		defer conn.Close()
		dict = words.NewSQLDictionary(conn)
		lookup = dict.Lookup()
		random = dict.Supplier(cfg.WordLength, random)
	}

	rule, err := cfg.FeedbackRule()
	if err != nil {
		return err
	}
	newGame := game.NewFactory(game.FactoryConfig{
		Attempts: cfg.Attempts,
		Lookup:   lookup,
		Random:   random,
		Daily:    daily.Supplier(list, cfg.DailySalt, time.Now),
		Feedback: rule,
	})

	watchers := hub.New(cfg.ClientOrigin)
	go watchers.Run(ctx)

	mem := store.NewMemoryStore(store.WithCommitHook(watchers.CommitHook()))
	ttl, err := cfg.TTL()
	if err != nil {
		return err
	}
	if ttl > 0 {
		go prune(ctx, mem, ttl)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		log.Warn().Msg("JWT_SECRET not set, using development secret")
		secret = devSecret
	}
	tokens := gametoken.New(secret, nil)

	tools := mcptools.New(mem, newGame, tokens, version)
	if stdio {
		log.Info().Msg("serving MCP on stdio")
		return server.ServeStdio(tools.Server())
	}

	srv := httpserver.New(httpserver.Deps{
		Store:   mem,
		NewGame: newGame,
		Watcher: watchers,
		MCP:     tools,
		Words:   list,
		Dict:    dict,
		Tokens:  tokens,
		Origin:  cfg.ClientOrigin,
	})
	log.Info().Str("port", cfg.Port).Str("feedback", rule.String()).Int("attempts", cfg.Attempts).Msg("starting go-engine")
	return srv.Run(ctx, ":"+cfg.Port)
}

// openDictionary opens the SQLite dictionary, applies migrations and seeds it
// with list.
func openDictionary(ctx context.Context, dsn string, list *words.List) (*sql.DB, error) {
	conn, err := db.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open dictionary db: %w", err)
	}
	if err := db.Migrate(ctx, conn, assets.Migrations()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate dictionary db: %w", err)
	}
	added, err := words.NewSQLDictionary(conn).Seed(ctx, list)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("seed dictionary db: %w", err)
	}
	log.Info().Str("db", dsn).Int("added", added).Msg("dictionary ready")
	return conn, nil
}

// prune drops sessions idle for longer than ttl until ctx is done.
func prune(ctx context.Context, st store.Store, ttl time.Duration) {
	t := time.NewTicker(ttl / 4)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := st.Prune(ctx, now.Add(-ttl)); n > 0 {
				log.Info().Int("pruned", n).Int("sessions", st.Len()).Msg("pruned idle sessions")
			}
		}
	}
}
