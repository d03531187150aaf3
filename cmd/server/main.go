package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-share"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("share"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := share.LoadConfig()
	if err != nil {
		lgr.GetLogger("config").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		lgr.GetLogger("db").Error("failed to open database", "error", err)
		os.Exit(1)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := runMigrations(ctx, db); err != nil {
		lgr.GetLogger("db").Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	repo := share.NewRepositoryManager(db)
	repo.MustValidate()

	tokens := share.NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		lgr.GetLogger("tokens"),
	)

	accounts := share.NewAccountManager(repo.Users(), tokens,
		share.WithAccountLogger(lgr.GetLogger("accounts")),
	)
	posts := share.NewPostManager(repo.Posts(),
		share.WithPostLogger(lgr.GetLogger("posts")),
	)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName: "go-share",
		}))
	})

	srv.Router().WithLogger(lgr.GetLogger("router"))

	gate := share.GateMiddleware(cfg, tokens)

	userController := share.NewUserController(accounts, func(c *share.UserController) *share.UserController {
		c.Debug = cfg.Debug
		c.Logger = lgr.GetLogger("users:ctrl")
		c.ContextKey = cfg.GetContextKey()
		return c
	})
	postController := share.NewPostController(posts, func(c *share.PostController) *share.PostController {
		c.Debug = cfg.Debug
		c.Logger = lgr.GetLogger("posts:ctrl")
		c.ContextKey = cfg.GetContextKey()
		return c
	})

	userController.RegisterRoutes(srv.Router(), gate)
	postController.RegisterRoutes(srv.Router(), gate)

	lgr.GetLogger("server").Info("listening", "addr", cfg.HTTPAddr)
	srv.Serve(cfg.HTTPAddr)

	WaitExitSignal()
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	mfs := share.GetMigrationsFS()

	files, err := fs.Glob(mfs, "data/sql/migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := fs.ReadFile(mfs, file)
		if err != nil {
			return err
		}

		for _, stmt := range strings.Split(string(content), ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return errors.Wrap(err, errors.CategoryOperation, "migration failed").
					WithMetadata(map[string]any{
						"file": file,
					})
			}
		}
	}

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
