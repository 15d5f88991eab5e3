package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/database"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/present/rest"
	authmw "github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/present/rest/middleware"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/service"
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "Serve the relay HTTP surface",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Server.EnableTrace {
			shutdown, err := setupTraceProvider(ctx, cfg.Server.TraceEndpoint)
			if err != nil {
				return fmt.Errorf("failed to set up tracing: %w", err)
			}
			defer shutdown(context.Background())
		}

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		auth := service.NewAuthService(cfg.Auth.Secret, cfg.Auth.Audience)
		if !auth.Enabled() {
			slog.Warn("auth.secret is empty, the HTTP surface accepts unauthenticated requests", slog.String("module", "main"))
		}

		e := echo.New()
		e.HideBanner = true
		e.Use(otelecho.Middleware("anonrelay"))
		e.Use(middleware.Logger())
		e.Use(middleware.Recover())
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

		rest.NewHandler(a.relay, a.signal, authmw.NewAuthMiddleware(auth)).RegisterRoutes(e)

		go func() {
			slog.Info("listening", slog.String("addr", cfg.Server.Listen), slog.String("module", "main"))
			if err := e.Start(cfg.Server.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("server stopped", slog.String("error", err.Error()), slog.String("module", "main"))
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
		defer cancel()
		return e.Shutdown(shutdownCtx)
	},
}

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Create or upgrade the relational schema",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		slog.Info("schema is up to date", slog.String("driver", cfg.Server.DBDriver), slog.String("module", "main"))
		return nil
	},
}

var tokenCommand = &cli.Command{
	Name:  "token",
	Usage: "Issue a bearer token for a transport adapter",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "issuer",
			Usage:    "Name of the transport adapter the token is issued to",
			Required: true,
		},
		&cli.DurationFlag{
			Name:  "ttl",
			Usage: "Token lifetime, 0 for no expiry",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		auth := service.NewAuthService(cfg.Auth.Secret, cfg.Auth.Audience)
		if !auth.Enabled() {
			return fmt.Errorf("auth.secret must be set to issue tokens")
		}
		token, err := auth.IssueToken(c.String("issuer"), c.Duration("ttl"))
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

var statsCommand = &cli.Command{
	Name:  "stats",
	Usage: "Print identity, thread and ban counts",
	Action: func(c *cli.Context) error {
		a, err := appFromCLI(c)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.relay.Stats(c.Context, a.config.Relay.AdminID)
		if err != nil {
			return err
		}
		fmt.Printf("identities: %d\nthreads: %d\nbans: %d\n", stats.Identities, stats.Threads, stats.Bans)
		return nil
	},
}

var banCommand = &cli.Command{
	Name:      "ban",
	Usage:     "Globally ban an identity",
	ArgsUsage: "IDENTITY_ID",
	Action: func(c *cli.Context) error {
		return adminAction(c, func(a *app, target int64) error {
			return a.relay.Ban(c.Context, a.config.Relay.AdminID, target)
		})
	},
}

var unbanCommand = &cli.Command{
	Name:      "unban",
	Usage:     "Lift a global ban",
	ArgsUsage: "IDENTITY_ID",
	Action: func(c *cli.Context) error {
		return adminAction(c, func(a *app, target int64) error {
			return a.relay.Unban(c.Context, a.config.Relay.AdminID, target)
		})
	},
}

func appFromCLI(c *cli.Context) (*app, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if cfg.Relay.AdminID == 0 {
		return nil, fmt.Errorf("relay.adminId must be set for admin commands")
	}
	return newApp(c.Context, cfg)
}

func adminAction(c *cli.Context, action func(a *app, target int64) error) error {
	if c.NArg() != 1 {
		return cli.Exit("IDENTITY_ID is required", 2)
	}
	target, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return cli.Exit("IDENTITY_ID must be an integer", 2)
	}

	a, err := appFromCLI(c)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := action(a, target); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}
