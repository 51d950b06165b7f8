package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/and161185/classroom/internal/config"
	"github.com/and161185/classroom/internal/errs"
	"github.com/and161185/classroom/internal/identity"
	"github.com/and161185/classroom/internal/limiter"
	"github.com/and161185/classroom/internal/metrics"
	"github.com/and161185/classroom/internal/probe"
	"github.com/and161185/classroom/internal/remote"
	"github.com/and161185/classroom/internal/render"
	"github.com/and161185/classroom/internal/repository/httpapi"
	"github.com/and161185/classroom/internal/service"
	"github.com/and161185/classroom/internal/session"
	"github.com/and161185/classroom/internal/storage"
	"github.com/and161185/classroom/internal/storage/pebblestore"
	"github.com/and161185/classroom/internal/storage/sealed"
)

type globalFlags struct {
	config  string
	json    bool
	verbose bool
	metrics bool
}

// app holds everything a command needs. It is built once per invocation.
type app struct {
	flags  globalFlags
	out    io.Writer
	errOut io.Writer

	cfg      config.Config
	log      *zap.Logger
	db       *pebblestore.Store
	kv       storage.KV
	met      *metrics.Metrics
	sessions *session.Store
	ids      *identity.Cache
	auth     *service.AuthServiceImpl
	feed     *service.Feed
	class    *service.ClassService
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	encCfg := zap.NewProductionEncoderConfig()
	enc := zapcore.NewJSONEncoder(encCfg)
	if verbose {
		level = zapcore.DebugLevel
		encCfg = zap.NewDevelopmentEncoderConfig()
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

func (a *app) open(ctx context.Context) error {
	a.log = newLogger(a.errOut, a.flags.verbose)

	cfg, err := config.Load(a.flags.config, a.log)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.db, err = pebblestore.Open(filepath.Join(cfg.DataDir, "db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	var sk *sealed.Store
	if cfg.Passphrase != "" {
		sk, err = sealed.WithPassphrase(ctx, a.db, cfg.Passphrase)
	} else {
		var key []byte
		if key, err = sealed.DeviceKey(cfg.DataDir); err == nil {
			sk, err = sealed.New(a.db, key)
		}
	}
	if err != nil {
		return fmt.Errorf("unlock store: %w", err)
	}
	a.kv = sk

	a.met = metrics.New()
	a.sessions = session.New(a.kv)
	client, err := remote.New(cfg.API.URL, cfg.API.Key, a.sessions,
		remote.WithLogger(a.log),
		remote.WithMetrics(a.met),
		remote.WithRateLimit(rate.Limit(cfg.API.RateLimit), cfg.API.Burst),
		remote.WithTimeout(cfg.API.Timeout),
	)
	if err != nil {
		return err
	}

	accounts := httpapi.NewAccountAPI(client)
	a.ids = identity.New(a.kv, accounts, a.sessions, a.log)
	lim := limiter.NewKV(a.kv, cfg.Limiter.Window, cfg.Limiter.MaxFails, cfg.Limiter.BlockFor)
	a.auth = service.NewAuthService(accounts, a.sessions, a.ids, lim, a.log)
	statuses := httpapi.NewStatusAPI(client, probe.New(a.log, a.met))
	a.feed = service.NewFeed(statuses, a.ids, service.Capabilities{CommentDelete: cfg.Features.CommentDelete}, a.log, a.met)
	a.feed.Subscribe(a.logEvent)
	a.class = service.NewClassService(httpapi.NewClassAPI(client))
	return nil
}

func (a *app) close() error {
	var err error
	if a.db != nil {
		err = a.db.Close()
		a.db = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return err
}

func (a *app) renderer(ctx context.Context) *render.Renderer {
	theme, err := a.sessions.Theme(ctx)
	if err != nil {
		a.log.Debug("theme unavailable", zap.Error(err))
	}
	return render.New(a.out, theme)
}

func (a *app) viewer() string { return a.ids.Email() }

func (a *app) printJSON(v any) error { return render.WriteJSON(a.out, v) }

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	a := &app{out: out, errOut: errOut}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if a.flags.metrics && a.met != nil {
		if werr := a.met.WriteText(errOut); werr != nil {
			err = errors.Join(err, werr)
		}
	}
	if cerr := a.close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		msg := errs.Message(err)
		if msg == errs.GenericMessage {
			msg = err.Error()
		}
		fmt.Fprintf(errOut, "Error: %s\n", msg)
		if a.flags.verbose {
			fmt.Fprintf(errOut, "  %v\n", err)
		}
		return 1
	}
	return 0
}
