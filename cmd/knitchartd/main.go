package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/RowanDark/knitcipher/internal/api"
	"github.com/RowanDark/knitcipher/internal/chartstore"
	"github.com/RowanDark/knitcipher/internal/config"
	"github.com/RowanDark/knitcipher/internal/knit"
	"github.com/RowanDark/knitcipher/internal/logging"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to a knitchart YAML config (overrides $KNITCHART_CONFIG)")
	addr := flag.String("addr", "", "address for the REST API to listen on (host:port)")
	token := flag.String("token", "", "static management token required to mint API tokens")
	jwtSecret := flag.String("jwt-secret", "", "HMAC secret used to sign API tokens (random per start when empty)")
	jwtIssuer := flag.String("jwt-issuer", "", "issuer claim for API tokens")
	tokenTTL := flag.Duration("jwt-ttl", 0, "default lifetime for issued API tokens")
	dbPath := flag.String("db", "", "path to the chart library database")
	auditLog := flag.String("audit-log", "", "file that receives a copy of the audit log")
	identifyTimeout := flag.Duration("identify-timeout", 5*time.Second, "maximum duration of one identify request")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("knitchartd %s\n", version)
		return
	}

	if path := strings.TrimSpace(*configPath); path != "" {
		if err := os.Setenv(config.EnvPrefix+"CONFIG", path); err != nil {
			fmt.Fprintf(os.Stderr, "set config path: %v\n", err)
			os.Exit(1)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	visited := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})
	if visited["addr"] {
		cfg.Server.Addr = strings.TrimSpace(*addr)
	}
	if visited["token"] {
		cfg.Server.StaticToken = strings.TrimSpace(*token)
	}
	if visited["jwt-secret"] {
		cfg.Server.JWTSecret = strings.TrimSpace(*jwtSecret)
	}
	if visited["jwt-issuer"] {
		cfg.Server.JWTIssuer = strings.TrimSpace(*jwtIssuer)
	}
	if visited["jwt-ttl"] {
		cfg.Server.TokenTTL = *tokenTTL
	}
	if visited["db"] {
		cfg.Store.Path = strings.TrimSpace(*dbPath)
	}
	if visited["audit-log"] {
		cfg.Audit.File = strings.TrimSpace(*auditLog)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.Server.StaticToken == "" {
		fmt.Fprintln(os.Stderr, "--token (or server.static_token / KNITCHART_TOKEN) must be provided")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *identifyTimeout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, identifyTimeout time.Duration) error {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("component", "knitchartd")

	coreLogger, err := newAuditLogger(cfg.Audit.File)
	if err != nil {
		return fmt.Errorf("failed to initialise audit logger: %w", err)
	}
	defer coreLogger.Close()

	lis, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}
	return serve(ctx, lis, cfg, identifyTimeout, coreLogger, log)
}

func newAuditLogger(file string) (*logging.AuditLogger, error) {
	var opts []logging.Option
	if file != "" {
		opts = append(opts, logging.WithFile(file))
	}
	return logging.NewAuditLogger("knitchartd", opts...)
}

// serve opens the chart library and runs the REST API on lis until ctx is
// cancelled. The listener is closed on return.
func serve(ctx context.Context, lis net.Listener, cfg config.Config, identifyTimeout time.Duration, coreLogger *logging.AuditLogger, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	store, err := chartstore.Open(cfg.Store.Path, log.With("component", "chartstore"))
	if err != nil {
		lis.Close()
		return fmt.Errorf("open chart store: %w", err)
	}
	defer store.Close()

	secret := []byte(cfg.Server.JWTSecret)
	if len(secret) == 0 {
		generated, err := randomSecret()
		if err != nil {
			lis.Close()
			return err
		}
		secret = generated
		log.Warn("no jwt secret configured, generated an ephemeral one; issued tokens stop working on restart")
	}

	srv, err := api.NewServer(api.Config{
		Addr:             lis.Addr().String(),
		StaticToken:      cfg.Server.StaticToken,
		JWTSecret:        secret,
		JWTIssuer:        cfg.Server.JWTIssuer,
		DefaultTokenTTL:  cfg.Server.TokenTTL,
		DefaultAlgorithm: cfg.Defaults.Algorithm,
		IdentifyTimeout:  identifyTimeout,
		Engine:           knit.New(nil),
		Store:            store,
		Logger:           coreLogger.WithComponent("api"),
		Log:              log.With("component", "api"),
	})
	if err != nil {
		lis.Close()
		return fmt.Errorf("configure api: %w", err)
	}

	emitAudit(coreLogger, logging.AuditEvent{
		EventType: logging.EventAPILifecycle,
		Decision:  logging.DecisionInfo,
		Metadata: map[string]any{
			"phase":   "start",
			"addr":    lis.Addr().String(),
			"store":   cfg.Store.Path,
			"version": version,
		},
	})

	runErr := srv.Serve(ctx, lis)

	phase := "stop"
	if runErr != nil {
		phase = "failed"
	}
	emitAudit(coreLogger, logging.AuditEvent{
		EventType: logging.EventAPILifecycle,
		Decision:  logging.DecisionInfo,
		Metadata:  map[string]any{"phase": phase},
		Reason:    errorString(runErr),
	})
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func randomSecret() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate jwt secret: %w", err)
	}
	return []byte(hex.EncodeToString(buf)), nil
}

func emitAudit(logger *logging.AuditLogger, event logging.AuditEvent) {
	if logger == nil {
		return
	}
	if err := logger.Emit(event); err != nil {
		fmt.Fprintf(os.Stderr, "failed to emit audit event: %v\n", err)
	}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
