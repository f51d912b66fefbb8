package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/straye-as/projecthub/internal/api"
	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/straye-as/projecthub/internal/config"
	"github.com/straye-as/projecthub/internal/logger"
	"github.com/straye-as/projecthub/internal/metrics"
	"github.com/straye-as/projecthub/internal/session"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const sessionExpiredMessage = "session expired, run `projecthub login`"

// app holds everything a command needs once configuration is loaded
type app struct {
	out    io.Writer
	errOut io.Writer
	in     io.Reader
	lines  *bufio.Reader

	jsonOutput bool
	apiURL     string

	cfg      *config.Config
	log      *zap.Logger
	store    session.Store
	client   *apiclient.Client
	services *api.Services
	registry *prometheus.Registry
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "projecthub",
		Short:         "Work with ProjectHub projects, tasks and approvals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Name() == "console")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "print raw JSON instead of a table")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides config)")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newSignupCmd(a),
		newPasswordCmd(a),
		newCompaniesCmd(a),
		newProjectsCmd(a),
		newStagesCmd(a),
		newTasksCmd(a),
		newRequestsCmd(a),
		newAdminCmd(a),
		newLogsCmd(a),
		newConsoleCmd(a),
	)
	return root
}

// setup loads configuration and builds the shared client. The console
// gateway answers a lost session with a redirect, so it gets no message.
func (a *app) setup(console bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(a.apiURL, "/")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	mode := logger.ModeCLI
	if console {
		mode = logger.ModeServer
	}
	log := logger.NewLogger(&cfg.Logging, &cfg.App, a.errOut, mode)
	a.log = log

	store, err := session.NewStore(&cfg.Session)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	a.store = store

	a.registry = prometheus.NewRegistry()

	opts := apiclient.OptionsFromConfig(&cfg.API, store, log)
	opts.Recorder = metrics.NewAPIMetrics(a.registry)
	if !console {
		opts.OnUnauthorized = func() {
			fmt.Fprintln(a.errOut, sessionExpiredMessage)
		}
	}

	client, err := apiclient.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}
	a.client = client
	a.services = api.New(client)

	log.Debug("client ready",
		zap.String("api_url", cfg.API.BaseURL),
		zap.String("session_mode", cfg.Session.Mode),
	)
	return nil
}

// prompt reads one line from stdin when value is empty. Every prompt shares
// one buffered reader so piped answers are consumed line by line.
func (a *app) prompt(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(a.errOut, "%s: ", label)
	if a.lines == nil {
		a.lines = bufio.NewReader(a.in)
	}
	line, err := a.lines.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret is prompt without echo when stdin is a terminal
func (a *app) promptSecret(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	f, ok := a.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return a.prompt(label, value)
	}
	fmt.Fprintf(a.errOut, "%s: ", label)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.errOut)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(string(secret)), nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
