package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"thermolab/internal/bootstrap"
	sessioninadapter "thermolab/internal/modules/session/adapter/in"
	sessiondto "thermolab/internal/modules/session/dto"
	"thermolab/internal/platform/config"
	"thermolab/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagKeys maps command-line flags onto config keys. Flags left unset fall
// through to env, the config file and defaults.
var flagKeys = map[string]string{
	"schema":      "form.schema",
	"schema-file": "form.schema_file",
	"endpoint":    "submit.endpoint",
	"timeout":     "submit.timeout",
	"log-level":   "logging.level",
	"log-file":    "logging.file",
	"out":         "export.dir",
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "thermolab",
		Short:         "Bird thermoregulation lab form",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default ./thermolab.yaml or $XDG_CONFIG_HOME/thermolab/thermolab.yaml)")
	flags.String("schema", config.DefaultSchema, "question schema id")
	flags.String("schema-file", "", "YAML file with extra schemas")
	flags.String("endpoint", "", "collector endpoint URL")
	flags.Duration("timeout", 0, "submission timeout (0 waits indefinitely)")
	flags.String("log-level", "", "log level: DEBUG|INFO|WARN|ERROR")
	flags.String("log-file", "", "log file (CLI default stderr)")

	root.AddCommand(newFormCmd(&configFile))
	root.AddCommand(newSubmitCmd(&configFile))
	root.AddCommand(newPreviewCmd(&configFile))
	root.AddCommand(newExportCmd(&configFile))
	root.AddCommand(newSchemaCmd(&configFile))
	return root
}

type runtime struct {
	app    *bootstrap.App
	logger *logging.Logger
}

func (r runtime) close() {
	_ = r.logger.Close()
}

// loadApp resolves config for cmd and wires the application. The terminal
// form owns the screen, so it always logs to a file.
func loadApp(cmd *cobra.Command, configFile string, interactive bool) (runtime, error) {
	v := config.NewViper(configFile)
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return runtime{}, fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return runtime{}, err
	}

	logPath := cfg.Logging.File
	if interactive {
		logPath = cfg.LogFile()
	}
	logger, err := logging.NewLogger(logPath, cfg.Logging.Level)
	if err != nil {
		return runtime{}, err
	}
	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		_ = logger.Close()
		return runtime{}, err
	}
	return runtime{app: app, logger: logger}, nil
}

func newFormCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Fill in the lab form interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadApp(cmd, *configFile, true)
			if err != nil {
				return err
			}
			defer rt.close()
			return bootstrap.RunTUI(rt.app)
		},
	}
}

type formFlags struct {
	name     string
	readings []string
	answers  []string
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "student name or ID")
	cmd.Flags().StringArrayVar(&f.readings, "reading", nil, "reading as ambient,bird[,low|high] (repeatable)")
	cmd.Flags().StringArrayVar(&f.answers, "answer", nil, "answer as question=value, multi-select options joined by | (repeatable)")
}

func (f *formFlags) input(schemaID string) sessioninadapter.FormInput {
	return sessioninadapter.FormInput{SchemaID: schemaID, Name: f.name, Readings: f.readings, Answers: f.answers}
}

// withFilledSession runs fn against a session built from the command flags
// and closes the session afterwards.
func withFilledSession(cmd *cobra.Command, configFile string, f *formFlags, fn func(context.Context, *bootstrap.App, sessiondto.SessionOutput) error) error {
	rt, err := loadApp(cmd, configFile, false)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	session, err := rt.app.SessionCLI.Fill(ctx, f.input(rt.app.Config.Form.Schema))
	if err != nil {
		return err
	}
	defer func() { _ = rt.app.SessionCLI.Close(ctx, session.SessionID) }()
	return fn(ctx, rt.app, session)
}

func newSubmitCmd(configFile *string) *cobra.Command {
	f := &formFlags{}
	cmd := &cobra.Command{
		Use:   "submit --name <name> --reading <a,b[,behavior]>...",
		Short: "Submit a completed form to the collector",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withFilledSession(cmd, *configFile, f, func(ctx context.Context, app *bootstrap.App, session sessiondto.SessionOutput) error {
				out, err := app.SessionCLI.Submit(ctx, session.SessionID)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session %s: %s\n", out.SessionID, out.Message)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rows=%d state=%s\n", out.Rows, out.State)
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newPreviewCmd(configFile *string) *cobra.Command {
	f := &formFlags{}
	cmd := &cobra.Command{
		Use:   "preview --name <name> --reading <a,b[,behavior]>...",
		Short: "Show the payload and chart series without sending",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withFilledSession(cmd, *configFile, f, func(ctx context.Context, app *bootstrap.App, session sessiondto.SessionOutput) error {
				out, err := app.SessionCLI.Preview(ctx, session.SessionID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, field := range out.Fields {
					_, _ = fmt.Fprintf(w, "%s=%s\n", field.Key, field.Value)
				}
				printSeries(w, "low", out.Series.Low)
				printSeries(w, "high", out.Series.High)
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func printSeries(w io.Writer, label string, points []sessiondto.PointOutput) {
	if len(points) == 0 {
		_, _ = fmt.Fprintf(w, "series %s: none\n", label)
		return
	}
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, fmt.Sprintf("(%g, %g)", p.Ambient, p.Bird))
	}
	_, _ = fmt.Fprintf(w, "series %s: %s\n", label, strings.Join(parts, " "))
}

func newExportCmd(configFile *string) *cobra.Command {
	f := &formFlags{}
	cmd := &cobra.Command{
		Use:   "export --name <name> [--out <dir>]",
		Short: "Write the form as a markdown report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withFilledSession(cmd, *configFile, f, func(ctx context.Context, app *bootstrap.App, session sessiondto.SessionOutput) error {
				out, err := app.SessionCLI.Export(ctx, session.SessionID, app.Config.Export.Dir)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "report written: %s\n", out.Path)
				return nil
			})
		},
	}
	f.register(cmd)
	cmd.Flags().String("out", "", "report directory (defaults to export.dir)")
	return cmd
}

func newSchemaCmd(configFile *string) *cobra.Command {
	schema := &cobra.Command{Use: "schema", Short: "Inspect question schemas"}
	schema.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadApp(cmd, *configFile, false)
			if err != nil {
				return err
			}
			defer rt.close()
			schemas, err := rt.app.SessionCLI.Schemas(context.Background())
			if err != nil {
				return err
			}
			for _, s := range schemas {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tv%d\t%s\t%s\t%s\n", s.ID, s.Version, s.Transport, s.PostSubmit, s.Title)
			}
			return nil
		},
	})
	schema.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show the questions of one schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return errors.New("schema id is required")
			}
			rt, err := loadApp(cmd, *configFile, false)
			if err != nil {
				return err
			}
			defer rt.close()
			s, err := rt.app.SessionCLI.Schema(context.Background(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "id: %s\ntitle: %s\nversion: %d\ntransport: %s\nafter submit: %s\njitter: %g\n", s.ID, s.Title, s.Version, s.Transport, s.PostSubmit, s.ScatterJitter)
			for _, q := range s.Questions {
				_, _ = fmt.Fprintf(w, "\n%s [%s] %s\n", q.ID, q.Kind, q.Prompt)
				for i, opt := range q.Options {
					_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, opt)
				}
			}
			return nil
		},
	})
	return schema
}
