package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
	"github.com/clinicdesk/clinic-admin/internal/config"
	"github.com/clinicdesk/clinic-admin/internal/console"
	"github.com/clinicdesk/clinic-admin/internal/form"
	"github.com/clinicdesk/clinic-admin/internal/platform/notify"
	"github.com/clinicdesk/clinic-admin/internal/platform/sandbox"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries what the subcommands share. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	apiURL string
	limit  int

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:          "clinic-admin",
		Short:        "Clinic administration console",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "clinic endpoint base URL (overrides CLINIC_API_URL)")
	rootCmd.PersistentFlags().IntVar(&a.limit, "limit", 0, "page size of list calls (overrides LIST_LIMIT)")

	rootCmd.AddCommand(a.dashboardCmd())
	for _, name := range console.Names() {
		if name == console.Dashboard {
			continue
		}
		rootCmd.AddCommand(a.sectionCmd(name))
	}
	rootCmd.AddCommand(a.sandboxCmd())
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.ClinicAPIURL = a.apiURL
	}
	if cmd.Flags().Changed("limit") {
		cfg.ListLimit = a.limit
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = zerolog.New(a.errOut).With().Timestamp().Logger()
	if cfg.IsDev() {
		a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.errOut}).With().Timestamp().Logger()
	}
	a.logger = a.logger.Level(cfg.Level())
	return nil
}

func (a *app) open() *console.Console {
	client := clinicapi.NewClient(a.cfg.ClinicAPIURL,
		clinicapi.WithTimeout(a.cfg.RequestTimeout),
		clinicapi.WithLogger(a.logger.With().Str("component", "clinicapi").Logger()),
	)
	return console.New(client, console.Options{
		Notifier: notify.Multi(notify.NewWriterNotifier(a.out), notify.NewLogNotifier(a.logger)),
		Logger:   a.logger,
		Limit:    a.cfg.ListLimit,
	})
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the clinic summary counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.open()
			defer c.Close()
			if err := c.Activate(cmd.Context(), console.Dashboard); err != nil {
				return err
			}
			return a.printTable(c, console.Dashboard)
		},
	}
}

func (a *app) sectionCmd(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: "Manage " + name,
	}
	cmd.AddCommand(a.listCmd(name), a.addCmd(name), a.editCmd(name), a.deleteCmd(name))
	return cmd
}

func (a *app) listCmd(name string) *cobra.Command {
	var (
		search string
		status string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.open()
			defer c.Close()
			ctx := cmd.Context()

			if search == "" && status == "" {
				if err := c.Activate(ctx, name); err != nil {
					return err
				}
				return a.printTable(c, name)
			}

			sec, err := c.Section(name)
			if err != nil {
				return err
			}
			f := sec.Filter()
			f.Search = search
			f.Status = clinicapi.Status(status)
			if err := sec.SetFilter(ctx, f); err != nil {
				return err
			}
			return a.printTable(c, name)
		},
	}
	switch name {
	case console.Patients:
		cmd.Flags().StringVar(&search, "search", "", "filter patients by name")
	case console.Appointments:
		cmd.Flags().StringVar(&status, "status", "", "filter appointments by status")
	}
	return cmd
}

// flagName turns a payload field name into a flag name.
func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

func fieldUsage(f form.Field) string {
	usage := f.Label
	switch f.Kind {
	case form.Date:
		usage += " (YYYY-MM-DD)"
	case form.DateTime:
		usage += " (YYYY-MM-DDTHH:MM)"
	case form.Reference:
		usage += " (id)"
	case form.Decimal:
		usage += " (number)"
	case form.Choice:
		values := make([]string, 0, len(f.Options))
		for _, o := range f.Options {
			values = append(values, o.Value)
		}
		usage += " (" + strings.Join(values, ", ") + ")"
	}
	if f.Required {
		usage += ", required"
	}
	return usage
}

// bindFields registers one string flag per schema field.
func bindFields(cmd *cobra.Command, schema form.Schema) map[string]*string {
	values := make(map[string]*string, len(schema.Fields))
	for _, f := range schema.Fields {
		values[f.Name] = cmd.Flags().String(flagName(f.Name), "", fieldUsage(f))
	}
	return values
}

// applyFields copies the flags the user actually set into the open form.
func applyFields(cmd *cobra.Command, sec console.Section, values map[string]*string) error {
	for _, f := range sec.Schema().Fields {
		if !cmd.Flags().Changed(flagName(f.Name)) {
			continue
		}
		if err := sec.SetField(f.Name, *values[f.Name]); err != nil {
			return err
		}
	}
	return nil
}

func schemaOf(name string) form.Schema {
	switch name {
	case console.Patients:
		return form.PatientSchema()
	case console.Appointments:
		return form.AppointmentSchema()
	case console.Records:
		return form.RecordSchema()
	case console.Doctors:
		return form.DoctorSchema()
	case console.Services:
		return form.ServiceSchema()
	case console.Diagnoses:
		return form.DiagnosisSchema()
	case console.Departments:
		return form.DepartmentSchema()
	}
	return form.Schema{}
}

func (a *app) addCmd(name string) *cobra.Command {
	var values map[string]*string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a " + schemaOf(name).Entity,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.open()
			defer c.Close()
			sec, err := c.Section(name)
			if err != nil {
				return err
			}
			if err := sec.OpenCreate(); err != nil {
				return err
			}
			if err := applyFields(cmd, sec, values); err != nil {
				return err
			}
			return sec.Submit(cmd.Context())
		},
	}
	values = bindFields(cmd, schemaOf(name))
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func (a *app) editCmd(name string) *cobra.Command {
	var values map[string]*string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a " + schemaOf(name).Entity + "; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c := a.open()
			defer c.Close()
			if err := c.Activate(cmd.Context(), name); err != nil {
				return err
			}
			sec, err := c.Section(name)
			if err != nil {
				return err
			}
			if err := sec.OpenEdit(id); err != nil {
				return err
			}
			if err := applyFields(cmd, sec, values); err != nil {
				return err
			}
			return sec.Submit(cmd.Context())
		},
	}
	values = bindFields(cmd, schemaOf(name))
	return cmd
}

func (a *app) deleteCmd(name string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + schemaOf(name).Entity,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c := a.open()
			defer c.Close()
			if err := c.Activate(cmd.Context(), name); err != nil {
				return err
			}
			sec, err := c.Section(name)
			if err != nil {
				return err
			}
			if err := sec.SelectForDeletion(id); err != nil {
				return err
			}
			if !yes && !a.confirm(fmt.Sprintf("Delete %s %d? [y/N] ", sec.Schema().Entity, id)) {
				sec.CancelDeletion()
				fmt.Fprintln(a.out, "Cancelled")
				return nil
			}
			return sec.ConfirmDeletion(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (a *app) confirm(prompt string) bool {
	fmt.Fprint(a.out, prompt)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (a *app) printTable(c *console.Console, name string) error {
	t, err := c.Table(name)
	if err != nil {
		return err
	}
	return renderTable(a.out, t)
}

func renderTable(w io.Writer, t console.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, t.Title)
	fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if len(t.Rows) == 0 {
		fmt.Fprintln(tw, "(no records)")
	}
	return tw.Flush()
}

func (a *app) sandboxCmd() *cobra.Command {
	var (
		port  string
		seed  int64
		empty bool
	)
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Serve an in-memory clinic endpoint with generated data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = a.cfg.SandboxPort
			}
			if !cmd.Flags().Changed("seed") {
				seed = a.cfg.SandboxSeed
			}

			store := sandbox.NewStore()
			if !empty {
				seedCfg := sandbox.DefaultSeedConfig()
				seedCfg.Seed = seed
				res := store.Seed(seedCfg)
				a.logger.Info().
					Int("patients", res.Patients).
					Int("doctors", res.Doctors).
					Int("appointments", res.Appointments).
					Int64("seed", seed).
					Msg("sandbox seeded")
			}

			e := sandbox.NewServer(store, sandbox.ServerConfig{
				RequestTimeout: a.cfg.RequestTimeout,
				BodyLimit:      a.cfg.SandboxBodyLimit,
			}, a.logger)
			return serve(cmd.Context(), e, ":"+port, a.logger)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides SANDBOX_PORT)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (overrides SANDBOX_SEED)")
	cmd.Flags().BoolVar(&empty, "empty", false, "start without generated data")
	return cmd
}

type server interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv server, addr string, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("starting sandbox")
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("sandbox server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down sandbox")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("sandbox shutdown: %w", err)
	}
	logger.Info().Msg("sandbox stopped")
	return nil
}
