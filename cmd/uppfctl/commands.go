package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	claimsapp "uppf-claims/internal/claims/application"
	claims "uppf-claims/internal/claims/domain"
	claimsmemory "uppf-claims/internal/claims/infrastructure/memory"
	claimspg "uppf-claims/internal/claims/infrastructure/postgres"
	"uppf-claims/internal/config"
	"uppf-claims/internal/eventing"
	"uppf-claims/internal/platform/logger"
	reconciliation "uppf-claims/internal/reconciliation/domain"
	route "uppf-claims/internal/route/domain"
	settlementapp "uppf-claims/internal/settlement/application"
	settlement "uppf-claims/internal/settlement/domain"
	settlementmemory "uppf-claims/internal/settlement/infrastructure/memory"
	settlementpg "uppf-claims/internal/settlement/infrastructure/postgres"
	traceapp "uppf-claims/internal/trace/application"
	trace "uppf-claims/internal/trace/domain"
	tracememory "uppf-claims/internal/trace/infrastructure/memory"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "uppfctl",
		Short:         "Operator tool for UPPF equalisation claims",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("UPPF_CONFIG"), "Policy file (YAML)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(
		analyzeTraceCmd(opts),
		trackCmd(opts),
		reconcileCmd(opts),
		calculateCmd(opts),
		settleCmd(opts),
		submitWindowCmd(opts),
		settleWindowCmd(opts),
	)
	return root
}

func (o *rootOptions) load() (config.Config, *logger.Logger, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if !o.verbose {
		return cfg, logger.Nop(), nil
	}
	log, err := logger.New("development")
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

type traceInput struct {
	RouteID         string                   `json:"route_id"`
	Samples         []trace.GeoSample        `json:"samples"`
	AuthorizedStops []trace.GeoPoint         `json:"authorized_stops"`
	PlannedRoute    []trace.GeoPoint         `json:"planned_route"`
	Point           *route.EqualisationPoint `json:"point"`
}

// analyzeTraceCmd runs the trace analyzer, or the full route validation
// when the input carries a planned route or an equalisation point.
func analyzeTraceCmd(opts *rootOptions) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "analyze-trace",
		Short: "Analyze a GPS trace and validate it against its route",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			var in traceInput
			if err := readJSON(input, &in); err != nil {
				return err
			}
			policy := cfg.Policy.RoutePolicy(in.RouteID)
			if in.Point == nil && len(in.PlannedRoute) == 0 {
				return writeJSON(cmd.OutOrStdout(), trace.Analyze(in.Samples, in.AuthorizedStops, policy.Analyzer))
			}
			req := route.Request{
				Planned:         in.PlannedRoute,
				Samples:         in.Samples,
				AuthorizedStops: in.AuthorizedStops,
			}
			if in.Point != nil {
				req.Point = *in.Point
			}
			return writeJSON(cmd.OutOrStdout(), route.Validate(req, policy))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Trace file (JSON)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

type trackInput struct {
	ConsignmentID string            `json:"consignment_id"`
	VehicleID     string            `json:"vehicle_id"`
	Samples       []trace.GeoSample `json:"samples"`
}

type rejectedSample struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type trackOutput struct {
	Violations []trace.LiveViolation `json:"violations"`
	Rejected   []rejectedSample      `json:"rejected,omitempty"`
	Trace      *trace.Trace          `json:"trace"`
}

// trackCmd replays samples through the live tracker in arrival order.
func trackCmd(opts *rootOptions) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Replay GPS samples through the live checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			var in trackInput
			if err := readJSON(input, &in); err != nil {
				return err
			}
			tracker, err := traceapp.NewTracker(tracememory.NewTraceStore(), eventing.NewLoggingPublisher(nil, log), log,
				traceapp.WithLivePolicy(func() trace.LivePolicy { return cfg.Policy.Live }))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := trackOutput{Violations: []trace.LiveViolation{}}
			for i, s := range in.Samples {
				violations, err := tracker.Append(ctx, in.ConsignmentID, in.VehicleID, s)
				if err != nil {
					if errors.Is(err, trace.ErrEmptyConsignmentID) || errors.Is(err, trace.ErrEmptyVehicleID) {
						return err
					}
					out.Rejected = append(out.Rejected, rejectedSample{Index: i, Error: err.Error()})
					continue
				}
				out.Violations = append(out.Violations, violations...)
			}
			if len(in.Samples) > 0 {
				out.Trace, err = tracker.Complete(ctx, in.ConsignmentID)
				if err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Samples file (JSON)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

type reconcileInput struct {
	reconciliation.Triple
	RouteID string             `json:"route_id"`
	Product claims.ProductType `json:"product"`
}

func reconcileCmd(opts *rootOptions) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile depot, transporter and station volumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			var in reconcileInput
			if err := readJSON(input, &in); err != nil {
				return err
			}
			factors := cfg.Policy.ToleranceFactors(in.RouteID, in.Product)
			result := reconciliation.Reconcile(in.Triple, factors, cfg.Policy.Reconciliation)
			return writeJSON(cmd.OutOrStdout(), reconciliation.ToRecord(result))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Volume records file (JSON)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

type calculateInput struct {
	claimsmemory.ConsignmentRecord
	Samples         []trace.GeoSample       `json:"samples"`
	Point           route.EqualisationPoint `json:"point"`
	AuthorizedStops []trace.GeoPoint        `json:"authorized_stops"`
}

type calculateOutput struct {
	Claim          *claims.Claim         `json:"claim"`
	Validation     route.Validation      `json:"validation"`
	Reconciliation reconciliation.Record `json:"reconciliation"`
}

// calculateCmd runs one consignment through the claim pipeline over
// in-memory stores.
func calculateCmd(opts *rootOptions) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Validate, reconcile and price one consignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			var in calculateInput
			if err := readJSON(input, &in); err != nil {
				return err
			}
			c := in.Consignment
			if in.Point.RouteID == "" {
				in.Point.RouteID = c.RouteID
			}

			ctx := cmd.Context()
			store := config.NewStore(cfg)
			repo := claimsmemory.NewClaimRepository()
			consignments, err := claimsmemory.NewConsignmentStore(repo)
			if err != nil {
				return err
			}
			if err := consignments.Put(in.ConsignmentRecord); err != nil {
				return err
			}
			reference := claimsmemory.NewReferenceData(store.Policy)
			reference.PutPoint(in.Point)
			if len(in.AuthorizedStops) > 0 {
				reference.PutStops(c.RouteID, in.AuthorizedStops)
			}
			traces := tracememory.NewTraceStore()
			if len(in.Samples) > 0 {
				tr, err := trace.NewTrace(c.ID, c.VehicleID)
				if err != nil {
					return err
				}
				tr.Samples = in.Samples
				tr.Complete(time.Now())
				if err := traces.Save(ctx, tr); err != nil {
					return err
				}
			}

			processor, err := claimsapp.NewProcessor(claimsapp.Deps{
				Traces:          traces,
				Reference:       reference,
				Volumes:         consignments,
				Evidence:        consignments,
				Claims:          repo,
				Reconciliations: claimsmemory.NewReconciliationStore(),
				Sequence:        claimsmemory.NewSequence(),
				Publisher:       eventing.NewLoggingPublisher(nil, log),
			}, log, claimsapp.WithPolicy(store.Policy))
			if err != nil {
				return err
			}
			outcome, err := processor.Process(ctx, c)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), calculateOutput{
				Claim:          outcome.Claim,
				Validation:     outcome.Validation,
				Reconciliation: outcome.Audit.Record,
			})
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Consignment file (JSON)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

type settleInput struct {
	Window settlement.Window `json:"window"`
	Claims []*claims.Claim   `json:"claims"`
}

type settleOutput struct {
	Settlement *settlement.Settlement `json:"settlement"`
	Rejections []settlement.Rejection `json:"rejections"`
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

// settleCmd settles the approved claims in a file. With --paid the payment
// is recorded and reconciled in the same run.
func settleCmd(opts *rootOptions) *cobra.Command {
	var (
		input      string
		at         string
		paid       string
		paymentRef string
	)
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Settle a window of approved claims from a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			var in settleInput
			if err := readJSON(input, &in); err != nil {
				return err
			}
			clock, err := clockAt(at)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			repo := claimsmemory.NewClaimRepository()
			for _, c := range in.Claims {
				if err := repo.Create(ctx, c); err != nil {
					return fmt.Errorf("claim %s: %w", c.ID, err)
				}
			}
			lifecycle, err := claimsapp.NewLifecycle(repo, nil, log, clock.Now)
			if err != nil {
				return err
			}
			svc, err := settlementapp.NewService(settlementmemory.NewSettlementRepository(), repo, lifecycle,
				eventing.NewLoggingPublisher(nil, log), func() settlement.Policy { return cfg.Policy.Settlement }, clock, log)
			if err != nil {
				return err
			}

			st, rejections, err := svc.Settle(ctx, in.Window)
			if err != nil {
				return err
			}
			if paid != "" {
				amount, err := decimal.NewFromString(paid)
				if err != nil {
					return fmt.Errorf("paid: %w", err)
				}
				if _, err := svc.StartProcessing(ctx, st.ID, paymentRef); err != nil {
					return err
				}
				if st, err = svc.ReconcilePayment(ctx, st.ID, amount); err != nil {
					return err
				}
			}
			if rejections == nil {
				rejections = []settlement.Rejection{}
			}
			return writeJSON(cmd.OutOrStdout(), settleOutput{Settlement: st, Rejections: rejections})
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Window and claims file (JSON)")
	cmd.Flags().StringVar(&at, "at", "", "Settlement time (RFC3339), defaults to now")
	cmd.Flags().StringVar(&paid, "paid", "", "Amount actually received")
	cmd.Flags().StringVar(&paymentRef, "payment-ref", "", "Payment reference")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func submitWindowCmd(opts *rootOptions) *cobra.Command {
	var window string
	cmd := &cobra.Command{
		Use:   "submit-window",
		Short: "Submit every ready claim of a window (database)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			lifecycle, err := claimsapp.NewLifecycle(claimspg.NewClaimRepository(db), eventing.NewLoggingPublisher(nil, log), log, nil)
			if err != nil {
				return err
			}
			summary, err := lifecycle.SubmitWindow(cmd.Context(), window)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVar(&window, "window", "", "Window id")
	_ = cmd.MarkFlagRequired("window")
	return cmd
}

func settleWindowCmd(opts *rootOptions) *cobra.Command {
	var (
		window   string
		deadline string
	)
	cmd := &cobra.Command{
		Use:   "settle-window",
		Short: "Settle the approved claims of a window (database)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			due, err := time.Parse(time.RFC3339, deadline)
			if err != nil {
				return fmt.Errorf("deadline: %w", err)
			}
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := claimspg.NewClaimRepository(db)
			publisher := eventing.NewLoggingPublisher(nil, log)
			lifecycle, err := claimsapp.NewLifecycle(repo, publisher, log, nil)
			if err != nil {
				return err
			}
			svc, err := settlementapp.NewService(settlementpg.NewSettlementRepository(db), repo, lifecycle, publisher,
				func() settlement.Policy { return cfg.Policy.Settlement }, settlementapp.SystemClock{}, log)
			if err != nil {
				return err
			}
			st, rejections, err := svc.Settle(cmd.Context(), settlement.Window{ID: window, SubmissionDeadline: due})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), settleOutput{Settlement: st, Rejections: rejections})
		},
	}
	cmd.Flags().StringVar(&window, "window", "", "Window id")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Submission deadline (RFC3339)")
	_ = cmd.MarkFlagRequired("window")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}

func clockAt(at string) (settlementapp.Clock, error) {
	if at == "" {
		return settlementapp.SystemClock{}, nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return nil, fmt.Errorf("at: %w", err)
	}
	return fixedClock{at: t}, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("uppfctl: DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
