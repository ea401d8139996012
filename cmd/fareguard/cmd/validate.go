package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skylane/fareguard/internal/catalog"
	"github.com/skylane/fareguard/internal/core/db"
	"github.com/skylane/fareguard/internal/core/logging"
	"github.com/skylane/fareguard/internal/request"
	"github.com/skylane/fareguard/internal/rules"
	"github.com/skylane/fareguard/internal/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an itinerary request against the rule catalog",
	Long: `Validate reads a JSON validation request (itinerary segments, fare
components, pricing units and rule references), runs the fare-component
phase and then the pricing-unit phase, and reports a verdict per rule.`,
	RunE: runValidate,
}

var validateInput string

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateInput, "input", "-", "request file path, - for stdin")
	validateCmd.Flags().Bool("allow-rebook", false, "mark unconfirmed sectors for re-booking instead of failing")
	validateCmd.Flags().Bool("skip-booking-date-validation", false, "measure ticketing limits from the ticketing date")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("allow-rebook") {
		cfg.AllowRebook, _ = cmd.Flags().GetBool("allow-rebook")
	}
	if cmd.Flags().Changed("skip-booking-date-validation") {
		cfg.SkipBookingDateValidation, _ = cmd.Flags().GetBool("skip-booking-date-validation")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger = logger.With(zap.String("transaction_id", string(types.NewTransactionID())))

	conn, err := db.Open(cfg.DBURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	store, err := catalog.NewStore(conn)
	if err != nil {
		return err
	}
	cat, err := store.LoadCatalog()
	if err != nil {
		return err
	}
	adv, min, max, geo := cat.Len()
	logger.Info("catalog loaded",
		zap.Int("adv_res_tkt", adv), zap.Int("min_stay", min),
		zap.Int("max_stay", max), zap.Int("geo_tables", geo))

	req, err := readRequest(validateInput)
	if err != nil {
		return err
	}
	built, err := req.Build()
	if err != nil {
		return err
	}

	engine := rules.NewValidator(rules.Config{
		AllowRebook:               cfg.AllowRebook,
		SkipBookingDateValidation: cfg.SkipBookingDateValidation,
	}, cat, rules.ZapCollector{Log: logger})

	failures := validateAll(logger, engine, cat, built)
	if failures > 0 {
		return fmt.Errorf("validation failed: %d rule failure(s)", failures)
	}
	logger.Info("validation passed")
	return nil
}

func readRequest(path string) (*request.Request, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open request: %w", err)
		}
		defer f.Close()
		r = f
	}
	return request.Decode(r)
}

// validateAll runs both validation phases. The fare-component phase runs
// each rule against each component; a Stop verdict ends that category's
// record sequence for the component. Records that neither failed nor
// settled are re-run per fare usage once pricing units exist.
func validateAll(logger *zap.Logger, engine *rules.Validator, cat *catalog.Catalog, built *request.Built) int {
	failures := 0
	at := built.Itinerary.TicketingDate

	type pending struct {
		sel  request.RuleSelector
		rule types.CategoryRule
	}
	var revalidate []pending

	for _, sel := range built.Rules {
		rule, err := cat.Rule(sel.Category, sel.Key, at)
		if err != nil {
			logger.Warn("rule record unavailable",
				zap.Int("category", int(sel.Category)), zap.Int("item", sel.Key.Item),
				zap.Error(err))
			continue
		}

		stopped := false
		settled := true
		for n, fc := range built.Components {
			if stopped {
				break
			}
			res := engine.ValidateFareComponent(rule, built.Itinerary, fc)
			logVerdict(logger, "fare-component", sel, n, res)
			switch res.Verdict {
			case rules.Fail:
				failures++
			case rules.Stop:
				stopped = true
			case rules.StopSoft:
				stopped = true
				settled = false
			case rules.SoftPass:
				settled = false
			}
		}
		if !settled {
			revalidate = append(revalidate, pending{sel: sel, rule: rule})
		}
	}

	for _, p := range revalidate {
		for n, fu := range built.Usages {
			res := engine.ValidatePricingUnit(p.rule, built.Itinerary, fu.Unit, fu)
			logVerdict(logger, "pricing-unit", p.sel, n, res)
			if res.Verdict == rules.Fail {
				failures++
			}
			if res.Verdict == rules.Stop || res.Verdict == rules.StopSoft {
				break
			}
		}
	}
	return failures
}

func logVerdict(logger *zap.Logger, phase string, sel request.RuleSelector, n int, res rules.Result) {
	fields := []zap.Field{
		zap.String("phase", phase),
		zap.Int("category", int(sel.Category)),
		zap.Int("item", sel.Key.Item),
		zap.Int("index", n),
		zap.Stringer("verdict", res.Verdict),
	}
	if len(res.Rebook) > 0 {
		fields = append(fields, zap.Int("rebook_sectors", len(res.Rebook)))
	}
	if res.Verdict == rules.Fail {
		logger.Warn("rule failed", fields...)
		return
	}
	logger.Info("rule evaluated", fields...)
}
