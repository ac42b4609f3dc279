package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Dan9191/advisor-crm/internal/fees"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type options struct {
	schedulePath string
	amount       string
	jsonOutput   bool
	verbose      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "feecalc",
		Short:        "Validate fee schedules and preview advisory fees offline",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetOutput(cmd.ErrOrStderr())
			if opts.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVarP(&opts.schedulePath, "schedule", "s", "", "fee schedule YAML file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.MarkPersistentFlagRequired("schedule")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a fee schedule file for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule, err := loadSchedule(opts.schedulePath)
			if err != nil {
				return err
			}
			if err := fees.ValidateSchedule(schedule); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid %s schedule with %d tiers\n",
				opts.schedulePath, schedule.FeeType, len(schedule.Tiers))
			return nil
		},
	}

	calculateCmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate the fee a schedule charges on a billable amount",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalculate(cmd.OutOrStdout(), opts)
		},
	}
	calculateCmd.Flags().StringVarP(&opts.amount, "amount", "a", "", "billable amount")
	calculateCmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the result as JSON")
	calculateCmd.MarkFlagRequired("amount")

	root.AddCommand(validateCmd, calculateCmd)
	return root
}

func loadSchedule(path string) (*models.FeeSchedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}
	var schedule models.FeeSchedule
	if err := yaml.Unmarshal(data, &schedule); err != nil {
		return nil, fmt.Errorf("failed to parse schedule %s: %w", path, err)
	}
	logrus.Debugf("Loaded %s schedule %q with %d tiers", schedule.FeeType, schedule.Name, len(schedule.Tiers))
	return &schedule, nil
}

func runCalculate(out io.Writer, opts *options) error {
	amount, err := decimal.NewFromString(opts.amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", opts.amount, err)
	}
	schedule, err := loadSchedule(opts.schedulePath)
	if err != nil {
		return err
	}
	if err := fees.ValidateSchedule(schedule); err != nil {
		return err
	}
	res, err := fees.Calculate(schedule, amount)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	for _, c := range res.Breakdown {
		upper := "∞"
		if c.MaxValue != nil {
			upper = c.MaxValue.StringFixed(2)
		}
		fmt.Fprintf(out, "tier %d  %s - %s  portion %s  rate %s  fee %s\n",
			c.TierIndex, c.MinValue.StringFixed(2), upper, c.Portion.StringFixed(2), c.Rate.String(), c.Fee.StringFixed(2))
	}
	fmt.Fprintf(out, "total fee:      %s\n", res.TotalFee.StringFixed(2))
	fmt.Fprintf(out, "effective rate: %s bps\n", res.EffectiveRate.StringFixed(2))
	if schedule.Frequency.Valid() {
		fmt.Fprintf(out, "per %s period: %s\n", schedule.Frequency,
			fees.PeriodFee(schedule.FeeType, schedule.Frequency, res.TotalFee).StringFixed(2))
	}
	return nil
}
