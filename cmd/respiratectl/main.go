// Command respiratectl classifies readings from the shell and publishes test
// telemetry to the broker the server subscribes to.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"

	"respirate-server/internal/classify"
	"respirate-server/internal/config"
	"respirate-server/internal/db"
	"respirate-server/internal/migrate"
	"respirate-server/internal/mqtt"
	"respirate-server/pkg/telemetry"
)

const usage = `usage: respiratectl <command> [args]

commands:
  scales                             list built-in scales
  classify <scale> <value>           classify a reading (aqi, pollen, uv, battery, risk)
  vital <name> <value>               check a vital sign against its normal range
  publish <source> <metric> <value>  publish one telemetry reading over MQTT
  migrate                            apply pending schema and seed migrations
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "respiratectl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	st := newStyles(out)

	switch args[0] {
	case "scales":
		return printScales(out, st)
	case "classify":
		if len(args) != 3 {
			return fmt.Errorf("%w: classify <scale> <value>", errUsage)
		}
		value, err := parseValue(args[2])
		if err != nil {
			return err
		}
		res, err := classify.Classify(classify.ScaleID(args[1]), value)
		if err != nil {
			return err
		}
		printResult(out, st, res)
		return nil
	case "vital":
		if len(args) != 3 {
			return fmt.Errorf("%w: vital <name> <value>", errUsage)
		}
		vr, err := classify.LookupVital(args[1])
		if err != nil {
			return err
		}
		value, err := parseValue(args[2])
		if err != nil {
			return err
		}
		res, err := classify.ClassifyVital(vr, value)
		if err != nil {
			return err
		}
		printResult(out, st, res)
		fmt.Fprintln(out, st.muted.Render(fmt.Sprintf("normal range %s–%s %s",
			formatNumber(vr.Min), formatNumber(vr.Max), vr.Unit)))
		return nil
	case "publish":
		if len(args) != 4 {
			return fmt.Errorf("%w: publish <source> <metric> <value>", errUsage)
		}
		return publish(out, args[1], args[2], args[3])
	case "migrate":
		return migrateDB(out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func parseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q (expected number)", s)
	}
	return v, nil
}

func formatNumber(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func printScales(out io.Writer, st styles) error {
	for _, s := range classify.Scales() {
		title := s.Name
		if s.Unit != "" {
			title += " (" + s.Unit + ")"
		}
		fmt.Fprintln(out, st.header.Render(string(s.ID)+"  "+title))
		// Upper bounds are inclusive, so every band after the first starts
		// just above the previous bound.
		lower := formatNumber(s.Min)
		for _, rule := range s.Rules {
			upper := math.Min(rule.Max, s.Max)
			bounds := fmt.Sprintf("%8s – %-6s", lower, formatNumber(upper))
			fmt.Fprintf(out, "  %s  %s\n", st.muted.Render(bounds), st.tier(rule.Category.Tier).Render(rule.Category.Label))
			lower = ">" + formatNumber(rule.Max)
		}
	}
	return nil
}

func printResult(out io.Writer, st styles, res classify.Result) {
	value := formatNumber(res.Value)
	if res.Unit != "" {
		value += " " + res.Unit
	}
	fmt.Fprintf(out, "%s  %s  %s\n",
		res.Scale,
		st.value.Render(value),
		st.tier(res.Category.Tier).Render(res.Category.Label),
	)
	if res.Category.Description != "" {
		fmt.Fprintln(out, st.muted.Render(res.Category.Description))
	}
}

func publish(out io.Writer, source, metric, raw string) error {
	value, err := parseValue(raw)
	if err != nil {
		return err
	}
	t := telemetry.Telemetry{
		SourceID:  source,
		Metric:    metric,
		Value:     &value,
		Timestamp: time.Now().UTC(),
	}
	t = t.Normalize()
	if err := telemetry.Validate(t); err != nil {
		return err
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	pub := mqtt.NewPublisher(cfg, "respiratectl-"+uuid.NewString(), logger)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pub.Connect(ctx); err != nil {
		return err
	}
	defer pub.Disconnect()

	if err := pub.Publish(t); err != nil {
		return err
	}
	fmt.Fprintf(out, "published %s=%s to %s\n", t.Metric, formatNumber(value), telemetry.Topic(t.SourceID))
	return nil
}

func migrateDB(out io.Writer) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	conn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(conn, logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintln(out, "migrations applied")
	return nil
}

// newLogger logs to stderr so command output on stdout stays clean.
func newLogger(cfg config.Config) *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.Kitchen,
	}))
}
