package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tyilmaz/optikeval/internal/answerkey"
	"github.com/tyilmaz/optikeval/internal/evaluate"
	appI18n "github.com/tyilmaz/optikeval/internal/i18n"
	"github.com/tyilmaz/optikeval/internal/model"
	"github.com/tyilmaz/optikeval/internal/optical"
	"github.com/tyilmaz/optikeval/internal/report"
	"github.com/tyilmaz/optikeval/internal/similarity"
	"github.com/tyilmaz/optikeval/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "optikeval",
		Short: "Optical exam sheet evaluation and integrity analysis",
	}
	root.AddCommand(parseCmd(), evaluateCmd(), analyzeCmd(), examsCmd(), exportCmd())
	return root
}

// addCommonFlags registers the flags every subcommand shares.
func addCommonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("db", "optikeval.db", "SQLite exam store path")
	f.StringP("lang", "l", "tr", "Report language (tr, en)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse raw optical scanner output into records",
		RunE:  runParse,
	}
	f := cmd.Flags()
	f.String("optical", "", "Path to the raw scanner text file (required)")
	f.String("field-map", "", "Path to a field-map JSON file (default: built-in layout)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addCommonFlags(cmd)
	_ = cmd.MarkFlagRequired("optical")
	return cmd
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Reconcile roster, optical records and answer key; score every candidate",
		RunE:  runEvaluate,
	}
	addInputFlags(cmd)
	f := cmd.Flags()
	f.String("format", "csv", "Output format (csv, json)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("save", "", "Save the evaluated exam under this name in the store")
	addCommonFlags(cmd)
	return cmd
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Flag candidate pairs with suspiciously similar answer sheets",
		RunE:  runAnalyze,
	}
	addInputFlags(cmd)
	f := cmd.Flags()
	f.String("exam", "", "Analyze a stored exam instead of raw input files")
	f.Float64("threshold", similarity.DefaultThresholdPct, "Similarity percentage threshold (inclusive)")
	f.String("format", "csv", "Output format (csv, json)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addCommonFlags(cmd)
	return cmd
}

func examsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exams",
		Short: "Manage stored exams",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored exams",
		RunE:  runExamsList,
	}
	addCommonFlags(list)

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored exam",
		Args:  cobra.ExactArgs(1),
		RunE:  runExamsDelete,
	}
	addCommonFlags(del)

	cmd.AddCommand(list, del)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored exam as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("exam", "", "Stored exam name (required)")
	f.Float64("threshold", similarity.DefaultThresholdPct, "Similarity threshold for the included analysis")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addCommonFlags(cmd)
	_ = cmd.MarkFlagRequired("exam")
	return cmd
}

// addInputFlags registers the raw input flags shared by evaluate and analyze.
func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("roster", "", "Path to the attendance roster CSV")
	f.String("optical", "", "Path to the raw scanner text file")
	f.String("field-map", "", "Path to a field-map JSON file (default: built-in layout)")
	f.String("answer-key", "", "Path to an answer key JSON file")
	f.String("key-sheet", "", "Path to a grid-shaped answer key CSV (DOCTYPE_BOOKLET columns)")
	f.Int("key-start-row", 2, "First data row of the key sheet (1-based, header included)")
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("OPTIKEVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("optikeval")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/optikeval")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func localizerFor(v *viper.Viper) (*goi18n.Localizer, error) {
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return nil, fmt.Errorf("init i18n: %w", err)
	}
	return appI18n.NewLocalizer(lang), nil
}

// outputWriter opens the output target; "-" or "" means stdout.
func outputWriter(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, f.Close, nil
}

// loadFieldMap loads the configured field map or falls back to the built-in
// scanner layout.
func loadFieldMap(v *viper.Viper) (optical.FieldMap, error) {
	path := v.GetString("field-map")
	if path == "" {
		return optical.DefaultFieldMap(), nil
	}
	return optical.LoadFieldMap(path)
}

// loadOptical parses and deduplicates the raw scanner file, logging what the
// cleanup found.
func loadOptical(v *viper.Viper) ([]model.OpticalRecord, error) {
	path := v.GetString("optical")
	if path == "" {
		return nil, errors.New("--optical is required")
	}
	fm, err := loadFieldMap(v)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read optical file %s: %w", path, err)
	}

	records, err := optical.Parse(string(raw), fm)
	if err != nil {
		return nil, fmt.Errorf("parse optical file %s: %w", path, err)
	}

	deduped := optical.Dedupe(records)
	if dropped := len(records) - len(deduped); dropped > 0 {
		slog.Warn("duplicate national IDs collapsed, last scan wins", "dropped", dropped)
	}
	invalid := 0
	for _, r := range deduped {
		if r.NationalID != "" && !optical.ValidTC(r.NationalID) {
			invalid++
		}
	}
	if invalid > 0 {
		slog.Warn("records with malformed national IDs", "count", invalid)
	}
	slog.Info("optical records loaded", "path", path, "records", len(deduped))
	return deduped, nil
}

// loadKey loads the answer key from JSON or imports it from a grid CSV.
func loadKey(v *viper.Viper) (model.AnswerKey, error) {
	switch {
	case v.GetString("answer-key") != "":
		return answerkey.Load(v.GetString("answer-key"))
	case v.GetString("key-sheet") != "":
		return answerkey.ImportCSV(v.GetString("key-sheet"), v.GetInt("key-start-row"))
	default:
		return nil, errors.New("an answer key is required: set --answer-key or --key-sheet")
	}
}

// evaluateFromFlags runs the full parse, dedupe and evaluate pipeline from
// raw input files.
func evaluateFromFlags(v *viper.Viper) ([]model.ScoredResult, model.AnswerKey, error) {
	rosterPath := v.GetString("roster")
	if rosterPath == "" {
		return nil, nil, errors.New("--roster is required")
	}
	roster, err := evaluate.LoadRosterCSV(rosterPath)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("roster loaded", "path", rosterPath, "rows", len(roster.Rows))

	records, err := loadOptical(v)
	if err != nil {
		return nil, nil, err
	}
	key, err := loadKey(v)
	if err != nil {
		return nil, nil, err
	}

	results, err := evaluate.Evaluate(roster, records, key)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("evaluation complete", "candidates", len(results))
	return results, key, nil
}

func runParse(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	records, err := loadOptical(v)
	if err != nil {
		return err
	}

	w, closeFn, err := outputWriter(v.GetString("output"))
	if err != nil {
		return err
	}
	defer closeFn()

	return writeJSON(w, records)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	results, key, err := evaluateFromFlags(v)
	if err != nil {
		return err
	}

	if name := v.GetString("save"); name != "" {
		db, err := store.New(v.GetString("db"))
		if err != nil {
			return fmt.Errorf("open exam store: %w", err)
		}
		defer db.Close()
		if err := db.SaveExam(name, model.ExamSnapshot{Results: results, AnswerKey: key}); err != nil {
			return fmt.Errorf("save exam %q: %w", name, err)
		}
		slog.Info("exam saved", "name", name)
	}

	loc, err := localizerFor(v)
	if err != nil {
		return err
	}
	w, closeFn, err := outputWriter(v.GetString("output"))
	if err != nil {
		return err
	}
	defer closeFn()

	switch strings.ToLower(v.GetString("format")) {
	case "json":
		return report.WriteJSON(w, model.ExamExport{
			ExamName:    v.GetString("save"),
			GeneratedAt: time.Now(),
			Results:     results,
		})
	default:
		return report.WriteResultsCSV(w, results, loc)
	}
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	var (
		results []model.ScoredResult
		key     model.AnswerKey
		err     error
	)
	if name := v.GetString("exam"); name != "" {
		db, err := store.New(v.GetString("db"))
		if err != nil {
			return fmt.Errorf("open exam store: %w", err)
		}
		defer db.Close()
		snap, err := db.GetExam(name)
		if err != nil {
			return err
		}
		results, key = snap.Results, snap.AnswerKey
		slog.Info("stored exam loaded", "name", name, "candidates", len(results))
	} else {
		results, key, err = evaluateFromFlags(v)
		if err != nil {
			return err
		}
	}

	threshold := v.GetFloat64("threshold")
	matches := similarity.Analyze(results, key, threshold)
	slog.Info("similarity analysis complete", "threshold_pct", threshold, "flagged_pairs", len(matches))

	loc, err := localizerFor(v)
	if err != nil {
		return err
	}
	w, closeFn, err := outputWriter(v.GetString("output"))
	if err != nil {
		return err
	}
	defer closeFn()

	switch strings.ToLower(v.GetString("format")) {
	case "json":
		return report.WriteJSON(w, model.ExamExport{
			ExamName:     v.GetString("exam"),
			GeneratedAt:  time.Now(),
			ThresholdPct: threshold,
			Matches:      matches,
		})
	default:
		return report.WriteSimilarityCSV(w, matches, loc)
	}
}

func runExamsList(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open exam store: %w", err)
	}
	defer db.Close()

	exams, err := db.ListExams()
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}
	if len(exams) == 0 {
		fmt.Println("no stored exams")
		return nil
	}
	for _, e := range exams {
		fmt.Printf("%s\t(updated %s)\n", e.Name, e.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runExamsDelete(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open exam store: %w", err)
	}
	defer db.Close()

	if err := db.DeleteExam(args[0]); err != nil {
		return err
	}
	slog.Info("exam deleted", "name", args[0])
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open exam store: %w", err)
	}
	defer db.Close()

	name := v.GetString("exam")
	snap, err := db.GetExam(name)
	if err != nil {
		return err
	}

	threshold := v.GetFloat64("threshold")
	export := model.ExamExport{
		ExamName:     name,
		GeneratedAt:  time.Now(),
		ThresholdPct: threshold,
		Results:      snap.Results,
		Matches:      similarity.Analyze(snap.Results, snap.AnswerKey, threshold),
	}

	w, closeFn, err := outputWriter(v.GetString("output"))
	if err != nil {
		return err
	}
	defer closeFn()

	return report.WriteJSON(w, export)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)
	return nil
}
