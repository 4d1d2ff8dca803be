// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/nutrilife-sync/internal/analyzer"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/models"
)

const (
	defaultProteinRatio = 30
	defaultCarbsRatio   = 40
)

// commandFunc validates args and returns the command to run. A nil
// command with a nil error means the model was updated in place.
type commandFunc func(m *appModel, args []string) (tea.Cmd, error)

type command struct {
	usage string
	run   commandFunc
}

// commandOrder is the order of the help listing.
var commandOrder = []string{
	"profile", "weight", "undo-weight", "meal", "preset", "schedule",
	"export", "copy", "import", "resync", "version", "help", "quit",
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"profile": {
			usage: "profile <name> <height> <weight> <calories> [protein carbs] | profile calories|protein|carbs <value>",
			run:   runProfile,
		},
		"weight":      {usage: "weight <kg>", run: runWeight},
		"undo-weight": {usage: "undo-weight", run: runUndoWeight},
		"meal": {
			usage: "meal <type> [@preset | photo <file> | <calories> [food name]]",
			run:   runMeal,
		},
		"preset": {
			usage: "preset add <name> <calories> <protein> <carbs> <fat> | preset rm <name>",
			run:   runPreset,
		},
		"schedule": {usage: "schedule <meal> [HH:MM]", run: runSchedule},
		"export":   {usage: "export <file>", run: runExport},
		"copy":     {usage: "copy", run: runCopy},
		"import":   {usage: "import <file>", run: runImport},
		"resync":   {usage: "resync", run: runResync},
		"version":  {usage: "version", run: runVersion},
		"help":     {usage: "help", run: runHelp},
		"quit":     {usage: "quit", run: runQuit},
	}
}

func usageError(name string) error {
	return fmt.Errorf("usage: %s", commands[name].usage)
}

func helpText() string {
	var b strings.Builder
	for _, name := range commandOrder {
		b.WriteString("  ")
		b.WriteString(commands[name].usage)
		b.WriteString("\n")
	}
	b.WriteString("  meals: ")
	b.WriteString(mealTypeList())
	return b.String()
}

func mealTypeList() string {
	names := make([]string, 0, len(models.MealTypes))
	for _, t := range models.MealTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}

func parseNumbers(args []string) ([]float64, error) {
	out := make([]float64, 0, len(args))
	for _, a := range args {
		v, err := parseNumber(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseMealType(s string) (models.MealType, error) {
	t := models.MealType(strings.ToLower(s))
	if !t.Valid() {
		return "", fmt.Errorf("unknown meal %q, one of: %s", s, mealTypeList())
	}
	return t, nil
}

// call runs fn off the update loop and reports notice when it succeeds.
func (m *appModel) call(notice string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return commandDoneMsg{notice: notice, err: fn(ctx)}
	}
}

// ── profile ──────────────────────────────────────────────────────────────────

func runProfile(m *appModel, args []string) (tea.Cmd, error) {
	if len(args) == 2 {
		field := service.NutritionField(strings.ToLower(args[0]))
		value, err := parseNumber(args[1])
		if err != nil {
			return nil, err
		}
		return m.call("Nutrition target updated", func(ctx context.Context) error {
			return m.datasets.UpdateNutrition(ctx, field, value)
		}), nil
	}

	if len(args) != 4 && len(args) != 6 {
		return nil, usageError("profile")
	}

	nums, err := parseNumbers(args[1:])
	if err != nil {
		return nil, err
	}
	protein, carbs := float64(defaultProteinRatio), float64(defaultCarbsRatio)
	if len(nums) == 5 {
		protein, carbs = nums[3], nums[4]
	}
	if protein+carbs > 100 {
		return nil, service.ErrMacroOverflow
	}

	profile := models.Profile{
		Name:           args[0],
		Height:         nums[0],
		Weight:         nums[1],
		TargetCalories: nums[2],
		MacroRatios: models.MacroRatios{
			Protein: protein,
			Carbs:   carbs,
			Fat:     math.Round((100-protein-carbs)*10) / 10,
		},
	}

	return m.call("Profile saved", func(ctx context.Context) error {
		return m.datasets.CompleteProfile(ctx, profile)
	}), nil
}

// ── weight ───────────────────────────────────────────────────────────────────

func runWeight(m *appModel, args []string) (tea.Cmd, error) {
	if len(args) != 1 {
		return nil, usageError("weight")
	}
	weight, err := parseNumber(args[0])
	if err != nil {
		return nil, err
	}

	ctx := m.ctx
	return func() tea.Msg {
		sample, err := m.datasets.AddWeight(ctx, weight)
		if err != nil {
			return commandDoneMsg{err: err}
		}
		return commandDoneMsg{notice: "Weight recorded: " + formatWeight(sample.Weight)}
	}, nil
}

func runUndoWeight(m *appModel, args []string) (tea.Cmd, error) {
	if len(args) != 0 {
		return nil, usageError("undo-weight")
	}
	if !m.hasDataset {
		return nil, service.ErrNoDataset
	}
	latest, ok := m.dataset.LatestWeight()
	if !ok {
		return nil, errNoWeight
	}

	notice := fmt.Sprintf("Removed weight %s (%s)", formatWeight(latest.Weight), latest.Date)
	return m.call(notice, func(ctx context.Context) error {
		return m.datasets.DeleteWeight(ctx, latest.ID)
	}), nil
}

// ── meals and presets ────────────────────────────────────────────────────────

func runMeal(m *appModel, args []string) (tea.Cmd, error) {
	if len(args) == 0 {
		return nil, usageError("meal")
	}
	mealType, err := parseMealType(args[0])
	if err != nil {
		return nil, err
	}

	entry := service.MealEntry{Type: mealType}
	rest := args[1:]

	switch {
	case len(rest) == 0:

	case strings.HasPrefix(rest[0], "@"):
		preset, err := m.findPreset(strings.TrimPrefix(strings.Join(rest, " "), "@"))
		if err != nil {
			return nil, err
		}
		entry.PresetID = preset.ID

	case rest[0] == "photo":
		if len(rest) != 2 {
			return nil, usageError("meal")
		}
		return m.logMealFromPhoto(entry, rest[1]), nil

	default:
		calories, err := parseNumber(rest[0])
		if err != nil {
			return nil, err
		}
		name := strings.Join(rest[1:], " ")
		if name == "" {
			name = "Manual entry"
		}
		entry.Facts = &models.FoodFacts{FoodName: name, Calories: calories}
	}

	return m.logMeal(entry), nil
}

func (m *appModel) logMeal(entry service.MealEntry) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return m.doLogMeal(ctx, entry)
	}
}

func (m *appModel) logMealFromPhoto(entry service.MealEntry, path string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		data, err := m.readFile(path)
		if err != nil {
			return commandDoneMsg{err: err}
		}
		entry.Image = &analyzer.Image{Data: data, MediaType: http.DetectContentType(data)}
		return m.doLogMeal(ctx, entry)
	}
}

func (m *appModel) doLogMeal(ctx context.Context, entry service.MealEntry) commandDoneMsg {
	meal, err := m.datasets.LogMeal(ctx, entry)
	if err != nil {
		return commandDoneMsg{err: err}
	}

	notice := fmt.Sprintf("Logged %s", meal.Type)
	if meal.Analysis != nil {
		notice = fmt.Sprintf("Logged %s: %s, %s", meal.Type, meal.Analysis.FoodName, formatKcal(meal.Analysis.Calories))
	}
	return commandDoneMsg{notice: notice}
}

// findPreset matches ref against preset ids, then names ignoring case.
func (m *appModel) findPreset(ref string) (models.PresetFood, error) {
	for _, p := range m.dataset.PresetFoods {
		if p.ID == ref {
			return p, nil
		}
	}
	for _, p := range m.dataset.PresetFoods {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return models.PresetFood{}, fmt.Errorf("%w: %s", service.ErrPresetNotFound, ref)
}

func runPreset(m *appModel, args []string) (tea.Cmd, error) {
	if len(args) < 2 {
		return nil, usageError("preset")
	}

	switch args[0] {
	case "add":
		if len(args) != 6 {
			return nil, usageError("preset")
		}
		nums, err := parseNumbers(args[2:])
		if err != nil {
			return nil, err
		}
		preset := models.PresetFood{
			Name:     args[1],
			Calories: nums[0],
			Protein:  nums[1],
			Carbs:    nums[2],
			Fat:      nums[3],
		}
		return m.call("Preset saved: "+preset.Name, func(ctx context.Context) error {
			_, err := m.datasets.AddPreset(ctx, preset)
			return err
		}), nil

	case "rm":
		preset, err := m.findPreset(strings.Join(args[1:], " "))
		if err != nil {
			return nil, err
		}
		return m.call("Preset removed: "+preset.Name, func(ctx context.Context) error {
			return m.datasets.DeletePreset(ctx, preset.ID)
		}), nil
	}

	return nil, usageError("preset")
}

// ── schedule ─────────────────────────────────────────────────────────────────

func runSchedule(m *appModel, args []string) (tea.Cmd, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, usageError("schedule")
	}
	mealType, err := parseMealType(args[0])
	if err != nil {
		return nil, err
	}

	if len(args) == 1 {
		return m.call("Reminder toggled: "+string(mealType), func(ctx context.Context) error {
			return m.datasets.ToggleMeal(ctx, mealType)
		}), nil
	}

	if !m.hasDataset {
		return nil, service.ErrNoDataset
	}
	schedule := make(models.MealSchedule, len(m.dataset.Schedule))
	for k, v := range m.dataset.Schedule {
		schedule[k] = v
	}
	slot, ok := schedule[mealType]
	if !ok {
		slot = models.DefaultMealSchedule()[mealType]
	}
	slot.Time = args[1]
	schedule[mealType] = slot

	return m.call(fmt.Sprintf("Reminder for %s set to %s", mealType, slot.Time), func(ctx context.Context) error {
		return m.datasets.UpdateSchedule(ctx, schedule)
	}), nil
}

// ── export and import ────────────────────────────────────────────────────────

func runExport(m *appModel, args []string) (tea.Cmd, error) {
	if len(args) != 1 {
		return nil, usageError("export")
	}
	path := args[0]

	return m.call("Exported to "+path, func(ctx context.Context) error {
		data, err := m.transfer.Export(ctx)
		if err != nil {
			return err
		}
		return m.writeFile(path, data)
	}), nil
}

func runCopy(m *appModel, args []string) (tea.Cmd, error) {
	if len(args) != 0 {
		return nil, usageError("copy")
	}

	return m.call("Export copied to clipboard", func(ctx context.Context) error {
		data, err := m.transfer.Export(ctx)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return errEmptyClipboard
		}
		return m.copyText(string(data))
	}), nil
}

// runImport loads and previews the file. The dataset is replaced only
// after the user confirms the preview.
func runImport(m *appModel, args []string) (tea.Cmd, error) {
	if len(args) != 1 {
		return nil, usageError("import")
	}
	path := args[0]

	return func() tea.Msg {
		data, err := m.readFile(path)
		if err != nil {
			return importPreviewMsg{path: path, err: err}
		}
		doc, err := models.DecodeExportDocument(data)
		if err != nil {
			return importPreviewMsg{path: path, err: err}
		}
		return importPreviewMsg{data: data, doc: doc, path: path}
	}, nil
}

func (m *appModel) confirmImport(data []byte) tea.Cmd {
	return m.call("Import complete", func(ctx context.Context) error {
		return m.transfer.Import(ctx, data, func(models.ExportDocument) bool { return true })
	})
}

// ── session ──────────────────────────────────────────────────────────────────

func runResync(m *appModel, args []string) (tea.Cmd, error) {
	if len(args) != 0 {
		return nil, usageError("resync")
	}
	return m.call("Resync started", func(context.Context) error {
		return m.session.Resync()
	}), nil
}

func runVersion(m *appModel, _ []string) (tea.Cmd, error) {
	m.showBuildInfo = true
	return nil, nil
}

func runHelp(m *appModel, _ []string) (tea.Cmd, error) {
	m.notice = "Commands:\n" + helpText()
	return nil, nil
}

func runQuit(_ *appModel, _ []string) (tea.Cmd, error) {
	return tea.Quit, nil
}
