// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/nutrilife-sync/models"
)

const mealNameWidth = 24

// renderDashboard renders the profile and the summary of the given day.
// d must have a profile.
func renderDashboard(d models.Dataset, today string) string {
	var b strings.Builder

	p := d.Profile
	fmt.Fprintf(&b, "%s · %s cm · %s\n", titleStyle.Render(p.Name), formatNumber(p.Height), formatWeight(p.Weight))
	fmt.Fprintf(&b, "Target %s · P %s%% · C %s%% · F %s%%\n\n",
		formatKcal(p.TargetCalories),
		formatNumber(p.MacroRatios.Protein),
		formatNumber(p.MacroRatios.Carbs),
		formatNumber(p.MacroRatios.Fat),
	)

	b.WriteString(renderDay(d, today, p.TargetCalories))
	b.WriteString("\n")
	b.WriteString(renderSchedule(d.Schedule))
	b.WriteString("\n")

	if w, ok := d.LatestWeight(); ok {
		fmt.Fprintf(&b, "Weight: %s (%s), %d samples\n", formatWeight(w.Weight), w.Date, len(d.WeightHistory))
	}
	b.WriteString(renderPresets(d.PresetFoods))

	return strings.TrimRight(b.String(), "\n")
}

func renderDay(d models.Dataset, date string, target float64) string {
	var b strings.Builder

	log, _ := d.LogByDate(date)
	fmt.Fprintf(&b, "Today %s: %s / %s\n", date, formatKcal(log.TotalCalories), formatKcal(target))

	if len(log.Meals) == 0 {
		b.WriteString("  no meals logged\n")
		return b.String()
	}

	var protein, carbs, fat float64
	for _, m := range log.Meals {
		name, kcal := "-", 0.0
		if m.Analysis != nil {
			name, kcal = m.Analysis.FoodName, m.Analysis.Calories
			protein += m.Analysis.Protein
			carbs += m.Analysis.Carbs
			fat += m.Analysis.Fat
		}
		fmt.Fprintf(&b, "  %-9s %-*s %s\n", m.Type, mealNameWidth, fitText(name, mealNameWidth), formatKcal(kcal))
	}
	fmt.Fprintf(&b, "  P %sg · C %sg · F %sg\n", formatNumber(protein), formatNumber(carbs), formatNumber(fat))

	return b.String()
}

func renderSchedule(schedule models.MealSchedule) string {
	var slots []string
	for _, t := range models.MealTypes {
		if slot, ok := schedule[t]; ok && slot.Enabled {
			slots = append(slots, fmt.Sprintf("%s %s", t, slot.Time))
		}
	}
	if len(slots) == 0 {
		return "Reminders: off\n"
	}
	return "Reminders: " + strings.Join(slots, ", ") + "\n"
}

func renderPresets(presets []models.PresetFood) string {
	if len(presets) == 0 {
		return ""
	}

	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, formatKcal(p.Calories)))
	}
	return "Presets: " + strings.Join(names, ", ") + "\n"
}
