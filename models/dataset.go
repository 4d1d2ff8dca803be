// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"sort"
	"time"
)

// DateLayout is the calendar date format used by daily logs and weight samples.
const DateLayout = "2006-01-02"

// MealType identifies one of the fixed meal slots of a day.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealSnack1    MealType = "snack1"
	MealLunch     MealType = "lunch"
	MealSnack2    MealType = "snack2"
	MealSnack3    MealType = "snack3"
	MealDinner    MealType = "dinner"
	MealSnack4    MealType = "snack4"
)

// MealTypes lists every meal slot in display order.
var MealTypes = []MealType{
	MealBreakfast,
	MealSnack1,
	MealLunch,
	MealSnack2,
	MealSnack3,
	MealDinner,
	MealSnack4,
}

// Valid reports whether m is one of the known meal slots.
func (m MealType) Valid() bool {
	for _, t := range MealTypes {
		if t == m {
			return true
		}
	}
	return false
}

// MacroRatios holds the percentage split of daily calories between
// macronutrients. The three values are expected to add up to 100.
type MacroRatios struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// Profile carries the user's bio-metrics and nutrition targets.
type Profile struct {
	Name           string      `json:"name"`
	Height         float64     `json:"height"`
	Weight         float64     `json:"weight"`
	TargetCalories float64     `json:"target_calories"`
	MacroRatios    MacroRatios `json:"macro_ratios"`
	SetupComplete  bool        `json:"setup_complete"`
}

// FoodFacts is the nutritional breakdown of a single meal, either produced by
// the image analyzer, copied from a preset or entered manually.
type FoodFacts struct {
	FoodName   string  `json:"food_name"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`
	Confidence float64 `json:"confidence"`
}

// PlaceholderFacts returns the zero-valued facts recorded when image analysis
// is unavailable.
func PlaceholderFacts() FoodFacts {
	return FoodFacts{FoodName: "Unknown food"}
}

// MealLog is one eaten meal inside a daily log.
type MealLog struct {
	ID        string   `json:"id"`
	Type      MealType `json:"type"`
	Timestamp int64    `json:"timestamp"`
	Completed bool     `json:"completed"`
	// ImageURL holds an embedded data URL of the meal photo. It is the
	// largest field of the dataset and is dropped from old entries before
	// remote persistence.
	ImageURL    string     `json:"image_url,omitempty"`
	Analysis    *FoodFacts `json:"analysis,omitempty"`
	ManualNotes string     `json:"manual_notes,omitempty"`
}

// DailyLog aggregates the meals of one calendar date.
type DailyLog struct {
	Date          string    `json:"date"`
	Meals         []MealLog `json:"meals"`
	TotalCalories float64   `json:"total_calories"`
	Weight        *float64  `json:"weight,omitempty"`
}

// Day parses Date in loc.
func (l DailyLog) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, l.Date, loc)
}

// RecalculateCalories sets TotalCalories to the sum of the analyzed calories
// of every meal.
func (l *DailyLog) RecalculateCalories() {
	var total float64
	for _, m := range l.Meals {
		if m.Analysis != nil {
			total += m.Analysis.Calories
		}
	}
	l.TotalCalories = total
}

// WeightSample is one entry of the weight history.
type WeightSample struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Timestamp int64   `json:"timestamp,omitempty"`
	Weight    float64 `json:"weight"`
}

// MealSlot describes when a meal is scheduled ("HH:mm") and whether the
// reminder for it is active.
type MealSlot struct {
	Time    string `json:"time"`
	Enabled bool   `json:"enabled"`
}

// MealSchedule maps each meal slot to its reminder settings.
type MealSchedule map[MealType]MealSlot

// DefaultMealSchedule returns the schedule assigned to a freshly created
// profile.
func DefaultMealSchedule() MealSchedule {
	return MealSchedule{
		MealBreakfast: {Time: "07:00", Enabled: true},
		MealSnack1:    {Time: "10:00", Enabled: true},
		MealLunch:     {Time: "12:30", Enabled: true},
		MealSnack2:    {Time: "16:00", Enabled: true},
		MealSnack3:    {Time: "15:00", Enabled: false},
		MealDinner:    {Time: "19:00", Enabled: true},
		MealSnack4:    {Time: "21:00", Enabled: false},
	}
}

// PresetFood is a reusable, user-defined food entry.
type PresetFood struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Facts converts the preset into meal facts. Presets are exact, so the
// confidence is 1.
func (p PresetFood) Facts() FoodFacts {
	return FoodFacts{
		FoodName:   p.Name,
		Calories:   p.Calories,
		Protein:    p.Protein,
		Carbs:      p.Carbs,
		Fat:        p.Fat,
		Confidence: 1,
	}
}

// Dataset is the unit of synchronization: the whole tracked state of one user.
//
// Logs are kept ordered by date with at most one log per date.
type Dataset struct {
	Profile       *Profile       `json:"profile"`
	Logs          []DailyLog     `json:"logs"`
	WeightHistory []WeightSample `json:"weight_history"`
	Schedule      MealSchedule   `json:"schedule"`
	PresetFoods   []PresetFood   `json:"preset_foods"`
}

// HasProfile reports whether the dataset went through profile creation.
func (d Dataset) HasProfile() bool {
	return d.Profile != nil && d.Profile.SetupComplete
}

// LogByDate returns the daily log for date and its index, or -1 when the
// dataset holds no log for that date.
func (d Dataset) LogByDate(date string) (DailyLog, int) {
	for i, l := range d.Logs {
		if l.Date == date {
			return l, i
		}
	}
	return DailyLog{Date: date, Meals: []MealLog{}}, -1
}

// PutLog replaces the log with the same date or inserts it, keeping Logs
// ordered by date.
func (d *Dataset) PutLog(log DailyLog) {
	if _, i := d.LogByDate(log.Date); i >= 0 {
		d.Logs[i] = log
		return
	}
	d.Logs = append(d.Logs, log)
	d.sortLogs()
}

// sortLogs orders Logs by date. DateLayout sorts lexically.
func (d *Dataset) sortLogs() {
	sort.SliceStable(d.Logs, func(i, j int) bool {
		return d.Logs[i].Date < d.Logs[j].Date
	})
}

// LatestWeight returns the most recent weight sample. Samples with a
// timestamp are compared by timestamp, others by date.
func (d Dataset) LatestWeight() (WeightSample, bool) {
	if len(d.WeightHistory) == 0 {
		return WeightSample{}, false
	}

	latest := d.WeightHistory[0]
	for _, w := range d.WeightHistory[1:] {
		if newerSample(w, latest) {
			latest = w
		}
	}
	return latest, true
}

func newerSample(a, b WeightSample) bool {
	if a.Timestamp != 0 && b.Timestamp != 0 {
		return a.Timestamp > b.Timestamp
	}
	return a.Date > b.Date
}

// Normalize replaces nil collections with empty ones so that the dataset
// always serializes every top-level field, and orders Logs by date.
func (d *Dataset) Normalize() {
	if d.Logs == nil {
		d.Logs = []DailyLog{}
	}
	d.sortLogs()
	for i := range d.Logs {
		if d.Logs[i].Meals == nil {
			d.Logs[i].Meals = []MealLog{}
		}
	}
	if d.WeightHistory == nil {
		d.WeightHistory = []WeightSample{}
	}
	if d.Schedule == nil {
		d.Schedule = MealSchedule{}
	}
	if d.PresetFoods == nil {
		d.PresetFoods = []PresetFood{}
	}
}

// Clone returns a deep copy of d. Nil and empty collections are preserved
// as they are.
func (d Dataset) Clone() Dataset {
	out := Dataset{}

	if d.Profile != nil {
		p := *d.Profile
		out.Profile = &p
	}

	if d.Logs != nil {
		out.Logs = make([]DailyLog, len(d.Logs))
		for i, l := range d.Logs {
			out.Logs[i] = l.clone()
		}
	}

	if d.WeightHistory != nil {
		out.WeightHistory = make([]WeightSample, len(d.WeightHistory))
		copy(out.WeightHistory, d.WeightHistory)
	}

	if d.Schedule != nil {
		out.Schedule = make(MealSchedule, len(d.Schedule))
		for k, v := range d.Schedule {
			out.Schedule[k] = v
		}
	}

	if d.PresetFoods != nil {
		out.PresetFoods = make([]PresetFood, len(d.PresetFoods))
		copy(out.PresetFoods, d.PresetFoods)
	}

	return out
}

func (l DailyLog) clone() DailyLog {
	out := l
	if l.Weight != nil {
		w := *l.Weight
		out.Weight = &w
	}
	if l.Meals != nil {
		out.Meals = make([]MealLog, len(l.Meals))
		for i, m := range l.Meals {
			if m.Analysis != nil {
				a := *m.Analysis
				m.Analysis = &a
			}
			out.Meals[i] = m
		}
	}
	return out
}

// NewDataset returns an empty, normalized dataset for a profile that is
// about to be created.
func NewDataset() Dataset {
	d := Dataset{Schedule: DefaultMealSchedule()}
	d.Normalize()
	return d
}
