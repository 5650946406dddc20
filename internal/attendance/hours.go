package attendance

import (
	"errors"

	"github.com/jonathan/intelliconsult/internal/types"
)

// Hours credited per present day in the monthly view and in the
// per-training totals view.
const (
	MonthlyViewHoursPerDay = 9
	TotalViewHoursPerDay   = 3
)

var (
	// ErrNoAssignments is returned when a person has no assigned trainings.
	ErrNoAssignments = errors.New("no trainings assigned to this user")
	// ErrNoAttendance is returned when a person has no attendance entries.
	ErrNoAttendance = errors.New("no attendance data found for user")
)

// MonthlyHours holds hours per calendar month, index 0 = January.
type MonthlyHours [12]float64

// TrainingHours is the time attended for one assigned training.
type TrainingHours struct {
	TrainingID    string  `json:"trainingId"`
	TrainingName  string  `json:"trainingName"`
	HoursAttended float64 `json:"hoursAttended"`
}

// TotalHours is the per-training breakdown of one person's attendance.
type TotalHours struct {
	UserID     string          `json:"userId"`
	TotalHours float64         `json:"totalHours"`
	Trainings  []TrainingHours `json:"trainings"`
}

// Aggregator computes hour totals from assignment and attendance records.
type Aggregator struct {
	MonthlyHoursPerDay float64
	TotalHoursPerDay   float64
}

// NewAggregator creates an aggregator. Non-positive rates fall back to
// MonthlyViewHoursPerDay and TotalViewHoursPerDay.
func NewAggregator(monthlyPerDay, totalPerDay float64) *Aggregator {
	if monthlyPerDay <= 0 {
		monthlyPerDay = MonthlyViewHoursPerDay
	}
	if totalPerDay <= 0 {
		totalPerDay = TotalViewHoursPerDay
	}
	return &Aggregator{MonthlyHoursPerDay: monthlyPerDay, TotalHoursPerDay: totalPerDay}
}

// MonthlyHours buckets every present day of an assigned training into the
// month of its resolved date. Markers that do not resolve are skipped.
func (a *Aggregator) MonthlyHours(assign *types.TrainingAssignment, att *types.AttendanceRecord) (MonthlyHours, error) {
	var months MonthlyHours
	assigned, err := checkRecords(assign, att)
	if err != nil {
		return months, err
	}

	for _, entry := range att.AttendanceSheet {
		if _, ok := assigned[entry.TrainingID]; !ok {
			continue
		}
		for _, marker := range entry.DaysPresent {
			date, ok := ResolveDate(marker, entry.WeekNo, entry.Year)
			if !ok {
				continue
			}
			months[date.Month()-1] += a.MonthlyHoursPerDay
		}
	}
	return months, nil
}

// TrainingTotals sums present days per assigned training, in the order the
// trainings first appear on the attendance sheet. Names are left empty
// for the caller to fill from the catalog.
func (a *Aggregator) TrainingTotals(assign *types.TrainingAssignment, att *types.AttendanceRecord) ([]TrainingHours, error) {
	assigned, err := checkRecords(assign, att)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var totals []TrainingHours
	for _, entry := range att.AttendanceSheet {
		if _, ok := assigned[entry.TrainingID]; !ok {
			continue
		}
		i, seen := index[entry.TrainingID]
		if !seen {
			i = len(totals)
			index[entry.TrainingID] = i
			totals = append(totals, TrainingHours{TrainingID: entry.TrainingID})
		}
		totals[i].HoursAttended += float64(len(entry.DaysPresent)) * a.TotalHoursPerDay
	}
	return totals, nil
}

func checkRecords(assign *types.TrainingAssignment, att *types.AttendanceRecord) (map[string]struct{}, error) {
	if assign == nil || len(assign.Trainings) == 0 {
		return nil, ErrNoAssignments
	}
	if att == nil || len(att.AttendanceSheet) == 0 {
		return nil, ErrNoAttendance
	}
	return assign.TrainingIDs(), nil
}

// Pending returns the assigned trainings that have no completion record.
func Pending(assign *types.TrainingAssignment, done *types.TrainingCompletion) []types.AssignedTraining {
	if assign == nil {
		return []types.AssignedTraining{}
	}
	completed := make(map[string]struct{})
	if done != nil {
		for _, c := range done.TrainingsCompleted {
			completed[c.TrainingID] = struct{}{}
		}
	}
	pending := make([]types.AssignedTraining, 0, len(assign.Trainings))
	for _, t := range assign.Trainings {
		if _, ok := completed[t.TrainingID]; !ok {
			pending = append(pending, t)
		}
	}
	return pending
}
