package orrery

// Calendar is a synthetic, non-wallclock breakdown of simulated time into
// years/days/hours/minutes/seconds using a fixed 60/60/24/365 rollover
// (§4.5). It is derived entirely from t_sim and carries no relation to
// time.Time or any real calendar.
type Calendar struct {
	Years, Days, Hours, Minutes int
	Seconds                     float64
}

// calendarFromSeconds rolls tSim (total elapsed simulated seconds) up into
// a Calendar, largest unit last so that Seconds keeps its fractional part.
func calendarFromSeconds(tSim float64) Calendar {
	totalSeconds := int64(tSim)
	frac := tSim - float64(totalSeconds)

	totalMinutes := totalSeconds / secondsPerMinute
	seconds := totalSeconds % secondsPerMinute

	totalHours := totalMinutes / minutesPerHour
	minutes := totalMinutes % minutesPerHour

	totalDays := totalHours / hoursPerDay
	hours := totalHours % hoursPerDay

	years := totalDays / daysPerYear
	days := totalDays % daysPerYear

	return Calendar{
		Years:   int(years),
		Days:    int(days),
		Hours:   int(hours),
		Minutes: int(minutes),
		Seconds: float64(seconds) + frac,
	}
}
