package planning

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// facilityHolidayCalendar holds the US federal holidays most shipping and
// receiving facilities observe, used to flag pickup and dropoff dates.
type facilityHolidayCalendar struct {
	calendar *cal.BusinessCalendar
}

// makeFacilityHolidayCalendar builds facilityHolidayCalendar
func makeFacilityHolidayCalendar() *facilityHolidayCalendar {
	calendar := cal.NewBusinessCalendar()
	calendar.AddHoliday(
		us.NewYear,
		us.MlkDay,
		us.MemorialDay,
		us.IndependenceDay,
		us.LaborDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
		us.Juneteenth,
	)
	return &facilityHolidayCalendar{calendar: calendar}
}

// holidayName returns the name of the holiday observed on at, if any.
func (f *facilityHolidayCalendar) holidayName(at time.Time) (string, bool) {
	actual, observed, holiday := f.calendar.IsHoliday(at)
	if (actual || observed) && holiday != nil {
		return holiday.Name, true
	}
	return "", false
}
