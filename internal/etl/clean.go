package etl

import (
	"time"

	"github.com/cityretail/cityretail-etl/internal/logging"
	"github.com/cityretail/cityretail-etl/internal/model"
)

// StandardizeCityNames left-joins store rows to the city lookup on the
// raw city spelling. A store whose city has no mapping keeps its row
// with a nil city; it is logged, never dropped. The output always has
// exactly as many rows as the input.
func StandardizeCityNames(stores []model.RawStore, lookup []model.CityMapping) []model.Store {
	mapping := make(map[string]string, len(lookup))
	for _, m := range lookup {
		mapping[m.RawCity] = m.StandardCity
	}

	cleaned := make([]model.Store, 0, len(stores))
	unmapped := 0
	for _, s := range stores {
		row := model.Store{
			StoreID:   s.StoreID,
			StoreName: s.StoreName,
			Region:    s.Region,
		}
		if std, ok := mapping[s.City]; ok {
			row.City = &std
		} else {
			unmapped++
			logging.Warn().
				Int64("storeid", s.StoreID).
				Str("storename", s.StoreName).
				Str("region", s.Region).
				Str("rawcity", s.City).
				Msg("City could not be standardized")
		}
		cleaned = append(cleaned, row)
	}

	if unmapped > 0 {
		logging.Warn().Int("count", unmapped).Msg("Some cities could not be standardized")
	}
	return cleaned
}

// Source systems are inconsistent about date formats; anything outside
// these layouts becomes a null date.
var calendarLayouts = []string{
	model.DateLayout,
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

// ParseCalendarDates parses the raw calendar dates and derives the ISO
// week number and weekend flag. An unparsable date coerces to nil and
// leaves both derived fields nil; the row is kept and a warning logged.
func ParseCalendarDates(calendar []model.RawCalendar) []model.Calendar {
	cleaned := make([]model.Calendar, 0, len(calendar))
	failed := 0
	for _, c := range calendar {
		row := model.Calendar{DateID: c.DateID}

		if t, ok := parseDate(c.Date); ok {
			row.Date = model.NewDate(t)
			_, week := t.ISOWeek()
			weekend := t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
			row.WeekNumber = &week
			row.IsWeekend = &weekend
		} else {
			failed++
		}
		cleaned = append(cleaned, row)
	}

	if failed > 0 {
		logging.Warn().Int("count", failed).Msg("Some calendar dates could not be parsed")
	}
	return cleaned
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range calendarLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CoerceSales converts raw sales rows into fact rows, coercing each
// date key to its integer representation. A non-numeric date key is a
// type mismatch the warehouse would reject, so it fails the batch.
func CoerceSales(sales []model.RawSale) ([]model.Sale, error) {
	cleaned := make([]model.Sale, 0, len(sales))
	for _, s := range sales {
		dateID, err := model.CoerceDateID(s.DateID)
		if err != nil {
			return nil, err
		}
		cleaned = append(cleaned, model.Sale{
			SalesID:   s.SalesID,
			DateID:    dateID,
			ProductID: s.ProductID,
			StoreID:   s.StoreID,
			Quantity:  s.Quantity,
			Revenue:   s.Revenue,
		})
	}
	return cleaned, nil
}
