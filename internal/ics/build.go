package ics

import (
	"strconv"

	ical "github.com/arran4/golang-ical"
)

const (
	prodID = "-//JameDevOfficial//WebUntisTest//EN"

	// Refresh hints for subscribing clients. The feed is regenerated at
	// most a few times per day, so one day is a sensible poll interval.
	refreshInterval = "P1D"
	publishedTTL    = "P1D"
)

// BuildCalendar renders one event group into a calendar. Events are
// expected in chronological order; the order is preserved verbatim.
func BuildCalendar(name, tzid string, events []Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetMethod(ical.MethodPublish)

	addCalendarProperty(cal, "NAME", name, nil)
	addCalendarProperty(cal, "X-WR-CALNAME", name, nil)
	addCalendarProperty(cal, "X-WR-TIMEZONE", tzid, nil)
	addCalendarProperty(cal, "REFRESH-INTERVAL", refreshInterval, map[string][]string{"VALUE": {"DURATION"}})
	addCalendarProperty(cal, "X-PUBLISHED-TTL", publishedTTL, nil)

	cal.Components = append(cal.Components, timezoneComponent(tzid))

	for _, ev := range events {
		addEvent(cal, ev, tzid)
	}

	return cal
}

func addEvent(cal *ical.Calendar, ev Event, tzid string) {
	event := cal.AddEvent(strconv.Itoa(ev.ID))

	if ev.AllDay {
		// All-day ranges are end exclusive: last covered day + 1
		event.SetProperty(ical.ComponentPropertyDtStart, ev.Start.Format(DateLayout),
			&ical.KeyValues{Key: "VALUE", Value: []string{"DATE"}})
		event.SetProperty(ical.ComponentPropertyDtEnd, ev.End.AddDate(0, 0, 1).Format(DateLayout),
			&ical.KeyValues{Key: "VALUE", Value: []string{"DATE"}})
	} else {
		event.SetProperty(ical.ComponentPropertyDtStart, ev.Start.Format(DateTimeLayout),
			&ical.KeyValues{Key: "TZID", Value: []string{tzid}})
		event.SetProperty(ical.ComponentPropertyDtEnd, ev.End.Format(DateTimeLayout),
			&ical.KeyValues{Key: "TZID", Value: []string{tzid}})
	}

	event.SetLocation(ev.Location)
	event.SetSummary(ev.Summary)
	event.SetDescription(ev.Description)
	event.SetProperty(ical.ComponentProperty("STATUS"), ev.Status)
	event.SetProperty(ical.ComponentProperty("CATEGORIES"), ev.Category)
	event.SetProperty(ical.ComponentProperty("PRIORITY"), strconv.Itoa(ev.Priority))
	if ev.Opaque {
		event.SetProperty(ical.ComponentProperty("TRANSP"), "OPAQUE")
	} else {
		event.SetProperty(ical.ComponentProperty("TRANSP"), "TRANSPARENT")
	}
}

// timezoneComponent builds the fixed VTIMEZONE definition with the
// standard/daylight transition rules of the single named zone all
// event timestamps are tagged with.
func timezoneComponent(tzid string) *ical.GeneralComponent {
	std := &ical.GeneralComponent{Token: "STANDARD"}
	std.Properties = append(std.Properties,
		ianaProperty("TZOFFSETFROM", "+0200", nil),
		ianaProperty("TZOFFSETTO", "+0100", nil),
		ianaProperty("TZNAME", "CET", nil),
		ianaProperty("DTSTART", "19701025T030000", nil),
		ianaProperty("RRULE", "FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU", nil),
	)

	daylight := &ical.GeneralComponent{Token: "DAYLIGHT"}
	daylight.Properties = append(daylight.Properties,
		ianaProperty("TZOFFSETFROM", "+0100", nil),
		ianaProperty("TZOFFSETTO", "+0200", nil),
		ianaProperty("TZNAME", "CEST", nil),
		ianaProperty("DTSTART", "19700329T020000", nil),
		ianaProperty("RRULE", "FREQ=YEARLY;BYMONTH=3;BYDAY=-1SU", nil),
	)

	tz := &ical.GeneralComponent{Token: "VTIMEZONE"}
	tz.Properties = append(tz.Properties, ianaProperty("TZID", tzid, nil))
	tz.Components = append(tz.Components, std, daylight)

	return tz
}

func addCalendarProperty(cal *ical.Calendar, token, value string, params map[string][]string) {
	cal.CalendarProperties = append(cal.CalendarProperties, ical.CalendarProperty{
		BaseProperty: ical.BaseProperty{IANAToken: token, Value: value, ICalParameters: params},
	})
}

func ianaProperty(token, value string, params map[string][]string) ical.IANAProperty {
	return ical.IANAProperty{
		BaseProperty: ical.BaseProperty{IANAToken: token, Value: value, ICalParameters: params},
	}
}
