package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// DayMarkerKind tells how a DayMarker value is interpreted.
type DayMarkerKind string

// DayMarkerKind values
const (
	DayMarkerWeekday DayMarkerKind = "weekday"
	DayMarkerDate    DayMarkerKind = "date"
)

// DayMarker records presence on one day of an attendance week. A weekday
// marker names a day ("Monday".."Sunday") of the entry's ISO week; a date
// marker carries a literal calendar date.
type DayMarker struct {
	Kind  DayMarkerKind `json:"kind" bson:"kind"`
	Value string        `json:"value" bson:"value"`
}

// dayMarkerDoc has the DayMarker layout without its custom codecs.
type dayMarkerDoc struct {
	Kind  DayMarkerKind `json:"kind" bson:"kind"`
	Value string        `json:"value" bson:"value"`
}

// ParseDayMarker converts the untagged legacy form. Strings containing a
// hyphen are dates; everything else is taken as a weekday name.
func ParseDayMarker(raw string) DayMarker {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "-") {
		return DayMarker{Kind: DayMarkerDate, Value: raw}
	}
	return DayMarker{Kind: DayMarkerWeekday, Value: raw}
}

// Weekday returns a weekday marker.
func Weekday(name string) DayMarker {
	return DayMarker{Kind: DayMarkerWeekday, Value: name}
}

// Date returns a date marker.
func Date(value string) DayMarker {
	return DayMarker{Kind: DayMarkerDate, Value: value}
}

// MarshalJSON always writes the tagged form.
func (m DayMarker) MarshalJSON() ([]byte, error) {
	return json.Marshal(dayMarkerDoc(m))
}

// UnmarshalJSON accepts both the tagged object and a bare legacy string.
func (m *DayMarker) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*m = ParseDayMarker(raw)
		return nil
	}

	var doc dayMarkerDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("day marker must be a string or {kind, value} object: %w", err)
	}
	return m.setTagged(doc)
}

// UnmarshalBSONValue accepts documents written by older clients that stored
// daysPresent as plain strings.
func (m *DayMarker) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	if s, ok := raw.StringValueOK(); ok {
		*m = ParseDayMarker(s)
		return nil
	}

	var doc dayMarkerDoc
	if err := raw.Unmarshal(&doc); err != nil {
		return fmt.Errorf("failed to decode day marker: %w", err)
	}
	return m.setTagged(doc)
}

func (m *DayMarker) setTagged(doc dayMarkerDoc) error {
	switch doc.Kind {
	case DayMarkerWeekday, DayMarkerDate:
		*m = DayMarker(doc)
		return nil
	case "":
		*m = ParseDayMarker(doc.Value)
		return nil
	default:
		return fmt.Errorf("unknown day marker kind %q", doc.Kind)
	}
}

// AttendanceEntry is one week of presence markers for one training.
type AttendanceEntry struct {
	TrainingID       string      `json:"trainingId" bson:"trainingId" validate:"required,uuid"`
	WeekNo           int         `json:"weekNo" bson:"weekNo" validate:"gte=1,lte=53"`
	Year             int         `json:"year" bson:"year" validate:"gte=1970,lte=9999"`
	TotalDaysInWeek  int         `json:"totalDaysInWeek" bson:"totalDaysInWeek" validate:"gte=0,lte=7"`
	DaysPresent      []DayMarker `json:"daysPresent" bson:"daysPresent"`
	TrainingAttended bool        `json:"trainingAttended" bson:"trainingAttended"`
}

// AttendanceRecord holds every attendance entry of one person.
type AttendanceRecord struct {
	UserID          string            `json:"userId" bson:"userId"`
	AttendanceSheet []AttendanceEntry `json:"attendanceSheet" bson:"attendanceSheet"`
}

// AddAttendanceRequest appends entries to a person's attendance sheet.
type AddAttendanceRequest struct {
	Entries []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}
