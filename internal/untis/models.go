package untis

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Element type discriminators used by the weekly data payload.
const (
	ElementTypeCourse = 3
	ElementTypeRoom   = 4
)

// UntisDate is a calendar date in the WebUntis wire encoding.
// The API returns dates inconsistently:
// - Usually as number: 20230904
// - Occasionally as string: "20230904"
// This type accepts both and always renders the zero-padded yyyyMMdd form.
type UntisDate int

// UnmarshalJSON implements json.Unmarshaler for UntisDate
func (d *UntisDate) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*d = UntisDate(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("UntisDate: cannot parse %q", s)
		}
		*d = UntisDate(parsed)
		return nil
	}

	return fmt.Errorf("UntisDate: cannot unmarshal %s", string(b))
}

// String returns the zero-padded yyyyMMdd representation
func (d UntisDate) String() string {
	return fmt.Sprintf("%08d", int(d))
}

// UntisTime is a wall-clock time in the WebUntis wire encoding.
// 07:45 arrives as the number 745; rendering must restore the leading
// zero so the HHmm form is always exactly four digits.
type UntisTime int

// UnmarshalJSON implements json.Unmarshaler for UntisTime
func (t *UntisTime) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*t = UntisTime(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("UntisTime: cannot parse %q", s)
		}
		*t = UntisTime(parsed)
		return nil
	}

	return fmt.Errorf("UntisTime: cannot unmarshal %s", string(b))
}

// String returns the zero-padded HHmm representation
func (t UntisTime) String() string {
	return fmt.Sprintf("%04d", int(t))
}

// RawElement is one entry of the flat reference element list. Type 4
// elements are rooms, type 3 elements are courses; other types are
// ignored by the converter.
type RawElement struct {
	Type          int    `json:"type"`
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LongName      string `json:"longName"`
	DisplayName   string `json:"displayname"`
	AlternateName string `json:"alternatename"`
	RoomCapacity  int    `json:"roomCapacity"`
}

// RawElementRef is a period-level reference to an element of the flat
// list, with per-period overlay fields.
type RawElementRef struct {
	Type    int    `json:"type"`
	ID      int    `json:"id"`
	OrgID   int    `json:"orgId"`
	Missing bool   `json:"missing"`
	State   string `json:"state"`
}

// RawReschedule is the optional reschedule block of a period record
type RawReschedule struct {
	Date      UntisDate `json:"date"`
	StartTime UntisTime `json:"startTime"`
	EndTime   UntisTime `json:"endTime"`
	IsSource  bool      `json:"isSource"`
}

// RawIsFlags carries the boolean facts of a period record
type RawIsFlags struct {
	Standard  bool `json:"standard"`
	Cancelled bool `json:"cancelled"`
	Event     bool `json:"event"`
}

// RawPeriod is one period record as returned by the weekly data endpoint
type RawPeriod struct {
	ID           int             `json:"id"`
	LessonID     int             `json:"lessonId"`
	LessonNumber int             `json:"lessonNumber"`
	LessonCode   string          `json:"lessonCode"`
	LessonText   string          `json:"lessonText"`
	PeriodText   string          `json:"periodText"`
	SubstText    string          `json:"substText"`
	Date         UntisDate       `json:"date"`
	StartTime    UntisTime       `json:"startTime"`
	EndTime      UntisTime       `json:"endTime"`
	Elements     []RawElementRef `json:"elements"`
	StudentGroup string          `json:"studentGroup"`
	Code         int             `json:"code"`
	CellState    string          `json:"cellState"`
	Priority     *int            `json:"priority,omitempty"` // nil when the source omits it
	Is           RawIsFlags      `json:"is"`
	RoomCapacity int             `json:"roomCapacity"`
	StudentCount int             `json:"studentCount"`
	Reschedule   *RawReschedule  `json:"rescheduleInfo,omitempty"`
}

// TimetableData is the result facet of one weekly fetch: the flat
// element list plus the period records keyed by element identifier.
type TimetableData struct {
	Elements       []RawElement           `json:"elements"`
	ElementPeriods map[string][]RawPeriod `json:"elementPeriods"`
}

// Periods returns the period records for the given element identifier
func (d *TimetableData) Periods(elementID int) []RawPeriod {
	if d.ElementPeriods == nil {
		return nil
	}
	return d.ElementPeriods[strconv.Itoa(elementID)]
}

// APIError is the error facet of a weekly data response. Its presence
// aborts the remaining fetches of the batch.
type APIError struct {
	Code int `json:"code"`
	Data struct {
		MessageKey string `json:"messageKey"`
	} `json:"data"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("untis service error %d: %s", e.Code, e.Data.MessageKey)
}

// weeklyDataResponse is the envelope of the weekly data endpoint
type weeklyDataResponse struct {
	Data struct {
		Result *struct {
			Data                TimetableData `json:"data"`
			LastImportTimestamp int64         `json:"lastImportTimestamp"`
		} `json:"result"`
		Error *APIError `json:"error"`
	} `json:"data"`
}

// rpcRequest is a JSON-RPC 2.0 request envelope for the session API
type rpcRequest struct {
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	JSONRPC string      `json:"jsonrpc"`
}

// rpcError is a JSON-RPC error object
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *rpcError) Error() string {
	return fmt.Sprintf("untis rpc error %d: %s", e.Code, e.Message)
}

// authParams are the parameters of the authenticate method
type authParams struct {
	User     string `json:"user"`
	Password string `json:"password"`
	Client   string `json:"client"`
}

// authResult is the result of the authenticate method
type authResult struct {
	SessionID  string `json:"sessionId"`
	PersonType int    `json:"personType"`
	PersonID   int    `json:"personId"`
}

// rpcResponse is a JSON-RPC 2.0 response envelope
type rpcResponse struct {
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
	JSONRPC string          `json:"jsonrpc"`
}
