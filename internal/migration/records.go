package migration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/utils"
)

// Shape identifies which generation of the on-disk habit record a raw element uses.
type Shape int

const (
	// ShapeCanonical: completions map to {count, totalValue}; targetValue/targetUnit/isArchived.
	ShapeCanonical Shape = iota
	// ShapeCountMap: completions map to a bare count; targetCount instead of targetValue.
	ShapeCountMap
	// ShapeDateList: completedDates lists each day performed once.
	ShapeDateList
)

func (s Shape) String() string {
	switch s {
	case ShapeCanonical:
		return "canonical"
	case ShapeCountMap:
		return "count-map"
	case ShapeDateList:
		return "date-list"
	default:
		return "unknown"
	}
}

// idNamespace seeds deterministic ids for legacy records that never had one.
var idNamespace = uuid.MustParse("6f1c2f9e-3a51-4c1b-9a0e-5d2b8e7c4a10")

// Result summarizes one normalization pass.
type Result struct {
	Shapes  map[Shape]int
	Skipped []int // indexes of elements that were not JSON objects
	Dropped int   // completion days discarded: invalid day keys or counts superseded by completedDates
}

// Upgraded returns how many records were not already canonical.
func (r Result) Upgraded() int {
	return r.Shapes[ShapeCountMap] + r.Shapes[ShapeDateList]
}

// rawRecord holds the fields of one persisted element, undecoded.
type rawRecord map[string]json.RawMessage

func (r rawRecord) has(field string) bool {
	v, ok := r[field]
	return ok && !isNull(v)
}

// Normalize upgrades a persisted habit array, of any historical shape or mix
// of shapes, into canonical records. It never mutates input and is idempotent:
// normalizing the JSON encoding of its output yields the same records.
//
// now is used only as the creation date of records that carry neither a
// creation date nor any completions.
//
// An error is returned only when data is not a JSON array.
func Normalize(data []byte, now time.Time) ([]models.Habit, Result, error) {
	res := Result{Shapes: make(map[Shape]int)}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []models.Habit{}, res, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, res, fmt.Errorf("habit collection is not a JSON array: %w", err)
	}

	habits := make([]models.Habit, 0, len(elems))
	seen := make(map[string]bool, len(elems))
	for i, elem := range elems {
		var rec rawRecord
		if err := json.Unmarshal(elem, &rec); err != nil || rec == nil {
			res.Skipped = append(res.Skipped, i)
			continue
		}

		shape := detectShape(rec)
		res.Shapes[shape]++

		var completions models.Completions
		var dropped int
		switch shape {
		case ShapeDateList:
			completions, dropped = fromDateList(rec)
		case ShapeCountMap:
			completions, dropped = fromCountMap(rec)
		default:
			completions, dropped = fromCanonical(rec)
		}
		res.Dropped += dropped

		h := models.Habit{
			Name:        decodeString(rec["name"]),
			Frequency:   decodeFrequency(rec["frequency"]),
			TargetValue: decodeTarget(rec),
			TargetUnit:  decodeUnit(rec["targetUnit"]),
			Completions: completions,
			IsArchived:  decodeBool(rec["isArchived"]),
		}
		h.CreationDate = decodeCreationDate(rec["creationDate"], completions, now)
		h.ID = decodeID(rec["id"])
		if h.ID == "" || seen[h.ID] {
			h.ID = derivedID(i, h)
		}
		seen[h.ID] = true

		habits = append(habits, h)
	}

	return habits, res, nil
}

// DetectShape classifies one persisted element. Non-object input reports ShapeCanonical.
func DetectShape(elem json.RawMessage) Shape {
	var rec rawRecord
	if err := json.Unmarshal(elem, &rec); err != nil {
		return ShapeCanonical
	}
	return detectShape(rec)
}

// detectShape probes field presence and value types to classify a record.
// completedDates takes priority over every other marker.
func detectShape(rec rawRecord) Shape {
	if rec.has("completedDates") {
		return ShapeDateList
	}
	if rec.has("targetCount") && !rec.has("targetValue") {
		return ShapeCountMap
	}
	for _, v := range decodeCompletionMap(rec["completions"]) {
		if isNumber(v) {
			return ShapeCountMap
		}
	}
	return ShapeCanonical
}

// fromDateList converts the oldest shape. Every listed day becomes one
// completion; a bare count already stored for a listed day is kept as its count.
// Unlisted bare counts are not carried over so the count-map conversion is
// never applied to the same record.
func fromDateList(rec rawRecord) (models.Completions, int) {
	existing := decodeCompletionMap(rec["completions"])
	out := make(models.Completions)
	dropped := 0

	var dates []json.RawMessage
	_ = json.Unmarshal(rec["completedDates"], &dates)
	for _, raw := range dates {
		day := decodeDayKey(decodeString(raw))
		if day == "" {
			dropped++
			continue
		}
		if prev, ok := existing[day]; ok && isNumber(prev) {
			n := decodeCount(prev)
			out[day] = models.CompletionEntry{Count: n, TotalValue: float64(n)}
			continue
		}
		if prev, ok := existing[day]; ok && isObject(prev) {
			out[day] = decodeEntry(prev)
			continue
		}
		out[day] = models.CompletionEntry{Count: 1, TotalValue: 1}
	}

	for key, raw := range existing {
		day := decodeDayKey(key)
		if day == "" {
			dropped++
			continue
		}
		if _, ok := out[day]; ok {
			continue
		}
		if !isObject(raw) {
			dropped++
			continue
		}
		out[day] = decodeEntry(raw)
	}

	return out, dropped
}

// fromCountMap converts bare per-day counts n into {count: n, totalValue: n}.
func fromCountMap(rec rawRecord) (models.Completions, int) {
	out := make(models.Completions)
	dropped := 0
	for key, raw := range decodeCompletionMap(rec["completions"]) {
		day := decodeDayKey(key)
		if day == "" {
			dropped++
			continue
		}
		if isNumber(raw) {
			n := decodeCount(raw)
			out[day] = merge(out[day], models.CompletionEntry{Count: n, TotalValue: float64(n)})
			continue
		}
		out[day] = merge(out[day], decodeEntry(raw))
	}
	return out, dropped
}

func fromCanonical(rec rawRecord) (models.Completions, int) {
	out := make(models.Completions)
	dropped := 0
	for key, raw := range decodeCompletionMap(rec["completions"]) {
		day := decodeDayKey(key)
		if day == "" {
			dropped++
			continue
		}
		out[day] = merge(out[day], decodeEntry(raw))
	}
	return out, dropped
}

// merge combines two entries that ended up on the same calendar day.
func merge(a, b models.CompletionEntry) models.CompletionEntry {
	return models.CompletionEntry{Count: a.Count + b.Count, TotalValue: a.TotalValue + b.TotalValue}
}

func decodeCompletionMap(raw json.RawMessage) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &m) != nil {
		return nil
	}
	return m
}

func decodeEntry(raw json.RawMessage) models.CompletionEntry {
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil {
		return models.CompletionEntry{}
	}
	return models.CompletionEntry{
		Count:      decodeCount(fields["count"]),
		TotalValue: nonNegative(decodeNumber(fields["totalValue"])),
	}
}

// decodeDayKey accepts a canonical day key, or a timestamp whose date part is one.
func decodeDayKey(key string) string {
	key = strings.TrimSpace(key)
	if utils.IsDayKey(key) {
		return key
	}
	if len(key) > len(constants.DateFormat) && utils.IsDayKey(key[:len(constants.DateFormat)]) {
		return key[:len(constants.DateFormat)]
	}
	return ""
}

func decodeTarget(rec rawRecord) float64 {
	var v float64
	switch {
	case rec.has("targetValue"):
		v = decodeNumber(rec["targetValue"])
	case rec.has("targetCount"):
		v = decodeNumber(rec["targetCount"])
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return constants.DefaultTargetValue
	}
	return v
}

func decodeUnit(raw json.RawMessage) models.TargetUnit {
	unit := strings.TrimSpace(decodeString(raw))
	if unit == "" {
		return constants.TargetUnits[0]
	}
	return models.TargetUnit(unit)
}

func decodeFrequency(raw json.RawMessage) models.Frequency {
	f := models.Frequency(strings.ToLower(strings.TrimSpace(decodeString(raw))))
	if models.IsValidFrequency(f) {
		return f
	}
	return models.FrequencyDaily
}

// decodeCreationDate returns the creation instant in UTC. Date-only values are
// anchored at midnight in now's location so their calendar day is preserved.
func decodeCreationDate(raw json.RawMessage, completions models.Completions, now time.Time) time.Time {
	loc := now.Location()
	atMidnight := func(d time.Time) time.Time {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).UTC()
	}

	if isNumber(raw) {
		// Epoch milliseconds
		return time.UnixMilli(int64(decodeNumber(raw))).UTC()
	}
	s := strings.TrimSpace(decodeString(raw))
	if s != "" {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC()
		}
		if d, err := utils.ParseDay(s); err == nil {
			return atMidnight(d)
		}
	}
	keys := make([]string, 0, len(completions))
	for day := range completions {
		keys = append(keys, day)
	}
	if days := utils.SortDays(keys); len(days) > 0 {
		return atMidnight(days[0])
	}
	return now.UTC()
}

// decodeID accepts string ids and the numeric millisecond ids of early versions.
func decodeID(raw json.RawMessage) string {
	if isNumber(raw) {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			if i, err := n.Int64(); err == nil {
				return strconv.FormatInt(i, 10)
			}
			return n.String()
		}
	}
	return strings.TrimSpace(decodeString(raw))
}

func derivedID(index int, h models.Habit) string {
	seed := fmt.Sprintf("%d|%s|%s", index, h.Name, h.CreationDate.UTC().Format(time.RFC3339Nano))
	return uuid.NewSHA1(idNamespace, []byte(seed)).String()
}

func decodeString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func decodeBool(raw json.RawMessage) bool {
	var b bool
	if len(raw) == 0 || json.Unmarshal(raw, &b) != nil {
		return false
	}
	return b
}

func decodeNumber(raw json.RawMessage) float64 {
	var f float64
	if len(raw) == 0 || json.Unmarshal(raw, &f) != nil {
		// Numeric strings were written by some early form handlers
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(decodeString(raw)), 64); err == nil {
			return parsed
		}
		return 0
	}
	return f
}

func decodeCount(raw json.RawMessage) int {
	n := decodeNumber(raw)
	if n <= 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	if n >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isNumber(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return false
	}
	c := t[0]
	return c == '-' || (c >= '0' && c <= '9')
}

func isObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '{'
}
