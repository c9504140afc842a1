package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field names of a serialized record
const (
	FieldSource        = "archivo"
	FieldDate          = "fecha"
	FieldTime          = "hora"
	FieldTotalRooms    = "total_habitaciones"
	FieldTotalProducts = "total_productos"
	FieldTotalSales    = "total_ventas"

	countSuffix = "_cant"
	valueSuffix = "_valor"
)

// CountField returns the field name holding the quantity of a category
func CountField(key string) string { return key + countSuffix }

// ValueField returns the field name holding the amount of a category
func ValueField(key string) string { return key + valueSuffix }

// CategoryTotal accumulates the matched lines of one category
type CategoryTotal struct {
	Key   string
	Count int
	Value int
}

// Record is the data extracted from one receipt
type Record struct {
	Source        string
	Date          string // DD-MM-YYYY or DD/MM/YYYY
	Time          string // HH:MM:SS
	TotalRooms    int
	TotalProducts int
	TotalSales    int
	Categories    []CategoryTotal
}

// Field is a single name/value pair of a flattened record
type Field struct {
	Name  string
	Value any
}

// Category returns the totals for key
func (r Record) Category(key string) (CategoryTotal, bool) {
	for _, c := range r.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return CategoryTotal{}, false
}

// Fields flattens the record: fixed fields first, then count and value of
// every category in table order.
func (r Record) Fields() []Field {
	fields := make([]Field, 0, 6+2*len(r.Categories))
	fields = append(fields,
		Field{FieldSource, r.Source},
		Field{FieldDate, r.Date},
		Field{FieldTime, r.Time},
		Field{FieldTotalRooms, r.TotalRooms},
		Field{FieldTotalProducts, r.TotalProducts},
		Field{FieldTotalSales, r.TotalSales},
	)
	for _, c := range r.Categories {
		fields = append(fields,
			Field{CountField(c.Key), c.Count},
			Field{ValueField(c.Key), c.Value},
		)
	}
	return fields
}

// Map returns the flattened record keyed by field name
func (r Record) Map() map[string]any {
	fields := r.Fields()
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Name] = f.Value
	}
	return m
}

// MarshalJSON writes the record as a flat object in field order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat record. Categories keep the order in which
// their fields first appear; unknown fields are ignored.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	out := Record{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var target any
		switch name {
		case FieldSource:
			target = &out.Source
		case FieldDate:
			target = &out.Date
		case FieldTime:
			target = &out.Time
		case FieldTotalRooms:
			target = &out.TotalRooms
		case FieldTotalProducts:
			target = &out.TotalProducts
		case FieldTotalSales:
			target = &out.TotalSales
		default:
			key, isCount, ok := splitCategoryField(name)
			if !ok {
				var skip json.RawMessage
				if err := dec.Decode(&skip); err != nil {
					return err
				}
				continue
			}
			i, seen := index[key]
			if !seen {
				i = len(out.Categories)
				index[key] = i
				out.Categories = append(out.Categories, CategoryTotal{Key: key})
			}
			if isCount {
				target = &out.Categories[i].Count
			} else {
				target = &out.Categories[i].Value
			}
		}
		if err := dec.Decode(target); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = out
	return nil
}

func splitCategoryField(name string) (key string, isCount bool, ok bool) {
	if k, found := strings.CutSuffix(name, countSuffix); found && k != "" {
		return k, true, true
	}
	if k, found := strings.CutSuffix(name, valueSuffix); found && k != "" {
		return k, false, true
	}
	return "", false, false
}

// Result pairs a record with the failure, if any, hit while building it
type Result struct {
	Record Record  `json:"resultado"`
	Error  *string `json:"error"`
}

// NewResult builds a Result from the output of Engine.Process
func NewResult(rec Record, err error) Result {
	res := Result{Record: rec}
	if err != nil {
		msg := err.Error()
		res.Error = &msg
	}
	return res
}
