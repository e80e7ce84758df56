package layout

import (
	"encoding/json"
	"errors"
	"fmt"

	"colony/internal/log"
)

// ErrMalformedInput reports input that is not a structured layout record at
// all. Missing or unknown identifiers inside an otherwise structured record
// never produce this; they surface as unresolved sets on the parsed graph.
var ErrMalformedInput = errors.New("input is not a structured layout record")

// RawPin is one placement entry in the wire format. T is the placement-type
// id, S the optional schematic/commodity id, La/Lo the coordinates.
type RawPin struct {
	T  *int    `json:"T,omitempty"`
	S  *int    `json:"S,omitempty"`
	La float64 `json:"La"`
	Lo float64 `json:"Lo"`

	// invalid marks entries that could not be decoded at all. They keep
	// their position in the sequence so one-based references stay aligned,
	// but the parser skips them and leaves them out of the position map.
	invalid bool
}

// Invalid reports whether the entry failed to decode.
func (p RawPin) Invalid() bool {
	return p.invalid
}

// RawLink is one connectivity entry: one-based source and destination
// positions plus a level.
type RawLink struct {
	S  *int `json:"S,omitempty"`
	D  *int `json:"D,omitempty"`
	Lv int  `json:"Lv"`
}

// RawRoute is one flow entry. Modern records carry explicit S/D endpoints;
// legacy records carry only a path sequence P whose first and last elements
// are the endpoints. T is the commodity id, absent on some exports.
type RawRoute struct {
	S    *int  `json:"S,omitempty"`
	D    *int  `json:"D,omitempty"`
	Path []int `json:"P,omitempty"`
	T    *int  `json:"T,omitempty"`
	Qty  int   `json:"Qty"`
}

// RawRecord is the compact positional description of a layout as it appears
// on the wire. All positional references in Links and Routes are one-based
// indices into the declared Pins order.
type RawRecord struct {
	Pins               []RawPin   `json:"P"`
	Links              []RawLink  `json:"L"`
	Routes             []RawRoute `json:"R"`
	PlanetID           *int       `json:"Pln,omitempty"`
	CommandCenterLevel *int       `json:"CmdCtrLv,omitempty"`
	Diameter           *int       `json:"Diam,omitempty"`
	Comment            string     `json:"Cmt,omitempty"`
}

// Encode serializes the record in the compact wire form.
func (r *RawRecord) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode layout record: %w", err)
	}
	return data, nil
}

// Decode reads a raw layout record from JSON, tolerating damage below the
// top level: a section that is not list-like becomes an empty sequence, an
// entry that cannot be decoded is kept as an invalid placeholder (pins) or
// dropped (links, routes). Only input that is not a JSON object fails.
func Decode(data []byte) (*RawRecord, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	rec := &RawRecord{}

	for _, raw := range decodeSequence(top, "P") {
		var pin RawPin
		if err := json.Unmarshal(raw, &pin); err != nil {
			log.Warn("Placement entry could not be decoded, keeping position as invalid", "error", err)
			pin = RawPin{invalid: true}
		}
		rec.Pins = append(rec.Pins, pin)
	}

	for i, raw := range decodeSequence(top, "L") {
		var link RawLink
		if err := json.Unmarshal(raw, &link); err != nil {
			log.Warn("Dropping connectivity entry that could not be decoded", "entry", i+1, "error", err)
			continue
		}
		rec.Links = append(rec.Links, link)
	}

	for i, raw := range decodeSequence(top, "R") {
		var route RawRoute
		if err := json.Unmarshal(raw, &route); err != nil {
			log.Warn("Dropping flow entry that could not be decoded", "entry", i+1, "error", err)
			continue
		}
		rec.Routes = append(rec.Routes, route)
	}

	decodeField(top, "Pln", &rec.PlanetID)
	decodeField(top, "CmdCtrLv", &rec.CommandCenterLevel)
	decodeField(top, "Diam", &rec.Diameter)

	if raw, ok := top["Cmt"]; ok {
		if err := json.Unmarshal(raw, &rec.Comment); err != nil {
			log.Warn("Ignoring comment field that could not be decoded", "error", err)
		}
	}

	return rec, nil
}

// decodeSequence returns the raw elements of a list-valued section, or nil
// when the section is absent or not list-like.
func decodeSequence(top map[string]json.RawMessage, key string) []json.RawMessage {
	raw, ok := top[key]
	if !ok {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Warn("Section is not list-like, substituting empty sequence", "section", key, "error", err)
		return nil
	}
	return entries
}

func decodeField(top map[string]json.RawMessage, key string, dst **int) {
	raw, ok := top[key]
	if !ok {
		return
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Warn("Ignoring metadata field that could not be decoded", "field", key, "error", err)
		return
	}
	*dst = &v
}
