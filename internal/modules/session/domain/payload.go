package domain

import (
	"net/url"
	"strconv"
	"strings"
)

type PayloadField struct {
	Key   string
	Value string
}

// Payload is the flattened record the collector stores as one spreadsheet
// submission. Field order is sessionId, name, numRows, the schema's question
// ids, then ambient{i}, bird{i}, behavior{i} for every valid reading.
type Payload struct {
	SessionID string
	Fields    []PayloadField
}

func BuildPayload(sessionID, name string, schema Schema, answers Answers, readings []Reading) Payload {
	valid := ValidReadings(readings)
	fields := make([]PayloadField, 0, 3+len(schema.Questions)+3*len(valid))
	fields = append(fields,
		PayloadField{Key: "sessionId", Value: sessionID},
		PayloadField{Key: "name", Value: name},
		PayloadField{Key: "numRows", Value: strconv.Itoa(len(valid))},
	)
	for _, q := range schema.Questions {
		fields = append(fields, PayloadField{Key: q.ID, Value: answers.Wire(q)})
	}
	for i, r := range valid {
		suffix := strconv.Itoa(i)
		fields = append(fields,
			PayloadField{Key: "ambient" + suffix, Value: r.Ambient.String()},
			PayloadField{Key: "bird" + suffix, Value: r.Bird.String()},
			PayloadField{Key: "behavior" + suffix, Value: string(r.Behavior)},
		)
	}
	return Payload{SessionID: sessionID, Fields: fields}
}

func (p Payload) Get(key string) (string, bool) {
	for _, f := range p.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

func (p Payload) NumRows() int {
	v, _ := p.Get("numRows")
	n, _ := strconv.Atoi(v)
	return n
}

// Encode renders the fields as application/x-www-form-urlencoded in payload
// order. url.Values would sort the keys.
func (p Payload) Encode() string {
	var sb strings.Builder
	for i, f := range p.Fields {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(f.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(f.Value))
	}
	return sb.String()
}

func (p Payload) Map() map[string]string {
	out := make(map[string]string, len(p.Fields))
	for _, f := range p.Fields {
		out[f.Key] = f.Value
	}
	return out
}

// Receipt is what the collector answered. Fire-and-forget transports leave
// Status empty.
type Receipt struct {
	HTTPStatus int
	Status     string
	Message    string
}
