package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
)

// errUnexpectedShape marks a 2xx body this client could not understand.
var errUnexpectedShape = errors.New("unexpected response shape")

// unwrap normalises a 2xx body. The backend answers in one of three shapes:
// {"success": bool, "data": ..., "message": ...}, {"data": ...}, or the bare
// payload. unwrap returns the payload. {"success": false} is an error even
// with a 2xx status.
func unwrap(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] != '{' {
		if !json.Valid(body) {
			return nil, fmt.Errorf("%w: body is not JSON", errUnexpectedShape)
		}
		return body, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", errUnexpectedShape, err)
	}

	if rawSuccess, ok := fields["success"]; ok {
		var success bool
		if err := json.Unmarshal(rawSuccess, &success); err != nil {
			return nil, fmt.Errorf("%w: success is not a boolean", errUnexpectedShape)
		}
		if !success {
			var msg string
			_ = json.Unmarshal(fields["message"], &msg)
			if msg == "" {
				msg = "backend reported failure"
			}
			return nil, &market.Error{Kind: market.ErrServer, Message: msg}
		}
		if data, ok := fields["data"]; ok {
			return data, nil
		}
		return body, nil
	}

	// {"data": ...} with at most a message beside it is an envelope; an object
	// that merely has a data field among others (pagination) is a payload.
	if data, ok := fields["data"]; ok && len(fields) <= 2 {
		if _, hasMsg := fields["message"]; len(fields) == 1 || hasMsg {
			return data, nil
		}
	}
	return body, nil
}

// errorBody is the union of the error shapes the backend sends.
type errorBody struct {
	Message string
	Code    string
	Fields  map[string][]string
	Points  *int
	Stock   *int
}

func parseErrorBody(body []byte) errorBody {
	var eb errorBody
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		eb.Message = strings.TrimSpace(string(body))
		if len(eb.Message) > 200 {
			eb.Message = eb.Message[:200]
		}
		return eb
	}

	str := func(raw json.RawMessage) string {
		var t text
		if err := json.Unmarshal(raw, &t); err != nil {
			return ""
		}
		return string(t)
	}
	eb.Message = firstText(text(str(fields["message"])), text(str(fields["error"])))
	eb.Code = firstText(text(str(fields["code"])), text(str(fields["error_code"])))

	if raw, ok := fields["errors"]; ok {
		eb.Fields = parseFieldErrors(raw)
	}

	// Claim rejections may report the actor's balance or remaining stock,
	// at the top level or inside data.
	lookups := []map[string]json.RawMessage{fields}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(fields["data"], &data); err == nil {
		lookups = append(lookups, data)
	}
	for _, m := range lookups {
		if eb.Points == nil {
			eb.Points = optionalNum(m, "poin", "points", "POIN_PEMBELI", "current_points")
		}
		if eb.Stock == nil {
			eb.Stock = optionalNum(m, "stok", "stock", "JUMLAH", "current_stock")
		}
	}
	return eb
}

// parseFieldErrors reads Laravel's {"field": ["msg", ...]} (or "msg").
func parseFieldErrors(raw json.RawMessage) map[string][]string {
	var multi map[string][]string
	if err := json.Unmarshal(raw, &multi); err == nil {
		return multi
	}
	var single map[string]string
	if err := json.Unmarshal(raw, &single); err == nil {
		out := make(map[string][]string, len(single))
		for k, v := range single {
			out[k] = []string{v}
		}
		return out
	}
	return nil
}

func optionalNum(m map[string]json.RawMessage, keys ...string) *int {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), null) {
			continue
		}
		var n num
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.ptr()
		}
	}
	return nil
}

// statusError maps a non-2xx response onto the error taxonomy.
func statusError(area Area, status int, body []byte) *market.Error {
	eb := parseErrorBody(body)
	e := &market.Error{
		Area:    string(area),
		Status:  status,
		Message: eb.Message,
		Code:    eb.Code,
		Fields:  eb.Fields,
		Points:  eb.Points,
		Stock:   eb.Stock,
	}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = market.ErrUnauthorized
	case status == http.StatusNotFound:
		e.Kind = market.ErrNotFound
	case status >= 400 && status < 500:
		e.Kind = market.ErrValidation
	default:
		e.Kind = market.ErrServer
	}
	return e
}
