package grading

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

var jsonNull = []byte("null")

func isEmpty(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, jsonNull)
}

// unquote returns the document held inside a JSON string, so `"[\"a\"]"` and `["a"]` decode alike.
// Anything that is not a JSON string is returned trimmed and unchanged.
func unquote(raw []byte) []byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return bytes.TrimSpace([]byte(s))
		}
	}
	return raw
}

// decodeInto unmarshals raw (or the document inside it) into v.
func decodeInto(raw []byte, v interface{}) bool {
	body := unquote(raw)
	if isEmpty(body) {
		return false
	}
	return json.Unmarshal(body, v) == nil
}

// scalarString reads a JSON string or number as text.
func scalarString(raw []byte) (string, bool) {
	if isEmpty(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func optionID(raw []byte) (uint, bool) {
	s, ok := scalarString(raw)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// idSet reads either a list of ids or one id into a set of their text forms.
func idSet(raw []byte) (map[string]struct{}, bool) {
	body := bytes.TrimSpace(raw)
	if isEmpty(body) {
		return map[string]struct{}{}, true
	}
	set := make(map[string]struct{})
	if body[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, false
		}
		for _, item := range items {
			s, ok := scalarString(item)
			if !ok {
				return nil, false
			}
			set[s] = struct{}{}
		}
		return set, true
	}
	s, ok := scalarString(body)
	if !ok {
		return nil, false
	}
	set[s] = struct{}{}
	return set, true
}

// freeText turns any submitted value into comparable text.
func freeText(raw []byte) string {
	if isEmpty(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
