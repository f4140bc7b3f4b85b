package websocket

import (
	"encoding/json"
	"errors"
	"strings"
)

// Frame is one outbound event plus the tags clients filter on
type Frame struct {
	Category   string          `json:"category"`
	IsFallback bool            `json:"is_fallback"`
	Data       json.RawMessage `json:"data"`
}

// Filter narrows the stream a client receives. The zero value passes everything.
type Filter struct {
	Categories   map[string]struct{}
	FallbackOnly bool
}

func (f *Filter) matches(frame Frame) bool {
	if f == nil {
		return true
	}
	if f.FallbackOnly && !frame.IsFallback {
		return false
	}
	if len(f.Categories) == 0 {
		return true
	}
	_, ok := f.Categories[frame.Category]
	return ok
}

// subscribeRequest is the only message clients may send:
//
//	{"action":"subscribe","categories":["emotional_query"],"fallback_only":false}
//
// An empty category list clears the category filter.
type subscribeRequest struct {
	Action       string   `json:"action"`
	Categories   []string `json:"categories"`
	FallbackOnly bool     `json:"fallback_only"`
}

var errUnknownAction = errors.New("unknown action")

func parseFilter(raw []byte) (*Filter, error) {
	var req subscribeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if req.Action != "subscribe" {
		return nil, errUnknownAction
	}

	f := &Filter{FallbackOnly: req.FallbackOnly}
	for _, cat := range req.Categories {
		cat = strings.TrimSpace(cat)
		if cat == "" {
			continue
		}
		if f.Categories == nil {
			f.Categories = make(map[string]struct{}, len(req.Categories))
		}
		f.Categories[cat] = struct{}{}
	}
	return f, nil
}
