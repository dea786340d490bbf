package view

import (
	"encoding/json"
	"time"

	"github.com/fatih/color"

	"github.com/bundleplan/bundleplan/pkg/plan"
)

type ResolveView interface {
	Render(result ResolveResult)
}

// ResolveResult is the view model of one resolution pass.
type ResolveResult struct {
	File    string
	Outcome string
	Errors  []string
	Plan    *plan.Plan
}

func (r ResolveResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Human view implementation.

type resolveHumanView struct {
	*HumanView
}

func newResolveHumanView(hv *HumanView) *resolveHumanView {
	return &resolveHumanView{HumanView: hv}
}

func (v *resolveHumanView) Render(result ResolveResult) {
	if result.HasErrors() {
		v.Println(color.RGB(229, 50, 50).Sprintf("%s!", result.Outcome), result.File+":")
		for _, e := range result.Errors {
			v.Println("  -", e)
		}
		return
	}

	data, err := result.Plan.Marshal()
	if err != nil {
		v.Println(color.RGB(229, 50, 50).Sprintf("Error!"), err.Error())
		return
	}
	v.Printf("%s", data)
}

// JSON view implementation.

type resolveJSONView struct {
	*JSONView
}

func newResolveJSONView(jv *JSONView) *resolveJSONView {
	return &resolveJSONView{JSONView: jv}
}

type resolveJSONResult struct {
	Type      string     `json:"type"`
	Status    string     `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	File      string     `json:"file"`
	Outcome   string     `json:"outcome"`
	Errors    []string   `json:"errors,omitempty"`
	Plan      *plan.Plan `json:"plan,omitempty"`
}

func (v *resolveJSONView) Render(result ResolveResult) {
	out := resolveJSONResult{
		Type:      "resolve",
		Timestamp: time.Now(),
		File:      result.File,
		Outcome:   result.Outcome,
	}

	if result.HasErrors() {
		out.Status = "error"
		out.Errors = result.Errors
	} else {
		out.Status = "success"
		out.Plan = result.Plan
	}

	if data, err := json.Marshal(out); err == nil {
		v.Println(string(data))
	}
}

func NewResolveView(v Viewer) ResolveView {
	switch vt := v.(type) {
	case *HumanView:
		return newResolveHumanView(vt)
	case *JSONView:
		return newResolveJSONView(vt)
	default:
		panic("unknown view type")
	}
}
