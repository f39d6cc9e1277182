// Package report turns inference answers about one class into a form that
// can be printed: a Report holds one Entry per question asked.
package report

import (
	"objmodel/ast"
	"objmodel/inference"
)

type Report struct {
	Command string  `json:"command"`
	Subject string  `json:"subject"`
	Entries []Entry `json:"entries"`
}

// Entry is the answer for one attribute or one line of an MRO. Error is
// set instead of Values when inference failed.
type Entry struct {
	Name   string      `json:"name"`
	Values []ValueInfo `json:"values,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type ValueInfo struct {
	Repr    string `json:"repr"`
	Display string `json:"display"`
	Type    string `json:"type"`
	Truth   string `json:"truth"`
	Summary string `json:"summary,omitempty"`
}

func describeValue(v inference.Value) ValueInfo {
	return describeValueWithTruth(v, v.BoolValue())
}

// describeValueWithTruth describes v with a truth value the caller already
// inferred.
func describeValueWithTruth(v inference.Value, truth inference.Truth) ValueInfo {
	info := ValueInfo{
		Repr:    v.String(),
		Display: v.DisplayType(),
		Type:    v.Pytype(),
		Truth:   truth.String(),
	}
	if doc := docOf(v); doc != "" {
		info.Summary = ast.FromDocstring(doc).Summary
	}
	return info
}

func docOf(v inference.Value) string {
	switch v := v.(type) {
	case *inference.Module:
		return v.Doc
	case *inference.ClassDef:
		return v.Doc
	case *inference.FunctionDef:
		return v.Doc
	case *inference.UnboundMethod:
		return funcDoc(v.Func)
	case *inference.BoundMethod:
		return funcDoc(v.Func)
	case *inference.Instance:
		return v.Proxied().Doc
	}
	return ""
}

func funcDoc(fn inference.Function) string {
	if f, ok := fn.(*inference.FunctionDef); ok {
		return f.Doc
	}
	return ""
}

func entryFor(name string, values []inference.Value, err error) Entry {
	e := Entry{Name: name}
	for _, v := range values {
		e.Values = append(e.Values, describeValue(v))
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// AttributeNames lists the names Attrs reports when none are asked for:
// the class body bindings, then instance attributes not already listed.
func AttributeNames(cls *inference.ClassDef) []string {
	names := cls.LocalNames()
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range cls.InstanceAttrNames() {
		if !seen[n] {
			names = append(names, n)
		}
	}
	return names
}

// Attrs infers each attribute on an instance of cls. Every attribute gets a
// fresh request from newContext.
func Attrs(cls *inference.ClassDef, names []string, newContext func() *inference.Context) *Report {
	if len(names) == 0 {
		names = AttributeNames(cls)
	}
	r := &Report{Command: "attrs", Subject: cls.Qname()}
	inst := inference.NewInstance(cls)
	for _, name := range names {
		values, err := inference.Collect(inst.Igetattr(name, newContext()))
		r.Entries = append(r.Entries, entryFor(name, values, err))
	}
	return r
}

// MRO lists the linearization of cls, one entry per class.
func MRO(cls *inference.ClassDef, ctx *inference.Context) *Report {
	r := &Report{Command: "mro", Subject: cls.Qname()}
	mro, err := cls.MRO(ctx)
	if err != nil {
		r.Entries = append(r.Entries, Entry{Name: cls.Qname(), Error: err.Error()})
		return r
	}
	for _, c := range mro {
		r.Entries = append(r.Entries, entryFor(c.Qname(), []inference.Value{c}, nil))
	}
	return r
}

// Truth reports the static truth value of an instance of cls.
func Truth(cls *inference.ClassDef, settings *inference.Settings) *Report {
	inst := inference.NewInstance(cls)
	info := describeValueWithTruth(inst, inst.BoolValueWith(settings))
	return &Report{
		Command: "truth",
		Subject: cls.Qname(),
		Entries: []Entry{{Name: "bool", Values: []ValueInfo{info}}},
	}
}

// Super resolves attr through super() called in a method of cls on an
// instance of cls.
func Super(cls *inference.ClassDef, attr string, ctx *inference.Context) *Report {
	s := inference.NewSuper(cls, inference.NewInstance(cls), cls, nil)
	values, err := inference.Collect(s.Igetattr(attr, ctx))
	return &Report{
		Command: "super",
		Subject: cls.Qname(),
		Entries: []Entry{entryFor(attr, values, err)},
	}
}
