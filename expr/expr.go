// Package expr resolves authored numeric formulas. Every scalar in content is
// a Number: either a literal or a tengo expression evaluated once against an
// ordered list of symbol tables.
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Scope is one level of named symbols.
type Scope map[string]float64

// Scopes is ordered outermost first. Inner scopes shadow outer ones.
type Scopes []Scope

// With returns a copy of s with inner appended as the innermost scope.
func (s Scopes) With(inner Scope) Scopes {
	out := make(Scopes, 0, len(s)+1)
	out = append(out, s...)
	return append(out, inner)
}

// Flatten merges every scope into one table.
func (s Scopes) Flatten() map[string]float64 {
	merged := make(map[string]float64)
	for _, scope := range s {
		for name, v := range scope {
			merged[name] = v
		}
	}
	return merged
}

const resultVar = "__result"

// reserved names can not be shadowed by symbols.
var reserved = map[string]bool{"math": true, resultVar: true}

// Eval evaluates a single formula. The tengo math module is available as
// `math`, so formulas may use math.pi, math.sin and friends.
func Eval(src string, scopes ...Scope) (float64, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return 0, fmt.Errorf("empty formula")
	}
	if v, err := strconv.ParseFloat(src, 64); err == nil {
		return v, nil
	}

	script := tengo.NewScript([]byte("math := import(\"math\")\n" + resultVar + " := float(" + src + ")"))
	script.SetImports(stdlib.GetModuleMap("math"))
	for name, v := range Scopes(scopes).Flatten() {
		if reserved[name] {
			continue
		}
		if err := script.Add(name, v); err != nil {
			return 0, fmt.Errorf("symbol %s: %w", name, err)
		}
	}

	compiled, err := script.Run()
	if err != nil {
		return 0, fmt.Errorf("formula %q: %w", src, err)
	}
	result := compiled.Get(resultVar)
	if result.ValueType() != "float" {
		return 0, fmt.Errorf("formula %q does not evaluate to a number", src)
	}
	return result.Float(), nil
}

// Number is an authored scalar. The zero value is the literal 0.
type Number struct {
	Src string

	value    float64
	resolved bool
}

// Lit returns an already resolved Number.
func Lit(v float64) Number {
	return Number{Src: strconv.FormatFloat(v, 'g', -1, 64), value: v, resolved: true}
}

// F returns an unresolved formula.
func F(src string) Number {
	return Number{Src: src}
}

// Compile resolves the formula against scopes.
func (n *Number) Compile(scopes ...Scope) error {
	if n.Src == "" {
		n.value, n.resolved = 0, true
		return nil
	}
	v, err := Eval(n.Src, scopes...)
	if err != nil {
		return err
	}
	n.value, n.resolved = v, true
	return nil
}

// Resolved reports whether Value may be called.
func (n Number) Resolved() bool {
	return n.resolved || n.Src == ""
}

// Value returns the compiled value. Reading an uncompiled formula is a
// programming error.
func (n Number) Value() float64 {
	if !n.Resolved() {
		panic("expr: formula " + strconv.Quote(n.Src) + " read before compilation")
	}
	return n.value
}

// Int returns the value truncated toward zero.
func (n Number) Int() int {
	return int(n.Value())
}

func (n Number) String() string {
	if n.Src == "" {
		return "0"
	}
	return n.Src
}
