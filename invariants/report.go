// Copyright (c) 2023 Colin McRae

package invariants

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/predrag3141/arithinv/approx"
)

var (
	labelStyle  = lipgloss.NewStyle().Bold(true)
	absentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// ReportLine is one line of a Report. A line with an empty Label is a
// statement, such as "Trace field not found."
type ReportLine struct {
	Indent bool
	Label  string
	Value  string
}

// Report is a human-readable summary of the invariants in a Record
type Report struct {
	Lines []ReportLine
}

// Report summarizes the recorded invariants, noting those that are not known.
// The arithmeticity line appears only when it can be decided.
func (m *Manifold) Report() *Report {
	r := &Report{}
	r.add(false, "Orbifold name", m.Name)
	record := m.record
	if record.traceField != nil {
		r.addField("Trace field", record.traceField)
		if record.quaternionAlgebra != nil {
			r.addAlgebra("Quaternion Algebra", record.quaternionAlgebra)
		} else {
			r.add(false, "", "Quaternion algebra not found.")
		}
	} else {
		r.add(false, "", "Trace field not found.")
	}
	if record.invariantTraceField != nil {
		r.addField("Invariant Trace field", record.invariantTraceField)
		if record.invariantQuaternionAlgebra != nil {
			r.addAlgebra("Invariant Quaternion Algebra", record.invariantQuaternionAlgebra)
		} else {
			r.add(false, "", "Invariant quaternion algebra not found.")
		}
	} else {
		r.add(false, "", "Invariant trace field not found.")
	}
	if record.denominators == nil {
		r.add(false, "", "Denominators not found (trace field probably not computed)")
	} else {
		r.add(false, "Integer traces", fmt.Sprint(record.denominators.IsEmpty()))
		if !record.denominators.IsEmpty() {
			r.add(true, "Denominator ideals", formatPrimes(record.denominators.Primes))
			r.add(true, "Denominator Residue Characteristics", formatInts(record.denominators.ResidueCharacteristics))
		}
	}
	if record.traceField != nil && record.invariantQuaternionAlgebra != nil {
		if arithmetic, err := m.IsArithmetic(); err == nil {
			r.add(false, "Arithmetic", fmt.Sprint(arithmetic))
		}
	}
	return r
}

// String renders r as plain text
func (r *Report) String() string {
	return r.render(false)
}

// Render renders r with bold labels and dimmed "not found" lines
func (r *Report) Render() string {
	return r.render(true)
}

func (r *Report) render(styled bool) string {
	var sb strings.Builder
	for _, line := range r.Lines {
		if line.Indent {
			sb.WriteString("\t ")
		}
		switch {
		case line.Label == "" && styled:
			sb.WriteString(absentStyle.Render(line.Value))
		case line.Label == "":
			sb.WriteString(line.Value)
		case styled:
			sb.WriteString(labelStyle.Render(line.Label + ":"))
			sb.WriteString(" " + line.Value)
		default:
			sb.WriteString(line.Label + ": " + line.Value)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *Report) add(indent bool, label, value string) {
	r.Lines = append(r.Lines, ReportLine{Indent: indent, Label: label, Value: value})
}

func (r *Report) addField(label string, fieldData *approx.FieldData) {
	realPlaces, complexPlaces := fieldData.Field.Signature()
	r.add(false, label, fieldData.Field.String())
	r.add(true, "Signature", fmt.Sprintf("(%d, %d)", realPlaces, complexPlaces))
	r.add(true, "Discriminant", fieldData.Field.Discriminant().RatString())
}

func (r *Report) addAlgebra(label string, qa *QuaternionAlgebraInvariant) {
	r.add(false, label, qa.Algebra.String())
	r.add(true, "Finite Ramification", formatPrimes(qa.RamifiedPlaces))
	r.add(true, "Finite Ramification Residue Characteristic", formatInts(qa.ResidueCharacteristics))
	ramified, err := qa.RamifiedRealPlaces()
	if err != nil {
		r.add(true, "Real Ramification", "unknown")
		return
	}
	places := "places"
	if ramified == 1 {
		places = "place"
	}
	r.add(true, "Real Ramification", fmt.Sprintf("%d %s", ramified, places))
}
