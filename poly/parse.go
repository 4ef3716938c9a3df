// Copyright (c) 2023 Colin McRae

package poly

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// String formats p in the variable x, highest degree first, e.g.
// "x^2 + 2*x + 5/4"
func (p *Poly) String() string {
	return p.Format("x")
}

// Format formats p in the given variable, highest degree first
func (p *Poly) Format(variable string) string {
	if p.IsZero() {
		return "0"
	}
	var sb strings.Builder
	one := big.NewRat(1, 1)
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		c := p.coeffs[i]
		if c.Sign() == 0 {
			continue
		}
		absC := new(big.Rat).Abs(c)
		switch {
		case sb.Len() == 0 && c.Sign() < 0:
			sb.WriteString("-")
		case sb.Len() > 0 && c.Sign() < 0:
			sb.WriteString(" - ")
		case sb.Len() > 0:
			sb.WriteString(" + ")
		}
		if i == 0 {
			sb.WriteString(absC.RatString())
			continue
		}
		if absC.Cmp(one) != 0 {
			sb.WriteString(absC.RatString())
			sb.WriteString("*")
		}
		sb.WriteString(variable)
		if i > 1 {
			sb.WriteString("^")
			sb.WriteString(strconv.Itoa(i))
		}
	}
	return sb.String()
}

// Parse parses a polynomial in one variable written as a sum of terms like
// "3/2*x^4", "-x", "x^2" and "7". The variable is any single identifier, and
// the first one encountered fixes it; "a^2 + 1" and "x^2 + 1" parse to the same
// polynomial. Whitespace is ignored.
func Parse(s string) (*Poly, error) {
	input := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if input == "" {
		return nil, fmt.Errorf("Parse: empty polynomial")
	}
	terms, err := splitTerms(input)
	if err != nil {
		return nil, fmt.Errorf("Parse: %q: %q", s, err.Error())
	}
	coeffs := map[int]*big.Rat{}
	maxDegree := 0
	variable := ""
	for _, term := range terms {
		c, degree, termVariable, err := parseTerm(term)
		if err != nil {
			return nil, fmt.Errorf("Parse: %q: %q", s, err.Error())
		}
		if termVariable != "" {
			if variable != "" && termVariable != variable {
				return nil, fmt.Errorf("Parse: %q: more than one variable (%s and %s)", s, variable, termVariable)
			}
			variable = termVariable
		}
		if _, ok := coeffs[degree]; !ok {
			coeffs[degree] = new(big.Rat)
		}
		coeffs[degree].Add(coeffs[degree], c)
		if degree > maxDegree {
			maxDegree = degree
		}
	}
	coeffSlice := make([]*big.Rat, maxDegree+1)
	for i := range coeffSlice {
		if c, ok := coeffs[i]; ok {
			coeffSlice[i] = c
		} else {
			coeffSlice[i] = new(big.Rat)
		}
	}
	return New(coeffSlice...), nil
}

// MustParse is like Parse but panics on malformed input. It is intended for
// polynomial literals in code and tests.
func MustParse(s string) *Poly {
	retVal, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return retVal
}

// splitTerms splits input at top-level + and - signs, keeping the sign with
// the term that follows it. A sign right after ^ or * is part of the term.
func splitTerms(input string) ([]string, error) {
	var terms []string
	start := 0
	for i := 1; i < len(input); i++ {
		if input[i] != '+' && input[i] != '-' {
			continue
		}
		if input[i-1] == '^' || input[i-1] == '*' || input[i-1] == '/' {
			continue
		}
		terms = append(terms, input[start:i])
		start = i
	}
	terms = append(terms, input[start:])
	for _, term := range terms {
		if term == "+" || term == "-" || term == "" {
			return nil, fmt.Errorf("dangling sign")
		}
	}
	return terms, nil
}

// parseTerm parses one signed term into its coefficient, degree and variable
func parseTerm(term string) (*big.Rat, int, string, error) {
	sign := int64(1)
	switch term[0] {
	case '-':
		sign = -1
		term = term[1:]
	case '+':
		term = term[1:]
	}

	// Split "coefficient*variable^degree" into its parts
	coefficientStr, monomial := term, ""
	if i := strings.IndexFunc(term, unicode.IsLetter); i >= 0 {
		coefficientStr, monomial = term[:i], term[i:]
		coefficientStr = strings.TrimSuffix(coefficientStr, "*")
	}
	c := big.NewRat(sign, 1)
	if coefficientStr != "" {
		parsed, ok := new(big.Rat).SetString(coefficientStr)
		if !ok {
			return nil, 0, "", fmt.Errorf("malformed coefficient %q", coefficientStr)
		}
		c.Mul(c, parsed)
	}
	if monomial == "" {
		return c, 0, "", nil
	}
	variable, degreeStr, hasDegree := strings.Cut(monomial, "^")
	for _, r := range variable {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return nil, 0, "", fmt.Errorf("malformed variable %q", variable)
		}
	}
	degree := 1
	if hasDegree {
		d, err := strconv.Atoi(degreeStr)
		if err != nil || d < 0 {
			return nil, 0, "", fmt.Errorf("malformed exponent %q", degreeStr)
		}
		degree = d
	}
	return c, degree, variable, nil
}
