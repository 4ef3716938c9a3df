// Copyright (c) 2023 Colin McRae

// Package holonomy evaluates words in the generators of a holonomy group as
// 2x2 complex matrices and derives from them the approximate algebraic numbers
// whose recognition yields the arithmetic invariants: traces generating the
// trace field and the invariant trace field, and the entries of Hilbert symbols.
package holonomy

import (
	"fmt"
	"strings"
	"unicode"
)

// Word is a word in the generators of a group. Generator i is the letter
// 'a'+i and its inverse is the corresponding upper case letter. The empty word
// is the identity.
type Word string

// maxGenerators is the number of letters available for generators
const maxGenerators = 26

// Validate returns an error if w contains a letter other than the first
// numGenerators generators and their inverses
func (w Word) Validate(numGenerators int) error {
	if numGenerators < 0 || numGenerators > maxGenerators {
		return fmt.Errorf("Word.Validate: %d generators is not in [0, %d]", numGenerators, maxGenerators)
	}
	for _, r := range w {
		index, _, ok := letterIndex(r)
		if !ok || index >= numGenerators {
			return fmt.Errorf("Word.Validate: %q is not a generator or inverse in %q", r, string(w))
		}
	}
	return nil
}

// Inverse returns the inverse of w
func (w Word) Inverse() Word {
	runes := []rune(string(w))
	retVal := make([]rune, len(runes))
	for i, r := range runes {
		retVal[len(runes)-1-i] = invertLetter(r)
	}
	return Word(retVal)
}

// Reduce returns w with adjacent inverse pairs cancelled
func (w Word) Reduce() Word {
	stack := make([]rune, 0, len(w))
	for _, r := range w {
		if len(stack) > 0 && stack[len(stack)-1] == invertLetter(r) {
			stack = stack[:len(stack)-1]
			continue
		}
		stack = append(stack, r)
	}
	return Word(stack)
}

// Substitute returns w with every letter repeated power times, i.e. the image
// of w under the map sending each generator g to g^power
func (w Word) Substitute(power int) Word {
	var sb strings.Builder
	for _, r := range w {
		for i := 0; i < power; i++ {
			sb.WriteRune(r)
		}
	}
	return Word(sb.String())
}

// Commutator returns the word g h g^-1 h^-1
func Commutator(g, h Word) Word {
	return g + h + g.Inverse() + h.Inverse()
}

// Generator returns the word consisting of generator i
func Generator(i int) Word {
	return Word(rune('a' + i))
}

// ReducedWords returns the freely reduced non-empty words of length at most
// maxLength in numGenerators generators, shortest first. Words of equal length
// are ordered lexicographically in the alphabet of generators followed by their
// inverses.
func ReducedWords(numGenerators, maxLength int) []Word {
	alphabet := make([]rune, 0, 2*numGenerators)
	for i := 0; i < numGenerators; i++ {
		alphabet = append(alphabet, rune('a'+i))
	}
	for i := 0; i < numGenerators; i++ {
		alphabet = append(alphabet, rune('A'+i))
	}
	var retVal []Word
	previous := []Word{""}
	for length := 1; length <= maxLength; length++ {
		var current []Word
		for _, w := range previous {
			runes := []rune(string(w))
			for _, r := range alphabet {
				if len(runes) > 0 && runes[len(runes)-1] == invertLetter(r) {
					continue
				}
				current = append(current, w+Word(r))
			}
		}
		retVal = append(retVal, current...)
		previous = current
	}
	return retVal
}

// letterIndex returns the generator index of r and whether r is an inverse
func letterIndex(r rune) (int, bool, bool) {
	switch {
	case 'a' <= r && r <= 'z':
		return int(r - 'a'), false, true
	case 'A' <= r && r <= 'Z':
		return int(r - 'A'), true, true
	}
	return 0, false, false
}

func invertLetter(r rune) rune {
	if unicode.IsLower(r) {
		return unicode.ToUpper(r)
	}
	return unicode.ToLower(r)
}
