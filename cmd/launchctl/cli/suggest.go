// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"iter"
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestDistance is the largest edit distance still offered as a
// "did you mean" suggestion.
const maxSuggestDistance = 3

// suggestCommand returns the subcommand name closest to unknown, or "".
func suggestCommand(unknown string, commands []*Command) string {
	return closest(unknown, func(yield func(string) bool) {
		for _, command := range commands {
			if !yield(command.Name) {
				return
			}
		}
	})
}

// suggestFlag finds the first long flag in args that flagSet does not
// define and returns the closest defined flag, spelled with its dash
// prefix. Scanning stops at "--" and after the first unknown flag.
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	defined := func(yield func(string) bool) {
		stopped := false
		flagSet.VisitAll(func(flag *pflag.Flag) {
			if !stopped {
				stopped = !yield(flag.Name)
			}
		})
	}

	for _, arg := range args {
		if arg == "--" {
			return ""
		}
		name, isLong := strings.CutPrefix(arg, "--")
		if !isLong {
			continue
		}
		name, _, _ = strings.Cut(name, "=")
		if flagSet.Lookup(name) != nil {
			continue
		}

		switch match := closest(name, defined); len(match) {
		case 0:
			return ""
		case 1:
			return "-" + match
		default:
			return "--" + match
		}
	}
	return ""
}

// closest returns the candidate with the smallest edit distance from
// input, provided it is within maxSuggestDistance. Ties go to the
// earliest candidate.
func closest(input string, candidates iter.Seq[string]) string {
	best, bestDistance := "", maxSuggestDistance+1
	for candidate := range candidates {
		if distance := levenshtein(input, candidate); distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best
}

// levenshtein counts the single-rune insertions, deletions, and
// substitutions that turn a into b.
func levenshtein(a, b string) int {
	source, destination := []rune(a), []rune(b)
	if len(source) < len(destination) {
		source, destination = destination, source
	}

	// Two rows of the distance matrix, indexed by position in destination.
	above := make([]int, len(destination)+1)
	row := make([]int, len(destination)+1)
	for column := range above {
		above[column] = column
	}
	for line, sourceRune := range source {
		row[0] = line + 1
		for column, destinationRune := range destination {
			substitute := above[column]
			if sourceRune != destinationRune {
				substitute++
			}
			row[column+1] = min(substitute, above[column+1]+1, row[column]+1)
		}
		above, row = row, above
	}
	return above[len(destination)]
}
