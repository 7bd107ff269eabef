package codecheck

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmpty   = errors.New("please paste some code first")
	ErrNotCode = errors.New("this does not look like code")
)

// patterns is a logical OR: any single match classifies the input as code.
var patterns = []*regexp.Regexp{
	// function declarations: JS/TS, Python, Go, Rust, Kotlin, PHP, arrow functions
	regexp.MustCompile(`(?i)\bfunction\b\s*\*?\s*[\w$]*\s*\(`),
	regexp.MustCompile(`(?i)\b(def|func|fn|fun)\s+[\w$.]+\s*[(<\[]`),
	regexp.MustCompile(`\bfunc\s*\(`),
	regexp.MustCompile(`\)\s*=>|\b\w+\s*=>`),

	// variable declarations
	regexp.MustCompile(`(?im)\b(var|let|const)\s+[\w$]+\s*(=|:|;|,|$)`),
	regexp.MustCompile(`(?i)\b(var|let|const)\s*[{\[]`),

	// control flow
	regexp.MustCompile(`(?i)\b(if|for|while|switch)\s*\(`),
	regexp.MustCompile(`(?im)^\s*(if|elif|for|while)\b[^\n]*:\s*$`),

	// classes
	regexp.MustCompile(`(?im)\b(class|interface|struct)\s+[A-Za-z_]\w*\s*(\(|:|\{|<|\bextends\b|\bimplements\b|$)`),

	// imports / exports
	regexp.MustCompile(`(?im)^\s*(import|export)\s+`),
	regexp.MustCompile(`(?im)^\s*from\s+[\w.]+\s+import\s+`),
	regexp.MustCompile(`(?m)^\s*#\s*include\s*[<"]`),

	// balanced brackets
	regexp.MustCompile(`\{[^{}]*\}`),
	regexp.MustCompile(`\[[^\[\]]*\]`),
	regexp.MustCompile(`\w\([^()]*\)`),

	// key: value pairs (JSON, YAML, object literals)
	regexp.MustCompile(`(?m)^\s*["']?[\w-]+["']?\s*:\s*(["'\[{]|-?\d|true\b|false\b|null\b)`),

	// compound assignment
	regexp.MustCompile(`\w\s*(\+=|-=|\*=|/=|%=|&=|\|=|\^=|<<=|>>=|:=|\?\?=)`),
	regexp.MustCompile(`\w(\+\+|--)(\W|$)`),

	// HTML / XML tags
	regexp.MustCompile(`</?[A-Za-z][\w:-]*(\s[^<>]*)?/?>`),
	regexp.MustCompile(`<!(DOCTYPE|--)`),

	// SQL statements
	regexp.MustCompile(`(?i)\bSELECT\s+(\*|DISTINCT\b|[\w.()*]+\s*(,|\bAS\b|\bFROM\b))`),
	regexp.MustCompile(`(?i)\b(INSERT\s+INTO|DELETE\s+FROM|UPDATE\s+\w+\s+SET)\b`),
	regexp.MustCompile(`(?i)\b(CREATE|DROP|ALTER|TRUNCATE)\s+(TABLE|INDEX|VIEW|DATABASE|SCHEMA)\b`),

	// control / exception keywords
	regexp.MustCompile(`(?im)\b(return|throw|yield)\b[^\n]*;\s*$`),
	regexp.MustCompile(`(?i)\b(try|finally)\s*[{:]`),
	regexp.MustCompile(`(?i)\bcatch\s*[({]`),
	regexp.MustCompile(`(?im)^\s*except\b[^\n]*:\s*$`),
	regexp.MustCompile(`(?im)^\s*raise\s+\w+(\(|$)`),
	regexp.MustCompile(`(?im)^\s*return\s*;?\s*$`),
}

// IsCode reports whether input looks like source code. It is a cheap
// pre-submission gate, not a parser: "{}" counts as code.
func IsCode(input string) bool {
	s := strings.TrimSpace(input)
	if s == "" {
		return false
	}
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Validate returns ErrEmpty or ErrNotCode when input must not be submitted.
func Validate(input string) error {
	if strings.TrimSpace(input) == "" {
		return ErrEmpty
	}
	if !IsCode(input) {
		return ErrNotCode
	}
	return nil
}
