package sample

import (
	"fmt"
	"net/mail"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Rules maps a field to its pipe-separated rules, e.g. "required|max:64".
type Rules map[string]string

// Errors maps a field to its failure messages.
type Errors map[string][]string

// First returns the first message of the first failing field, in field order.
func (e Errors) First() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	for _, f := range fields {
		if len(e[f]) > 0 {
			return e[f][0]
		}
	}
	return ""
}

// Validate checks data against rules. A field stops at its first failing
// rule.
func Validate(data map[string]string, rules Rules) Errors {
	errs := Errors{}
	for field, spec := range rules {
		value := data[field]
		for rule := range strings.SplitSeq(spec, "|") {
			name, param, _ := strings.Cut(strings.TrimSpace(rule), ":")
			if msg := check(field, value, name, param); msg != "" {
				errs[field] = append(errs[field], msg)
				break
			}
		}
	}
	return errs
}

func check(field, value, rule, param string) string {
	switch rule {
	case "required":
		if strings.TrimSpace(value) == "" {
			return fmt.Sprintf("The %s field is required.", field)
		}
	case "email":
		if _, err := mail.ParseAddress(value); err != nil {
			return fmt.Sprintf("The %s field must be a valid email address.", field)
		}
	case "min":
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) < n {
			return fmt.Sprintf("The %s field must be at least %d characters.", field, n)
		}
	case "max":
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) > n {
			return fmt.Sprintf("The %s field must not be greater than %d characters.", field, n)
		}
	}
	return ""
}
