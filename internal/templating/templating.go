// Package templating swaps the concrete names in a biography for symbolic
// placeholders and back again.
package templating

import "strings"

const (
	PlaceholderFullName   = "$fullname"
	PlaceholderKnownAs    = "$known_as"
	PlaceholderSurname    = "$surname"
	PlaceholderGivenNames = "$firstnames"
	PlaceholderTeam       = "$team"
)

// Fields are the concrete values a placeholder can stand for.
type Fields struct {
	FullName        string
	KnownAs         string
	Surname         string
	GivenNames      string
	NationalityName string
}

// Rule pairs a placeholder with the field it stands for.
type Rule struct {
	Placeholder string
	Value       func(Fields) string
}

// Rules are applied in this order in both directions. Full name must come
// before surname and given names, otherwise its parts would be replaced
// piecemeal.
var Rules = []Rule{
	{Placeholder: PlaceholderFullName, Value: func(f Fields) string { return f.FullName }},
	{Placeholder: PlaceholderKnownAs, Value: func(f Fields) string { return f.KnownAs }},
	{Placeholder: PlaceholderSurname, Value: func(f Fields) string { return f.Surname }},
	{Placeholder: PlaceholderGivenNames, Value: func(f Fields) string { return f.GivenNames }},
	{Placeholder: PlaceholderTeam, Value: func(f Fields) string { return f.NationalityName }},
}

// ToTemplate replaces every literal occurrence of each non-empty field value
// with its placeholder.
func ToTemplate(text string, fields Fields) string {
	for _, rule := range Rules {
		value := rule.Value(fields)
		if value == "" {
			continue
		}
		text = strings.ReplaceAll(text, value, rule.Placeholder)
	}
	return text
}

// FromTemplate replaces every placeholder with its field value. Empty values
// simply remove the placeholder.
func FromTemplate(text string, fields Fields) string {
	for _, rule := range Rules {
		text = strings.ReplaceAll(text, rule.Placeholder, rule.Value(fields))
	}
	return text
}
