package templating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToTemplate(t *testing.T) {
	got := ToTemplate("Mark Alan Butcher played 71 test matches for England", Fields{
		Surname:         "Butcher",
		GivenNames:      "Mark Alan",
		NationalityName: "England",
	})
	assert.Equal(t, "$firstnames $surname played 71 test matches for $team", got)
}

func TestToTemplateFullNameFirst(t *testing.T) {
	fields := Fields{
		FullName:   "Mark Alan Butcher",
		KnownAs:    "Butch",
		Surname:    "Butcher",
		GivenNames: "Mark Alan",
	}
	got := ToTemplate("Mark Alan Butcher, or Butch, was a Butcher by trade", fields)
	assert.Equal(t, "$fullname, or $known_as, was a $surname by trade", got)
}

func TestToTemplateSkipsEmptyValues(t *testing.T) {
	got := ToTemplate("nothing to see here", Fields{})
	assert.Equal(t, "nothing to see here", got)
}

func TestFromTemplate(t *testing.T) {
	got := FromTemplate("$fullname ($known_as) was born in $team; $firstnames $surname", Fields{
		FullName:        "Joe Root",
		Surname:         "Root",
		GivenNames:      "Joe",
		NationalityName: "England",
	})
	assert.Equal(t, "Joe Root () was born in England; Joe Root", got)
}

func TestRoundTrip(t *testing.T) {
	fields := Fields{
		FullName:        "Shane Keith Warne",
		KnownAs:         "Warney",
		Surname:         "Warne",
		GivenNames:      "Shane Keith",
		NationalityName: "Australia",
	}
	texts := []string{
		"Shane Keith Warne took 708 wickets for Australia.",
		"Warney was the finest leg spinner of his era.",
		"A career of twists and turns.",
	}
	for _, text := range texts {
		assert.Equal(t, text, FromTemplate(ToTemplate(text, fields), fields))
	}
}

func TestRulesOrder(t *testing.T) {
	want := []string{"$fullname", "$known_as", "$surname", "$firstnames", "$team"}
	got := make([]string, 0, len(Rules))
	for _, rule := range Rules {
		got = append(got, rule.Placeholder)
	}
	assert.Equal(t, want, got)
}
