package domain

import "strings"

// TrainingProfile is one harvested player record, as stored in the JSONL
// training files.
type TrainingProfile struct {
	NationalityID int      `json:"country_id"`
	Surname       string   `json:"surname"`
	KnownAs       string   `json:"known_as"`
	FullName      string   `json:"fullname"`
	GivenNames    string   `json:"firstnames,omitempty"`
	Biography     []string `json:"profile"`
}

// EffectiveGivenNames returns the explicit given names when present,
// otherwise derives them from the full name.
func (p *TrainingProfile) EffectiveGivenNames() string {
	if strings.TrimSpace(p.GivenNames) != "" {
		return strings.TrimSpace(p.GivenNames)
	}
	return DeriveGivenNames(p.FullName, p.Surname)
}

// DeriveGivenNames assumes the full name ends with the surname, so whatever
// precedes it must be the given names. When the surname is not a suffix the
// whole full name is returned.
func DeriveGivenNames(fullName, surname string) string {
	fullName = strings.TrimSpace(fullName)
	surname = strings.TrimSpace(surname)
	if !strings.HasSuffix(fullName, surname) {
		return fullName
	}
	return strings.TrimSpace(strings.TrimSuffix(fullName, surname))
}

// GeneratedProfile is a synthesized player. FullName is always
// GivenNames + " " + Surname.
type GeneratedProfile struct {
	NationalityID   int      `json:"country_id"`
	NationalityName string   `json:"country_name"`
	NationalitySlug string   `json:"country_slug"`
	GivenNames      string   `json:"firstnames"`
	Surname         string   `json:"surname"`
	FullName        string   `json:"fullname"`
	KnownAs         string   `json:"known_as"`
	Biography       []string `json:"profile"`
	Seed            uint64   `json:"seed,string"`
	SeedCode        string   `json:"seed_code,omitempty"`
}
