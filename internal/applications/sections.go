package applications

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// The intake sections arrive as loosely structured JSON documents. Each is
// modeled as a struct of known fields plus an Extras bag so clients can send
// forward-compatible keys without the core dropping them.

var validate = validator.New()

type Education struct {
	Degree      string `json:"degree" validate:"omitempty,min=2"`
	Institution string `json:"institution" validate:"omitempty,min=2"`
	Year        int    `json:"year" validate:"omitempty,gte=1900,lte=2100"`
}

type TimeRange struct {
	Start string `json:"start" validate:"omitempty,len=5"`
	End   string `json:"end" validate:"omitempty,len=5"`
}

type PersonalInfo struct {
	FullName        string         `json:"fullName" validate:"omitempty,min=2"`
	PhoneNumber     string         `json:"phoneNumber" validate:"omitempty,min=5"`
	Nationality     string         `json:"nationality"`
	DateOfBirth     string         `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Address         string         `json:"address"`
	LanguagesSpoken []string       `json:"languagesSpoken" validate:"omitempty,dive,min=2"`
	Extras          map[string]any `json:"-"`
}

type ProfessionalBackground struct {
	CurrentJobTitle   string         `json:"currentJobTitle"`
	Company           string         `json:"company"`
	YearsOfExperience int            `json:"yearsOfExperience" validate:"gte=0,lte=80"`
	Education         []Education    `json:"education" validate:"omitempty,dive"`
	Certifications    []string       `json:"certifications"`
	LinkedinURL       string         `json:"linkedinUrl" validate:"omitempty,url"`
	Extras            map[string]any `json:"-"`
}

type TeachingInformation struct {
	SubjectsToTeach    []string               `json:"subjectsToTeach" validate:"omitempty,dive,min=1"`
	TeachingMotivation string                 `json:"teachingMotivation"`
	TeachingExperience int                    `json:"teachingExperienceYears" validate:"gte=0,lte=80"`
	PreferredLevels    []string               `json:"preferredLevels"`
	WeeklyAvailability map[string][]TimeRange `json:"weeklyAvailability" validate:"omitempty,dive,dive"`
	Extras             map[string]any         `json:"-"`
}

type Consents struct {
	TermsAccepted          bool           `json:"termsAccepted"`
	BackgroundCheckConsent bool           `json:"backgroundCheckConsent"`
	DataProcessingConsent  bool           `json:"dataProcessingConsent"`
	Extras                 map[string]any `json:"-"`
}

func (p PersonalInfo) Empty() bool {
	return p.FullName == "" && p.PhoneNumber == "" && p.Nationality == "" &&
		p.DateOfBirth == "" && p.Address == "" && len(p.LanguagesSpoken) == 0 &&
		len(p.Extras) == 0
}

func (p ProfessionalBackground) Empty() bool {
	return p.CurrentJobTitle == "" && p.Company == "" && p.YearsOfExperience == 0 &&
		len(p.Education) == 0 && len(p.Certifications) == 0 && p.LinkedinURL == "" &&
		len(p.Extras) == 0
}

func (t TeachingInformation) Empty() bool {
	return len(t.SubjectsToTeach) == 0 && t.TeachingMotivation == "" &&
		t.TeachingExperience == 0 && len(t.PreferredLevels) == 0 &&
		len(t.WeeklyAvailability) == 0 && len(t.Extras) == 0
}

func (c Consents) Empty() bool {
	return !c.TermsAccepted && !c.BackgroundCheckConsent && !c.DataProcessingConsent &&
		len(c.Extras) == 0
}

func (p *PersonalInfo) UnmarshalJSON(data []byte) error {
	type alias PersonalInfo
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extras, err := extraFields(data, "fullName", "phoneNumber", "nationality", "dateOfBirth", "address", "languagesSpoken")
	if err != nil {
		return err
	}
	a.Extras = extras
	*p = PersonalInfo(a)
	return nil
}

func (p PersonalInfo) MarshalJSON() ([]byte, error) {
	type alias PersonalInfo
	return marshalWithExtras(alias(p), p.Extras)
}

func (p *ProfessionalBackground) UnmarshalJSON(data []byte) error {
	type alias ProfessionalBackground
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extras, err := extraFields(data, "currentJobTitle", "company", "yearsOfExperience", "education", "certifications", "linkedinUrl")
	if err != nil {
		return err
	}
	a.Extras = extras
	*p = ProfessionalBackground(a)
	return nil
}

func (p ProfessionalBackground) MarshalJSON() ([]byte, error) {
	type alias ProfessionalBackground
	return marshalWithExtras(alias(p), p.Extras)
}

func (t *TeachingInformation) UnmarshalJSON(data []byte) error {
	type alias TeachingInformation
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extras, err := extraFields(data, "subjectsToTeach", "teachingMotivation", "teachingExperienceYears", "preferredLevels", "weeklyAvailability")
	if err != nil {
		return err
	}
	a.Extras = extras
	*t = TeachingInformation(a)
	return nil
}

func (t TeachingInformation) MarshalJSON() ([]byte, error) {
	type alias TeachingInformation
	return marshalWithExtras(alias(t), t.Extras)
}

func (c *Consents) UnmarshalJSON(data []byte) error {
	type alias Consents
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extras, err := extraFields(data, "termsAccepted", "backgroundCheckConsent", "dataProcessingConsent")
	if err != nil {
		return err
	}
	a.Extras = extras
	*c = Consents(a)
	return nil
}

func (c Consents) MarshalJSON() ([]byte, error) {
	type alias Consents
	return marshalWithExtras(alias(c), c.Extras)
}

// extraFields returns the keys of data not claimed by the typed schema.
func extraFields(data []byte, known ...string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

func marshalWithExtras(known any, extras map[string]any) ([]byte, error) {
	base, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extras) == 0 {
		return base, nil
	}
	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range extras {
		if _, taken := merged[k]; !taken {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
