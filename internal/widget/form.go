package widget

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// StepCount is the number of form steps. Advancing from the last step submits.
const StepCount = 4

// ValidationRequired is shown under a step whose input is rejected.
const ValidationRequired = "This field is required"

// Field identifies a form input. Its value is the step that collects it.
type Field int

const (
	FieldName Field = iota + 1
	FieldEmail
	FieldPhone
	FieldCountry
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldEmail:
		return "email"
	case FieldPhone:
		return "phone"
	case FieldCountry:
		return "country"
	default:
		return "unknown"
	}
}

// stepRules mirror the input types of each step.
var stepRules = map[Field]string{
	FieldName:    "required",
	FieldEmail:   "required,email",
	FieldPhone:   "required",
	FieldCountry: "required",
}

var fieldValidator = validator.New()

// LeadFields are the four values collected by the form.
type LeadFields struct {
	Name    string
	Email   string
	Phone   string
	Country string
}

// StepForm holds the form inputs and the current step. It has no timing of
// its own; the widget sequences the hide/settle/show transitions.
type StepForm struct {
	current int
	values  map[Field]string
}

func NewStepForm() *StepForm {
	return &StepForm{current: 1, values: make(map[Field]string)}
}

func (f *StepForm) Current() int {
	return f.current
}

func (f *StepForm) Reset() {
	f.current = 1
}

func (f *StepForm) Set(field Field, value string) {
	f.values[field] = value
}

func (f *StepForm) Value(field Field) string {
	return f.values[field]
}

// InRange reports whether step names one of the form steps.
func (f *StepForm) InRange(step int) bool {
	return step >= 1 && step <= StepCount
}

// ValidateCurrent checks the trimmed input of the current step.
func (f *StepForm) ValidateCurrent() bool {
	field := Field(f.current)
	rule, ok := stepRules[field]
	if !ok {
		return false
	}
	return fieldValidator.Var(strings.TrimSpace(f.values[field]), rule) == nil
}

func (f *StepForm) moveTo(step int) {
	f.current = step
}

// Progress returns the filled fraction and the number of active dots.
func (f *StepForm) Progress() (float64, int) {
	return float64(f.current) / StepCount, f.current
}

// Fields returns the trimmed form values.
func (f *StepForm) Fields() LeadFields {
	return LeadFields{
		Name:    strings.TrimSpace(f.values[FieldName]),
		Email:   strings.TrimSpace(f.values[FieldEmail]),
		Phone:   strings.TrimSpace(f.values[FieldPhone]),
		Country: strings.TrimSpace(f.values[FieldCountry]),
	}
}
