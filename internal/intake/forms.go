// Package intake accepts parent and tutor sign-up forms of the tutoring programme.
// It is independent of the property listing.
package intake

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Kind tells which form a Submission carries
type Kind string

const (
	KindParent Kind = "parent"
	KindTutor  Kind = "tutor"
)

const other = "Other"

var (
	Subjects       = []string{"Mathematics", "Science", "English", "Social Studies", "Telugu", "Hindi", "Computer Science", "General Knowledge", "Physics", "Biology"}
	Grades         = []string{"1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th", "9th", "10th"}
	Degrees        = []string{"B.Sc", "B.Tech", "M.Sc", "M.Tech", "B.Com", "M.Com", other}
	Qualifications = []string{"B.Ed", "M.Ed", "Ph.D", "Diploma", other}
)

var ErrUnknownKind = errors.New("unknown form kind")

// Contact is shared by both forms
type Contact struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"contact" validate:"required,numeric,len=10"`
	Email string `json:"email" validate:"required,email"`
}

type ParentForm struct {
	Contact
	Area    string `json:"area"`
	Subject string `json:"subject" validate:"required,subject"`
	Grade   string `json:"grade" validate:"required,grade"`
}

// Attachment describes an uploaded file; its content is not handled here
type Attachment struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

type TutorForm struct {
	Contact
	Subject             string      `json:"subject" validate:"required,subject"`
	Grade               string      `json:"grade" validate:"required,grade"`
	Degree              string      `json:"degree" validate:"required,degree"`
	CustomDegree        string      `json:"customDegree" validate:"required_if=Degree Other"`
	Qualification       string      `json:"qualification" validate:"required,qualification"`
	CustomQualification string      `json:"customQualification" validate:"required_if=Qualification Other"`
	TravelAreas         string      `json:"travelAreas"`
	Resume              *Attachment `json:"resume,omitempty"`
}

// Submission is a tagged union of the two forms
type Submission struct {
	Kind   Kind        `json:"kind"`
	Parent *ParentForm `json:"parent,omitempty"`
	Tutor  *TutorForm  `json:"tutor,omitempty"`
}

// ValidationErrors maps a form field name to a message
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// Desk validates and records intake submissions
type Desk struct {
	logger   *zap.SugaredLogger
	validate *validator.Validate
}

func oneOfFunc(values []string) validator.Func {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := set[fl.Field().String()]
		return ok
	}
}

func NewDesk(logger *zap.SugaredLogger) *Desk {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	// registration only fails on empty tags or nil functions
	_ = v.RegisterValidation("subject", oneOfFunc(Subjects))
	_ = v.RegisterValidation("grade", oneOfFunc(Grades))
	_ = v.RegisterValidation("degree", oneOfFunc(Degrees))
	_ = v.RegisterValidation("qualification", oneOfFunc(Qualifications))

	return &Desk{
		logger:   logger,
		validate: v,
	}
}

// Submit validates s and resolves "Other" choices to the custom text.
// It returns the accepted submission.
func (d *Desk) Submit(s Submission) (Submission, error) {
	var err error
	switch s.Kind {
	case KindParent:
		if s.Parent == nil {
			return Submission{}, ValidationErrors{"parent": "Form is required"}
		}
		err = d.validate.Struct(s.Parent)
	case KindTutor:
		if s.Tutor == nil {
			return Submission{}, ValidationErrors{"tutor": "Form is required"}
		}
		err = d.validate.Struct(s.Tutor)
	default:
		return Submission{}, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
	if err := collect(err); err != nil {
		return Submission{}, err
	}

	if s.Kind == KindTutor {
		t := *s.Tutor
		if t.Degree == other {
			t.Degree = strings.TrimSpace(t.CustomDegree)
		}
		if t.Qualification == other {
			t.Qualification = strings.TrimSpace(t.CustomQualification)
		}
		t.CustomDegree, t.CustomQualification = "", ""
		s.Tutor = &t
		s.Parent = nil
		d.logger.Infow("Tutor intake accepted", "email", t.Email, "subject", t.Subject, "degree", t.Degree, "resume", t.Resume != nil)
	} else {
		s.Tutor = nil
		d.logger.Infow("Parent intake accepted", "email", s.Parent.Email, "subject", s.Parent.Subject, "grade", s.Parent.Grade)
	}

	return s, nil
}

func collect(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required", "required_if":
			out[fe.Field()] = "This field is required"
		case "email":
			out[fe.Field()] = "Valid email is required"
		case "numeric", "len":
			out[fe.Field()] = "Contact number must have 10 digits"
		default:
			out[fe.Field()] = "Select one of the listed options"
		}
	}
	return out
}
