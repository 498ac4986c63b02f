package automation

import (
	"ziraweb/models"
)

// Submission is the pipeline's view of an inbound form post: a canonical
// type, an optional product key and a stringified field bag. It is built
// once at the boundary so the pipeline never deals with raw JSON values.
type Submission struct {
	ID            uint
	FormType      string
	CanonicalType string
	ProductKey    string
	Fields        map[string]string
}

// NewSubmission builds a pipeline submission from a raw form type and
// field bag, normalizing the type on the way in.
func NewSubmission(rawType string, fields map[string]string) Submission {
	canonical, product := Normalize(rawType)
	if fields == nil {
		fields = make(map[string]string)
	}
	return Submission{
		FormType:      rawType,
		CanonicalType: canonical,
		ProductKey:    product,
		Fields:        fields,
	}
}

// SubmissionFromModel adapts a persisted form row for the pipeline.
func SubmissionFromModel(fs *models.FormSubmission) Submission {
	sub := NewSubmission(fs.FormType, fs.FieldMap())
	sub.ID = fs.ID
	if fs.CanonicalType != "" {
		sub.CanonicalType = fs.CanonicalType
		sub.ProductKey = fs.ProductKey
	}
	return sub
}

// Field returns the named field, with the service/service_interest alias
// pair resolved: if the requested one is absent the other's value is used.
func (s Submission) Field(name string) string {
	if v, ok := s.Fields[name]; ok && v != "" {
		return v
	}
	switch name {
	case "service_interest":
		return s.Fields["service"]
	case "service":
		return s.Fields["service_interest"]
	}
	return ""
}
