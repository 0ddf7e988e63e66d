package leave

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-staff/apperr"
)

const MaxReasonLength = 300

// CreateInput is the payload of a new leave request.
type CreateInput struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func (in CreateInput) Validate() error {
	return apperr.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&in,
			validation.Field(&in.StartDate, validation.Required, validation.Date(DateLayout)),
			validation.Field(&in.EndDate, validation.Required, validation.Date(DateLayout), validation.By(notBefore(in.StartDate))),
			validation.Field(&in.Reason, validation.Required, validation.RuneLength(1, MaxReasonLength)),
		)
	}, "invalid leave request")
}

// UpdateInput changes the dates or reason. Nil fields keep their value.
type UpdateInput struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Reason    *string `json:"reason"`
}

// apply merges in onto r and validates the result.
func (in UpdateInput) apply(r *Request) error {
	merged := CreateInput{StartDate: r.StartDate, EndDate: r.EndDate, Reason: r.Reason}
	if in.StartDate != nil {
		merged.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		merged.EndDate = *in.EndDate
	}
	if in.Reason != nil {
		merged.Reason = *in.Reason
	}
	if err := merged.Validate(); err != nil {
		return err
	}
	r.StartDate = merged.StartDate
	r.EndDate = merged.EndDate
	r.Reason = merged.Reason
	return nil
}

// RejectInput carries the optional rejection reason.
type RejectInput struct {
	Reason string `json:"reason"`
}

func (in RejectInput) Validate() error {
	return apperr.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&in,
			validation.Field(&in.Reason, validation.RuneLength(0, MaxReasonLength)),
		)
	}, "invalid rejection")
}

// notBefore compares YYYY-MM-DD strings, which order like the dates they
// hold. Malformed values are left to the Date rule.
func notBefore(start string) validation.RuleFunc {
	return func(value any) error {
		end, _ := value.(string)
		if len(start) != len(DateLayout) || len(end) != len(DateLayout) {
			return nil
		}
		if end < start {
			return errors.New("must not be before start_date")
		}
		return nil
	}
}
