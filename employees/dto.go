package employees

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/nyaruka/phonenumbers"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
)

// CreateInput is the payload for a new employee.
type CreateInput struct {
	EmployeeID int                 `json:"employee_id"`
	FullName   string              `json:"full_name"`
	Phone      string              `json:"phone"`
	Role       auth.Role           `json:"role"`
	Status     auth.EmployeeStatus `json:"status"`
	Password   string              `json:"password"`
}

func (in CreateInput) Validate() error {
	return apperr.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&in,
			validation.Field(&in.EmployeeID, validation.Required, validation.Min(10), validation.Max(999)),
			validation.Field(&in.FullName, validation.Required, validation.RuneLength(1, 100)),
			validation.Field(&in.Role, validation.Required, validation.By(validRole)),
			validation.Field(&in.Status, validation.By(validStatus)),
			validation.Field(&in.Password, validation.Length(4, 0)),
		)
	}, "invalid employee")
}

// UpdateInput changes an employee. Nil fields keep their value; an empty
// Phone clears it.
type UpdateInput struct {
	FullName *string              `json:"full_name"`
	Phone    *string              `json:"phone"`
	Role     *auth.Role           `json:"role"`
	Status   *auth.EmployeeStatus `json:"status"`
	Password *string              `json:"password"`
}

func (in UpdateInput) Validate() error {
	return apperr.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&in,
			validation.Field(&in.FullName, validation.NilOrNotEmpty, validation.RuneLength(1, 100)),
			validation.Field(&in.Role, validation.NilOrNotEmpty, validation.By(validRole)),
			validation.Field(&in.Status, validation.NilOrNotEmpty, validation.By(validStatus)),
			validation.Field(&in.Password, validation.NilOrNotEmpty, validation.Length(4, 0)),
		)
	}, "invalid employee")
}

func validRole(value any) error {
	var r auth.Role
	switch v := value.(type) {
	case auth.Role:
		r = v
	case *auth.Role:
		if v == nil {
			return nil
		}
		r = *v
	}
	if r == "" || r.IsValid() {
		return nil
	}
	return errors.New("must be one of admin1, admin2, manager_women, manager_men, employee")
}

func validStatus(value any) error {
	var s auth.EmployeeStatus
	switch v := value.(type) {
	case auth.EmployeeStatus:
		s = v
	case *auth.EmployeeStatus:
		if v == nil {
			return nil
		}
		s = *v
	}
	if s == "" || s.IsValid() {
		return nil
	}
	return errors.New("must be active or inactive")
}

// NormalizePhone parses raw in region and formats it as E.164. An empty
// value stays empty.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", apperr.Invalid("invalid employee", "phone", "must be a valid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
