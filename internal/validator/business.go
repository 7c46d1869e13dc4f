package validator

// BusinessRules is implemented by request types that carry cross-field rules
// struct tags cannot express.
type BusinessRules interface {
	ValidateBusiness() ValidationErrors
}

// BusinessValidator runs the cross-field rules of a request
type BusinessValidator struct{}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{}
}

func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if rules, ok := s.(BusinessRules); ok {
		return rules.ValidateBusiness()
	}
	return nil
}

// RequireOneOf reports an error when none of the flags is set.
func RequireOneOf(field, message string, present ...bool) ValidationErrors {
	for _, p := range present {
		if p {
			return nil
		}
	}
	return ValidationErrors{{Field: field, Message: message, Rule: "required_one_of"}}
}

// RequireExactlyOne reports an error unless exactly one flag is set.
func RequireExactlyOne(field, message string, present ...bool) ValidationErrors {
	count := 0
	for _, p := range present {
		if p {
			count++
		}
	}
	if count == 1 {
		return nil
	}
	return ValidationErrors{{Field: field, Message: message, Rule: "exactly_one"}}
}
