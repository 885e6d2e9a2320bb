// Package validator builds declarative input checks.
//
// Each helper returns a Rule pairing a Check with the field error it reports.
// Apply evaluates the rules and returns ValidationErrors, which implements
// error, when any of them fail:
//
//	err := validator.Apply(
//		validator.Required("contact", in.Contact),
//		validator.MaxLen("contact", in.Contact, 200),
//		validator.OneOf("equipment", in.Equipment, []string{"Return", "Buy"}),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//		// render errs.Fields()
//	}
//
// The rules are stateless and safe for concurrent use.
package validator
