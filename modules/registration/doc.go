// Package registration serves the workshop registration endpoints for the
// signed-in user. The registrant email always comes from the session.
//
//	GET  /registrations          list own registrations
//	POST /registrations          register (policy decides upsert or append)
//	GET  /registrations/prefill  values for the registration form
//	GET  /registrations/summary  billing summary
//	PUT  /registrations/{id}     edit a registration
//	POST /registrations/match    edit a registration that has no id yet
package registration
