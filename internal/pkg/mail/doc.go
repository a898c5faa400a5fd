// Package mail sends email through a configurable provider.
//
// Callers depend on the Mail interface and the provider-agnostic Message. The
// drivers are SMTP (wneessen/go-mail), the Resend HTTP API and Amazon SES; New
// picks one from the mail.* configuration keys. Every driver returns the
// provider message id so it can be surfaced as a delivery reference.
package mail
