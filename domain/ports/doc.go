// Package ports defines the host boundary of the job runtime.
// Job-side packages depend only on these interfaces; the native TinyGo
// bindings and the hosted simulator implement them.
package ports
