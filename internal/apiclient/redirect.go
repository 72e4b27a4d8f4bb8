package apiclient

import "context"

// Redirector sends the operator back to the sign-in entry point after the
// session is lost. Whatever the operator was doing is abandoned.
type Redirector interface {
	RedirectToLogin(ctx context.Context)
}

type RedirectFunc func(ctx context.Context)

func (f RedirectFunc) RedirectToLogin(ctx context.Context) { f(ctx) }

var noRedirect = RedirectFunc(func(context.Context) {})
