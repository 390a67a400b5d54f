package utils

import "context"

type invocationContextKey struct{}

// Invocation records where a gitx run takes its configuration from and which repository it operates on.
type Invocation struct {
	ConfigurationFile string
	WorkingDirectory  string
}

// WithInvocation returns a child context carrying the invocation details.
func WithInvocation(parentContext context.Context, invocation Invocation) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, invocationContextKey{}, invocation)
}

// InvocationFromContext returns the invocation stored by WithInvocation.
func InvocationFromContext(executionContext context.Context) (Invocation, bool) {
	if executionContext == nil {
		return Invocation{}, false
	}
	invocation, found := executionContext.Value(invocationContextKey{}).(Invocation)
	return invocation, found
}

// ResolveWorkingDirectory prefers an explicitly configured directory over the one recorded in the context.
func ResolveWorkingDirectory(executionContext context.Context, explicitDirectory string) string {
	if len(explicitDirectory) > 0 {
		return explicitDirectory
	}
	invocation, found := InvocationFromContext(executionContext)
	if !found {
		return ""
	}
	return invocation.WorkingDirectory
}
