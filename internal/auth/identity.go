package auth

import "context"

type memberKey struct{}

// WithMember returns a context carrying the name of the acting member.
func WithMember(ctx context.Context, member string) context.Context {
	return context.WithValue(ctx, memberKey{}, member)
}

// MemberFromContext returns the acting member stored by WithMember.
func MemberFromContext(ctx context.Context) (string, bool) {
	member, ok := ctx.Value(memberKey{}).(string)
	return member, ok && member != ""
}
