package domain

type ctxKey string

// RequesterCtxKey holds the authenticated token subject on the request context.
const RequesterCtxKey ctxKey = "requester"
