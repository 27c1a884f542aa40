package common

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "vtimecapsule_session"

// MinSecretLength is the minimum accepted length, in bytes, of the
// session signing secret.
const MinSecretLength = 32
