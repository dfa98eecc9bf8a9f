package domain

// TOTP parameters shared with the auth plugin and the operator's authenticator app.
//
// The values target the parameter set every mainstream authenticator supports
// without extra URI options: HMAC-SHA1, six digits and a 30 second period.
// The auth plugin running on the appliance assumes the same values, so they
// are constants rather than configuration.
const (
	// SecretSize is the raw secret length in bytes (160 bits).
	SecretSize = 20

	// Digits is the number of decimal digits in a generated code.
	Digits = 6

	// Period is the TOTP time step in seconds.
	Period = 30

	// Issuer is the provisioning URI issuer label.
	Issuer = "OPNsense-CaptivePortal"

	// Account is the provisioning URI account label.
	Account = "guest"
)
