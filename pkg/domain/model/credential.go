package model

import "time"

// Credential is a temporary, role-scoped credential acquired for exactly
// one dispatch and discarded afterwards. Secret fields are tagged for
// masq so they never reach log output.
type Credential struct {
	AccessKeyID     string
	SecretAccessKey string `masq:"secret"`
	SessionToken    string `masq:"secret"`
	Expiration      time.Time
}
