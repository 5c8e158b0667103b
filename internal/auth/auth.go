// Package auth implements the credential rule for taxpayer access.
//
// KNOWN WEAK SECURITY — BY THE DOMAIN'S OWN RULES:
// ─────────────────────────────────────────────────
// The password for an account is defined as the last 4 digits of the
// taxpayer's IC number, which is not a secret. This is the simplified
// authentication rule of the system being modelled, not an oversight;
// do not replace it with hashing or real credential storage without
// changing the product requirement itself.
package auth

// ICLength is the fixed width of a Malaysian IC number.
const ICLength = 12

// passwordLen is how many trailing IC digits form the password.
const passwordLen = 4

// ValidICNumber reports whether icNumber is exactly 12 decimal digits.
// Leading zeros are significant, so the value is inspected as a string,
// never parsed as a number.
func ValidICNumber(icNumber string) bool {
	if len(icNumber) != ICLength {
		return false
	}
	for _, r := range icNumber {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Verify reports whether password grants access for icNumber: the IC
// must be well-formed and the password must equal its last 4 digits.
// A malformed IC yields false, never an error — format failure and
// wrong password are indistinguishable to the caller on purpose.
func Verify(icNumber, password string) bool {
	if !ValidICNumber(icNumber) {
		return false
	}
	return password == icNumber[ICLength-passwordLen:]
}

// DerivedPassword returns the password implied by a well-formed IC
// number, used at registration to show the rule to the caller. The
// second return is false when the IC is malformed.
func DerivedPassword(icNumber string) (string, bool) {
	if !ValidICNumber(icNumber) {
		return "", false
	}
	return icNumber[ICLength-passwordLen:], true
}
