package memsync

import "strings"

const (
	// recordType identifies a membership sync record on the Access API.
	recordType = "MEM_SYN"

	// recordIDPrefix is prepended to the sanitized login.
	recordIDPrefix = "USER_"

	// memberCustomerPrefix is prepended to the host user ID.
	memberCustomerPrefix = "TDC_"

	// DefaultProgramCustomerID is the program/organization customer identifier
	// used when Config.ProgramCustomerID is empty. Single-tenant deployments
	// have historically hardcoded this value; multi-tenant deployments should
	// set it per deployment.
	DefaultProgramCustomerID = "204200"
)

// BuildPayload converts a user record plus derived classification into the
// canonical payload shape expected by the Access API. Pure function, no I/O,
// never fails: missing or malformed fields produce best-effort sanitized
// output (empty strings where fields are absent).
func BuildPayload(user *UserRecord, subType SubscriptionType, status MemberStatus, programCustomerID string) SyncPayload {
	if user == nil {
		user = &UserRecord{}
	}
	if programCustomerID == "" {
		programCustomerID = DefaultProgramCustomerID
	}

	first := SanitizeText(user.FirstName)
	last := SanitizeText(user.LastName)

	return SyncPayload{
		RecordID:               recordIDPrefix + SanitizeText(user.Login),
		RecordType:             recordType,
		ProgramCustomerID:      programCustomerID,
		MemberCustomerID:       strings.ToUpper(memberCustomerPrefix + user.ID),
		OrganizationCustomerID: programCustomerID,
		// PreviousMemberCustomerID stays nil: the Access API expects JSON null
		// until member identifier migrations are supported.
		MemberStatus:     status,
		SubscriptionType: subType,
		FullName:         strings.TrimSpace(first + " " + last),
		FirstName:        first,
		LastName:         last,
		EmailAddress:     NormalizeEmail(user.Email),
	}
}
