package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionExamsRead allows viewing exam attestation settings.
	PermissionExamsRead Permission = "exams:read"

	// PermissionExamsWrite allows generating and rotating an exam's browser key.
	PermissionExamsWrite Permission = "exams:write"
)
