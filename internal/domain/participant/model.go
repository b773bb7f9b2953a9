package participant

// Participant is a drafting member. Profiles are provisioned by the identity
// provider and are read-only here.
type Participant struct {
	ID       string
	Name     string
	IsActive bool
	IsAdmin  bool
}

// Principal is the verified caller behind a bearer token.
type Principal struct {
	ParticipantID string
	Email         string
}
