package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

// StaticVerifier maps fixed tokens to participant ids. Local runs only.
type StaticVerifier struct {
	participantByToken map[string]string
}

func NewStaticVerifier(participantByToken map[string]string) *StaticVerifier {
	out := make(map[string]string, len(participantByToken))
	for token, participantID := range participantByToken {
		token = strings.TrimSpace(token)
		participantID = strings.TrimSpace(participantID)
		if token == "" || participantID == "" {
			continue
		}
		out[token] = participantID
	}
	return &StaticVerifier{participantByToken: out}
}

func (v *StaticVerifier) VerifyAccessToken(_ context.Context, token string) (participant.Principal, error) {
	participantID, ok := v.participantByToken[strings.TrimSpace(token)]
	if !ok {
		return participant.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return participant.Principal{ParticipantID: participantID}, nil
}
