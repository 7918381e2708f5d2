package service

import (
	"fmt"

	"github.com/fitshare/auth-service/internal/domain"
)

// LoginStage is a state of the login flow:
// CodeReceived -> ProviderTokenObtained -> ProfileObtained -> PrincipalResolved -> TokenPairIssued.
type LoginStage string

const (
	StageCodeReceived          LoginStage = "code_received"
	StageProviderTokenObtained LoginStage = "provider_token_obtained"
	StageProfileObtained       LoginStage = "profile_obtained"
	StagePrincipalResolved     LoginStage = "principal_resolved"
	StageTokenPairIssued       LoginStage = "token_pair_issued"
)

// LoginError is the terminal LoginFailed state. Stage is the state the flow
// was in when the next transition failed; Err carries the originating kind.
type LoginError struct {
	Provider domain.ProviderName
	Stage    LoginStage
	Err      error
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("%s login failed at %s: %v", e.Provider, e.Stage, e.Err)
}

func (e *LoginError) Unwrap() error {
	return e.Err
}
