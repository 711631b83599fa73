package api

import (
	"github.com/kapu/messenger-api-go/internal/util"
	"github.com/kapu/messenger-api-go/pkg/errors"
)

const (
	DebugBaseURL   = "http://192.168.1.127:3000/api/v1/"
	StagingBaseURL = "https://fast-thicket-30117.herokuapp.com/api/v1/"
	ReleaseBaseURL = "https://agile-harbor-47425.herokuapp.com/api/v1/"
)

// Environment selects which API deployment a Client talks to.
type Environment int

const (
	Debug Environment = iota
	Staging
	Release
)

// Environments lists every deployment in declaration order.
func Environments() []Environment {
	return []Environment{Debug, Staging, Release}
}

// BaseURL is a pure mapping: anything that is neither Debug nor Staging
// resolves to the release deployment.
func (e Environment) BaseURL() string {
	switch e {
	case Debug:
		return DebugBaseURL
	case Staging:
		return StagingBaseURL
	default:
		return ReleaseBaseURL
	}
}

func (e Environment) String() string {
	switch e {
	case Debug:
		return "debug"
	case Staging:
		return "staging"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// ParseEnvironment accepts debug, staging or release in any case.
func ParseEnvironment(value string) (Environment, error) {
	switch util.Normalize(value) {
	case "debug":
		return Debug, nil
	case "staging":
		return Staging, nil
	case "release":
		return Release, nil
	default:
		return Release, errors.NewValidationError("unknown environment", "environment", value)
	}
}
