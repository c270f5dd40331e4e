package apns

import (
	"regexp"
	"strings"
)

// Environment is the APNs environment a device token was issued for.
type Environment int

// Environments
const (
	Development Environment = iota + 1
	Production
)

// Apns endpoints
const (
	DevServer  = "https://api.sandbox.push.apple.com"
	ProdServer = "https://api.push.apple.com"
)

const devicePath = "/3/device/"

// MinTokenLength is the shortest device token APNs issues, in hex characters.
const MinTokenLength = 64

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{64,}$`)

// ParseEnvironment converts a configured environment name.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(s) {
	case "development", "sandbox":
		return Development, nil
	case "production":
		return Production, nil
	}
	return 0, invalid("environment", "unknown environment %q", s)
}

// Valid reports whether e is Development or Production.
func (e Environment) Valid() bool {
	return e == Development || e == Production
}

// BaseURL returns the APNs host of the environment.
func (e Environment) BaseURL() string {
	switch e {
	case Development:
		return DevServer
	case Production:
		return ProdServer
	}
	return ""
}

func (e Environment) String() string {
	switch e {
	case Development:
		return "development"
	case Production:
		return "production"
	}
	return "unknown"
}

// Address is a validated device token bound to its environment.
type Address struct {
	token string
	env   Environment
}

// NewAddress validates a hex device token and an environment.
func NewAddress(token string, env Environment) (Address, error) {
	if !env.Valid() {
		return Address{}, invalid("environment", "unknown environment %d", int(env))
	}
	t := strings.ToLower(strings.TrimSpace(token))
	if len(t) < MinTokenLength {
		return Address{}, invalid("device token", "must be at least %d hex characters, got %d", MinTokenLength, len(t))
	}
	if !tokenPattern.MatchString(t) {
		return Address{}, invalid("device token", "%q contains non-hex characters", token)
	}
	return Address{token: t, env: env}, nil
}

// Token returns the normalized device token.
func (a Address) Token() string { return a.token }

// Environment returns the environment of the token.
func (a Address) Environment() Environment { return a.env }

// Endpoint returns the request URL for the device.
func (a Address) Endpoint() string {
	return a.env.BaseURL() + devicePath + a.token
}
