package environment

// Environment represents the deployment environment the server runs in.
type Environment string

const (
	// Development for local development.
	Development Environment = "development"
	// Staging for pre-production deployments.
	Staging Environment = "staging"
	// Production for production deployments.
	Production Environment = "production"
)

// Parse normalizes a raw environment string, accepting common short forms.
// Unknown values fall back to Development so a misconfigured box never
// silently behaves like production.
func Parse(raw string) Environment {
	switch raw {
	case string(Production), "prod":
		return Production
	case string(Staging), "stage":
		return Staging
	default:
		return Development
	}
}

// IsProduction reports whether the environment is production.
func (e Environment) IsProduction() bool {
	return e == Production
}

// IsDevelopment reports whether the environment is development.
func (e Environment) IsDevelopment() bool {
	return e == Development
}

// ProductionLike reports whether the environment should use hardened
// defaults: secure cookies, redacted error detail, JSON logs.
func (e Environment) ProductionLike() bool {
	return e == Production || e == Staging
}
