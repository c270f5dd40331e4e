package pushflow

// Result is a gateway answer as seen by response handlers and hooks.
type Result interface {
	Err() error
	Status() int
	Provider() string
	RecipientIdentifier() string
	ExtraKeys() []string
	ExtraValue(string) string
	MarshalJSON() ([]byte, error)
}
