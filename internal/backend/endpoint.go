package backend

// Credentials authenticate against the data service.
type Credentials struct {
	Module string
	Secret string
}

// Complete reports whether both halves are set.
func (c Credentials) Complete() bool {
	return c.Module != "" && c.Secret != ""
}

// Endpoint is a resolved data service target.
type Endpoint struct {
	Name        string
	BaseURL     string
	Credentials Credentials
}
