package core

import "strings"

// ConnectionMode classifies how a connection string is obtained.
type ConnectionMode int

const (
	ModeConnectionString ConnectionMode = iota + 1
	ModeDSN
	ModeParameters
)

func (m ConnectionMode) String() string {
	switch m {
	case ModeConnectionString:
		return "connection-string"
	case ModeDSN:
		return "dsn"
	case ModeParameters:
		return "parameters"
	default:
		return "unknown"
	}
}

// RequiredParameters lists the flags needed for ModeParameters.
var RequiredParameters = []string{"driver", "host", "port", "user", "password"}

// ResolveMode picks the connection mode by precedence: connection string,
// then DSN, then discrete parameters. Discrete parameters must all be set.
func ResolveMode(p *ConnectionParameters) (ConnectionMode, error) {
	switch {
	case strings.TrimSpace(p.ConnectionString) != "":
		return ModeConnectionString, nil
	case strings.TrimSpace(p.DSN) != "":
		return ModeDSN, nil
	}

	present := map[string]bool{
		"driver":   p.Driver != "",
		"host":     p.Host != "",
		"port":     p.Port > 0,
		"user":     p.User != "",
		"password": p.Password != "",
	}
	var missing []string
	for _, key := range RequiredParameters {
		if !present[key] {
			missing = append(missing, "--"+key)
		}
	}
	if len(missing) > 0 {
		return 0, &ConfigError{
			Key:     "connection",
			Missing: missing,
			Msg:     "to run this tool you must specify either --connection-string, --dsn, or all of " + strings.Join(prefixed(RequiredParameters), ", "),
		}
	}
	return ModeParameters, nil
}

func prefixed(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = "--" + k
	}
	return out
}
