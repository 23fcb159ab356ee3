package connector

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"odbcperf/internal/core"
)

// keywords are the connection string attribute names a client library expects.
type keywords struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
}

// ConnectionString returns the string handed to sql.Open for p.
func ConnectionString(p *core.ConnectionParameters, kw keywords) (string, error) {
	mode, err := core.ResolveMode(p)
	if err != nil {
		return "", err
	}

	if p.DriverName() != core.DefaultSQLDriver && mode != core.ModeConnectionString {
		return "", &core.ConfigError{
			Key:   "sql-driver",
			Value: p.DriverName(),
			Msg:   fmt.Sprintf("driver %q only accepts --connection-string", p.DriverName()),
		}
	}

	var b attrBuilder
	switch mode {
	case core.ModeConnectionString:
		if p.DriverName() != core.DefaultSQLDriver {
			// Native drivers do not speak ODBC attribute syntax.
			return p.ConnectionString, nil
		}
		b.raw(p.ConnectionString)
	case core.ModeDSN:
		b.add("DSN", strings.TrimSpace(p.DSN))
	case core.ModeParameters:
		b.add(kw.Driver, p.Driver)
		b.add(kw.Host, p.Host)
		b.add(kw.Port, strconv.Itoa(p.Port))
		b.add(kw.User, p.User)
		b.add(kw.Password, p.Password)
		b.add("useEncryption", flag(p.UseEncryption))
		if p.DisableCertificateVerification {
			b.add("disableCertificateVerification", "true")
		}
		if p.TrustStore != "" {
			b.add("trustedCerts", p.TrustStore)
		}
		if p.TrustStorePassword != "" {
			b.add("trustStorePassword", p.TrustStorePassword)
		}
		if p.UseEncryption {
			b.add("useSystemTrustStore", strconv.FormatBool(p.UseSystemTrustStore))
		}
		if p.Token != "" {
			b.add("token", p.Token)
		}
	}

	keys := make([]string, 0, len(p.LibraryOptions))
	for k := range p.LibraryOptions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.add(k, p.LibraryOptions[k])
	}

	return b.String(), nil
}

type attrBuilder struct {
	parts []string
}

func (b *attrBuilder) raw(s string) {
	s = strings.TrimRight(strings.TrimSpace(s), ";")
	if s != "" {
		b.parts = append(b.parts, s)
	}
}

func (b *attrBuilder) add(key, value string) {
	b.parts = append(b.parts, key+"="+quoteValue(value))
}

func (b *attrBuilder) String() string {
	return strings.Join(b.parts, ";")
}

// quoteValue braces values the driver manager would otherwise split or trim.
func quoteValue(v string) string {
	if strings.ContainsAny(v, ";{}") || strings.TrimSpace(v) != v {
		return "{" + strings.ReplaceAll(v, "}", "}}") + "}"
	}
	return v
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
